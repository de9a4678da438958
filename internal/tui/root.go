package tui

import (
	"internboard/internal/client"
	"internboard/internal/domain/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type rootState int

const (
	stateLogin rootState = iota
	stateAdmin
	stateIntern
)

// RootModel owns the session lifecycle and routes messages to the active
// role view. The session travels through the model tree explicitly; nothing
// below reads the token from globals.
type RootModel struct {
	api   *client.Client
	store *client.SessionStore

	state  rootState
	login  LoginView
	admin  AdminView
	intern InternView

	user      *model.User
	statusMsg string
	errorMsg  string
}

// NewRootModel builds the model. A previously stored session (already
// rehydrated against /auth/me by the caller) skips the login screen.
func NewRootModel(api *client.Client, store *client.SessionStore, session *client.Session) RootModel {
	m := RootModel{
		api:    api,
		store:  store,
		state:  stateLogin,
		login:  NewLoginView(api),
		admin:  NewAdminView(api),
		intern: NewInternView(api),
	}
	if session != nil && session.User != nil {
		m.user = session.User
		m.state = stateForRole(session.User.Role)
	}
	return m
}

func stateForRole(role string) rootState {
	if role == model.RoleAdmin {
		return stateAdmin
	}
	return stateIntern
}

func (m RootModel) Init() tea.Cmd {
	switch m.state {
	case stateAdmin:
		return m.admin.Init()
	case stateIntern:
		return m.intern.Init()
	}
	return nil
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != stateLogin && m.inNormalMode() {
				return m, tea.Quit
			}
		case "ctrl+l":
			if m.state != stateLogin {
				return m.logout()
			}
		}
	case authSuccessMsg:
		m.user = msg.user
		m.api.SetToken(msg.token)
		if err := m.store.Save(&client.Session{Token: msg.token, User: msg.user}); err != nil {
			m.errorMsg = "session not saved: " + err.Error()
		}
		m.state = stateForRole(msg.user.Role)
		m.statusMsg = "Signed in as " + msg.user.UserName
		m.errorMsg = ""
		switch m.state {
		case stateAdmin:
			return m, m.admin.Init()
		default:
			return m, m.intern.Init()
		}
	case registeredMsg:
		m.statusMsg = "Registered " + msg.user.UserName + " — log in to continue"
		m.errorMsg = ""
	case sessionExpiredMsg:
		next, cmd := m.logout()
		root := next.(RootModel)
		root.errorMsg = "Session expired, please log in again"
		return root, cmd
	case errMsg:
		m.errorMsg = msg.err.Error()
	case infoMsg:
		m.statusMsg = msg.text
		m.errorMsg = ""
	case actionDoneMsg:
		m.statusMsg = msg.text
		m.errorMsg = ""
	}

	var cmd tea.Cmd
	switch m.state {
	case stateLogin:
		m.login, cmd = m.login.Update(msg)
	case stateAdmin:
		m.admin, cmd = m.admin.Update(msg)
	case stateIntern:
		m.intern, cmd = m.intern.Update(msg)
	}
	return m, cmd
}

// inNormalMode reports whether plain letter keys are navigation rather than
// text entry in the active view.
func (m RootModel) inNormalMode() bool {
	if m.state == stateAdmin {
		return m.admin.mode == adminModeNormal
	}
	return m.state == stateIntern
}

func (m RootModel) logout() (tea.Model, tea.Cmd) {
	if err := m.store.Clear(); err != nil {
		m.errorMsg = err.Error()
	}
	m.api.SetToken("")
	m.user = nil
	m.state = stateLogin
	m.login = NewLoginView(m.api)
	m.statusMsg = "Signed out"
	return m, nil
}

func (m RootModel) View() string {
	var body string
	switch m.state {
	case stateLogin:
		body = m.login.View()
	case stateAdmin:
		body = m.admin.View()
	case stateIntern:
		body = m.intern.View()
	}

	statusLine := ""
	if m.errorMsg != "" {
		statusLine = errorStyle.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = statusStyle.Render(m.statusMsg)
	}
	if statusLine == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, statusLine)
}
