package tui

import (
	"errors"
	"strings"

	"internboard/internal/client"
	"internboard/internal/domain/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var errEmptyCredentials = errors.New("email and password are required")

const (
	loginFieldName = iota
	loginFieldEmail
	loginFieldPassword
	loginFieldCount
)

// LoginView handles both login and registration against the auth API.
type LoginView struct {
	api        *client.Client
	inputs     [loginFieldCount]textinput.Model
	focus      int
	registerOn bool
	role       string
	busy       bool
}

func NewLoginView(api *client.Client) LoginView {
	v := LoginView{api: api, role: model.RoleIntern}

	name := textinput.New()
	name.Placeholder = "display name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	v.inputs[loginFieldName] = name
	v.inputs[loginFieldEmail] = email
	v.inputs[loginFieldPassword] = password

	v.focus = loginFieldEmail
	v.inputs[loginFieldEmail].Focus()
	return v
}

func (v LoginView) firstField() int {
	if v.registerOn {
		return loginFieldName
	}
	return loginFieldEmail
}

func (v *LoginView) setFocus(index int) {
	v.focus = index
	for i := range v.inputs {
		if i == index {
			v.inputs[i].Focus()
		} else {
			v.inputs[i].Blur()
		}
	}
}

func (v LoginView) Update(msg tea.Msg) (LoginView, tea.Cmd) {
	switch msg := msg.(type) {
	case authSuccessMsg, errMsg:
		v.busy = false
	case registeredMsg:
		v.busy = false
		v.registerOn = false
		v.setFocus(loginFieldEmail)
	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch msg.String() {
		case "tab", "down":
			next := v.focus + 1
			if next >= loginFieldCount {
				next = v.firstField()
			}
			v.setFocus(next)
			return v, nil
		case "shift+tab", "up":
			prev := v.focus - 1
			if prev < v.firstField() {
				prev = loginFieldCount - 1
			}
			v.setFocus(prev)
			return v, nil
		case "ctrl+r":
			v.registerOn = !v.registerOn
			v.setFocus(v.firstField())
			return v, nil
		case "ctrl+t":
			if v.role == model.RoleIntern {
				v.role = model.RoleAdmin
			} else {
				v.role = model.RoleIntern
			}
			return v, nil
		case "enter":
			return v.submit()
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return v, cmd
}

func (v LoginView) submit() (LoginView, tea.Cmd) {
	email := strings.TrimSpace(v.inputs[loginFieldEmail].Value())
	password := v.inputs[loginFieldPassword].Value()
	if email == "" || password == "" {
		return v, func() tea.Msg { return errMsg{err: errEmptyCredentials} }
	}

	v.busy = true
	if v.registerOn {
		name := strings.TrimSpace(v.inputs[loginFieldName].Value())
		role := v.role
		api := v.api
		return v, func() tea.Msg {
			ctx, cancel := requestCtx()
			defer cancel()
			user, err := api.Register(ctx, name, email, password, role)
			if err != nil {
				return errMsg{err: err}
			}
			return registeredMsg{user: user}
		}
	}

	api := v.api
	return v, func() tea.Msg {
		ctx, cancel := requestCtx()
		defer cancel()
		user, token, err := api.Login(ctx, email, password)
		if err != nil {
			return errMsg{err: err}
		}
		return authSuccessMsg{user: user, token: token}
	}
}

func (v LoginView) View() string {
	var b strings.Builder

	if v.registerOn {
		b.WriteString(titleStyle.Render("Intern Board — Register"))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Name") + "\n" + v.inputs[loginFieldName].View() + "\n")
	} else {
		b.WriteString(titleStyle.Render("Intern Board — Login"))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Email") + "\n" + v.inputs[loginFieldEmail].View() + "\n")
	b.WriteString(labelStyle.Render("Password") + "\n" + v.inputs[loginFieldPassword].View() + "\n")

	if v.registerOn {
		b.WriteString(labelStyle.Render("Role") + " " + selectedStyle.Render(" "+v.role+" ") + dimStyle.Render("  ctrl+t to switch") + "\n")
	}

	b.WriteString("\n")
	if v.busy {
		b.WriteString(dimStyle.Render("working..."))
	} else if v.registerOn {
		b.WriteString(dimStyle.Render("enter: register • ctrl+r: back to login • ctrl+c: quit"))
	} else {
		b.WriteString(dimStyle.Render("enter: login • ctrl+r: register • ctrl+c: quit"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
