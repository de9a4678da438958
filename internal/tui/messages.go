package tui

import (
	"context"
	"time"

	"internboard/internal/client"
	"internboard/internal/domain/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages shared across views.

type authSuccessMsg struct {
	user  *model.User
	token string
}

type registeredMsg struct {
	user *model.User
}

type sessionExpiredMsg struct{}

type errMsg struct{ err error }

type infoMsg struct{ text string }

type projectsMsg struct{ projects []model.Project }

type internsMsg struct{ interns []model.UserRef }

type myTasksMsg struct{ tasks []model.InternTask }

func requestCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

// apiErr converts client failures into messages; a 401 tears the session
// down instead of surfacing as a plain error.
func apiErr(err error) tea.Msg {
	if client.IsUnauthorized(err) {
		return sessionExpiredMsg{}
	}
	return errMsg{err: err}
}

func loadProjectsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestCtx()
		defer cancel()
		projects, err := c.Projects(ctx)
		if err != nil {
			return apiErr(err)
		}
		return projectsMsg{projects: projects}
	}
}

func loadInternsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestCtx()
		defer cancel()
		interns, err := c.Interns(ctx)
		if err != nil {
			return apiErr(err)
		}
		return internsMsg{interns: interns}
	}
}

func loadMyTasksCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := requestCtx()
		defer cancel()
		tasks, err := c.MyTasks(ctx)
		if err != nil {
			return apiErr(err)
		}
		return myTasksMsg{tasks: tasks}
	}
}
