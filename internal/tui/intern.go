package tui

import (
	"fmt"
	"strings"

	"internboard/internal/client"
	"internboard/internal/domain/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InternView lists the caller's tasks across all projects and lets them
// move a task between the three statuses.
type InternView struct {
	api    *client.Client
	tasks  []model.InternTask
	cursor int
}

func NewInternView(api *client.Client) InternView {
	return InternView{api: api}
}

func (v InternView) Init() tea.Cmd {
	return loadMyTasksCmd(v.api)
}

func (v InternView) Update(msg tea.Msg) (InternView, tea.Cmd) {
	switch msg := msg.(type) {
	case myTasksMsg:
		v.tasks = msg.tasks
		if v.cursor >= len(v.tasks) {
			v.cursor = len(v.tasks) - 1
		}
		if v.cursor < 0 {
			v.cursor = 0
		}
		return v, nil
	case actionDoneMsg:
		return v, loadMyTasksCmd(v.api)
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.cursor > 0 {
				v.cursor--
			}
		case "down", "j":
			if v.cursor < len(v.tasks)-1 {
				v.cursor++
			}
		case "r":
			return v, loadMyTasksCmd(v.api)
		case "1":
			return v.setStatus(model.StatusPending)
		case "2":
			return v.setStatus(model.StatusInProgress)
		case "3":
			return v.setStatus(model.StatusCompleted)
		}
	}
	return v, nil
}

func (v InternView) setStatus(status model.TaskStatus) (InternView, tea.Cmd) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return v, nil
	}
	api := v.api
	taskID := v.tasks[v.cursor].ID
	return v, func() tea.Msg {
		ctx, cancel := requestCtx()
		defer cancel()
		if _, err := api.SetTaskStatus(ctx, taskID, status); err != nil {
			return apiErr(err)
		}
		return actionDoneMsg{text: "Status updated"}
	}
}

func (v InternView) View() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("My Tasks") + "\n")
	if len(v.tasks) == 0 {
		b.WriteString(dimStyle.Render("nothing assigned to you yet"))
	}
	for i, task := range v.tasks {
		assigner := ""
		if task.AssignedBy != nil {
			assigner = " by " + task.AssignedBy.UserName
		}
		line := fmt.Sprintf("%s  [%s]  %s  %s  due %s%s",
			task.Title,
			task.ProjectName,
			priorityColor(string(task.Priority)).Render(string(task.Priority)),
			statusColor(string(task.Status)).Render(string(task.Status)),
			task.Deadline.Format("2006-01-02"),
			dimStyle.Render(assigner),
		)
		if i == v.cursor {
			b.WriteString(selectedStyle.Render(" "+line+" ") + "\n")
		} else {
			b.WriteString(" " + line + "\n")
		}
	}

	help := dimStyle.Render("↑/↓: move • 1: Pending • 2: In Progress • 3: Completed • r: refresh • ctrl+l: logout • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Intern Board — My Work"),
		paneStyle.Render(b.String()),
		help,
	)
}
