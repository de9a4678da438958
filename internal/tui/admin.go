package tui

import (
	"fmt"
	"strings"

	"internboard/internal/client"
	"internboard/internal/domain/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type adminMode int

const (
	adminModeNormal adminMode = iota
	adminModeProjectForm
	adminModeTaskForm
	adminModeConfirmDeleteProject
	adminModeConfirmDeleteTask
)

type actionDoneMsg struct{ text string }

// AdminView is the admin dashboard: a project list with the selected
// project's tasks alongside, plus project/task forms as modal input modes.
type AdminView struct {
	api *client.Client

	projects []model.Project
	interns  []model.UserRef

	cursor     int
	taskCursor int
	mode       adminMode

	// Forms. The project form uses inputs[0:2] (name, description); the
	// task form uses inputs[0:3] (title, description, deadline).
	inputs    []textinput.Model
	formFocus int
	editingID string // task or project id being edited, "" = create

	priorityIdx int
	assigneeIdx int

	width  int
	height int
}

var priorities = []model.TaskPriority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}

func NewAdminView(api *client.Client) AdminView {
	return AdminView{api: api, priorityIdx: 1}
}

func (v AdminView) Init() tea.Cmd {
	return tea.Batch(loadProjectsCmd(v.api), loadInternsCmd(v.api))
}

func (v AdminView) selectedProject() *model.Project {
	if v.cursor < 0 || v.cursor >= len(v.projects) {
		return nil
	}
	return &v.projects[v.cursor]
}

func (v AdminView) selectedTask() *model.Task {
	project := v.selectedProject()
	if project == nil || v.taskCursor < 0 || v.taskCursor >= len(project.Tasks) {
		return nil
	}
	return &project.Tasks[v.taskCursor]
}

func (v *AdminView) clampCursors() {
	if v.cursor >= len(v.projects) {
		v.cursor = len(v.projects) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if p := v.selectedProject(); p != nil {
		if v.taskCursor >= len(p.Tasks) {
			v.taskCursor = len(p.Tasks) - 1
		}
	}
	if v.taskCursor < 0 {
		v.taskCursor = 0
	}
}

func (v AdminView) Update(msg tea.Msg) (AdminView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil
	case projectsMsg:
		v.projects = msg.projects
		v.clampCursors()
		return v, nil
	case internsMsg:
		v.interns = msg.interns
		return v, nil
	case actionDoneMsg:
		v.mode = adminModeNormal
		return v, loadProjectsCmd(v.api)
	case tea.KeyMsg:
		switch v.mode {
		case adminModeNormal:
			return v.updateNormal(msg)
		case adminModeProjectForm, adminModeTaskForm:
			return v.updateForm(msg)
		case adminModeConfirmDeleteProject, adminModeConfirmDeleteTask:
			return v.updateConfirm(msg)
		}
	}
	return v, nil
}

func (v AdminView) updateNormal(msg tea.KeyMsg) (AdminView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
			v.taskCursor = 0
		}
	case "down", "j":
		if v.cursor < len(v.projects)-1 {
			v.cursor++
			v.taskCursor = 0
		}
	case "shift+up", "K":
		if v.taskCursor > 0 {
			v.taskCursor--
		}
	case "shift+down", "J":
		if p := v.selectedProject(); p != nil && v.taskCursor < len(p.Tasks)-1 {
			v.taskCursor++
		}
	case "r":
		return v, tea.Batch(loadProjectsCmd(v.api), loadInternsCmd(v.api))
	case "n":
		v.openProjectForm(nil)
	case "e":
		if p := v.selectedProject(); p != nil {
			v.openProjectForm(p)
		}
	case "d":
		if v.selectedProject() != nil {
			v.mode = adminModeConfirmDeleteProject
		}
	case "t":
		if v.selectedProject() != nil {
			v.openTaskForm(nil)
		}
	case "E":
		if task := v.selectedTask(); task != nil {
			v.openTaskForm(task)
		}
	case "D":
		if v.selectedTask() != nil {
			v.mode = adminModeConfirmDeleteTask
		}
	}
	return v, nil
}

func newFormInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.SetValue(value)
	return ti
}

func (v *AdminView) openProjectForm(existing *model.Project) {
	v.mode = adminModeProjectForm
	v.editingID = ""
	name, description := "", ""
	if existing != nil {
		v.editingID = existing.ID
		name, description = existing.Name, existing.Description
	}
	v.inputs = []textinput.Model{
		newFormInput("project name", name),
		newFormInput("description", description),
	}
	v.formFocus = 0
	v.inputs[0].Focus()
}

func (v *AdminView) openTaskForm(existing *model.Task) {
	v.mode = adminModeTaskForm
	v.editingID = ""
	title, description, deadline := "", "", ""
	v.priorityIdx = 1
	v.assigneeIdx = 0
	if existing != nil {
		v.editingID = existing.ID
		title, description = existing.Title, existing.Description
		deadline = existing.Deadline.Format("2006-01-02")
		for i, p := range priorities {
			if p == existing.Priority {
				v.priorityIdx = i
			}
		}
		for i, intern := range v.interns {
			if intern.ID == existing.AssignedIntern {
				v.assigneeIdx = i
			}
		}
	}
	v.inputs = []textinput.Model{
		newFormInput("task title", title),
		newFormInput("description", description),
		newFormInput("deadline (YYYY-MM-DD)", deadline),
	}
	v.formFocus = 0
	v.inputs[0].Focus()
}

func (v *AdminView) focusFormField(index int) {
	v.formFocus = index
	for i := range v.inputs {
		if i == index {
			v.inputs[i].Focus()
		} else {
			v.inputs[i].Blur()
		}
	}
}

func (v AdminView) updateForm(msg tea.KeyMsg) (AdminView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = adminModeNormal
		return v, nil
	case "tab", "down":
		v.focusFormField((v.formFocus + 1) % len(v.inputs))
		return v, nil
	case "shift+tab", "up":
		v.focusFormField((v.formFocus + len(v.inputs) - 1) % len(v.inputs))
		return v, nil
	case "ctrl+p":
		if v.mode == adminModeTaskForm {
			v.priorityIdx = (v.priorityIdx + 1) % len(priorities)
		}
		return v, nil
	case "ctrl+a":
		if v.mode == adminModeTaskForm && len(v.interns) > 0 {
			v.assigneeIdx = (v.assigneeIdx + 1) % len(v.interns)
		}
		return v, nil
	case "enter":
		if v.formFocus < len(v.inputs)-1 {
			v.focusFormField(v.formFocus + 1)
			return v, nil
		}
		return v.submitForm()
	}

	var cmd tea.Cmd
	v.inputs[v.formFocus], cmd = v.inputs[v.formFocus].Update(msg)
	return v, cmd
}

func (v AdminView) submitForm() (AdminView, tea.Cmd) {
	api := v.api
	switch v.mode {
	case adminModeProjectForm:
		name := strings.TrimSpace(v.inputs[0].Value())
		description := strings.TrimSpace(v.inputs[1].Value())
		editingID := v.editingID
		return v, func() tea.Msg {
			ctx, cancel := requestCtx()
			defer cancel()
			var err error
			if editingID == "" {
				_, err = api.CreateProject(ctx, name, description)
			} else {
				_, err = api.UpdateProject(ctx, editingID, name, description)
			}
			if err != nil {
				return apiErr(err)
			}
			return actionDoneMsg{text: "Project saved"}
		}
	case adminModeTaskForm:
		project := v.selectedProject()
		if project == nil {
			v.mode = adminModeNormal
			return v, nil
		}
		form := client.TaskForm{
			Title:       strings.TrimSpace(v.inputs[0].Value()),
			Description: strings.TrimSpace(v.inputs[1].Value()),
			Deadline:    strings.TrimSpace(v.inputs[2].Value()),
			Priority:    string(priorities[v.priorityIdx]),
		}
		if len(v.interns) > 0 {
			form.AssignedIntern = v.interns[v.assigneeIdx].ID
		}
		projectID := project.ID
		editingID := v.editingID
		return v, func() tea.Msg {
			ctx, cancel := requestCtx()
			defer cancel()
			var err error
			if editingID == "" {
				_, err = api.CreateTask(ctx, projectID, form)
			} else {
				_, err = api.UpdateTask(ctx, projectID, editingID, form)
			}
			if err != nil {
				return apiErr(err)
			}
			return actionDoneMsg{text: "Task saved"}
		}
	}
	v.mode = adminModeNormal
	return v, nil
}

func (v AdminView) updateConfirm(msg tea.KeyMsg) (AdminView, tea.Cmd) {
	api := v.api
	switch msg.String() {
	case "y", "Y", "enter":
		if v.mode == adminModeConfirmDeleteProject {
			if project := v.selectedProject(); project != nil {
				id := project.ID
				return v, func() tea.Msg {
					ctx, cancel := requestCtx()
					defer cancel()
					if err := api.DeleteProject(ctx, id); err != nil {
						return apiErr(err)
					}
					return actionDoneMsg{text: "Project deleted"}
				}
			}
		}
		if v.mode == adminModeConfirmDeleteTask {
			project := v.selectedProject()
			task := v.selectedTask()
			if project != nil && task != nil {
				projectID, taskID := project.ID, task.ID
				return v, func() tea.Msg {
					ctx, cancel := requestCtx()
					defer cancel()
					if err := api.DeleteTask(ctx, projectID, taskID); err != nil {
						return apiErr(err)
					}
					return actionDoneMsg{text: "Task deleted"}
				}
			}
		}
		v.mode = adminModeNormal
	case "n", "N", "esc":
		v.mode = adminModeNormal
	}
	return v, nil
}

func (v AdminView) View() string {
	switch v.mode {
	case adminModeProjectForm:
		return v.formView("Project")
	case adminModeTaskForm:
		return v.formView("Task")
	}

	left := v.projectListView()
	right := v.taskListView()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	help := dimStyle.Render("↑/↓: projects • shift+↑/↓: tasks • n/e/d: project • t/E/D: task • r: refresh • ctrl+l: logout • q: quit")
	if v.mode == adminModeConfirmDeleteProject {
		help = errorStyle.Render("Delete this project and all of its tasks? y/n")
	}
	if v.mode == adminModeConfirmDeleteTask {
		help = errorStyle.Render("Delete this task? y/n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Intern Board — Admin"),
		body,
		help,
	)
}

func (v AdminView) projectListView() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Projects") + "\n")
	if len(v.projects) == 0 {
		b.WriteString(dimStyle.Render("no projects yet — press n"))
	}
	for i, project := range v.projects {
		line := fmt.Sprintf("%s (%d tasks)", project.Name, len(project.Tasks))
		if i == v.cursor {
			b.WriteString(selectedStyle.Render(" "+line+" ") + "\n")
		} else {
			b.WriteString(" " + line + "\n")
		}
	}
	return paneStyle.Width(36).Render(b.String())
}

func (v AdminView) taskListView() string {
	var b strings.Builder
	project := v.selectedProject()
	if project == nil {
		return paneStyle.Render(dimStyle.Render("select a project"))
	}
	b.WriteString(labelStyle.Render(project.Name) + "\n")
	b.WriteString(dimStyle.Render(project.Description) + "\n\n")
	if len(project.Tasks) == 0 {
		b.WriteString(dimStyle.Render("no tasks — press t"))
	}
	for i, task := range project.Tasks {
		assignee := task.AssignedIntern
		if task.Intern != nil {
			assignee = task.Intern.UserName
		}
		line := fmt.Sprintf("%s  %s  %s  → %s  due %s",
			task.Title,
			priorityColor(string(task.Priority)).Render(string(task.Priority)),
			statusColor(string(task.Status)).Render(string(task.Status)),
			assignee,
			task.Deadline.Format("2006-01-02"),
		)
		if i == v.taskCursor {
			b.WriteString(selectedStyle.Render(" "+line+" ") + "\n")
		} else {
			b.WriteString(" " + line + "\n")
		}
	}
	return activePaneStyle.Render(b.String())
}

func (v AdminView) formView(kind string) string {
	var b strings.Builder
	verb := "New"
	if v.editingID != "" {
		verb = "Edit"
	}
	b.WriteString(titleStyle.Render(verb+" "+kind) + "\n")
	for i := range v.inputs {
		b.WriteString(v.inputs[i].View() + "\n")
	}
	if v.mode == adminModeTaskForm {
		b.WriteString("\n" + labelStyle.Render("Priority") + " " + selectedStyle.Render(" "+string(priorities[v.priorityIdx])+" ") + dimStyle.Render("  ctrl+p to cycle") + "\n")
		assignee := "(no interns registered)"
		if len(v.interns) > 0 {
			assignee = v.interns[v.assigneeIdx].UserName
		}
		b.WriteString(labelStyle.Render("Assignee") + " " + selectedStyle.Render(" "+assignee+" ") + dimStyle.Render("  ctrl+a to cycle") + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter: next/save • esc: cancel"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
