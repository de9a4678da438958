package service

import (
	"context"
	"testing"
	"time"

	"internboard/internal/app/notify"
	"internboard/internal/common"
	"internboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProjects(t *testing.T) (*ProjectService, *fakeProjectRepo, *fakeUserRepo) {
	t.Helper()
	projectRepo := newFakeProjectRepo()
	userRepo := newFakeUserRepo()
	svc := NewProjectService(projectRepo, userRepo, notify.NewMemoryBus())
	return svc, projectRepo, userRepo
}

func seedUser(t *testing.T, repo *fakeUserRepo, id, name, role string) *model.User {
	t.Helper()
	user := &model.User{ID: id, UserName: name, Email: name + "@example.com", Role: role}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func seedTask(t *testing.T, svc *ProjectService, adminID, projectID, title, internID string) model.Task {
	t.Helper()
	project, err := svc.CreateTask(context.Background(), adminID, projectID, CreateTaskRequest{
		Title:          title,
		Description:    "do the thing",
		Deadline:       "2026-12-01",
		AssignedIntern: internID,
	})
	require.NoError(t, err)
	return project.Tasks[len(project.Tasks)-1]
}

func TestCreateProject(t *testing.T) {
	svc, _, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{
		Name:        "  Onboarding Portal  ",
		Description: "  Internal tooling  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Onboarding Portal", project.Name)
	assert.Equal(t, "onboarding-portal", project.Slug)
	assert.Equal(t, "Internal tooling", project.Description)
	assert.Equal(t, admin.ID, project.CreatedBy)
	assert.Empty(t, project.Tasks)

	_, err = svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "   "})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateTaskRejectsNonInternAssignee(t *testing.T) {
	svc, repo, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	other := seedUser(t, userRepo, "admin-2", "boss2", model.RoleAdmin)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), admin.ID, project.ID, CreateTaskRequest{
		Title: "T", Description: "D", Deadline: "2026-12-01", AssignedIntern: other.ID,
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.CreateTask(context.Background(), admin.ID, project.ID, CreateTaskRequest{
		Title: "T", Description: "D", Deadline: "2026-12-01", AssignedIntern: "no-such-user",
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	// Task list unchanged after both rejections.
	stored, err := repo.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tasks)
}

func TestCreateTaskRequiresDescription(t *testing.T) {
	svc, repo, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)

	_, err = svc.CreateTask(context.Background(), admin.ID, project.ID, CreateTaskRequest{
		Title: "T", Deadline: "2026-12-01", AssignedIntern: intern.ID,
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.CreateTask(context.Background(), admin.ID, project.ID, CreateTaskRequest{
		Title: "T", Description: "   ", Deadline: "2026-12-01", AssignedIntern: intern.ID,
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	stored, err := repo.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tasks)

	// Edits may still clear the description.
	task := seedTask(t, svc, admin.ID, project.ID, "T", intern.ID)
	empty := ""
	_, err = svc.UpdateTask(context.Background(), project.ID, task.ID, UpdateTaskRequest{Description: &empty})
	require.NoError(t, err)
	assert.Empty(t, repo.taskByID(project.ID, task.ID).Description)
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, _, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)

	updated, err := svc.CreateTask(context.Background(), admin.ID, project.ID, CreateTaskRequest{
		Title: "T", Description: "D", Deadline: "2026-12-01", AssignedIntern: intern.ID,
	})
	require.NoError(t, err)
	require.Len(t, updated.Tasks, 1)

	task := updated.Tasks[0]
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, admin.ID, task.AssignedBy)
	assert.Equal(t, intern.ID, task.AssignedIntern)
	require.NotNil(t, task.Intern)
	assert.Equal(t, "ivy", task.Intern.UserName)

	_, err = svc.CreateTask(context.Background(), admin.ID, "no-such-project", CreateTaskRequest{
		Title: "T", Description: "D", Deadline: "2026-12-01", AssignedIntern: intern.ID,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateTaskPartialOverwrite(t *testing.T) {
	svc, repo, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)
	task := seedTask(t, svc, admin.ID, project.ID, "T", intern.ID)

	newTitle := "Renamed"
	newStatus := string(model.StatusCompleted)
	_, err = svc.UpdateTask(context.Background(), project.ID, task.ID, UpdateTaskRequest{
		Title:  &newTitle,
		Status: &newStatus,
	})
	require.NoError(t, err)

	stored := repo.taskByID(project.ID, task.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	// Untouched fields survive.
	assert.Equal(t, "do the thing", stored.Description)
	assert.Equal(t, model.PriorityMedium, stored.Priority)

	badPriority := "Urgent"
	_, err = svc.UpdateTask(context.Background(), project.ID, task.ID, UpdateTaskRequest{Priority: &badPriority})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.UpdateTask(context.Background(), project.ID, "no-such-task", UpdateTaskRequest{Title: &newTitle})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteTaskSilentWhenAbsent(t *testing.T) {
	svc, repo, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)
	task := seedTask(t, svc, admin.ID, project.ID, "T", intern.ID)

	require.NoError(t, svc.DeleteTask(context.Background(), project.ID, task.ID))
	require.NoError(t, svc.DeleteTask(context.Background(), project.ID, task.ID), "double delete succeeds silently")

	assert.ErrorIs(t, svc.DeleteTask(context.Background(), "no-such-project", task.ID), common.ErrNotFound)

	stored, err := repo.FindByID(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tasks)
}

func TestDeleteProjectCascades(t *testing.T) {
	svc, _, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)
	task := seedTask(t, svc, admin.ID, project.ID, "T", intern.ID)

	require.NoError(t, svc.DeleteProject(context.Background(), project.ID))

	// The embedded task went with the document.
	_, err = svc.UpdateTaskStatus(context.Background(), intern.ID, task.ID, model.StatusInProgress)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteProject(context.Background(), project.ID), common.ErrNotFound)
}

func TestUpdateTaskStatus(t *testing.T) {
	svc, repo, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)
	rival := seedUser(t, userRepo, "intern-2", "rex", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)
	task := seedTask(t, svc, admin.ID, project.ID, "T", intern.ID)

	// Unknown status values never reach storage.
	_, err = svc.UpdateTaskStatus(context.Background(), intern.ID, task.ID, "Archived")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, model.StatusPending, repo.taskByID(project.ID, task.ID).Status)

	// Another intern's task reads as missing, not forbidden.
	_, err = svc.UpdateTaskStatus(context.Background(), rival.ID, task.ID, model.StatusInProgress)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, model.StatusPending, repo.taskByID(project.ID, task.ID).Status)

	before := repo.taskByID(project.ID, task.ID).UpdatedAt
	time.Sleep(5 * time.Millisecond)

	updated, err := svc.UpdateTaskStatus(context.Background(), intern.ID, task.ID, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.True(t, updated.UpdatedAt.After(before))

	// Transitions are unordered: Completed back to Pending is allowed.
	_, err = svc.UpdateTaskStatus(context.Background(), intern.ID, task.ID, model.StatusCompleted)
	require.NoError(t, err)
	back, err := svc.UpdateTaskStatus(context.Background(), intern.ID, task.ID, model.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, back.Status)
}

func TestListInternTasks(t *testing.T) {
	svc, _, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)
	rival := seedUser(t, userRepo, "intern-2", "rex", model.RoleIntern)

	first, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "First", Description: "D"})
	require.NoError(t, err)
	second, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "Second", Description: "D"})
	require.NoError(t, err)

	mine := seedTask(t, svc, admin.ID, first.ID, "Mine", intern.ID)
	seedTask(t, svc, admin.ID, first.ID, "Not mine", rival.ID)
	alsoMine := seedTask(t, svc, admin.ID, second.ID, "Also mine", intern.ID)

	tasks, err := svc.ListInternTasks(context.Background(), intern.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byID := map[string]model.InternTask{}
	for _, task := range tasks {
		byID[task.ID] = task
	}
	require.Contains(t, byID, mine.ID)
	require.Contains(t, byID, alsoMine.ID)
	assert.Equal(t, "First", byID[mine.ID].ProjectName)
	assert.Equal(t, first.ID, byID[mine.ID].ProjectID)
	require.NotNil(t, byID[mine.ID].AssignedBy)
	assert.Equal(t, "boss", byID[mine.ID].AssignedBy.UserName)
}

func TestListInterns(t *testing.T) {
	svc, _, userRepo := setupProjects(t)
	seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	seedUser(t, userRepo, "intern-2", "zoe", model.RoleIntern)
	seedUser(t, userRepo, "intern-1", "abe", model.RoleIntern)

	interns, err := svc.ListInterns(context.Background())
	require.NoError(t, err)
	require.Len(t, interns, 2)
	assert.Equal(t, "abe", interns[0].UserName)
	assert.Equal(t, "zoe", interns[1].UserName)
}

func TestListProjectsResolvesRefs(t *testing.T) {
	svc, _, userRepo := setupProjects(t)
	admin := seedUser(t, userRepo, "admin-1", "boss", model.RoleAdmin)
	intern := seedUser(t, userRepo, "intern-1", "ivy", model.RoleIntern)

	project, err := svc.CreateProject(context.Background(), admin.ID, ProjectRequest{Name: "P", Description: "D"})
	require.NoError(t, err)
	seedTask(t, svc, admin.ID, project.ID, "T", intern.ID)

	projects, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].Creator)
	assert.Equal(t, "boss", projects[0].Creator.UserName)
	require.Len(t, projects[0].Tasks, 1)
	require.NotNil(t, projects[0].Tasks[0].Intern)
	assert.Equal(t, "ivy", projects[0].Tasks[0].Intern.UserName)
}
