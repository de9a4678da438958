package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"internboard/internal/app/notify"
	"internboard/internal/common"
	"internboard/internal/domain/model"
	"internboard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	bus         notify.Bus
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, bus notify.Bus) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, userRepo: userRepo, bus: bus}
}

type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateTaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Priority       string `json:"priority"`
	Deadline       string `json:"deadline"`
	AssignedIntern string `json:"assignedIntern"`
}

// UpdateTaskRequest carries the admin-side partial overwrite: every task
// attribute is writable, only supplied fields are touched.
type UpdateTaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	Deadline       *string `json:"deadline"`
	Status         *string `json:"status"`
	AssignedIntern *string `json:"assignedIntern"`
}

func (s *ProjectService) CreateProject(ctx context.Context, callerID string, req ProjectRequest) (*model.Project, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" {
		return nil, common.Errorf("name and description are required: %w", common.ErrValidation)
	}

	now := time.Now().UTC()
	project := &model.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: description,
		CreatedBy:   callerID,
		Tasks:       []model.Task{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	resolver := s.newRefResolver()
	for i := range projects {
		s.resolveProjectRefs(ctx, &projects[i], resolver)
	}
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveProjectRefs(ctx, project, s.newRefResolver())
	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, req ProjectRequest) (*model.Project, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" {
		return nil, common.Errorf("name and description are required: %w", common.ErrValidation)
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Name = name
	project.Slug = slug.Make(name)
	project.Description = description
	project.UpdatedAt = time.Now().UTC()

	if err := s.projectRepo.UpdateMeta(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	// One row, one statement: the embedded tasks go with the document.
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, notify.Event{
		Type: "project-deleted",
		Room: notify.RoomInterns,
		Data: map[string]any{"projectId": id},
	})
	return nil
}

func (s *ProjectService) CreateTask(ctx context.Context, callerID, projectID string, req CreateTaskRequest) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrValidation)
	}
	// Required at creation only; edits may clear it.
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, common.Errorf("description is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(req.Deadline) == "" {
		return nil, common.Errorf("deadline is required: %w", common.ErrValidation)
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return nil, err
	}

	priority := model.TaskPriority(req.Priority)
	if req.Priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, common.Errorf("priority must be Low, Medium or High: %w", common.ErrValidation)
	}

	// The assignee must be an intern at creation time. Later edits do not
	// re-check this.
	intern, err := s.userRepo.FindByID(ctx, req.AssignedIntern)
	if err != nil || intern.Role != model.RoleIntern {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("failed to look up assignee: %w", err)
		}
		return nil, common.Errorf("invalid intern selected: %w", common.ErrValidation)
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    description,
		Priority:       priority,
		Deadline:       deadline,
		Status:         model.StatusPending,
		AssignedIntern: intern.ID,
		AssignedBy:     callerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	project.Tasks = append(project.Tasks, task)

	if err := s.projectRepo.SaveTasks(ctx, project.ID, project.Tasks); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Type: "task-assigned",
		Room: notify.RoomInterns,
		Data: map[string]any{
			"taskId":      task.ID,
			"title":       task.Title,
			"projectId":   project.ID,
			"projectName": project.Name,
			"internId":    intern.ID,
		},
	})

	s.resolveProjectRefs(ctx, project, s.newRefResolver())
	return project, nil
}

func (s *ProjectService) UpdateTask(ctx context.Context, projectID, taskID string, req UpdateTaskRequest) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	task := project.FindTask(taskID)
	if task == nil {
		return nil, common.Errorf("task not found: %w", common.ErrNotFound)
	}

	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		if !model.ValidPriority(priority) {
			return nil, common.Errorf("priority must be Low, Medium or High: %w", common.ErrValidation)
		}
		task.Priority = priority
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		if !model.ValidStatus(status) {
			return nil, common.Errorf("invalid status: %w", common.ErrValidation)
		}
		task.Status = status
	}
	if req.AssignedIntern != nil {
		task.AssignedIntern = *req.AssignedIntern
	}
	if req.Deadline != nil {
		deadline, err := parseDeadline(*req.Deadline)
		if err != nil {
			return nil, err
		}
		task.Deadline = deadline
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.projectRepo.SaveTasks(ctx, project.ID, project.Tasks); err != nil {
		return nil, err
	}

	s.resolveProjectRefs(ctx, project, s.newRefResolver())
	return project, nil
}

func (s *ProjectService) DeleteTask(ctx context.Context, projectID, taskID string) error {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	// Removing an already-absent task succeeds silently.
	project.RemoveTask(taskID)
	return s.projectRepo.SaveTasks(ctx, project.ID, project.Tasks)
}

func (s *ProjectService) ListInterns(ctx context.Context) ([]model.UserRef, error) {
	interns, err := s.userRepo.ListByRole(ctx, model.RoleIntern)
	if err != nil {
		return nil, err
	}
	refs := make([]model.UserRef, 0, len(interns))
	for i := range interns {
		refs = append(refs, *interns[i].Ref())
	}
	return refs, nil
}

// ListInternTasks flattens the caller's tasks across every project that
// contains at least one of them, annotated with the owning project and its
// creator as the assigner.
func (s *ProjectService) ListInternTasks(ctx context.Context, internID string) ([]model.InternTask, error) {
	projects, err := s.projectRepo.ListByAssignee(ctx, internID)
	if err != nil {
		return nil, err
	}

	resolver := s.newRefResolver()
	tasks := []model.InternTask{}
	for i := range projects {
		project := &projects[i]
		assigner := resolver(ctx, project.CreatedBy)
		for _, task := range project.Tasks {
			if task.AssignedIntern != internID {
				continue
			}
			tasks = append(tasks, model.InternTask{
				ID:          task.ID,
				Title:       task.Title,
				Description: task.Description,
				Priority:    task.Priority,
				Deadline:    task.Deadline,
				Status:      task.Status,
				ProjectID:   project.ID,
				ProjectName: project.Name,
				AssignedBy:  assigner,
				CreatedAt:   task.CreatedAt,
				UpdatedAt:   task.UpdatedAt,
			})
		}
	}
	return tasks, nil
}

// UpdateTaskStatus is the intern-side status change. Scoping the lookup to
// (task, assignee) both finds the owning project and enforces that interns
// only touch their own tasks: anyone else's task is simply not found.
func (s *ProjectService) UpdateTaskStatus(ctx context.Context, internID, taskID string, status model.TaskStatus) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, common.Errorf("invalid status: %w", common.ErrValidation)
	}

	project, err := s.projectRepo.FindByTaskAssignee(ctx, taskID, internID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("task not found: %w", common.ErrNotFound)
		}
		return nil, err
	}

	task := project.FindTask(taskID)
	if task == nil {
		return nil, common.Errorf("task not found: %w", common.ErrNotFound)
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()

	if err := s.projectRepo.SaveTasks(ctx, project.ID, project.Tasks); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.Event{
		Type: "task-status-changed",
		Room: notify.RoomAdmins,
		Data: map[string]any{
			"taskId":      task.ID,
			"title":       task.Title,
			"status":      string(task.Status),
			"projectId":   project.ID,
			"projectName": project.Name,
			"internId":    internID,
		},
	})

	taskCopy := *task
	return &taskCopy, nil
}

func (s *ProjectService) publish(ctx context.Context, event notify.Event) {
	if s.bus == nil {
		return
	}
	// Notifications are best-effort; a dead bus never fails the request.
	if err := s.bus.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish %s event: %v", event.Type, err)
	}
}

// newRefResolver memoizes user lookups across one request. Unresolvable ids
// yield nil refs, mirroring a dangling reference after a user disappears.
func (s *ProjectService) newRefResolver() func(ctx context.Context, id string) *model.UserRef {
	cache := map[string]*model.UserRef{}
	return func(ctx context.Context, id string) *model.UserRef {
		if id == "" {
			return nil
		}
		if ref, ok := cache[id]; ok {
			return ref
		}
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil {
			cache[id] = nil
			return nil
		}
		ref := user.Ref()
		cache[id] = ref
		return ref
	}
}

func (s *ProjectService) resolveProjectRefs(ctx context.Context, project *model.Project, resolver func(ctx context.Context, id string) *model.UserRef) {
	project.Creator = resolver(ctx, project.CreatedBy)
	for i := range project.Tasks {
		project.Tasks[i].Intern = resolver(ctx, project.Tasks[i].AssignedIntern)
	}
}

func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, common.Errorf("deadline must be an RFC3339 or YYYY-MM-DD date: %w", common.ErrValidation)
}
