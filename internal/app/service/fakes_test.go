package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"internboard/internal/common"
	"internboard/internal/domain/model"
)

// In-memory repositories for service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		found := *user
		return &found, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []model.User{}
	for _, user := range f.users {
		if user.Role == role {
			users = append(users, *user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })
	return users, nil
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*model.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*model.Project{}}
}

func copyProject(p *model.Project) *model.Project {
	cp := *p
	cp.Tasks = append([]model.Task(nil), p.Tasks...)
	return &cp
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[project.ID] = copyProject(project)
	return nil
}

func (f *fakeProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if project, ok := f.projects[id]; ok {
		return copyProject(project), nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := []model.Project{}
	for _, project := range f.projects {
		projects = append(projects, *copyProject(project))
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

func (f *fakeProjectRepo) UpdateMeta(ctx context.Context, project *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.projects[project.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Name = project.Name
	stored.Slug = project.Slug
	stored.Description = project.Description
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeProjectRepo) SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.projects[projectID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Tasks = append([]model.Task(nil), tasks...)
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) ListByAssignee(ctx context.Context, internID string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	projects := []model.Project{}
	for _, project := range f.projects {
		for _, task := range project.Tasks {
			if task.AssignedIntern == internID {
				projects = append(projects, *copyProject(project))
				break
			}
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].CreatedAt.After(projects[j].CreatedAt) })
	return projects, nil
}

func (f *fakeProjectRepo) FindByTaskAssignee(ctx context.Context, taskID, internID string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, project := range f.projects {
		for _, task := range project.Tasks {
			if task.ID == taskID && task.AssignedIntern == internID {
				return copyProject(project), nil
			}
		}
	}
	return nil, common.ErrNotFound
}

// taskByID digs the current stored copy of a task out of the repo.
func (f *fakeProjectRepo) taskByID(projectID, taskID string) *model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	project, ok := f.projects[projectID]
	if !ok {
		return nil
	}
	for i := range project.Tasks {
		if project.Tasks[i].ID == taskID {
			task := project.Tasks[i]
			return &task
		}
	}
	return nil
}
