package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"internboard/internal/common"
	"internboard/internal/domain/model"
)

// ProjectRepository persists projects as single-row documents: the embedded
// task sequence lives in a jsonb column and is always written as a whole, so
// a project write (including its cascade delete) is one atomic statement.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	UpdateMeta(ctx context.Context, project *model.Project) error
	SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error
	Delete(ctx context.Context, id string) error

	// ListByAssignee returns every project whose task array contains at
	// least one task assigned to the given intern.
	ListByAssignee(ctx context.Context, internID string) ([]model.Project, error)

	// FindByTaskAssignee locates the project containing a task with the
	// given id assigned to the given intern, or ErrNotFound.
	FindByTaskAssignee(ctx context.Context, taskID, internID string) (*model.Project, error)
}

type pgProjectRepository struct {
	db *sql.DB
}

func NewPgProjectRepository(db *sql.DB) ProjectRepository {
	return &pgProjectRepository{db: db}
}

const projectColumns = `id, name, slug, description, created_by, tasks, created_at, updated_at`

func scanProject(scan func(dest ...any) error) (*model.Project, error) {
	p := &model.Project{}
	var raw []byte
	if err := scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.CreatedBy, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks document: %w", err)
	}
	if p.Tasks == nil {
		p.Tasks = []model.Task{}
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, p *model.Project) error {
	raw, err := json.Marshal(p.Tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks document: %w", err)
	}
	query := `INSERT INTO projects (id, name, slug, description, created_by, tasks, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Slug, p.Description, p.CreatedBy, raw, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("pgProjectRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProjectRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	return r.queryProjects(ctx, query)
}

func (r *pgProjectRepository) ListByAssignee(ctx context.Context, internID string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
	          WHERE tasks @> $1 ORDER BY created_at DESC`
	needle, _ := json.Marshal([]map[string]string{{"assignedIntern": internID}})
	return r.queryProjects(ctx, query, needle)
}

func (r *pgProjectRepository) queryProjects(ctx context.Context, query string, args ...any) ([]model.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgProjectRepository query: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgProjectRepository scan: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProjectRepository rows: %w", err)
	}
	return projects, nil
}

func (r *pgProjectRepository) FindByTaskAssignee(ctx context.Context, taskID, internID string) (*model.Project, error) {
	// Containment with both keys matches only array elements carrying this
	// exact (task, assignee) pair.
	query := `SELECT ` + projectColumns + ` FROM projects WHERE tasks @> $1`
	needle, _ := json.Marshal([]map[string]string{{"id": taskID, "assignedIntern": internID}})
	p, err := scanProject(r.db.QueryRowContext(ctx, query, needle).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProjectRepository.FindByTaskAssignee: %w", err)
	}
	return p, nil
}

func (r *pgProjectRepository) UpdateMeta(ctx context.Context, p *model.Project) error {
	query := `UPDATE projects SET name = $1, slug = $2, description = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Slug, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("pgProjectRepository.UpdateMeta: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProjectRepository) SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error {
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks document: %w", err)
	}
	query := `UPDATE projects SET tasks = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, raw, projectID)
	if err != nil {
		return fmt.Errorf("pgProjectRepository.SaveTasks: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProjectRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
