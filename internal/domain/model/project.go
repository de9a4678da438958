package model

import (
	"time"
)

type TaskPriority string
type TaskStatus string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"

	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

func ValidPriority(p TaskPriority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

func ValidStatus(s TaskStatus) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task lives only inside its owning Project's task array. It has no row of
// its own; the whole array is rewritten on every task mutation so the
// project document stays the unit of atomicity.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Priority       TaskPriority `json:"priority"`
	Deadline       time.Time    `json:"deadline"`
	Status         TaskStatus   `json:"status"`
	AssignedIntern string       `json:"assignedIntern"`
	AssignedBy     string       `json:"assignedBy,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	Intern         *UserRef     `json:"intern,omitempty"` // resolved on reads, never stored
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	Tasks       []Task    `json:"tasks"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Creator     *UserRef  `json:"creator,omitempty"` // resolved on reads
}

// FindTask returns a pointer into the project's task slice, or nil.
func (p *Project) FindTask(taskID string) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return &p.Tasks[i]
		}
	}
	return nil
}

// RemoveTask drops the task with the given id if present. Removal of an
// absent id is not an error.
func (p *Project) RemoveTask(taskID string) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return
		}
	}
}

// InternTask is a task flattened out of its project for the intern view.
type InternTask struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Deadline    time.Time    `json:"deadline"`
	Status      TaskStatus   `json:"status"`
	ProjectID   string       `json:"projectId"`
	ProjectName string       `json:"projectName"`
	AssignedBy  *UserRef     `json:"assignedBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
