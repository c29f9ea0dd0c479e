package domain

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the statuses the backend accepts.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the priorities the backend accepts.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents a user-owned activity item.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"due_date,omitempty"`
	Category    string       `json:"category,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskCompleted
}

// TaskInput carries the fields of a create intent. Only Title is required.
type TaskInput struct {
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     string
	Category    string
}

// Validate rejects input the backend would refuse, before any call is issued.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.Status != "" && !in.Status.Valid() {
		return NewError(ErrCodeInvalid, "invalid task status "+string(in.Status))
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return NewError(ErrCodeInvalid, "invalid task priority "+string(in.Priority))
	}
	return nil
}

// TaskPatch carries a partial update; nil fields are left unchanged server-side.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *string
	Category    *string
}

// Validate applies the TaskInput rules to the fields that are set.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewError(ErrCodeInvalid, "invalid task status "+string(*p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewError(ErrCodeInvalid, "invalid task priority "+string(*p.Priority))
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && p.Category == nil
}

// TaskStats summarises a task collection. Active counts every task that is not completed.
type TaskStats struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Completed      int `json:"completed"`
	CompletionRate int `json:"completion_rate"`
}
