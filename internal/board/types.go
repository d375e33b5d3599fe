// Package board owns the in-memory Kanban board graph: its data model, the
// pure command reducer that transforms it, the Manager that persists every
// transition, and the drag-and-drop interaction state machine.
package board

import (
	"fmt"
	"time"
)

// Board is the top-level container of Columns for one project view.
// Columns are rendered in slice order; Position is informational.
type Board struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ProjectID   string    `json:"projectId"`
	Columns     []*Column `json:"columns"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Column is a named, ordered bucket of Tasks within a Board.
type Column struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Position  int       `json:"position"`
	BoardID   string    `json:"boardId"`
	Tasks     []*Task   `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Task is a unit of work. ColumnID and BoardID are back-references that always
// match the column the task currently sits in.
type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      Status        `json:"status"`
	Priority    Priority      `json:"priority"`
	Labels      []Label       `json:"labels"`
	AssigneeID  string        `json:"assigneeId,omitempty"`
	ColumnID    string        `json:"columnId"`
	BoardID     string        `json:"boardId"`
	Position    int           `json:"position"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Subtasks    []*Subtask    `json:"subtasks"`
	Attachments []*Attachment `json:"attachments"`
	Comments    []*Comment    `json:"comments"`
}

type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	TaskID    string    `json:"taskId"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Label struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	ProjectID string `json:"projectId"`
}

type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	TaskID     string    `json:"taskId"`
	UploadedBy string    `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"authorId"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Status is the workflow state of a task.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusInReview   Status = "in-review"
	StatusDone       Status = "done"
)

// Validate checks if the Status is a valid enum value.
func (s Status) Validate() error {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusInReview, StatusDone:
		return nil
	default:
		return fmt.Errorf("unknown status: %q", s)
	}
}

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Validate checks if the Priority is a valid enum value.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return nil
	default:
		return fmt.Errorf("unknown priority: %q", p)
	}
}

// TaskIndex returns the index of the task in the column's sequence, or -1.
func (c *Column) TaskIndex(taskID string) int {
	for i, t := range c.Tasks {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// ColumnIndex returns the index of the column in the board's sequence, or -1.
func (b *Board) ColumnIndex(columnID string) int {
	for i, c := range b.Columns {
		if c.ID == columnID {
			return i
		}
	}
	return -1
}

// FindColumn looks a column up by identity.
func (b *Board) FindColumn(columnID string) *Column {
	if i := b.ColumnIndex(columnID); i >= 0 {
		return b.Columns[i]
	}
	return nil
}

// FindTask scans every column for the task and returns it with its column.
func (b *Board) FindTask(taskID string) (*Task, *Column) {
	for _, c := range b.Columns {
		if i := c.TaskIndex(taskID); i >= 0 {
			return c.Tasks[i], c
		}
	}
	return nil, nil
}

// TaskCount returns the number of tasks across all columns.
func (b *Board) TaskCount() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}
