package board

import (
	"strings"
	"time"
)

// Command is a board transition. Commands carry every non-deterministic input
// (new identities, timestamps) so that Apply is a pure function.
type Command interface {
	apply(b *Board) error
}

// Apply returns the board produced by cmd. The input board is never mutated;
// on error the input remains the current state.
func Apply(b *Board, cmd Command) (*Board, error) {
	next := b.Clone()
	if err := cmd.apply(next); err != nil {
		return b, err
	}
	return next, nil
}

// ColumnPatch lists the column fields to merge. Nil fields are left untouched.
type ColumnPatch struct {
	Name     *string
	Color    *string
	Position *int
}

// TaskPatch lists the task fields to merge. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	AssigneeID  *string
	DueDate     *time.Time
	ClearDue    bool
	Labels      *[]Label
}

type AddColumn struct {
	ID    string
	Name  string
	Color string
	At    time.Time
}

func (c AddColumn) apply(b *Board) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return &ValidationError{Field: "column name", Reason: "cannot be empty"}
	}
	// Positions may have gaps after a delete; stay above the highest one.
	pos := 0
	for _, col := range b.Columns {
		pos = max(pos, col.Position+1)
	}
	b.Columns = append(b.Columns, &Column{
		ID:        c.ID,
		Name:      name,
		Color:     c.Color,
		Position:  pos,
		BoardID:   b.ID,
		Tasks:     []*Task{},
		CreatedAt: c.At,
		UpdatedAt: c.At,
	})
	b.UpdatedAt = c.At
	return nil
}

type UpdateColumn struct {
	ColumnID string
	Patch    ColumnPatch
	At       time.Time
}

func (c UpdateColumn) apply(b *Board) error {
	col := b.FindColumn(c.ColumnID)
	if col == nil {
		return nil
	}
	if c.Patch.Name != nil {
		name := strings.TrimSpace(*c.Patch.Name)
		if name == "" {
			return &ValidationError{Field: "column name", Reason: "cannot be empty"}
		}
		col.Name = name
	}
	if c.Patch.Color != nil {
		col.Color = *c.Patch.Color
	}
	if c.Patch.Position != nil {
		col.Position = *c.Patch.Position
	}
	col.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

// DeleteColumn removes a column and its tasks. The remaining columns keep
// their positions; order is carried by the slice.
type DeleteColumn struct {
	ColumnID string
	At       time.Time
}

func (c DeleteColumn) apply(b *Board) error {
	i := b.ColumnIndex(c.ColumnID)
	if i < 0 {
		return nil
	}
	b.Columns = append(b.Columns[:i], b.Columns[i+1:]...)
	b.UpdatedAt = c.At
	return nil
}

type MoveColumn struct {
	ColumnID    string
	TargetIndex int
	At          time.Time
}

func (c MoveColumn) apply(b *Board) error {
	i := b.ColumnIndex(c.ColumnID)
	if i < 0 {
		return nil
	}
	b.Columns = moveItem(b.Columns, i, c.TargetIndex)
	for pos, col := range b.Columns {
		col.Position = pos
	}
	b.Columns[b.ColumnIndex(c.ColumnID)].UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

// MoveTask relocates a task. A TargetIndex outside [0, len] on a different
// column appends the task, which is what dropping onto a column means.
// Both affected columns end up with dense positions.
type MoveTask struct {
	TaskID         string
	TargetColumnID string
	TargetIndex    int
	At             time.Time
}

func (c MoveTask) apply(b *Board) error {
	task, source := b.FindTask(c.TaskID)
	if task == nil {
		return nil
	}
	target := b.FindColumn(c.TargetColumnID)
	if target == nil {
		return nil
	}

	from := source.TaskIndex(task.ID)
	if source == target {
		source.Tasks = moveItem(source.Tasks, from, c.TargetIndex)
		renumberTasks(source)
	} else {
		source.Tasks = append(source.Tasks[:from], source.Tasks[from+1:]...)
		renumberTasks(source)

		task.ColumnID = target.ID
		task.BoardID = b.ID
		idx := c.TargetIndex
		if idx < 0 || idx > len(target.Tasks) {
			idx = len(target.Tasks)
		}
		target.Tasks = insertItem(target.Tasks, idx, task)
		renumberTasks(target)
	}

	task.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

// TaskInput describes a new task.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Labels      []Label
	AssigneeID  string
	DueDate     *time.Time
}

type AddTask struct {
	ID       string
	ColumnID string
	Input    TaskInput
	At       time.Time
}

func (c AddTask) apply(b *Board) error {
	title := strings.TrimSpace(c.Input.Title)
	if title == "" {
		return &ValidationError{Field: "task title", Reason: "cannot be empty"}
	}
	priority := c.Input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if err := priority.Validate(); err != nil {
		return &ValidationError{Field: "task priority", Reason: err.Error()}
	}
	col := b.FindColumn(c.ColumnID)
	if col == nil {
		return nil
	}

	status := Status(col.ID)
	if status.Validate() != nil {
		status = StatusNotStarted
	}
	var due *time.Time
	if c.Input.DueDate != nil {
		d := *c.Input.DueDate
		due = &d
	}

	col.Tasks = append(col.Tasks, &Task{
		ID:          c.ID,
		Title:       title,
		Description: c.Input.Description,
		Status:      status,
		Priority:    priority,
		Labels:      append([]Label{}, c.Input.Labels...),
		AssigneeID:  c.Input.AssigneeID,
		ColumnID:    col.ID,
		BoardID:     b.ID,
		Position:    len(col.Tasks),
		DueDate:     due,
		CreatedAt:   c.At,
		UpdatedAt:   c.At,
		Subtasks:    []*Subtask{},
		Attachments: []*Attachment{},
		Comments:    []*Comment{},
	})
	col.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

type UpdateTask struct {
	TaskID string
	Patch  TaskPatch
	At     time.Time
}

func (c UpdateTask) apply(b *Board) error {
	task, _ := b.FindTask(c.TaskID)
	if task == nil {
		return nil
	}
	p := c.Patch

	// Validate everything before touching the task.
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "task title", Reason: "cannot be empty"}
	}
	if p.Status != nil {
		if err := p.Status.Validate(); err != nil {
			return &ValidationError{Field: "task status", Reason: err.Error()}
		}
	}
	if p.Priority != nil {
		if err := p.Priority.Validate(); err != nil {
			return &ValidationError{Field: "task priority", Reason: err.Error()}
		}
	}

	if p.Title != nil {
		task.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		task.AssigneeID = *p.AssigneeID
	}
	if p.ClearDue {
		task.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		task.DueDate = &d
	}
	if p.Labels != nil {
		task.Labels = append([]Label{}, (*p.Labels)...)
	}
	task.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

type DeleteTask struct {
	TaskID string
	At     time.Time
}

func (c DeleteTask) apply(b *Board) error {
	task, col := b.FindTask(c.TaskID)
	if task == nil {
		return nil
	}
	i := col.TaskIndex(task.ID)
	col.Tasks = append(col.Tasks[:i], col.Tasks[i+1:]...)
	renumberTasks(col)
	col.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

type AddSubtask struct {
	ID     string
	TaskID string
	Title  string
	At     time.Time
}

func (c AddSubtask) apply(b *Board) error {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return &ValidationError{Field: "subtask title", Reason: "cannot be empty"}
	}
	task, _ := b.FindTask(c.TaskID)
	if task == nil {
		return nil
	}
	task.Subtasks = append(task.Subtasks, &Subtask{
		ID:        c.ID,
		Title:     title,
		TaskID:    task.ID,
		Position:  len(task.Subtasks),
		CreatedAt: c.At,
		UpdatedAt: c.At,
	})
	task.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

type ToggleSubtask struct {
	TaskID    string
	SubtaskID string
	At        time.Time
}

func (c ToggleSubtask) apply(b *Board) error {
	task, _ := b.FindTask(c.TaskID)
	if task == nil {
		return nil
	}
	for _, s := range task.Subtasks {
		if s.ID == c.SubtaskID {
			s.Completed = !s.Completed
			s.UpdatedAt = c.At
			task.UpdatedAt = c.At
			b.UpdatedAt = c.At
			return nil
		}
	}
	return nil
}

type AddComment struct {
	ID       string
	TaskID   string
	AuthorID string
	Content  string
	At       time.Time
}

func (c AddComment) apply(b *Board) error {
	content := strings.TrimSpace(c.Content)
	if content == "" {
		return &ValidationError{Field: "comment", Reason: "cannot be empty"}
	}
	task, _ := b.FindTask(c.TaskID)
	if task == nil {
		return nil
	}
	task.Comments = append(task.Comments, &Comment{
		ID:        c.ID,
		Content:   content,
		AuthorID:  c.AuthorID,
		TaskID:    task.ID,
		CreatedAt: c.At,
		UpdatedAt: c.At,
	})
	task.UpdatedAt = c.At
	b.UpdatedAt = c.At
	return nil
}

// moveItem removes items[from] and reinserts it at to, clamped to the valid
// range. All other items keep their relative order.
func moveItem[T any](items []T, from, to int) []T {
	item := items[from]
	items = append(items[:from], items[from+1:]...)
	if to < 0 {
		to = 0
	}
	if to > len(items) {
		to = len(items)
	}
	return insertItem(items, to, item)
}

func insertItem[T any](items []T, at int, item T) []T {
	items = append(items, item)
	copy(items[at+1:], items[at:])
	items[at] = item
	return items
}

func renumberTasks(c *Column) {
	for i, t := range c.Tasks {
		t.Position = i
	}
}
