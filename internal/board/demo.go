package board

import "time"

// Column colours offered when creating or recolouring a column.
var ColumnColors = []string{
	"#6b7280", // gray
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // yellow
	"#ef4444", // red
	"#8b5cf6", // purple
	"#06b6d4", // cyan
	"#f97316", // orange
}

// DemoBoard builds the canonical seed board used when no snapshot exists.
func DemoBoard(boardID string, now time.Time) *Board {
	col := func(id Status, name, color string, pos int, tasks ...*Task) *Column {
		for i, t := range tasks {
			t.ColumnID = string(id)
			t.BoardID = boardID
			t.Status = id
			t.Position = i
		}
		return &Column{
			ID:        string(id),
			Name:      name,
			Color:     color,
			Position:  pos,
			BoardID:   boardID,
			Tasks:     append([]*Task{}, tasks...),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	task := func(id, title, description string, p Priority) *Task {
		return &Task{
			ID:          id,
			Title:       title,
			Description: description,
			Priority:    p,
			Labels:      []Label{},
			CreatedAt:   now,
			UpdatedAt:   now,
			Subtasks:    []*Subtask{},
			Attachments: []*Attachment{},
			Comments:    []*Comment{},
		}
	}

	return &Board{
		ID:          boardID,
		Name:        "Demo Board",
		Description: "A sample Kanban board with demo tasks",
		ProjectID:   "demo-project",
		Columns: []*Column{
			col(StatusNotStarted, "To Do", "#6b7280", 0,
				task("task-1", "Design new dashboard", "Create wireframes and mockups for the new dashboard", PriorityHigh),
				task("task-2", "Setup development environment", "Configure tools and dependencies", PriorityMedium),
			),
			col(StatusInProgress, "In Progress", "#3b82f6", 1,
				task("task-3", "Implement user authentication", "Add login and registration functionality", PriorityHigh),
			),
			col(StatusInReview, "Review", "#8b5cf6", 2),
			col(StatusDone, "Done", "#10b981", 3,
				task("task-4", "Project setup", "Initialize Next.js project with TypeScript", PriorityMedium),
			),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
