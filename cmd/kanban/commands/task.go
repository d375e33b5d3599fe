package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/board"
	"github.com/dyluth/kanban/internal/offline"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/render"
	"github.com/dyluth/kanban/internal/resolver"
	"github.com/dyluth/kanban/internal/timespec"
)

var (
	taskDescription  string
	taskPriority     string
	taskAddPriority  string
	taskDue          string
	taskAssignee     string
	taskLabels       []string
	taskTitle        string
	taskStatus       string
	taskIndex        int
	taskOutputFormat string
	commentAuthor    string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Create, edit, move and delete tasks",
	Long: `Manage the tasks on the current board.

TASK arguments accept a full task ID or a unique prefix of at least 4
characters. COLUMN arguments also accept a column name.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add COLUMN TITLE",
	Short: "Append a task to a column",
	Long: `Append a new task to the end of a column.

The task's status follows the column when the column ID is a workflow status
(not-started, in-progress, in-review, done); otherwise it starts not-started.

Examples:
  kanban task add "To Do" "Write release notes" --priority high --due 3d
  kanban task add in-progress "Fix login" --label bug --label auth`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskAdd,
}

var taskShowCmd = &cobra.Command{
	Use:   "show TASK",
	Short: "Show one task with its subtasks and comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move TASK COLUMN",
	Short: "Move a task within or across columns",
	Long: `Move a task to COLUMN at --index (0 = top). The default appends to the
end of the column. Moving within the same column reorders it.`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskMove,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update TASK",
	Short: "Edit task fields",
	Long: `Edit one or more task fields. Only the flags you pass are changed.

Use --due none to clear the due date.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskUpdate,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete TASK",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var taskSubtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage a task's checklist",
}

var taskSubtaskAddCmd = &cobra.Command{
	Use:   "add TASK TITLE",
	Short: "Append a subtask",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubtaskAdd,
}

var taskSubtaskToggleCmd = &cobra.Command{
	Use:   "toggle TASK SUBTASK",
	Short: "Flip a subtask between done and not done",
	Args:  cobra.ExactArgs(2),
	RunE:  runSubtaskToggle,
}

var taskCommentCmd = &cobra.Command{
	Use:   "comment TASK TEXT",
	Short: "Append a comment to a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskComment,
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "Task description")
	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", string(board.PriorityMedium), "Priority: low, medium, high or urgent")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date: today, tomorrow, 3d, 2025-04-01 or RFC3339")
	taskAddCmd.Flags().StringVarP(&taskAssignee, "assignee", "a", "", "Assignee ID")
	taskAddCmd.Flags().StringSliceVarP(&taskLabels, "label", "l", nil, "Label name (repeatable)")

	taskShowCmd.Flags().StringVarP(&taskOutputFormat, "output", "o", render.FormatDefault, "Output format: default or json")

	taskMoveCmd.Flags().IntVar(&taskIndex, "index", -1, "Target index in the column (-1 appends)")

	taskUpdateCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "New description")
	taskUpdateCmd.Flags().StringVarP(&taskStatus, "status", "s", "", "Status: not-started, in-progress, in-review or done")
	taskUpdateCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Priority: low, medium, high or urgent")
	taskUpdateCmd.Flags().StringVar(&taskDue, "due", "", "Due date, or 'none' to clear it")
	taskUpdateCmd.Flags().StringVarP(&taskAssignee, "assignee", "a", "", "Assignee ID (empty unassigns)")
	taskUpdateCmd.Flags().StringSliceVarP(&taskLabels, "label", "l", nil, "Replace labels (repeatable)")

	taskCommentCmd.Flags().StringVar(&commentAuthor, "author", "", "Comment author ID (default: $USER)")

	taskSubtaskCmd.AddCommand(taskSubtaskAddCmd, taskSubtaskToggleCmd)
	taskCmd.AddCommand(taskAddCmd, taskShowCmd, taskMoveCmd, taskUpdateCmd, taskDeleteCmd, taskSubtaskCmd, taskCommentCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	priority := board.Priority(strings.ToLower(taskAddPriority))
	if err := priority.Validate(); err != nil {
		return printer.Error("invalid priority", err.Error(), []string{"Valid priorities: low, medium, high, urgent"})
	}
	due, err := parseDueFlag(taskDue)
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	colID, err := resolveColumn(b, args[0])
	if err != nil {
		return err
	}

	task, err := s.manager.AddTask(ctx, colID, board.TaskInput{
		Title:       args[1],
		Description: taskDescription,
		Priority:    priority,
		Labels:      labelsFromNames(b, taskLabels),
		AssigneeID:  taskAssignee,
		DueDate:     due,
	})
	if err != nil {
		return mutationError("add task", err)
	}
	if err := s.record(ctx, offline.ActionCreate, "task", task.ID, task); err != nil {
		return err
	}

	printer.Success("Added task %s to '%s'\n", task.ID, b.FindColumn(colID).Name)
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	if taskOutputFormat != render.FormatDefault && taskOutputFormat != render.FormatJSON {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", taskOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}

	task, col := b.FindTask(id)
	if taskOutputFormat == render.FormatJSON {
		return render.JSON(printer.Out, task)
	}
	render.Task(printer.Out, task, col, time.Now())
	return nil
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	colID, err := resolveColumn(b, args[1])
	if err != nil {
		return err
	}

	if err := s.manager.MoveTask(ctx, id, colID, taskIndex); err != nil {
		return mutationError("move task", err)
	}
	task, _ := s.manager.FindTask(id)
	if err := s.record(ctx, offline.ActionUpdate, "task", id, map[string]any{"columnId": task.ColumnID, "position": task.Position}); err != nil {
		return err
	}

	col, _ := s.manager.FindColumn(colID)
	printer.Success("Moved task %s to '%s' at position %d\n", id, col.Name, task.Position)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var patch board.TaskPatch
	if flags.Changed("title") {
		patch.Title = &taskTitle
	}
	if flags.Changed("description") {
		patch.Description = &taskDescription
	}
	if flags.Changed("status") {
		st := board.Status(strings.ToLower(taskStatus))
		if err := st.Validate(); err != nil {
			return printer.Error("invalid status", err.Error(), []string{"Valid statuses: not-started, in-progress, in-review, done"})
		}
		patch.Status = &st
	}
	if flags.Changed("priority") {
		p := board.Priority(strings.ToLower(taskPriority))
		if err := p.Validate(); err != nil {
			return printer.Error("invalid priority", err.Error(), []string{"Valid priorities: low, medium, high, urgent"})
		}
		patch.Priority = &p
	}
	if flags.Changed("due") {
		if strings.EqualFold(taskDue, "none") {
			patch.ClearDue = true
		} else {
			due, err := parseDueFlag(taskDue)
			if err != nil {
				return err
			}
			patch.DueDate = due
		}
	}
	if flags.Changed("assignee") {
		patch.AssigneeID = &taskAssignee
	}
	changedLabels := flags.Changed("label")
	if patch == (board.TaskPatch{}) && !changedLabels {
		return printer.Error(
			"nothing to update",
			"No changes were given.",
			[]string{"Pass at least one of --title, --description, --status, --priority, --due, --assignee or --label"},
		)
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	if changedLabels {
		labels := labelsFromNames(b, taskLabels)
		patch.Labels = &labels
	}

	if err := s.manager.UpdateTask(ctx, id, patch); err != nil {
		return mutationError("update task", err)
	}
	task, _ := s.manager.FindTask(id)
	if err := s.record(ctx, offline.ActionUpdate, "task", id, task); err != nil {
		return err
	}

	printer.Success("Updated task %s\n", id)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	task, _ := b.FindTask(id)

	if err := s.manager.DeleteTask(ctx, id); err != nil {
		return mutationError("delete task", err)
	}
	if err := s.record(ctx, offline.ActionDelete, "task", id, nil); err != nil {
		return err
	}

	printer.Success("Deleted task '%s'\n", task.Title)
	return nil
}

func runSubtaskAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}

	st, err := s.manager.AddSubtask(ctx, id, args[1])
	if err != nil {
		return mutationError("add subtask", err)
	}
	if err := s.record(ctx, offline.ActionCreate, "subtask", st.ID, st); err != nil {
		return err
	}

	printer.Success("Added subtask %s to task %s\n", st.ID, id)
	return nil
}

func runSubtaskToggle(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}
	task, _ := b.FindTask(id)
	subID, err := resolver.ResolveSubtask(task, args[1])
	if err := refError("subtask", args[1], err); err != nil {
		return err
	}

	if err := s.manager.ToggleSubtask(ctx, id, subID); err != nil {
		return mutationError("toggle subtask", err)
	}
	updated, _ := s.manager.FindTask(id)
	var done bool
	for _, st := range updated.Subtasks {
		if st.ID == subID {
			done = st.Completed
		}
	}
	if err := s.record(ctx, offline.ActionUpdate, "subtask", subID, map[string]bool{"completed": done}); err != nil {
		return err
	}

	state := "not done"
	if done {
		state = "done"
	}
	printer.Success("Marked subtask %s %s\n", subID, state)
	return nil
}

func runTaskComment(cmd *cobra.Command, args []string) error {
	author := commentAuthor
	if author == "" {
		author = os.Getenv("USER")
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	b, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	id, err := resolveTask(b, args[0])
	if err != nil {
		return err
	}

	if err := s.manager.AddComment(ctx, id, author, args[1]); err != nil {
		return mutationError("add comment", err)
	}
	if err := s.record(ctx, offline.ActionCreate, "comment", id, map[string]string{"authorId": author, "content": args[1]}); err != nil {
		return err
	}

	printer.Success("Commented on task %s\n", id)
	return nil
}

func parseDueFlag(spec string) (*time.Time, error) {
	if spec == "" {
		return nil, nil
	}
	due, err := timespec.ParseDue(spec, time.Now())
	if err != nil {
		return nil, printer.Error(
			"invalid due date",
			err.Error(),
			[]string{"Examples: today, tomorrow, 3d, 36h, 2025-04-01, 2025-04-01T17:00:00Z"},
		)
	}
	return &due, nil
}

// labelsFromNames reuses labels already on the board and mints the rest.
func labelsFromNames(b *board.Board, names []string) []board.Label {
	known := make(map[string]board.Label)
	for _, col := range b.Columns {
		for _, t := range col.Tasks {
			for _, l := range t.Labels {
				known[strings.ToLower(l.Name)] = l
			}
		}
	}

	labels := make([]board.Label, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if l, ok := known[strings.ToLower(name)]; ok {
			labels = append(labels, l)
			continue
		}
		l := board.Label{
			ID:        "label-" + strings.ToLower(strings.ReplaceAll(name, " ", "-")),
			Name:      name,
			Color:     board.ColumnColors[len(known)%len(board.ColumnColors)],
			ProjectID: b.ProjectID,
		}
		known[strings.ToLower(name)] = l
		labels = append(labels, l)
	}
	return labels
}
