package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/board"
	"github.com/dyluth/kanban/internal/offline"
	"github.com/dyluth/kanban/internal/printer"
)

var (
	columnColor    string
	columnName     string
	columnNewColor string
	columnPosition int
)

var columnCmd = &cobra.Command{
	Use:   "column",
	Short: "Add, edit, reorder and delete columns",
	Long: `Manage the columns of the current board.

COLUMN arguments accept a column ID, a column name (case-insensitive), or a
unique ID prefix of at least 4 characters.`,
}

var columnAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Append a column to the board",
	Args:  cobra.ExactArgs(1),
	RunE:  runColumnAdd,
}

var columnUpdateCmd = &cobra.Command{
	Use:   "update COLUMN",
	Short: "Rename or recolour a column",
	Args:  cobra.ExactArgs(1),
	RunE:  runColumnUpdate,
}

var columnDeleteCmd = &cobra.Command{
	Use:   "delete COLUMN",
	Short: "Delete a column and every task in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runColumnDelete,
}

var columnMoveCmd = &cobra.Command{
	Use:   "move COLUMN INDEX",
	Short: "Move a column to a new index (0 = leftmost)",
	Args:  cobra.ExactArgs(2),
	RunE:  runColumnMove,
}

func init() {
	columnAddCmd.Flags().StringVar(&columnColor, "color", board.ColumnColors[0], "Column colour (hex)")

	columnUpdateCmd.Flags().StringVar(&columnName, "name", "", "New column name")
	columnUpdateCmd.Flags().StringVar(&columnNewColor, "color", "", "New column colour (hex)")
	columnUpdateCmd.Flags().IntVar(&columnPosition, "position", 0, "Set the stored position field (does not reorder; use 'column move')")

	columnCmd.AddCommand(columnAddCmd, columnUpdateCmd, columnDeleteCmd, columnMoveCmd)
	rootCmd.AddCommand(columnCmd)
}

func runColumnAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if _, err := s.loadBoard(ctx); err != nil {
		return err
	}

	col, err := s.manager.AddColumn(ctx, args[0], columnColor)
	if err != nil {
		return mutationError("add column", err)
	}
	if err := s.record(ctx, offline.ActionCreate, "column", col.ID, col); err != nil {
		return err
	}

	printer.Success("Added column '%s' (%s) at position %d\n", col.Name, col.ID, col.Position)
	return nil
}

func runColumnUpdate(cmd *cobra.Command, args []string) error {
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
	id, err := resolveColumn(b, args[0])
	if err != nil {
		return err
	}

	var patch board.ColumnPatch
	if cmd.Flags().Changed("name") {
		patch.Name = &columnName
	}
	if cmd.Flags().Changed("color") {
		patch.Color = &columnNewColor
	}
	if cmd.Flags().Changed("position") {
		patch.Position = &columnPosition
	}
	if patch == (board.ColumnPatch{}) {
		return printer.Error("nothing to update", "No changes were given.", []string{"Pass at least one of --name, --color or --position"})
	}

	if err := s.manager.UpdateColumn(ctx, id, patch); err != nil {
		return mutationError("update column", err)
	}
	col, _ := s.manager.FindColumn(id)
	if err := s.record(ctx, offline.ActionUpdate, "column", id, col); err != nil {
		return err
	}

	printer.Success("Updated column '%s'\n", col.Name)
	return nil
}

func runColumnDelete(cmd *cobra.Command, args []string) error {
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
	id, err := resolveColumn(b, args[0])
	if err != nil {
		return err
	}
	col := b.FindColumn(id)

	if err := s.manager.DeleteColumn(ctx, id); err != nil {
		return mutationError("delete column", err)
	}
	if err := s.record(ctx, offline.ActionDelete, "column", id, nil); err != nil {
		return err
	}

	printer.Success("Deleted column '%s' and %d %s\n", col.Name, len(col.Tasks), pluralize(len(col.Tasks), "task"))
	return nil
}

func runColumnMove(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return printer.Error("invalid index", "INDEX must be a whole number: "+args[1], nil)
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
	id, err := resolveColumn(b, args[0])
	if err != nil {
		return err
	}

	if err := s.manager.MoveColumn(ctx, id, index); err != nil {
		return mutationError("move column", err)
	}
	col, _ := s.manager.FindColumn(id)
	if err := s.record(ctx, offline.ActionUpdate, "column", id, map[string]int{"position": col.Position}); err != nil {
		return err
	}

	printer.Success("Moved column '%s' to position %d\n", col.Name, col.Position)
	return nil
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
