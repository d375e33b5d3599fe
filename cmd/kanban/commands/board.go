package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/render"
)

var (
	boardOutputFormat string
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Inspect the current board",
}

var boardShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every column and task",
	Long: `Show the board as a table, or dump it for scripting.

Output Formats:
  default - Table of columns and tasks in board order
  json    - The full board graph as pretty-printed JSON
  jsonl   - One task per line, in column order

Examples:
  # Print the board
  kanban board show

  # Titles of urgent tasks
  kanban board show -o jsonl | jq -r 'select(.priority=="urgent") | .title'`,
	Args: cobra.NoArgs,
	RunE: runBoardShow,
}

func init() {
	boardShowCmd.Flags().StringVarP(&boardOutputFormat, "output", "o", render.FormatDefault, "Output format: default, json or jsonl")
	boardCmd.AddCommand(boardShowCmd)
	rootCmd.AddCommand(boardCmd)
}

func runBoardShow(cmd *cobra.Command, args []string) error {
	if !render.ValidFormat(boardOutputFormat) {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", boardOutputFormat),
			[]string{"Valid formats: default, json, jsonl"},
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

	switch boardOutputFormat {
	case render.FormatJSON:
		return render.JSON(printer.Out, b)
	case render.FormatJSONL:
		return render.JSONL(printer.Out, b)
	default:
		_, err := render.Board(printer.Out, b, time.Now())
		return err
	}
}
