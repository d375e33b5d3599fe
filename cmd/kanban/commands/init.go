package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/scaffold"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a kanban project in the current directory",
	Long: `Initialize a kanban project with the default configuration.

Creates:
  • kanban.yml - Project configuration file
  • .kanban/   - Local SQLite store directory

Use --force to overwrite an existing kanban.yml. The store is never removed.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing kanban.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := filepath.Dir(configPath)

	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return printer.Error("already initialized", err.Error(), nil)
		}
	}

	if err := scaffold.Initialize(dir, forceInit); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	scaffold.PrintSuccess()
	return nil
}
