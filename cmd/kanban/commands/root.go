package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/printer"
)

var (
	version string
	commit  string
	date    string
)

// Global flags
var (
	configPath  string
	boardFlag   string
	logLevel    string
	offlineMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kanban",
	Short: "Kanban - local-first Kanban board manager",
	Long: `Kanban manages Kanban boards from the terminal.

Boards, the search cache, queued offline changes and the theme preference
are kept in a key-value store: a local SQLite file by default, or a shared
Redis server. Every change is written back as a full board snapshot.`,
	Version: version,
	// Unknown flags on the root command must fail rather than be ignored
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Errors are printed in colour by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil && !printer.IsReported(err) {
		printer.Error("Error", err.Error(), nil)
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", config.DefaultPath, "Path to kanban.yml")
	rootCmd.PersistentFlags().StringVarP(&boardFlag, "board", "b", "", "Board ID (defaults to board.id from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&offlineMode, "offline", false, "Queue board changes for later sync")
}
