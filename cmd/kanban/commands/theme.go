package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/theme"
)

var themeSystemDark bool

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Get or set the colour-scheme preference",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored preference and the scheme it resolves to",
	Args:  cobra.NoArgs,
	RunE:  runThemeGet,
}

var themeSetCmd = &cobra.Command{
	Use:       "set MODE",
	Short:     "Store a preference: light, dark or system",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(theme.Light), string(theme.Dark), string(theme.System)},
	RunE:      runThemeSet,
}

func init() {
	themeGetCmd.Flags().BoolVar(&themeSystemDark, "system-dark", false, "Treat the system scheme as dark when resolving 'system'")
	themeCmd.AddCommand(themeGetCmd, themeSetCmd)
	rootCmd.AddCommand(themeCmd)
}

func runThemeGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	mode, err := theme.NewPreferences(s.store).Get(ctx)
	if err != nil {
		return err
	}
	printer.Info("%s (%s)\n", mode, theme.Resolve(mode, themeSystemDark))
	return nil
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	mode := theme.Mode(strings.ToLower(args[0]))
	if err := mode.Validate(); err != nil {
		return printer.Error("invalid theme", err.Error(), []string{"Valid themes: light, dark, system"})
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := theme.NewPreferences(s.store).Set(ctx, mode); err != nil {
		return err
	}
	printer.Success("Theme set to %s\n", mode)
	return nil
}
