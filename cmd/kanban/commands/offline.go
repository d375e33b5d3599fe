package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/offline"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/render"
)

var (
	offlineData         string
	offlineOutputFormat string
)

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Inspect and replay changes queued while offline",
	Long: `Board commands run with --offline record each change in a persistent
queue instead of assuming a connection. These commands inspect that queue
and replay it once you are back online.`,
}

var offlineAddCmd = &cobra.Command{
	Use:   "add TYPE ENTITY ENTITY_ID",
	Short: "Queue an action by hand (TYPE: create, update or delete)",
	Args:  cobra.ExactArgs(3),
	RunE:  runOfflineAdd,
}

var offlineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued actions",
	Args:  cobra.NoArgs,
	RunE:  runOfflineList,
}

var offlineSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay every unsynced action",
	Args:  cobra.NoArgs,
	RunE:  runOfflineSync,
}

var offlineClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop actions that have already synced",
	Args:  cobra.NoArgs,
	RunE:  runOfflineClear,
}

var offlineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connectivity indicator",
	Args:  cobra.NoArgs,
	RunE:  runOfflineStatus,
}

func init() {
	offlineAddCmd.Flags().StringVar(&offlineData, "data", "", "Action payload as JSON")
	offlineListCmd.Flags().StringVarP(&offlineOutputFormat, "output", "o", render.FormatDefault, "Output format: default or json")

	offlineCmd.AddCommand(offlineAddCmd, offlineListCmd, offlineSyncCmd, offlineClearCmd, offlineStatusCmd)
	rootCmd.AddCommand(offlineCmd)
}

func runOfflineAdd(cmd *cobra.Command, args []string) error {
	t := offline.ActionType(args[0])
	if err := t.Validate(); err != nil {
		return printer.Error("invalid action type", err.Error(), []string{"Valid types: create, update, delete"})
	}
	var data any
	if offlineData != "" {
		if !sonic.Valid([]byte(offlineData)) {
			return printer.Error("invalid --data", "The payload is not valid JSON.", []string{`Example: --data '{"title":"New title"}'`})
		}
		data = sonic.NoCopyRawMessage(offlineData)
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	q, err := s.offlineQueue(ctx)
	if err != nil {
		return err
	}

	a, err := q.Add(ctx, offline.ActionInput{Type: t, Entity: args[1], EntityID: args[2], Data: data})
	if err != nil {
		return printer.Error("cannot queue action", err.Error(), nil)
	}

	printer.Success("Queued %s %s %s as %s\n", a.Type, a.Entity, a.EntityID, a.ID)
	return nil
}

func runOfflineList(cmd *cobra.Command, args []string) error {
	if offlineOutputFormat != render.FormatDefault && offlineOutputFormat != render.FormatJSON {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", offlineOutputFormat),
			[]string{"Valid formats: default, json"},
		)
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	q, err := s.offlineQueue(ctx)
	if err != nil {
		return err
	}

	actions := q.Actions()
	if offlineOutputFormat == render.FormatJSON {
		if actions == nil {
			actions = []offline.Action{}
		}
		return render.JSON(printer.Out, actions)
	}
	return render.Actions(printer.Out, actions, time.Now())
}

func runOfflineSync(cmd *cobra.Command, args []string) error {
	if offlineMode {
		return printer.Error(
			"cannot sync while offline",
			"The --offline flag is set for this run.",
			[]string{"Run again without --offline:\n  kanban offline sync"},
		)
	}

	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	q, err := s.offlineQueue(ctx)
	if err != nil {
		return err
	}

	if !q.HasUnsynced() {
		printer.Info("Nothing to sync\n")
		return nil
	}

	printer.Step("Syncing queued actions...\n")
	n, err := q.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync interrupted after %d actions: %w", n, err)
	}
	if q.HasUnsynced() {
		left := 0
		for _, a := range q.Actions() {
			if !a.Synced {
				left++
			}
		}
		printer.Warning("Synced %d, %d still pending (see log for failures)\n", n, left)
		return nil
	}

	printer.Success("Synced %d %s\n", n, pluralize(n, "action"))
	return nil
}

func runOfflineClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	q, err := s.offlineQueue(ctx)
	if err != nil {
		return err
	}

	before := len(q.Actions())
	if err := q.ClearSynced(ctx); err != nil {
		return err
	}
	n := before - len(q.Actions())

	printer.Success("Removed %d synced %s\n", n, pluralize(n, "action"))
	return nil
}

func runOfflineStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	q, err := s.offlineQueue(ctx)
	if err != nil {
		return err
	}
	if offlineMode {
		if err := q.SetOnline(ctx, false); err != nil {
			return err
		}
	}

	pending := 0
	for _, a := range q.Actions() {
		if !a.Synced {
			pending++
		}
	}

	switch q.Status() {
	case offline.StatusOffline:
		printer.Warning("Offline (%d pending)\n", pending)
	case offline.StatusPendingSync:
		printer.Info("Online, %d %s pending sync\n", pending, pluralize(pending, "action"))
	default:
		printer.Success("Online, all changes synced\n")
	}
	return nil
}
