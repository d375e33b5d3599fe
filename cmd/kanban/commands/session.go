package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dyluth/kanban/internal/board"
	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/logging"
	"github.com/dyluth/kanban/internal/offline"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/pkg/kvstore"
)

// session bundles everything a command needs: config, logger, an
// initialised store and, once loadBoard has run, the board manager.
type session struct {
	cfg     *config.KanbanConfig
	log     *logrus.Logger
	store   kvstore.Store
	manager *board.Manager
	queue   *offline.Queue
}

// openSession loads configuration, applies global flags, and opens the store.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s, or regenerate it:\n  kanban init --force", configPath)},
		)
	}
	if boardFlag != "" {
		cfg.Board.ID = boardFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// A relative store path is relative to kanban.yml, not the working directory.
	if cfg.Store.Backend == kvstore.BackendSQLite && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(filepath.Dir(configPath), cfg.Store.Path)
	}

	log, err := logging.New(cfg.Log, printer.Err)
	if err != nil {
		return nil, printer.Error("invalid logging configuration", err.Error(), []string{"Valid levels: debug, info, warn, error"})
	}

	store, err := kvstore.Open(cfg.StoreOptions())
	if err != nil {
		return nil, printer.ErrorWithContext(
			"cannot open store",
			err.Error(),
			map[string]string{"Backend": cfg.Store.Backend},
			[]string{"Check the store section of " + configPath},
		)
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		details := map[string]string{"Backend": cfg.Store.Backend}
		if cfg.Store.Backend == kvstore.BackendRedis {
			details["URL"] = cfg.Store.RedisURL
		} else if cfg.Store.Backend == kvstore.BackendSQLite {
			details["Path"] = cfg.Store.Path
		}
		return nil, printer.ErrorWithContext(
			"store unavailable",
			err.Error(),
			details,
			[]string{
				"Check that the store is reachable",
				"Switch backend for this run:\n  KANBAN_STORE_BACKEND=memory kanban ...",
			},
		)
	}

	log.WithField("backend", cfg.Store.Backend).Debug("Store ready")
	return &session{cfg: cfg, log: log, store: store}, nil
}

// loadBoard hydrates the configured board, seeding the demo board on first use.
func (s *session) loadBoard(ctx context.Context) (*board.Board, error) {
	s.manager = board.NewManager(s.store, s.cfg.Board.ID, board.WithLogger(s.log))
	b, err := s.manager.Load(ctx)
	if err != nil {
		return nil, printer.Error(
			fmt.Sprintf("cannot load board '%s'", s.cfg.Board.ID),
			err.Error(),
			[]string{"The stored snapshot was left untouched; inspect or remove it before retrying"},
		)
	}
	return b, nil
}

// offlineQueue returns the loaded offline queue.
func (s *session) offlineQueue(ctx context.Context) (*offline.Queue, error) {
	if s.queue != nil {
		return s.queue, nil
	}
	q := offline.NewQueue(s.store, offline.SimulatedSyncer{Delay: s.cfg.Offline.SyncDelay}, offline.WithLogger(s.log))
	if err := q.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load offline queue: %w", err)
	}
	s.queue = q
	return q, nil
}

// record queues a change when running with --offline.
func (s *session) record(ctx context.Context, t offline.ActionType, entity, id string, data any) error {
	if !offlineMode {
		return nil
	}
	q, err := s.offlineQueue(ctx)
	if err != nil {
		return err
	}
	if _, err := q.Add(ctx, offline.ActionInput{Type: t, Entity: entity, EntityID: id, Data: data}); err != nil {
		return fmt.Errorf("failed to queue offline action: %w", err)
	}
	printer.Info("Queued %s %s %s for sync\n", t, entity, id)
	return nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.WithError(err).Warn("Failed to close store")
	}
}

// mutationError presents a board mutation failure.
func mutationError(action string, err error) error {
	if board.IsValidation(err) {
		return printer.Error(fmt.Sprintf("cannot %s", action), err.Error(), nil)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
