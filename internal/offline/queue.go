// Package offline queues board changes made while disconnected and replays
// them through a Syncer once connectivity returns.
package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dyluth/kanban/pkg/kvstore"
)

// ActionType is the kind of change an Action replays.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// Validate checks if the ActionType is a valid enum value.
func (t ActionType) Validate() error {
	switch t {
	case ActionCreate, ActionUpdate, ActionDelete:
		return nil
	default:
		return fmt.Errorf("unknown action type: %q", t)
	}
}

// Action is one queued change.
type Action struct {
	ID        string                 `json:"id"`
	Type      ActionType             `json:"type"`
	Entity    string                 `json:"entity"`
	EntityID  string                 `json:"entityId"`
	Data      sonic.NoCopyRawMessage `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Synced    bool                   `json:"synced"`
}

// ActionInput is what callers supply; identity, timestamp and sync state are
// assigned by the queue.
type ActionInput struct {
	Type     ActionType
	Entity   string
	EntityID string
	Data     any
}

// Status summarises the queue for the offline indicator.
type Status string

const (
	StatusOffline     Status = "offline"
	StatusPendingSync Status = "pending-sync"
	StatusSynced      Status = "synced"
)

// Syncer delivers one action to the remote side.
type Syncer interface {
	Sync(ctx context.Context, a Action) error
}

// SimulatedSyncer accepts every action after a fixed delay.
type SimulatedSyncer struct {
	Delay time.Duration
}

func (s SimulatedSyncer) Sync(ctx context.Context, _ Action) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Option configures a Queue.
type Option func(*Queue)

func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(q *Queue) { q.newID = newID }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(q *Queue) { q.log = log }
}

// Queue is the persisted, ordered list of offline actions.
type Queue struct {
	store  kvstore.Store
	syncer Syncer
	now    func() time.Time
	newID  func() string
	log    logrus.FieldLogger

	mu      sync.Mutex
	syncMu  sync.Mutex // serialises Sync runs
	online  bool
	actions []Action
}

// NewQueue creates a queue that starts online.
func NewQueue(store kvstore.Store, syncer Syncer, opts ...Option) *Queue {
	q := &Queue{
		store:  store,
		syncer: syncer,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		log:    logrus.StandardLogger(),
		online: true,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Load reads the persisted actions.
func (q *Queue) Load(ctx context.Context) error {
	actions, err := kvstore.GetJSON(ctx, q.store, kvstore.OfflineActionsKey, []Action{})
	if err != nil {
		return fmt.Errorf("failed to load offline actions: %w", err)
	}
	q.mu.Lock()
	q.actions = actions
	q.mu.Unlock()
	return nil
}

// Add appends an action and persists the queue.
func (q *Queue) Add(ctx context.Context, in ActionInput) (Action, error) {
	if err := in.Type.Validate(); err != nil {
		return Action{}, err
	}
	if in.Entity == "" {
		return Action{}, fmt.Errorf("action entity cannot be empty")
	}

	var data sonic.NoCopyRawMessage
	if in.Data != nil {
		raw, err := sonic.Marshal(in.Data)
		if err != nil {
			return Action{}, fmt.Errorf("failed to encode action data: %w", err)
		}
		data = raw
	}

	a := Action{
		ID:        q.newID(),
		Type:      in.Type,
		Entity:    in.Entity,
		EntityID:  in.EntityID,
		Data:      data,
		Timestamp: q.now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	prev := q.actions
	q.actions = append(q.actions[:len(q.actions):len(q.actions)], a)
	if err := q.persistLocked(ctx); err != nil {
		q.actions = prev
		return Action{}, err
	}
	return a, nil
}

// Actions returns a copy of the queue in insertion order.
func (q *Queue) Actions() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Action(nil), q.actions...)
}

// Sync pushes every unsynced action through the Syncer in order. It does
// nothing while offline. A failed action is logged and left for the next run.
// Returns the number of actions synced.
func (q *Queue) Sync(ctx context.Context) (int, error) {
	q.syncMu.Lock()
	defer q.syncMu.Unlock()

	q.mu.Lock()
	if !q.online {
		q.mu.Unlock()
		return 0, nil
	}
	var pending []Action
	for _, a := range q.actions {
		if !a.Synced {
			pending = append(pending, a)
		}
	}
	q.mu.Unlock()

	synced := 0
	for _, a := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := q.syncer.Sync(ctx, a); err != nil {
			q.log.WithError(err).WithField("action", a.ID).Error("Failed to sync offline action")
			continue
		}

		q.mu.Lock()
		i := q.indexLocked(a.ID)
		if i >= 0 {
			q.actions[i].Synced = true
		}
		err := q.persistLocked(ctx)
		if err != nil && i >= 0 {
			q.actions[i].Synced = false
		}
		q.mu.Unlock()
		if err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

// ClearSynced drops every synced action.
func (q *Queue) ClearSynced(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := make([]Action, 0, len(q.actions))
	for _, a := range q.actions {
		if !a.Synced {
			kept = append(kept, a)
		}
	}
	prev := q.actions
	q.actions = kept
	if err := q.persistLocked(ctx); err != nil {
		q.actions = prev
		return err
	}
	return nil
}

// SetOnline records connectivity. Coming online with unsynced actions
// triggers a Sync.
func (q *Queue) SetOnline(ctx context.Context, online bool) error {
	q.mu.Lock()
	was := q.online
	q.online = online
	q.mu.Unlock()

	q.log.WithField("online", online).Debug("Connectivity changed")
	if online && !was && q.HasUnsynced() {
		if _, err := q.Sync(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Watch consumes connectivity signals until ctx is done or signals closes.
func (q *Queue) Watch(ctx context.Context, signals <-chan bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case online, ok := <-signals:
			if !ok {
				return nil
			}
			if err := q.SetOnline(ctx, online); err != nil {
				q.log.WithError(err).Error("Sync after reconnect failed")
			}
		}
	}
}

func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

func (q *Queue) HasUnsynced() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, a := range q.actions {
		if !a.Synced {
			return true
		}
	}
	return false
}

// Status reports what the offline indicator should show.
func (q *Queue) Status() Status {
	switch {
	case !q.Online():
		return StatusOffline
	case q.HasUnsynced():
		return StatusPendingSync
	default:
		return StatusSynced
	}
}

func (q *Queue) indexLocked(id string) int {
	for i := range q.actions {
		if q.actions[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the queue. Callers roll back their in-memory change
// when it fails, so memory never runs ahead of the store.
func (q *Queue) persistLocked(ctx context.Context) error {
	if err := kvstore.SetJSON(ctx, q.store, kvstore.OfflineActionsKey, q.actions); err != nil {
		return fmt.Errorf("failed to persist offline actions: %w", err)
	}
	return nil
}
