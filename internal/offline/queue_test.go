package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/kvstore"
)

type recordingSyncer struct {
	mu     sync.Mutex
	seen   []string
	failOn map[string]bool
}

func (s *recordingSyncer) Sync(_ context.Context, a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, a.EntityID)
	if s.failOn[a.EntityID] {
		return errors.New("remote rejected")
	}
	return nil
}

func (s *recordingSyncer) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

type failingStore struct {
	kvstore.Store
	failSet bool
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errors.New("quota exceeded")
	}
	return s.Store.Set(ctx, key, value)
}

func newTestQueue(t *testing.T, store kvstore.Store, syncer Syncer) *Queue {
	t.Helper()
	n := 0
	logger, _ := logtest.NewNullLogger()
	q := NewQueue(store, syncer,
		WithClock(func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("act-%d", n)
		}),
		WithLogger(logger),
	)
	require.NoError(t, q.Load(context.Background()))
	return q
}

func TestQueue_AddPersists(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	q := newTestQueue(t, store, &recordingSyncer{})

	a, err := q.Add(ctx, ActionInput{Type: ActionUpdate, Entity: "task", EntityID: "task-1", Data: map[string]string{"title": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "act-1", a.ID)
	assert.False(t, a.Synced)

	reloaded := newTestQueue(t, store, &recordingSyncer{})
	got := reloaded.Actions()
	require.Len(t, got, 1)
	assert.Equal(t, "task-1", got[0].EntityID)

	var data map[string]string
	require.NoError(t, sonic.Unmarshal(got[0].Data, &data))
	assert.Equal(t, "x", data["title"])
}

func TestQueue_AddValidation(t *testing.T) {
	q := newTestQueue(t, kvstore.NewMemoryStore(), &recordingSyncer{})

	_, err := q.Add(context.Background(), ActionInput{Type: "upsert", Entity: "task"})
	assert.Error(t, err)
	_, err = q.Add(context.Background(), ActionInput{Type: ActionCreate})
	assert.Error(t, err)
	assert.Empty(t, q.Actions())
}

func TestQueue_FailedWriteLeavesQueueUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: kvstore.NewMemoryStore()}
	q := newTestQueue(t, store, &recordingSyncer{})

	_, err := q.Add(ctx, ActionInput{Type: ActionCreate, Entity: "task", EntityID: "t1"})
	require.NoError(t, err)

	store.failSet = true
	_, err = q.Add(ctx, ActionInput{Type: ActionCreate, Entity: "task", EntityID: "t2"})
	require.Error(t, err)
	assert.Len(t, q.Actions(), 1, "failed add is not kept in memory")

	n, err := q.Sync(ctx)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, q.HasUnsynced(), "action whose synced flag could not be saved stays unsynced")

	store.failSet = false
	n, err = q.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	store.failSet = true
	require.Error(t, q.ClearSynced(ctx))
	assert.Len(t, q.Actions(), 1, "failed clear keeps the synced action")

	reloaded := newTestQueue(t, store.Store, &recordingSyncer{})
	got := reloaded.Actions()
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].EntityID)
	assert.True(t, got[0].Synced)
}

func TestQueue_OfflineThenReconnect(t *testing.T) {
	ctx := context.Background()
	syncer := &recordingSyncer{}
	q := newTestQueue(t, kvstore.NewMemoryStore(), syncer)

	require.NoError(t, q.SetOnline(ctx, false))
	assert.Equal(t, StatusOffline, q.Status())

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := q.Add(ctx, ActionInput{Type: ActionCreate, Entity: "task", EntityID: id})
		require.NoError(t, err)
	}

	n, err := q.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "sync is a no-op while offline")
	assert.Empty(t, syncer.calls())

	require.NoError(t, q.SetOnline(ctx, true))
	assert.Equal(t, []string{"t1", "t2", "t3"}, syncer.calls())
	assert.False(t, q.HasUnsynced())
	assert.Equal(t, StatusSynced, q.Status())
}

func TestQueue_FailedActionStaysUnsynced(t *testing.T) {
	ctx := context.Background()
	syncer := &recordingSyncer{failOn: map[string]bool{"t2": true}}
	q := newTestQueue(t, kvstore.NewMemoryStore(), syncer)

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := q.Add(ctx, ActionInput{Type: ActionDelete, Entity: "task", EntityID: id})
		require.NoError(t, err)
	}

	n, err := q.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, q.HasUnsynced())
	assert.Equal(t, StatusPendingSync, q.Status())

	require.NoError(t, q.ClearSynced(ctx))
	left := q.Actions()
	require.Len(t, left, 1)
	assert.Equal(t, "t2", left[0].EntityID)
}

func TestQueue_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syncer := &recordingSyncer{}
	q := newTestQueue(t, kvstore.NewMemoryStore(), syncer)

	signals := make(chan bool)
	done := make(chan error, 1)
	go func() { done <- q.Watch(ctx, signals) }()

	signals <- false
	_, err := q.Add(ctx, ActionInput{Type: ActionCreate, Entity: "column", EntityID: "c1"})
	require.NoError(t, err)
	signals <- true
	close(signals)

	require.NoError(t, <-done)
	assert.Equal(t, []string{"c1"}, syncer.calls())
}

func TestSimulatedSyncer(t *testing.T) {
	require.NoError(t, SimulatedSyncer{}.Sync(context.Background(), Action{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SimulatedSyncer{Delay: time.Hour}.Sync(ctx, Action{}), context.Canceled)
}
