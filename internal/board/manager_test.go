package board

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/kvstore"
)

// failingStore wraps a real store and fails writes on demand.
type failingStore struct {
	kvstore.Store
	failSet bool
	failGet bool
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failGet {
		return nil, errors.New("disk on fire")
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet {
		return errors.New("quota exceeded")
	}
	return s.Store.Set(ctx, key, value)
}

func newTestManager(t *testing.T, store kvstore.Store, opts ...Option) *Manager {
	t.Helper()
	n := 0
	defaults := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}
	return NewManager(store, "main", append(defaults, opts...)...)
}

func TestManager_LoadSeedsDemoBoard(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	m := newTestManager(t, store)

	_, ok := m.Board()
	assert.False(t, ok, "board is not available before Load")

	b, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo Board", b.Name)
	require.Len(t, b.Columns, 4)
	assert.Equal(t, 4, b.TaskCount())

	// Seed is persisted under the board key.
	_, err = store.Get(ctx, "board-main")
	require.NoError(t, err)
}

func TestManager_LoadExistingSnapshot(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()

	m := newTestManager(t, store)
	_, err := m.Load(ctx)
	require.NoError(t, err)
	_, err = m.AddColumn(ctx, "Blocked", "#ef4444")
	require.NoError(t, err)
	require.NoError(t, m.MoveTask(ctx, "task-1", "done", 0))
	want, _ := m.Board()

	reloaded := newTestManager(t, store)
	got, err := reloaded.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("reloaded board differs (-want +got):\n%s", diff)
	}
}

func TestManager_LoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("read failure", func(t *testing.T) {
		m := newTestManager(t, &failingStore{Store: kvstore.NewMemoryStore(), failGet: true})
		_, err := m.Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load board 'main'")
	})

	t.Run("corrupt snapshot is not overwritten", func(t *testing.T) {
		store := kvstore.NewMemoryStore()
		require.NoError(t, store.Set(ctx, "board-main", []byte("{not json")))

		m := newTestManager(t, store)
		_, err := m.Load(ctx)
		require.Error(t, err)

		raw, err := store.Get(ctx, "board-main")
		require.NoError(t, err)
		assert.Equal(t, "{not json", string(raw))
	})
}

func TestManager_MutationBeforeLoad(t *testing.T) {
	m := newTestManager(t, kvstore.NewMemoryStore())
	_, err := m.AddColumn(context.Background(), "Blocked", "")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestManager_AddColumn(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, kvstore.NewMemoryStore())
	_, err := m.Load(ctx)
	require.NoError(t, err)

	col, err := m.AddColumn(ctx, "Blocked", "#ef4444")
	require.NoError(t, err)
	assert.Equal(t, "id-1", col.ID)
	assert.Equal(t, 4, col.Position)

	b, _ := m.Board()
	assert.Len(t, b.Columns, 5)

	_, err = m.AddColumn(ctx, "  ", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	b, _ = m.Board()
	assert.Len(t, b.Columns, 5, "rejected column not added")
}

func TestManager_FindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, kvstore.NewMemoryStore())
	_, err := m.Load(ctx)
	require.NoError(t, err)

	task, ok := m.FindTask("task-1")
	require.True(t, ok)
	task.Title = "mutated"

	again, _ := m.FindTask("task-1")
	assert.Equal(t, "Design new dashboard", again.Title)

	_, ok = m.FindTask("ghost")
	assert.False(t, ok)
	_, ok = m.FindColumn("ghost")
	assert.False(t, ok)
}

func TestManager_PersistenceFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	logger, hook := logtest.NewNullLogger()
	store := &failingStore{Store: kvstore.NewMemoryStore()}
	m := newTestManager(t, store, WithLogger(logger))
	_, err := m.Load(ctx)
	require.NoError(t, err)

	store.failSet = true
	require.NoError(t, m.MoveTask(ctx, "task-1", "done", 0))

	// In-memory state reflects the move.
	task, _ := m.FindTask("task-1")
	assert.Equal(t, "done", task.ColumnID)

	// The failure was logged.
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	var perr *PersistenceError
	require.ErrorAs(t, entry.Data[logrus.ErrorKey].(error), &perr)
	assert.Equal(t, "main", perr.BoardID)

	// A reload sees the stale snapshot.
	store.failSet = false
	stale := newTestManager(t, store)
	b, err := stale.Load(ctx)
	require.NoError(t, err)
	_, col := b.FindTask("task-1")
	assert.Equal(t, "not-started", col.ID)
}

func TestManager_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, kvstore.NewMemoryStore())
	_, err := m.Load(ctx)
	require.NoError(t, err)

	task, err := m.AddTask(ctx, "in-review", TaskInput{Title: "Review PR", Priority: PriorityLow})
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, StatusInReview, task.Status)

	sub, err := m.AddSubtask(ctx, task.ID, "Check tests")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.NoError(t, m.ToggleSubtask(ctx, task.ID, sub.ID))
	require.NoError(t, m.AddComment(ctx, task.ID, "alice", "LGTM"))
	require.NoError(t, m.UpdateTask(ctx, task.ID, TaskPatch{Title: ptr("Review PR #12")}))

	got, ok := m.FindTask(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Review PR #12", got.Title)
	assert.True(t, got.Subtasks[0].Completed)
	assert.Len(t, got.Comments, 1)

	require.NoError(t, m.DeleteTask(ctx, task.ID))
	_, ok = m.FindTask(task.ID)
	assert.False(t, ok)

	missing, err := m.AddTask(ctx, "ghost", TaskInput{Title: "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestManager_ColumnOps(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, kvstore.NewMemoryStore())
	_, err := m.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, m.UpdateColumn(ctx, "done", ColumnPatch{Name: ptr("Shipped")}))
	require.NoError(t, m.UpdateColumn(ctx, "ghost", ColumnPatch{Name: ptr("x")}))
	col, _ := m.FindColumn("done")
	assert.Equal(t, "Shipped", col.Name)

	require.NoError(t, m.MoveColumn(ctx, "done", 0))
	b, _ := m.Board()
	assert.Equal(t, "done", b.Columns[0].ID)

	require.NoError(t, m.DeleteColumn(ctx, "done"))
	_, ok := m.FindTask("task-4")
	assert.False(t, ok)
}
