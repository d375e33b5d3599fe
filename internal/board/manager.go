package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dyluth/kanban/pkg/kvstore"
)

// Manager owns one board graph for the lifetime of a board view. Every
// mutation is applied through the reducer and then the whole snapshot is
// written back to the store. Manager is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	store   kvstore.Store
	boardID string
	board   *Board // nil until Load succeeds

	now   func() time.Time
	newID func() string
	log   logrus.FieldLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides how new column/task/subtask IDs are made.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// WithLogger sets the logger used for swallowed persistence failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager for boardID backed by store. Call Load before
// issuing mutations.
func NewManager(store kvstore.Store, boardID string, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		boardID: boardID,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithField("board", boardID)
	return m
}

// BoardID returns the identity of the managed board.
func (m *Manager) BoardID() string {
	return m.boardID
}

// Load hydrates the board from its snapshot. If no snapshot exists the demo
// board is seeded and persisted. A failed read or undecodable snapshot is
// returned and nothing is overwritten.
func (m *Manager) Load(ctx context.Context) (*Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := kvstore.BoardKey(m.boardID)
	b, err := kvstore.GetJSON[*Board](ctx, m.store, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load board '%s': %w", m.boardID, err)
	}

	if b == nil {
		b = DemoBoard(m.boardID, m.now())
		m.board = b
		m.persist(ctx)
		m.log.Info("Seeded demo board")
		return b.Clone(), nil
	}

	m.board = b
	m.log.WithField("columns", len(b.Columns)).Debug("Loaded board snapshot")
	return b.Clone(), nil
}

// Board returns a copy of the current board. The boolean is false while the
// board has not been loaded yet.
func (m *Manager) Board() (*Board, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.board == nil {
		return nil, false
	}
	return m.board.Clone(), true
}

// FindTask returns a copy of the task with the given ID.
func (m *Manager) FindTask(id string) (*Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.board == nil {
		return nil, false
	}
	t, _ := m.board.FindTask(id)
	if t == nil {
		return nil, false
	}
	return t.Clone(), true
}

// FindColumn returns a copy of the column with the given ID.
func (m *Manager) FindColumn(id string) (*Column, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.board == nil {
		return nil, false
	}
	c := m.board.FindColumn(id)
	if c == nil {
		return nil, false
	}
	return c.Clone(), true
}

// AddColumn appends a column. Returns a ValidationError for a blank name.
func (m *Manager) AddColumn(ctx context.Context, name, color string) (*Column, error) {
	id := m.newID()
	if err := m.dispatch(ctx, AddColumn{ID: id, Name: name, Color: color, At: m.now()}); err != nil {
		return nil, err
	}
	c, _ := m.FindColumn(id)
	return c, nil
}

// UpdateColumn merges patch into the column. Unknown columns are ignored.
func (m *Manager) UpdateColumn(ctx context.Context, columnID string, patch ColumnPatch) error {
	return m.dispatch(ctx, UpdateColumn{ColumnID: columnID, Patch: patch, At: m.now()})
}

// DeleteColumn removes the column and every task in it.
func (m *Manager) DeleteColumn(ctx context.Context, columnID string) error {
	return m.dispatch(ctx, DeleteColumn{ColumnID: columnID, At: m.now()})
}

// MoveColumn reorders a column within the board.
func (m *Manager) MoveColumn(ctx context.Context, columnID string, targetIndex int) error {
	return m.dispatch(ctx, MoveColumn{ColumnID: columnID, TargetIndex: targetIndex, At: m.now()})
}

// MoveTask moves a task within or across columns. A negative targetIndex
// appends to the target column.
func (m *Manager) MoveTask(ctx context.Context, taskID, targetColumnID string, targetIndex int) error {
	return m.dispatch(ctx, MoveTask{TaskID: taskID, TargetColumnID: targetColumnID, TargetIndex: targetIndex, At: m.now()})
}

// AddTask appends a task to a column. Returns (nil, nil) if the column does
// not exist.
func (m *Manager) AddTask(ctx context.Context, columnID string, in TaskInput) (*Task, error) {
	id := m.newID()
	if err := m.dispatch(ctx, AddTask{ID: id, ColumnID: columnID, Input: in, At: m.now()}); err != nil {
		return nil, err
	}
	t, _ := m.FindTask(id)
	return t, nil
}

func (m *Manager) UpdateTask(ctx context.Context, taskID string, patch TaskPatch) error {
	return m.dispatch(ctx, UpdateTask{TaskID: taskID, Patch: patch, At: m.now()})
}

func (m *Manager) DeleteTask(ctx context.Context, taskID string) error {
	return m.dispatch(ctx, DeleteTask{TaskID: taskID, At: m.now()})
}

func (m *Manager) AddSubtask(ctx context.Context, taskID, title string) (*Subtask, error) {
	id := m.newID()
	if err := m.dispatch(ctx, AddSubtask{ID: id, TaskID: taskID, Title: title, At: m.now()}); err != nil {
		return nil, err
	}
	t, ok := m.FindTask(taskID)
	if !ok {
		return nil, nil
	}
	for _, s := range t.Subtasks {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *Manager) ToggleSubtask(ctx context.Context, taskID, subtaskID string) error {
	return m.dispatch(ctx, ToggleSubtask{TaskID: taskID, SubtaskID: subtaskID, At: m.now()})
}

func (m *Manager) AddComment(ctx context.Context, taskID, authorID, content string) error {
	return m.dispatch(ctx, AddComment{ID: m.newID(), TaskID: taskID, AuthorID: authorID, Content: content, At: m.now()})
}

// Dispatch applies an arbitrary command. It is the single entry point every
// mutation goes through.
func (m *Manager) Dispatch(ctx context.Context, cmd Command) error {
	return m.dispatch(ctx, cmd)
}

func (m *Manager) dispatch(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.board == nil {
		return ErrNotLoaded
	}
	next, err := Apply(m.board, cmd)
	if err != nil {
		return err
	}
	m.board = next
	m.persist(ctx)
	return nil
}

// persist writes the full snapshot. Failures are logged and swallowed; the
// in-memory board stays authoritative until the next successful write.
// Caller must hold m.mu.
func (m *Manager) persist(ctx context.Context) {
	if err := kvstore.SetJSON(ctx, m.store, kvstore.BoardKey(m.boardID), m.board); err != nil {
		perr := &PersistenceError{BoardID: m.boardID, Err: err}
		m.log.WithError(perr).Error("Board snapshot not persisted; in-memory state is authoritative")
	}
}
