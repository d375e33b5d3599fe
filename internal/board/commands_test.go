package board

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func taskIDs(c *Column) []string {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.ID
	}
	return ids
}

func assertDense(t *testing.T, c *Column) {
	t.Helper()
	for i, task := range c.Tasks {
		assert.Equal(t, i, task.Position, "column %s task %s", c.ID, task.ID)
		assert.Equal(t, c.ID, task.ColumnID, "task %s back-reference", task.ID)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	b := DemoBoard("main", testNow)
	before := b.Clone()

	cmds := []Command{
		AddColumn{ID: "c-new", Name: "Backlog", At: testNow.Add(time.Minute)},
		MoveTask{TaskID: "task-1", TargetColumnID: "done", TargetIndex: 0, At: testNow.Add(time.Minute)},
		DeleteColumn{ColumnID: "in-progress", At: testNow.Add(time.Minute)},
		UpdateTask{TaskID: "task-2", Patch: TaskPatch{Title: ptr("Renamed")}, At: testNow.Add(time.Minute)},
	}
	for _, cmd := range cmds {
		t.Run(fmt.Sprintf("%T", cmd), func(t *testing.T) {
			next, err := Apply(b, cmd)
			require.NoError(t, err)
			assert.NotSame(t, b, next)
			if diff := cmp.Diff(before, b); diff != "" {
				t.Errorf("input board mutated (-before +after):\n%s", diff)
			}
		})
	}
}

func TestApply_ErrorReturnsInput(t *testing.T) {
	b := DemoBoard("main", testNow)

	next, err := Apply(b, AddColumn{ID: "x", Name: "   ", At: testNow})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Same(t, b, next)
	assert.Len(t, b.Columns, 4)
}

func TestAddColumn(t *testing.T) {
	t.Run("appends at position N", func(t *testing.T) {
		b := DemoBoard("main", testNow)
		next, err := Apply(b, AddColumn{ID: "blocked", Name: "  Blocked ", Color: "#ef4444", At: testNow.Add(time.Hour)})
		require.NoError(t, err)

		require.Len(t, next.Columns, 5)
		col := next.Columns[4]
		assert.Equal(t, "blocked", col.ID)
		assert.Equal(t, "Blocked", col.Name)
		assert.Equal(t, 4, col.Position)
		assert.Equal(t, "main", col.BoardID)
		assert.Empty(t, col.Tasks)
		assert.Equal(t, testNow.Add(time.Hour), next.UpdatedAt)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := Apply(DemoBoard("main", testNow), AddColumn{ID: "x", Name: "\t \n"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid column name")
	})
}

func TestUpdateColumn(t *testing.T) {
	later := testNow.Add(time.Minute)

	t.Run("merges only set fields", func(t *testing.T) {
		next, err := Apply(DemoBoard("main", testNow), UpdateColumn{
			ColumnID: "in-review",
			Patch:    ColumnPatch{Color: ptr("#f97316")},
			At:       later,
		})
		require.NoError(t, err)
		col := next.FindColumn("in-review")
		assert.Equal(t, "Review", col.Name)
		assert.Equal(t, "#f97316", col.Color)
		assert.Equal(t, later, col.UpdatedAt)
		assert.Equal(t, later, next.UpdatedAt)
	})

	t.Run("unknown column is a no-op", func(t *testing.T) {
		b := DemoBoard("main", testNow)
		next, err := Apply(b, UpdateColumn{ColumnID: "nope", Patch: ColumnPatch{Name: ptr("X")}, At: later})
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(b, next))
	})

	t.Run("blank name rejected", func(t *testing.T) {
		_, err := Apply(DemoBoard("main", testNow), UpdateColumn{ColumnID: "done", Patch: ColumnPatch{Name: ptr(" ")}})
		assert.True(t, IsValidation(err))
	})
}

func TestDeleteColumn(t *testing.T) {
	next, err := Apply(DemoBoard("main", testNow), DeleteColumn{ColumnID: "in-progress", At: testNow})
	require.NoError(t, err)

	require.Len(t, next.Columns, 3)
	assert.Nil(t, next.FindColumn("in-progress"))
	task, _ := next.FindTask("task-3")
	assert.Nil(t, task, "tasks go with their column")

	// Positions are left as they were.
	assert.Equal(t, []int{0, 2, 3}, []int{next.Columns[0].Position, next.Columns[1].Position, next.Columns[2].Position})
}

func TestAddColumn_AfterDeleteKeepsPositionsUnique(t *testing.T) {
	b, err := Apply(DemoBoard("main", testNow), DeleteColumn{ColumnID: "in-progress", At: testNow})
	require.NoError(t, err)
	b, err = Apply(b, AddColumn{ID: "blocked", Name: "Blocked", At: testNow})
	require.NoError(t, err)

	seen := map[int]string{}
	for _, c := range b.Columns {
		if prev, dup := seen[c.Position]; dup {
			t.Fatalf("columns %s and %s share position %d", prev, c.ID, c.Position)
		}
		seen[c.Position] = c.ID
	}
	assert.Equal(t, 4, b.FindColumn("blocked").Position)

	empty := &Board{ID: "empty", Columns: []*Column{}}
	empty, err = Apply(empty, AddColumn{ID: "first", Name: "First", At: testNow})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Columns[0].Position)
}

func TestMoveColumn(t *testing.T) {
	next, err := Apply(DemoBoard("main", testNow), MoveColumn{ColumnID: "done", TargetIndex: 0, At: testNow})
	require.NoError(t, err)

	var ids []string
	for i, c := range next.Columns {
		ids = append(ids, c.ID)
		assert.Equal(t, i, c.Position)
	}
	assert.Equal(t, []string{"done", "not-started", "in-progress", "in-review"}, ids)
}

func TestMoveTask_CrossColumn(t *testing.T) {
	// Columns A=[t1,t2], B=[t3]; move t1 to B at index 0.
	b := DemoBoard("main", testNow)
	next, err := Apply(b, MoveTask{TaskID: "task-1", TargetColumnID: "in-progress", TargetIndex: 0, At: testNow.Add(time.Second)})
	require.NoError(t, err)

	a := next.FindColumn("not-started")
	bc := next.FindColumn("in-progress")
	assert.Equal(t, []string{"task-2"}, taskIDs(a))
	assert.Equal(t, []string{"task-1", "task-3"}, taskIDs(bc))
	assertDense(t, a)
	assertDense(t, bc)

	moved, _ := next.FindTask("task-1")
	assert.Equal(t, "in-progress", moved.ColumnID)
	assert.Equal(t, testNow.Add(time.Second), moved.UpdatedAt)
}

func TestMoveTask_SameColumn(t *testing.T) {
	tests := []struct {
		name   string
		taskID string
		target int
		want   []string
	}{
		{"to front", "task-2", 0, []string{"task-2", "task-1"}},
		{"past end clamps", "task-1", 10, []string{"task-2", "task-1"}},
		{"negative clamps to front", "task-2", -3, []string{"task-2", "task-1"}},
		{"in place", "task-2", 1, []string{"task-1", "task-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Apply(DemoBoard("main", testNow), MoveTask{TaskID: tt.taskID, TargetColumnID: "not-started", TargetIndex: tt.target})
			require.NoError(t, err)
			col := next.FindColumn("not-started")
			assert.Equal(t, tt.want, taskIDs(col))
			assertDense(t, col)
		})
	}
}

func TestMoveTask_DropOnColumnAppends(t *testing.T) {
	next, err := Apply(DemoBoard("main", testNow), MoveTask{TaskID: "task-4", TargetColumnID: "not-started", TargetIndex: -1})
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1", "task-2", "task-4"}, taskIDs(next.FindColumn("not-started")))
	assert.Empty(t, next.FindColumn("done").Tasks)
}

func TestMoveTask_UnknownIsNoop(t *testing.T) {
	b := DemoBoard("main", testNow)
	for _, cmd := range []MoveTask{
		{TaskID: "ghost", TargetColumnID: "done"},
		{TaskID: "task-1", TargetColumnID: "ghost"},
	} {
		next, err := Apply(b, cmd)
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(b, next))
	}
}

// Random sequences of moves must always leave every column densely numbered
// and keep the total task count.
func TestMoveTask_RandomSequencesStayDense(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := DemoBoard("main", testNow)
	for i := 0; i < 6; i++ {
		var err error
		b, err = Apply(b, AddTask{ID: fmt.Sprintf("extra-%d", i), ColumnID: b.Columns[i%4].ID, Input: TaskInput{Title: "extra"}})
		require.NoError(t, err)
	}
	total := b.TaskCount()

	var all []string
	for _, c := range b.Columns {
		all = append(all, taskIDs(c)...)
	}

	for i := 0; i < 500; i++ {
		cmd := MoveTask{
			TaskID:         all[rng.Intn(len(all))],
			TargetColumnID: b.Columns[rng.Intn(len(b.Columns))].ID,
			TargetIndex:    rng.Intn(8) - 2,
		}
		next, err := Apply(b, cmd)
		require.NoError(t, err)
		b = next

		require.Equal(t, total, b.TaskCount(), "step %d", i)
		for _, c := range b.Columns {
			assertDense(t, c)
		}
	}
}

func TestAddTask(t *testing.T) {
	due := testNow.Add(48 * time.Hour)

	t.Run("defaults and status from column", func(t *testing.T) {
		next, err := Apply(DemoBoard("main", testNow), AddTask{
			ID:       "t-new",
			ColumnID: "in-review",
			Input:    TaskInput{Title: " Write docs ", DueDate: &due},
			At:       testNow,
		})
		require.NoError(t, err)
		task, col := next.FindTask("t-new")
		require.NotNil(t, task)
		assert.Equal(t, "in-review", col.ID)
		assert.Equal(t, "Write docs", task.Title)
		assert.Equal(t, PriorityMedium, task.Priority)
		assert.Equal(t, StatusInReview, task.Status)
		assert.Equal(t, 0, task.Position)
		require.NotNil(t, task.DueDate)
		assert.True(t, due.Equal(*task.DueDate))
	})

	t.Run("custom column falls back to not-started", func(t *testing.T) {
		b, err := Apply(DemoBoard("main", testNow), AddColumn{ID: "backlog", Name: "Backlog"})
		require.NoError(t, err)
		next, err := Apply(b, AddTask{ID: "t-new", ColumnID: "backlog", Input: TaskInput{Title: "Idea"}})
		require.NoError(t, err)
		task, _ := next.FindTask("t-new")
		assert.Equal(t, StatusNotStarted, task.Status)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := Apply(DemoBoard("main", testNow), AddTask{ID: "x", ColumnID: "done", Input: TaskInput{Title: ""}})
		assert.True(t, IsValidation(err))
		_, err = Apply(DemoBoard("main", testNow), AddTask{ID: "x", ColumnID: "done", Input: TaskInput{Title: "ok", Priority: "extreme"}})
		assert.True(t, IsValidation(err))
	})

	t.Run("unknown column is a no-op", func(t *testing.T) {
		b := DemoBoard("main", testNow)
		next, err := Apply(b, AddTask{ID: "x", ColumnID: "ghost", Input: TaskInput{Title: "ok"}})
		require.NoError(t, err)
		assert.Equal(t, b.TaskCount(), next.TaskCount())
	})
}

func TestUpdateTask(t *testing.T) {
	due := testNow.Add(time.Hour)
	b, err := Apply(DemoBoard("main", testNow), UpdateTask{TaskID: "task-1", Patch: TaskPatch{
		Priority: ptr(PriorityUrgent),
		DueDate:  &due,
		Labels:   &[]Label{{ID: "l1", Name: "ui"}},
	}, At: testNow.Add(time.Minute)})
	require.NoError(t, err)

	task, _ := b.FindTask("task-1")
	assert.Equal(t, "Design new dashboard", task.Title)
	assert.Equal(t, PriorityUrgent, task.Priority)
	assert.Len(t, task.Labels, 1)
	require.NotNil(t, task.DueDate)

	b, err = Apply(b, UpdateTask{TaskID: "task-1", Patch: TaskPatch{ClearDue: true}})
	require.NoError(t, err)
	task, _ = b.FindTask("task-1")
	assert.Nil(t, task.DueDate)

	_, err = Apply(b, UpdateTask{TaskID: "task-1", Patch: TaskPatch{Status: ptr(Status("archived"))}})
	assert.True(t, IsValidation(err))
}

func TestDeleteTask_Renumbers(t *testing.T) {
	next, err := Apply(DemoBoard("main", testNow), DeleteTask{TaskID: "task-1"})
	require.NoError(t, err)
	col := next.FindColumn("not-started")
	assert.Equal(t, []string{"task-2"}, taskIDs(col))
	assertDense(t, col)
}

func TestSubtasksAndComments(t *testing.T) {
	b, err := Apply(DemoBoard("main", testNow), AddSubtask{ID: "s1", TaskID: "task-3", Title: "Login form"})
	require.NoError(t, err)
	b, err = Apply(b, ToggleSubtask{TaskID: "task-3", SubtaskID: "s1"})
	require.NoError(t, err)
	b, err = Apply(b, AddComment{ID: "c1", TaskID: "task-3", AuthorID: "u1", Content: "started"})
	require.NoError(t, err)

	task, _ := b.FindTask("task-3")
	require.Len(t, task.Subtasks, 1)
	assert.True(t, task.Subtasks[0].Completed)
	require.Len(t, task.Comments, 1)
	assert.Equal(t, "started", task.Comments[0].Content)

	_, err = Apply(b, AddSubtask{ID: "s2", TaskID: "task-3", Title: " "})
	assert.True(t, IsValidation(err))
	_, err = Apply(b, AddComment{ID: "c2", TaskID: "task-3", Content: ""})
	assert.True(t, IsValidation(err))
}

func ptr[T any](v T) *T { return &v }
