package board

import (
	"context"
	"fmt"
	"sync"
)

// DragState is the interaction state of a board view.
type DragState string

const (
	DragIdle           DragState = "idle"
	DragDraggingTask   DragState = "dragging-task"
	DragDraggingColumn DragState = "dragging-column"
)

// DragEvent is one pointer event delivered to the drag machine.
type DragEvent string

const (
	DragStart DragEvent = "start"
	DragOver  DragEvent = "over"
	DragEnd   DragEvent = "end"
)

// dragTransitions is the complete transition table. Pairs not listed are
// ignored. Start from Idle resolves to DraggingTask or DraggingColumn
// depending on what was grabbed.
var dragTransitions = map[DragState]map[DragEvent][]DragState{
	DragIdle: {
		DragStart: {DragDraggingTask, DragDraggingColumn},
	},
	DragDraggingTask: {
		DragOver: {DragDraggingTask},
		DragEnd:  {DragIdle},
	},
	DragDraggingColumn: {
		DragOver: {DragDraggingColumn},
		DragEnd:  {DragIdle},
	},
}

// CanTransition reports whether the table permits from --ev--> to.
func CanTransition(from DragState, ev DragEvent, to DragState) bool {
	for _, s := range dragTransitions[from][ev] {
		if s == to {
			return true
		}
	}
	return false
}

// DragController drives the drag machine against a Manager. Drag-over applies
// moves immediately, so End only clears interaction state.
type DragController struct {
	mu       sync.Mutex
	manager  *Manager
	state    DragState
	activeID string
}

// NewDragController returns an idle controller for m.
func NewDragController(m *Manager) *DragController {
	return &DragController{manager: m, state: DragIdle}
}

// State returns the current state and the active item ID (empty when idle).
func (d *DragController) State() (DragState, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, d.activeID
}

// Start grabs the task or column identified by id. Unknown ids and starts
// issued mid-drag are ignored.
func (d *DragController) Start(id string) DragState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := dragTransitions[d.state][DragStart]; !ok {
		return d.state
	}
	var next DragState
	if _, ok := d.manager.FindTask(id); ok {
		next = DragDraggingTask
	} else if _, ok := d.manager.FindColumn(id); ok {
		next = DragDraggingColumn
	} else {
		return d.state
	}
	if !CanTransition(d.state, DragStart, next) {
		return d.state
	}
	d.state = next
	d.activeID = id
	return d.state
}

// Over reports that the active item is hovering overID. The move is applied
// to the board right away to give a live preview.
func (d *DragController) Over(ctx context.Context, overID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !CanTransition(d.state, DragOver, d.state) || overID == d.activeID {
		return nil
	}

	switch d.state {
	case DragDraggingTask:
		return d.overTask(ctx, overID)
	case DragDraggingColumn:
		return d.overColumn(ctx, overID)
	}
	return nil
}

func (d *DragController) overTask(ctx context.Context, overID string) error {
	active, ok := d.manager.FindTask(d.activeID)
	if !ok {
		return nil
	}

	// Hovering a column: drop at its end unless the task already lives there.
	if col, ok := d.manager.FindColumn(overID); ok {
		if col.ID == active.ColumnID {
			return nil
		}
		if err := d.manager.MoveTask(ctx, active.ID, col.ID, -1); err != nil {
			return fmt.Errorf("failed to move task '%s' to column '%s': %w", active.ID, col.ID, err)
		}
		return nil
	}

	// Hovering a task: take its slot.
	b, ok := d.manager.Board()
	if !ok {
		return nil
	}
	over, col := b.FindTask(overID)
	if over == nil {
		return nil
	}
	if err := d.manager.MoveTask(ctx, active.ID, col.ID, col.TaskIndex(over.ID)); err != nil {
		return fmt.Errorf("failed to move task '%s' over '%s': %w", active.ID, over.ID, err)
	}
	return nil
}

func (d *DragController) overColumn(ctx context.Context, overID string) error {
	b, ok := d.manager.Board()
	if !ok {
		return nil
	}
	idx := b.ColumnIndex(overID)
	if idx < 0 {
		return nil
	}
	if err := d.manager.MoveColumn(ctx, d.activeID, idx); err != nil {
		return fmt.Errorf("failed to move column '%s': %w", d.activeID, err)
	}
	return nil
}

// End releases the active item. It never touches board data.
func (d *DragController) End() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if CanTransition(d.state, DragEnd, DragIdle) {
		d.state = DragIdle
		d.activeID = ""
	}
	return d.state
}
