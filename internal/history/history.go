// Package history implements the undo/redo snapshot stacks.
//
// Both stacks hold full deep copies of the FinanceState, capped at a fixed
// depth with FIFO eviction of the oldest snapshot. Recording a mutation
// clears the redo stack: a new action invalidates the redo future.
package history

import "fintrack/internal/core"

// DefaultLimit is the maximum depth of each stack.
const DefaultLimit = 50

// History holds the undo and redo stacks. It is not safe for concurrent
// use; the state provider serializes access.
type History struct {
	undo  []*core.FinanceState
	redo  []*core.FinanceState
	limit int
}

// New creates a History with the default depth limit.
func New() *History {
	return NewWithLimit(DefaultLimit)
}

// NewWithLimit creates a History with a custom depth limit.
func NewWithLimit(limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Restore seeds both stacks from persisted snapshots, truncating to the
// limit if a previous run persisted more.
func (h *History) Restore(undo, redo []*core.FinanceState) {
	h.undo = trim(undo, h.limit)
	h.redo = trim(redo, h.limit)
}

// Record pushes the pre-mutation state onto the undo stack, evicting the
// oldest snapshot when over capacity, and unconditionally clears the redo
// stack.
func (h *History) Record(prev *core.FinanceState) {
	h.undo = append(h.undo, prev.Clone())
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// Undo pops the most recent snapshot off the undo stack and pushes the
// current state onto the redo stack. ok is false when there is nothing to
// undo.
func (h *History) Undo(current *core.FinanceState) (*core.FinanceState, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]

	h.redo = append(h.redo, current.Clone())
	if len(h.redo) > h.limit {
		h.redo = h.redo[len(h.redo)-h.limit:]
	}
	return top, true
}

// Redo pops the most recent snapshot off the redo stack and pushes the
// current state onto the undo stack. ok is false when there is nothing to
// redo.
func (h *History) Redo(current *core.FinanceState) (*core.FinanceState, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]

	h.undo = append(h.undo, current.Clone())
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	return top, true
}

// UndoDepth returns the current undo stack depth.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the current redo stack depth.
func (h *History) RedoDepth() int { return len(h.redo) }

// UndoStack returns the undo snapshots in stack order for persistence.
func (h *History) UndoStack() []*core.FinanceState { return h.undo }

// RedoStack returns the redo snapshots in stack order for persistence.
func (h *History) RedoStack() []*core.FinanceState { return h.redo }

func trim(stack []*core.FinanceState, limit int) []*core.FinanceState {
	if len(stack) > limit {
		return stack[len(stack)-limit:]
	}
	return stack
}
