package history

import (
	"strconv"
	"testing"
	"time"

	"fintrack/internal/core"
)

func stateWith(ids ...string) *core.FinanceState {
	st := core.DefaultState()
	for _, id := range ids {
		st.Transactions = append(st.Transactions, core.Transaction{
			ID:          id,
			Amount:      core.Money{Cents: 100},
			Description: id,
			Date:        core.NewDate(2024, time.January, 1),
			Type:        core.Expense,
			CategoryID:  "food",
		})
	}
	return st
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New()
	before := stateWith("t1")
	after := stateWith("t1", "t2")

	h.Record(before)

	restored, ok := h.Undo(after)
	if !ok {
		t.Fatalf("expected undo to succeed")
	}
	if len(restored.Transactions) != 1 {
		t.Fatalf("undo restored %d transactions, want 1", len(restored.Transactions))
	}

	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatalf("expected redo to succeed")
	}
	if len(redone.Transactions) != 2 {
		t.Fatalf("redo restored %d transactions, want 2 (round-trip law)", len(redone.Transactions))
	}
}

func TestRecordClearsRedo(t *testing.T) {
	h := New()
	h.Record(stateWith("t1"))
	if _, ok := h.Undo(stateWith("t1", "t2")); !ok {
		t.Fatalf("undo failed")
	}
	if h.RedoDepth() != 1 {
		t.Fatalf("redo depth = %d, want 1", h.RedoDepth())
	}

	// A new mutation invalidates the redo future.
	h.Record(stateWith("t1", "t3"))
	if h.RedoDepth() != 0 {
		t.Fatalf("redo depth after mutation = %d, want 0", h.RedoDepth())
	}
	if _, ok := h.Redo(stateWith("t1")); ok {
		t.Fatalf("redo must be a no-op after a new mutation")
	}
}

func TestUndoEmptyIsNoop(t *testing.T) {
	h := New()
	if _, ok := h.Undo(stateWith()); ok {
		t.Fatalf("undo on empty stack must be a no-op")
	}
	if _, ok := h.Redo(stateWith()); ok {
		t.Fatalf("redo on empty stack must be a no-op")
	}
}

func TestStackCap(t *testing.T) {
	h := New()
	for i := 0; i < 120; i++ {
		h.Record(stateWith("t" + strconv.Itoa(i)))
	}
	if h.UndoDepth() != DefaultLimit {
		t.Fatalf("undo depth = %d, want %d", h.UndoDepth(), DefaultLimit)
	}

	// Oldest snapshots are evicted first: the top must be the most recent.
	top, ok := h.Undo(stateWith("current"))
	if !ok {
		t.Fatalf("undo failed")
	}
	if top.Transactions[0].ID != "t119" {
		t.Fatalf("top of stack is %s, want t119", top.Transactions[0].ID)
	}
}

func TestRecordStoresDeepCopy(t *testing.T) {
	h := New()
	st := stateWith("t1")
	h.Record(st)

	// Mutating the original after recording must not affect the snapshot.
	st.Transactions[0].Description = "mutated"

	restored, _ := h.Undo(stateWith("t1", "t2"))
	if restored.Transactions[0].Description != "t1" {
		t.Fatalf("snapshot aliases the recorded state")
	}
}

func TestRestoreTruncates(t *testing.T) {
	stacks := make([]*core.FinanceState, 60)
	for i := range stacks {
		stacks[i] = stateWith("t" + strconv.Itoa(i))
	}
	h := New()
	h.Restore(stacks, nil)
	if h.UndoDepth() != DefaultLimit {
		t.Fatalf("restored depth = %d, want %d", h.UndoDepth(), DefaultLimit)
	}
}
