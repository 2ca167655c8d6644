// Package storage persists the tracker's records in a local SQLite
// database acting as a key-value store.
//
// Four independent records exist: the finance data, the user preferences,
// and the undo and redo snapshot stacks. Values are JSON documents.
package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// Record keys. Each is loaded and saved independently.
const (
	KeyFinanceData = "finance_data"
	KeyPreferences = "preferences"
	KeyUndoStack   = "undo_stack"
	KeyRedoStack   = "redo_stack"
)

// ErrNotFound is returned when a record has never been written.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary of the state provider. Implementations
// must keep the four records independent: writing one never touches the
// others.
type Store interface {
	LoadState(ctx context.Context) (*core.FinanceState, error)
	SaveState(ctx context.Context, s *core.FinanceState) error

	LoadPreferences(ctx context.Context) (core.UserPreferences, error)
	SavePreferences(ctx context.Context, p core.UserPreferences) error

	LoadStack(ctx context.Context, key string) ([]*core.FinanceState, error)
	SaveStack(ctx context.Context, key string, stack []*core.FinanceState) error

	Close() error
}
