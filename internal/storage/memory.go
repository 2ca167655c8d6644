package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

// MemoryStore implements Store in memory. It backs tests and the diskless
// mode; values go through JSON like the SQLite store so both behave the
// same way.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) LoadState(ctx context.Context) (*core.FinanceState, error) {
	var st core.FinanceState
	if err := m.loadJSON(KeyFinanceData, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (m *MemoryStore) SaveState(ctx context.Context, st *core.FinanceState) error {
	return m.saveJSON(KeyFinanceData, st)
}

func (m *MemoryStore) LoadPreferences(ctx context.Context) (core.UserPreferences, error) {
	prefs := core.DefaultPreferences()
	m.mu.Lock()
	raw, ok := m.records[KeyPreferences]
	m.mu.Unlock()
	if !ok {
		return prefs, ErrNotFound
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return core.DefaultPreferences(), fmt.Errorf("decode %s: %w", KeyPreferences, err)
	}
	return prefs, nil
}

func (m *MemoryStore) SavePreferences(ctx context.Context, p core.UserPreferences) error {
	return m.saveJSON(KeyPreferences, p)
}

func (m *MemoryStore) LoadStack(ctx context.Context, key string) ([]*core.FinanceState, error) {
	var stack []*core.FinanceState
	if err := m.loadJSON(key, &stack); err != nil {
		return nil, err
	}
	return stack, nil
}

func (m *MemoryStore) SaveStack(ctx context.Context, key string, stack []*core.FinanceState) error {
	if stack == nil {
		stack = []*core.FinanceState{}
	}
	return m.saveJSON(key, stack)
}

// Corrupt overwrites a record with malformed JSON. Test helper for the
// fall-back-to-defaults path.
func (m *MemoryStore) Corrupt(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = []byte("{not json")
}

func (m *MemoryStore) loadJSON(key string, out any) error {
	m.mu.Lock()
	raw, ok := m.records[key]
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (m *MemoryStore) saveJSON(key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.records[key] = body
	m.mu.Unlock()
	return nil
}
