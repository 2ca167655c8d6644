package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single-table key-value schema.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath and runs
// the embedded migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) LoadState(ctx context.Context) (*core.FinanceState, error) {
	var st core.FinanceState
	if err := s.loadJSON(ctx, KeyFinanceData, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SQLiteStore) SaveState(ctx context.Context, st *core.FinanceState) error {
	return s.saveJSON(ctx, KeyFinanceData, st)
}

func (s *SQLiteStore) LoadPreferences(ctx context.Context) (core.UserPreferences, error) {
	// Missing keys fall back to defaults: unmarshal over the default value.
	prefs := core.DefaultPreferences()
	raw, err := s.loadRaw(ctx, KeyPreferences)
	if err != nil {
		return prefs, err
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return core.DefaultPreferences(), fmt.Errorf("decode %s: %w", KeyPreferences, err)
	}
	return prefs, nil
}

func (s *SQLiteStore) SavePreferences(ctx context.Context, p core.UserPreferences) error {
	return s.saveJSON(ctx, KeyPreferences, p)
}

func (s *SQLiteStore) LoadStack(ctx context.Context, key string) ([]*core.FinanceState, error) {
	var stack []*core.FinanceState
	if err := s.loadJSON(ctx, key, &stack); err != nil {
		return nil, err
	}
	return stack, nil
}

func (s *SQLiteStore) SaveStack(ctx context.Context, key string, stack []*core.FinanceState) error {
	if stack == nil {
		stack = []*core.FinanceState{}
	}
	return s.saveJSON(ctx, key, stack)
}

func (s *SQLiteStore) loadRaw(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) loadJSON(ctx context.Context, key string, out any) error {
	raw, err := s.loadRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) saveJSON(ctx context.Context, key string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(body))
	if err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Record saved",
		log.FieldComponent, log.ComponentStorage, "key", key, "bytes", len(body))
	return nil
}
