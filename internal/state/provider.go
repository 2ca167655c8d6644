// Package state hosts the provider that exclusively owns the live
// FinanceState. Every mutation goes through the provider, which serializes
// the read-modify-write sequence behind a mutex, snapshots the previous
// state into the undo history, persists the result and bumps a version
// counter that read-side caches key on.
package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/exchange"
	"fintrack/internal/history"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrNothingToUndo       = errors.New("nothing to undo")
	ErrNothingToRedo       = errors.New("nothing to redo")
)

// Provider mediates all access to the finance state.
type Provider struct {
	mu        sync.Mutex
	store     storage.Store
	hist      *history.History
	notifier  *notify.Client
	suggester core.Suggester

	st      *core.FinanceState
	prefs   core.UserPreferences
	version uint64
}

// NewProvider loads the persisted records from the store. Unreadable or
// missing records are logged and replaced with in-memory defaults; startup
// never fails on bad data.
func NewProvider(ctx context.Context, store storage.Store, notifier *notify.Client) *Provider {
	return NewProviderWithLimit(ctx, store, notifier, history.DefaultLimit)
}

// NewProviderWithLimit is NewProvider with a configurable undo depth.
func NewProviderWithLimit(ctx context.Context, store storage.Store, notifier *notify.Client, undoLimit int) *Provider {
	p := &Provider{
		store:     store,
		hist:      history.NewWithLimit(undoLimit),
		notifier:  notifier,
		suggester: core.NewKeywordSuggester(),
	}

	st, err := store.LoadState(ctx)
	switch {
	case err == nil:
		p.st = st
	case errors.Is(err, storage.ErrNotFound):
		slog.InfoContext(ctx, "No finance data found, starting with defaults",
			log.FieldComponent, log.ComponentState)
		p.st = core.DefaultState()
	default:
		slog.ErrorContext(ctx, "Failed to load finance data, falling back to defaults",
			log.FieldComponent, log.ComponentState, log.FieldError, err)
		p.st = core.DefaultState()
	}

	prefs, err := store.LoadPreferences(ctx)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(ctx, "Failed to load preferences, falling back to defaults",
			log.FieldComponent, log.ComponentState, log.FieldError, err)
	}
	p.prefs = prefs

	undo, err := store.LoadStack(ctx, storage.KeyUndoStack)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(ctx, "Failed to load undo stack",
			log.FieldComponent, log.ComponentState, log.FieldError, err)
	}
	redo, err := store.LoadStack(ctx, storage.KeyRedoStack)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.ErrorContext(ctx, "Failed to load redo stack",
			log.FieldComponent, log.ComponentState, log.FieldError, err)
	}
	p.hist.Restore(undo, redo)

	return p
}

// Snapshot returns a deep copy of the current state for readers.
func (p *Provider) Snapshot() *core.FinanceState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.st.Clone()
}

// Version increments on every committed mutation. Caches key on it.
func (p *Provider) Version() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// AddTransaction validates and appends a transaction. A missing id is
// assigned; a missing category is auto-suggested when the preference is on.
// A recurring template without a last-processed marker starts at its own
// date.
func (p *Provider) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CategoryID == "" && p.prefs.AutoCategorization {
		if id, ok := p.suggester.Suggest(t.Description, t.Type, p.st.Categories); ok {
			t.CategoryID = id
		}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if _, ok := p.st.CategoryByID(t.CategoryID); !ok {
		return core.Transaction{}, core.ErrUnknownCategory
	}
	if t.Recurring != nil && t.Recurring.LastProcessed.IsEmpty() {
		t.Recurring.LastProcessed = t.Date
	}

	p.commitLocked(ctx, "add_transaction", func(next *core.FinanceState) {
		next.Transactions = append(next.Transactions, t.Clone())
	})

	p.publishLocked(ctx, notify.NewTransactionEvent(notify.EventTransactionCreated, t.ID, t.Date.String()))
	return t, nil
}

// UpdateTransaction replaces an existing transaction's fields. The type is
// immutable: changing income to expense (or back) is rejected.
func (p *Provider) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	existing, ok := p.st.TransactionByID(t.ID)
	if !ok {
		return ErrTransactionNotFound
	}
	if t.Type != existing.Type {
		return core.ErrTypeImmutable
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if _, ok := p.st.CategoryByID(t.CategoryID); !ok {
		return core.ErrUnknownCategory
	}

	p.commitLocked(ctx, "update_transaction", func(next *core.FinanceState) {
		for i := range next.Transactions {
			if next.Transactions[i].ID == t.ID {
				next.Transactions[i] = t.Clone()
				return
			}
		}
	})
	return nil
}

// DeleteTransaction removes a transaction by id.
func (p *Provider) DeleteTransaction(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx, ok := p.st.TransactionByID(id)
	if !ok {
		return ErrTransactionNotFound
	}

	p.commitLocked(ctx, "delete_transaction", func(next *core.FinanceState) {
		out := next.Transactions[:0]
		for _, t := range next.Transactions {
			if t.ID != id {
				out = append(out, t)
			}
		}
		next.Transactions = out
	})

	p.publishLocked(ctx, notify.NewTransactionEvent(notify.EventTransactionDeleted, id, tx.Date.String()))
	return nil
}

// AddCategory validates and appends a category. A missing id is assigned.
func (p *Provider) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if _, exists := p.st.CategoryByID(c.ID); exists {
		return core.Category{}, errors.New("category id already exists")
	}

	p.commitLocked(ctx, "add_category", func(next *core.FinanceState) {
		next.Categories = append(next.Categories, c)
	})
	return c, nil
}

// UpdateCategory replaces an existing category's fields.
func (p *Provider) UpdateCategory(ctx context.Context, c core.Category) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.st.CategoryByID(c.ID); !ok {
		return ErrCategoryNotFound
	}
	if err := c.Validate(); err != nil {
		return err
	}

	p.commitLocked(ctx, "update_category", func(next *core.FinanceState) {
		for i := range next.Categories {
			if next.Categories[i].ID == c.ID {
				next.Categories[i] = c
				return
			}
		}
	})
	return nil
}

// DeleteCategory removes a category. Deletion is rejected while any
// transaction references the category.
func (p *Provider) DeleteCategory(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.st.CategoryByID(id); !ok {
		return ErrCategoryNotFound
	}
	if p.st.CategoryReferenced(id) {
		return core.ErrCategoryInUse
	}

	p.commitLocked(ctx, "delete_category", func(next *core.FinanceState) {
		out := next.Categories[:0]
		for _, c := range next.Categories {
			if c.ID != id {
				out = append(out, c)
			}
		}
		next.Categories = out
	})
	return nil
}

// Undo restores the most recent snapshot. The displaced current state moves
// to the redo stack.
func (p *Provider) Undo(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	restored, ok := p.hist.Undo(p.st)
	if !ok {
		return ErrNothingToUndo
	}
	p.st = restored
	p.version++
	p.persistLocked(ctx, "undo")
	return nil
}

// Redo reverses the most recent undo.
func (p *Provider) Redo(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	restored, ok := p.hist.Redo(p.st)
	if !ok {
		return ErrNothingToRedo
	}
	p.st = restored
	p.version++
	p.persistLocked(ctx, "redo")
	return nil
}

// ProcessRecurring runs one generator pass at the reference time, merges
// the generated instances and advances the template markers. Idempotent:
// when nothing is due, no mutation is recorded.
func (p *Provider) ProcessRecurring(ctx context.Context, now time.Time) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	generated := services.GenerateRecurring(p.st.Transactions, now)
	if len(generated) == 0 {
		return 0, nil
	}

	p.commitLocked(ctx, "process_recurring", func(next *core.FinanceState) {
		for _, inst := range generated {
			// Write the advanced marker back onto the template.
			for i := range next.Transactions {
				t := &next.Transactions[i]
				if t.Recurring != nil && services.InstanceID(t.ID, inst.Recurring.LastProcessed) == inst.ID {
					t.Recurring.LastProcessed = inst.Recurring.LastProcessed
				}
			}
			// Stored instances are plain transactions; only the template
			// keeps generating.
			inst.Recurring = nil
			next.Transactions = append(next.Transactions, inst)
		}
	})

	slog.InfoContext(ctx, "Recurring instances generated",
		log.FieldComponent, log.ComponentState,
		log.FieldOperation, log.OpRecur,
		log.FieldCount, len(generated),
		"reference_date", now.Format("2006-01-02"))

	for _, a := range core.DetectAnomalies(p.st.Transactions) {
		p.publishLocked(ctx, notify.NewAnomalyEvent(a.CategoryID, a.PercentChange))
	}
	return len(generated), nil
}

// MonthSummary derives the summary of one calendar month.
func (p *Provider) MonthSummary(month time.Month, year int) core.MonthSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return core.ComputeMonthSummary(p.st, month, year)
}

// YearSummary derives the summary of one year.
func (p *Provider) YearSummary(year int) core.YearSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return core.ComputeYearSummary(p.st, year)
}

// Anomalies runs the month-over-month spend comparison.
func (p *Provider) Anomalies() []core.Anomaly {
	p.mu.Lock()
	defer p.mu.Unlock()
	return core.DetectAnomalies(p.st.Transactions)
}

// SuggestCategory proposes a category id for a description.
func (p *Provider) SuggestCategory(description string, typ core.TransactionType) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suggester.Suggest(description, typ, p.st.Categories)
}

// Preferences returns the current user preferences.
func (p *Provider) Preferences() core.UserPreferences {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefs
}

// SavePreferences persists new preferences. Not part of undo/redo.
func (p *Provider) SavePreferences(ctx context.Context, prefs core.UserPreferences) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.SavePreferences(ctx, prefs); err != nil {
		return err
	}
	p.prefs = prefs
	return nil
}

// ExportJSON renders the finance data as an importable JSON document.
func (p *Provider) ExportJSON() ([]byte, error) {
	return exchange.ExportJSON(p.Snapshot())
}

// ExportCSV renders the transactions as CSV.
func (p *Provider) ExportCSV() ([]byte, error) {
	return exchange.ExportCSV(p.Snapshot())
}

// ImportJSON validates and applies an import payload as a single
// state-replacing mutation. Invalid payloads leave the existing state
// untouched.
func (p *Provider) ImportJSON(ctx context.Context, data []byte) error {
	imported, err := exchange.ImportJSON(data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.commitLocked(ctx, "import", func(next *core.FinanceState) {
		*next = *imported
	})
	return nil
}

// commitLocked applies fn to a clone of the current state, records the
// previous state in the undo history and persists everything. The caller
// holds the mutex. Persistence failures are logged, not propagated: the
// mutation still commits in memory.
func (p *Provider) commitLocked(ctx context.Context, op string, fn func(next *core.FinanceState)) {
	next := p.st.Clone()
	fn(next)

	p.hist.Record(p.st)
	p.st = next
	p.version++
	p.persistLocked(ctx, op)
}

func (p *Provider) persistLocked(ctx context.Context, op string) {
	if err := p.store.SaveState(ctx, p.st); err != nil {
		slog.ErrorContext(ctx, "Failed to persist finance data",
			log.FieldComponent, log.ComponentState, log.FieldOperation, op, log.FieldError, err)
	}
	if err := p.store.SaveStack(ctx, storage.KeyUndoStack, p.hist.UndoStack()); err != nil {
		slog.ErrorContext(ctx, "Failed to persist undo stack",
			log.FieldComponent, log.ComponentState, log.FieldOperation, op, log.FieldError, err)
	}
	if err := p.store.SaveStack(ctx, storage.KeyRedoStack, p.hist.RedoStack()); err != nil {
		slog.ErrorContext(ctx, "Failed to persist redo stack",
			log.FieldComponent, log.ComponentState, log.FieldOperation, op, log.FieldError, err)
	}
}

func (p *Provider) publishLocked(ctx context.Context, e *notify.Event) {
	if p.notifier == nil || !p.prefs.Notifications {
		return
	}
	if err := p.notifier.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "Failed to publish event",
			log.FieldComponent, log.ComponentState, "kind", e.Kind, log.FieldError, err)
	}
}
