package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// StateVersion is the schema version written into every persisted FinanceState.
const StateVersion = "1"

type (
	TransactionType string

	Frequency string

	// Date is a calendar day, held as UTC midnight. Clock components are
	// ignored everywhere; two Dates are the same day iff Equal reports true.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// RecurringInfo is the template half of a recurring transaction: the
	// generator advances LastProcessed as it emits instances.
	RecurringInfo struct {
		Frequency     Frequency `json:"frequency"`
		EndDate       Date      `json:"endDate,omitempty"`
		LastProcessed Date      `json:"lastProcessed,omitempty"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
		CategoryID  string          `json:"categoryId"`
		Recurring   *RecurringInfo  `json:"recurring,omitempty"`
		ReceiptURL  string          `json:"receiptURL,omitempty"`
		Tags        []string        `json:"tags,omitempty"`
	}

	Category struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
		Icon  string          `json:"icon,omitempty"`
	}

	// FinanceState is the full owned aggregate: the unit of persistence and
	// of undo/redo snapshotting.
	FinanceState struct {
		Transactions []Transaction `json:"transactions"`
		Categories   []Category    `json:"categories"`
		Version      string        `json:"version"`
	}

	// UserPreferences is persisted separately from FinanceState and is not
	// part of the undo/redo history.
	UserPreferences struct {
		ThemeMode          string `json:"themeMode"`
		Currency           string `json:"currency"`
		DateFormat         string `json:"dateFormat"`
		Notifications      bool   `json:"notifications"`
		AutoCategorization bool   `json:"autoCategorization"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidColor     = errors.New("invalid category color")
	ErrEmptyCategory    = errors.New("empty category")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCategoryInUse    = errors.New("category is referenced by transactions")
	ErrTypeImmutable    = errors.New("transaction type cannot change")
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date as yyyy-MM-dd, the wire and export format.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsEmpty reports whether the date is unset (optional dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if t.Recurring != nil {
		if err := t.Recurring.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r RecurringInfo) Validate() error {
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("empty category id")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if !hexColorRe.MatchString(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Clone returns a deep copy of the transaction, including recurrence info
// and tags. Snapshots must never alias live slices.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Recurring != nil {
		r := *t.Recurring
		out.Recurring = &r
	}
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return out
}

// Clone returns a deep copy of the whole aggregate. Undo/redo snapshots and
// read-only views are always clones, never aliases of the live state.
func (s *FinanceState) Clone() *FinanceState {
	out := &FinanceState{Version: s.Version}
	if s.Transactions != nil {
		out.Transactions = make([]Transaction, len(s.Transactions))
		for i, t := range s.Transactions {
			out.Transactions[i] = t.Clone()
		}
	}
	if s.Categories != nil {
		out.Categories = append([]Category(nil), s.Categories...)
	}
	return out
}

// CategoryByID looks a category up by id.
func (s *FinanceState) CategoryByID(id string) (Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// TransactionByID looks a transaction up by id.
func (s *FinanceState) TransactionByID(id string) (Transaction, bool) {
	for _, t := range s.Transactions {
		if t.ID == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// CategoryReferenced reports whether any transaction references the category.
// Deletion must be rejected while this holds.
func (s *FinanceState) CategoryReferenced(id string) bool {
	for _, t := range s.Transactions {
		if t.CategoryID == id {
			return true
		}
	}
	return false
}

// DefaultPreferences are the values missing preference keys merge over.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		ThemeMode:          "light",
		Currency:           "EUR",
		DateFormat:         "2006-01-02",
		Notifications:      false,
		AutoCategorization: true,
	}
}

// DefaultState returns a fresh FinanceState seeded with the default
// categories, used on first run and when stored data is unreadable.
func DefaultState() *FinanceState {
	return &FinanceState{
		Transactions: []Transaction{},
		Categories:   DefaultCategories(),
		Version:      StateVersion,
	}
}

// DefaultCategories is the seed category set. The "other-income" and
// "other-expense" ids are well known: auto-categorization falls back to them.
func DefaultCategories() []Category {
	return []Category{
		{ID: "salary", Name: "Salary", Type: Income, Color: "#2e7d32"},
		{ID: "freelance", Name: "Freelance", Type: Income, Color: "#388e3c"},
		{ID: "investment", Name: "Investments", Type: Income, Color: "#43a047"},
		{ID: "other-income", Name: "Other Income", Type: Income, Color: "#66bb6a"},
		{ID: "food", Name: "Food & Groceries", Type: Expense, Color: "#c62828"},
		{ID: "dining", Name: "Dining Out", Type: Expense, Color: "#d32f2f"},
		{ID: "transport", Name: "Transport", Type: Expense, Color: "#1565c0"},
		{ID: "housing", Name: "Housing", Type: Expense, Color: "#6a1b9a"},
		{ID: "utilities", Name: "Utilities", Type: Expense, Color: "#00838f"},
		{ID: "health", Name: "Health", Type: Expense, Color: "#ad1457"},
		{ID: "entertainment", Name: "Entertainment", Type: Expense, Color: "#ef6c00"},
		{ID: "shopping", Name: "Shopping", Type: Expense, Color: "#4527a0"},
		{ID: "other-expense", Name: "Other Expenses", Type: Expense, Color: "#757575"},
	}
}
