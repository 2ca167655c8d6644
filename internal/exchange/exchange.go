// Package exchange implements file-based import and export of the finance
// data record: pretty-printed JSON that re-imports verbatim, and a CSV
// rendering for spreadsheets.
package exchange

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// ErrInvalidImport is returned when an import payload is malformed or is
// missing one of the required top-level keys.
var ErrInvalidImport = errors.New("invalid import payload")

// CSVHeader is the fixed column layout of CSV exports.
var CSVHeader = []string{"id", "date", "type", "category", "description", "amount", "tags", "recurring", "receiptURL"}

// ExportJSON renders the finance data as indented JSON. The output is a
// valid import payload.
func ExportJSON(s *core.FinanceState) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode finance data: %w", err)
	}
	return out, nil
}

// ImportJSON parses an export payload. The top-level object must carry the
// "transactions", "categories" and "version" keys; anything else is
// rejected with ErrInvalidImport so the caller leaves existing state
// untouched.
func ImportJSON(data []byte) (*core.FinanceState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	for _, key := range []string{"transactions", "categories", "version"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrInvalidImport, key)
		}
	}

	var st core.FinanceState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if st.Version == "" {
		st.Version = core.StateVersion
	}
	return &st, nil
}

// ExportCSV renders the transactions as CSV. The category column carries
// the resolved category name, falling back to the raw id for unknown
// categories; tags are joined with ";"; the recurring column is
// "frequency" optionally suffixed with ";endDate".
func ExportCSV(s *core.FinanceState) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range s.Transactions {
		name := t.CategoryID
		if c, ok := s.CategoryByID(t.CategoryID); ok {
			name = c.Name
		}
		row := []string{
			t.ID,
			t.Date.String(),
			string(t.Type),
			name,
			t.Description,
			t.Amount.String(),
			strings.Join(t.Tags, ";"),
			recurringColumn(t.Recurring),
			t.ReceiptURL,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func recurringColumn(r *core.RecurringInfo) string {
	if r == nil {
		return ""
	}
	if r.EndDate.IsEmpty() {
		return string(r.Frequency)
	}
	return string(r.Frequency) + ";" + r.EndDate.String()
}
