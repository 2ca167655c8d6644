package exchange

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func sampleState() *core.FinanceState {
	return &core.FinanceState{
		Transactions: []core.Transaction{
			{
				ID:          "t1",
				Amount:      core.Money{Cents: 4550},
				Description: "office supplies",
				Date:        core.NewDate(2024, time.January, 10),
				Type:        core.Expense,
				CategoryID:  "shopping",
				Tags:        []string{"work", "urgent"},
				ReceiptURL:  "receipts/t1.jpg",
			},
			{
				ID:          "t2",
				Amount:      core.Money{Cents: 999},
				Description: "streaming",
				Date:        core.NewDate(2024, time.January, 15),
				Type:        core.Expense,
				CategoryID:  "gone-category",
				Recurring: &core.RecurringInfo{
					Frequency:     core.Monthly,
					EndDate:       core.NewDate(2024, time.December, 31),
					LastProcessed: core.NewDate(2024, time.January, 15),
				},
			},
		},
		Categories: core.DefaultCategories(),
		Version:    core.StateVersion,
	}
}

func TestJSONRoundTrip(t *testing.T) {
	st := sampleState()
	data, err := ExportJSON(st)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	back, err := ImportJSON(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(back.Transactions) != 2 || len(back.Categories) != len(st.Categories) {
		t.Fatalf("round trip lost data: %d transactions, %d categories",
			len(back.Transactions), len(back.Categories))
	}
	if back.Transactions[0].Amount.Cents != 4550 {
		t.Errorf("amount = %d, want 4550", back.Transactions[0].Amount.Cents)
	}
	if back.Transactions[1].Recurring == nil || back.Transactions[1].Recurring.Frequency != core.Monthly {
		t.Errorf("recurring info lost in round trip")
	}
	if back.Version != core.StateVersion {
		t.Errorf("version = %q, want %q", back.Version, core.StateVersion)
	}
}

func TestImportJSONRejectsMissingKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{]`},
		{"missing transactions", `{"categories": [], "version": "1"}`},
		{"missing categories", `{"transactions": [], "version": "1"}`},
		{"missing version", `{"transactions": [], "categories": []}`},
		{"array payload", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ImportJSON([]byte(tt.in))
			if !errors.Is(err, ErrInvalidImport) {
				t.Errorf("error = %v, want ErrInvalidImport", err)
			}
		})
	}
}

func TestExportCSV(t *testing.T) {
	data, err := ExportCSV(sampleState())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "id,date,type,category,description,amount,tags,recurring,receiptURL" {
		t.Errorf("unexpected header %q", lines[0])
	}

	// Tags are joined with ";" which forces CSV quoting of the field.
	if !strings.Contains(lines[1], `"work;urgent"`) {
		t.Errorf("tags column not rendered as work;urgent: %q", lines[1])
	}
	// Category name resolved from id.
	if !strings.Contains(lines[1], "Shopping") {
		t.Errorf("category name not resolved: %q", lines[1])
	}
	if !strings.Contains(lines[1], "45.50") {
		t.Errorf("amount not rendered as decimal units: %q", lines[1])
	}

	// Unknown category falls back to the raw id; recurring column carries
	// frequency and end date.
	if !strings.Contains(lines[2], "gone-category") {
		t.Errorf("unresolved category must fall back to raw id: %q", lines[2])
	}
	if !strings.Contains(lines[2], `"monthly;2024-12-31"`) {
		t.Errorf("recurring column = %q, want monthly;2024-12-31", lines[2])
	}
}
