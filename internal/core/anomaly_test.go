package core

import (
	"testing"
	"time"
)

func TestDetectAnomaliesSingleMonth(t *testing.T) {
	txs := []Transaction{
		tx("t1", 5000, Expense, NewDate(2024, time.March, 5), "food"),
		tx("t2", 2000, Expense, NewDate(2024, time.March, 9), "transport"),
	}
	if got := DetectAnomalies(txs); len(got) != 0 {
		t.Fatalf("fewer than two months must yield no anomalies, got %v", got)
	}
}

func TestDetectAnomaliesIncrease(t *testing.T) {
	txs := []Transaction{
		// food: 50 -> 100, +100%
		tx("t1", 5000, Expense, NewDate(2024, time.February, 10), "food"),
		tx("t2", 10000, Expense, NewDate(2024, time.March, 10), "food"),
		// transport: 40 -> 50, +25%, below threshold
		tx("t3", 4000, Expense, NewDate(2024, time.February, 12), "transport"),
		tx("t4", 5000, Expense, NewDate(2024, time.March, 12), "transport"),
		// income is never considered
		tx("t5", 100000, Income, NewDate(2024, time.March, 1), "salary"),
	}
	got := DetectAnomalies(txs)
	if len(got) != 1 {
		t.Fatalf("got %d anomalies, want 1: %v", len(got), got)
	}
	a := got[0]
	if a.CategoryID != "food" {
		t.Errorf("categoryId = %q, want food", a.CategoryID)
	}
	if a.Amount.Cents != 10000 {
		t.Errorf("amount = %d, want 10000", a.Amount.Cents)
	}
	if a.PercentChange != 100 {
		t.Errorf("percentChange = %v, want 100", a.PercentChange)
	}
}

func TestDetectAnomaliesSkipsTinyPriorMonth(t *testing.T) {
	// Prior month below 10 units: a huge relative jump is noise, not signal.
	txs := []Transaction{
		tx("t1", 500, Expense, NewDate(2024, time.February, 10), "food"),
		tx("t2", 50000, Expense, NewDate(2024, time.March, 10), "food"),
	}
	if got := DetectAnomalies(txs); len(got) != 0 {
		t.Fatalf("tiny prior month must be skipped, got %v", got)
	}
}

func TestDetectAnomaliesUsesTwoMostRecentMonths(t *testing.T) {
	// January data exists but only February vs March are compared.
	txs := []Transaction{
		tx("t1", 100000, Expense, NewDate(2024, time.January, 10), "food"),
		tx("t2", 5000, Expense, NewDate(2024, time.February, 10), "food"),
		tx("t3", 7600, Expense, NewDate(2024, time.March, 10), "food"),
	}
	got := DetectAnomalies(txs)
	if len(got) != 1 {
		t.Fatalf("got %d anomalies, want 1: %v", len(got), got)
	}
	if got[0].PercentChange != 52 {
		t.Errorf("percentChange = %v, want 52 (Feb vs Mar, not Jan)", got[0].PercentChange)
	}
}

func TestDetectAnomaliesCategoryMissingInPrior(t *testing.T) {
	// A category present only in the latest month has a zero prior amount,
	// which is below the minimum and therefore skipped.
	txs := []Transaction{
		tx("t1", 5000, Expense, NewDate(2024, time.February, 10), "food"),
		tx("t2", 5000, Expense, NewDate(2024, time.March, 10), "food"),
		tx("t3", 90000, Expense, NewDate(2024, time.March, 15), "shopping"),
	}
	if got := DetectAnomalies(txs); len(got) != 0 {
		t.Fatalf("category absent in prior month must be skipped, got %v", got)
	}
}
