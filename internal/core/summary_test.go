package core

import (
	"testing"
	"time"
)

func tx(id string, cents int64, typ TransactionType, date Date, category string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      Money{Cents: cents},
		Description: id,
		Date:        date,
		Type:        typ,
		CategoryID:  category,
	}
}

func TestFilterByDateRange(t *testing.T) {
	txs := []Transaction{
		tx("a", 100, Expense, NewDate(2024, time.January, 1), "food"),
		tx("b", 100, Expense, NewDate(2024, time.January, 31), "food"),
		tx("c", 100, Expense, NewDate(2024, time.February, 1), "food"),
	}
	got := FilterByDateRange(txs, NewDate(2024, time.January, 1), NewDate(2024, time.January, 31))
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2 (range is inclusive)", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected ids %s, %s", got[0].ID, got[1].ID)
	}
}

func TestSumByTypeEmpty(t *testing.T) {
	if got := SumByType(nil, Income); got.Cents != 0 {
		t.Fatalf("empty input should sum to zero, got %d", got.Cents)
	}
}

func TestComputeMonthSummaryTotals(t *testing.T) {
	// 100 income (salary) + 40 expense (food) in January 2024.
	st := &FinanceState{
		Transactions: []Transaction{
			tx("t1", 10000, Income, NewDate(2024, time.January, 5), "salary"),
			tx("t2", 4000, Expense, NewDate(2024, time.January, 10), "food"),
		},
		Categories: DefaultCategories(),
		Version:    StateVersion,
	}
	got := ComputeMonthSummary(st, time.January, 2024)

	if got.TotalIncome.Cents != 10000 {
		t.Errorf("totalIncome = %d, want 10000", got.TotalIncome.Cents)
	}
	if got.TotalExpense.Cents != 4000 {
		t.Errorf("totalExpense = %d, want 4000", got.TotalExpense.Cents)
	}
	if got.Balance.Cents != 6000 {
		t.Errorf("balance = %d, want 6000", got.Balance.Cents)
	}
	if got.CategorySummary["salary"].Cents != 10000 || got.CategorySummary["food"].Cents != 4000 {
		t.Errorf("unexpected breakdown %v", got.CategorySummary)
	}
}

func TestComputeMonthSummaryEmpty(t *testing.T) {
	got := ComputeMonthSummary(DefaultState(), time.June, 2024)
	if got.TotalIncome.Cents != 0 || got.TotalExpense.Cents != 0 || got.Balance.Cents != 0 {
		t.Fatalf("empty state should yield zero summary, got %+v", got)
	}
	if len(got.CategorySummary) != 0 {
		t.Fatalf("empty state should yield empty breakdown, got %v", got.CategorySummary)
	}
}

func TestComputeMonthSummaryCalendarBoundaries(t *testing.T) {
	st := &FinanceState{
		Transactions: []Transaction{
			tx("dec", 100, Expense, NewDate(2023, time.December, 31), "food"),
			tx("jan1", 200, Expense, NewDate(2024, time.January, 1), "food"),
			tx("jan31", 300, Expense, NewDate(2024, time.January, 31), "food"),
			tx("feb", 400, Expense, NewDate(2024, time.February, 1), "food"),
		},
		Version: StateVersion,
	}
	got := ComputeMonthSummary(st, time.January, 2024)
	if got.TotalExpense.Cents != 500 {
		t.Fatalf("january total = %d, want 500 (both month ends inclusive)", got.TotalExpense.Cents)
	}
}

func TestComputeYearSummaryTotalsMatchMonths(t *testing.T) {
	st := &FinanceState{
		Transactions: []Transaction{
			tx("t1", 10000, Income, NewDate(2024, time.January, 5), "salary"),
			tx("t2", 4000, Expense, NewDate(2024, time.January, 10), "food"),
			tx("t3", 20000, Income, NewDate(2024, time.June, 1), "salary"),
			tx("t4", 1500, Expense, NewDate(2024, time.December, 24), "shopping"),
			tx("t5", 999, Expense, NewDate(2023, time.December, 31), "food"), // other year
		},
		Version: StateVersion,
	}
	got := ComputeYearSummary(st, 2024)

	if len(got.Months) != 12 {
		t.Fatalf("got %d months, want 12", len(got.Months))
	}
	var income, expense int64
	for _, m := range got.Months {
		income += m.TotalIncome.Cents
		expense += m.TotalExpense.Cents
		if m.Balance.Cents != m.TotalIncome.Cents-m.TotalExpense.Cents {
			t.Errorf("month %v balance law violated", m.Month)
		}
	}
	if got.TotalIncome.Cents != income {
		t.Errorf("year income %d != sum of months %d", got.TotalIncome.Cents, income)
	}
	if got.TotalExpense.Cents != expense {
		t.Errorf("year expense %d != sum of months %d", got.TotalExpense.Cents, expense)
	}
	if got.Balance.Cents != got.TotalIncome.Cents-got.TotalExpense.Cents {
		t.Errorf("year balance law violated")
	}
	if got.CategorySummary["food"].Cents != 4000 {
		t.Errorf("2023 transaction leaked into 2024 breakdown: %v", got.CategorySummary)
	}
}

func TestCategoryBreakdownUnknownCategory(t *testing.T) {
	got := CategoryBreakdown([]Transaction{
		tx("t1", 100, Expense, NewDate(2024, time.January, 1), "deleted-cat"),
	})
	if got["deleted-cat"].Cents != 100 {
		t.Fatalf("unknown category ids must be tolerated, got %v", got)
	}
}
