package core

import "time"

// MonthSummary is derived on demand from a FinanceState; it is never
// persisted. Balance is income minus expense.
type MonthSummary struct {
	Year            int              `json:"year"`
	Month           time.Month       `json:"month"`
	TotalIncome     Money            `json:"totalIncome"`
	TotalExpense    Money            `json:"totalExpense"`
	Balance         Money            `json:"balance"`
	CategorySummary map[string]Money `json:"categorySummary"`
}

// YearSummary aggregates twelve month summaries plus yearly totals.
type YearSummary struct {
	Year            int              `json:"year"`
	Months          []MonthSummary   `json:"months"`
	TotalIncome     Money            `json:"totalIncome"`
	TotalExpense    Money            `json:"totalExpense"`
	Balance         Money            `json:"balance"`
	CategorySummary map[string]Money `json:"categorySummary"`
}

// FilterByDateRange returns the transactions whose date falls within
// [from, to], both ends inclusive.
func FilterByDateRange(txs []Transaction, from, to Date) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.Before(from.Time) || t.Date.After(to.Time) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FilterByType returns the transactions of the given type.
func FilterByType(txs []Transaction, typ TransactionType) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

// SumByType totals the amounts of one transaction type. Empty input sums
// to zero.
func SumByType(txs []Transaction, typ TransactionType) Money {
	var total Money
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// CategoryBreakdown maps category id to summed amount. The function is
// agnostic to category existence: unknown ids appear as-is and are resolved
// (or labeled unknown) by callers.
func CategoryBreakdown(txs []Transaction) map[string]Money {
	out := make(map[string]Money)
	for _, t := range txs {
		out[t.CategoryID] = out[t.CategoryID].Add(t.Amount)
	}
	return out
}

// ComputeMonthSummary computes totals and breakdown for one calendar month,
// from the first day at 00:00:00 through the last day at 23:59:59.
func ComputeMonthSummary(s *FinanceState, month time.Month, year int) MonthSummary {
	first := NewDate(year, month, 1)
	last := NewDate(year, month+1, 0) // day 0 of next month
	txs := FilterByDateRange(s.Transactions, first, last)

	income := SumByType(txs, Income)
	expense := SumByType(txs, Expense)
	return MonthSummary{
		Year:            year,
		Month:           month,
		TotalIncome:     income,
		TotalExpense:    expense,
		Balance:         income.Sub(expense),
		CategorySummary: CategoryBreakdown(txs),
	}
}

// ComputeYearSummary computes the twelve month summaries of a year plus the
// yearly totals and breakdown.
func ComputeYearSummary(s *FinanceState, year int) YearSummary {
	out := YearSummary{
		Year:            year,
		Months:          make([]MonthSummary, 0, 12),
		CategorySummary: make(map[string]Money),
	}
	for m := time.January; m <= time.December; m++ {
		ms := ComputeMonthSummary(s, m, year)
		out.Months = append(out.Months, ms)
		out.TotalIncome = out.TotalIncome.Add(ms.TotalIncome)
		out.TotalExpense = out.TotalExpense.Add(ms.TotalExpense)
		for id, amt := range ms.CategorySummary {
			out.CategorySummary[id] = out.CategorySummary[id].Add(amt)
		}
	}
	out.Balance = out.TotalIncome.Sub(out.TotalExpense)
	return out
}
