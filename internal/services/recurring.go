// Package services provides business logic around the finance domain.
//
// This file implements the recurring-transaction generator. Each frequency
// has a period rule that computes how many whole periods elapsed since the
// template's last processed date and advances that date; the generator is a
// pure function over (transactions, now).
package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// PeriodRule encapsulates the calendar arithmetic for one recurrence
// frequency.
type PeriodRule interface {
	// Elapsed returns the number of whole periods between last and now.
	Elapsed(last, now core.Date) int
	// Advance moves a date forward by n periods.
	Advance(d core.Date, n int) core.Date
}

// DailyRule counts elapsed calendar days.
type DailyRule struct{}

func (DailyRule) Elapsed(last, now core.Date) int {
	return daysBetween(last, now)
}

func (DailyRule) Advance(d core.Date, n int) core.Date {
	return core.Date{Time: d.AddDate(0, 0, n)}
}

// WeeklyRule counts full 7-day periods.
type WeeklyRule struct{}

func (WeeklyRule) Elapsed(last, now core.Date) int {
	return daysBetween(last, now) / 7
}

func (WeeklyRule) Advance(d core.Date, n int) core.Date {
	return core.Date{Time: d.AddDate(0, 0, n*7)}
}

// MonthlyRule counts full calendar months using year*12+month arithmetic;
// the day of month is ignored.
type MonthlyRule struct{}

func (MonthlyRule) Elapsed(last, now core.Date) int {
	return (now.Year()-last.Year())*12 + int(now.Month()) - int(last.Month())
}

// Advance clamps to the last day of the target month, so Jan 31 + 1 month is
// Feb 29 in a leap year rather than the AddDate normalization into March.
func (MonthlyRule) Advance(d core.Date, n int) core.Date {
	return addMonthsClamped(d, n)
}

// YearlyRule counts full calendar years.
type YearlyRule struct{}

func (YearlyRule) Elapsed(last, now core.Date) int {
	return now.Year() - last.Year()
}

// Advance clamps Feb 29 anchors to Feb 28 in non-leap target years.
func (YearlyRule) Advance(d core.Date, n int) core.Date {
	return addMonthsClamped(d, n*12)
}

func addMonthsClamped(d core.Date, months int) core.Date {
	y, m, day := d.Year(), d.Month()+time.Month(months), d.Day()
	if last := lastDayOfMonth(y, m); day > last {
		day = last
	}
	return core.NewDate(y, m, day)
}

// lastDayOfMonth tolerates out-of-range months; time.Date normalizes them.
func lastDayOfMonth(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var periodRules = map[core.Frequency]PeriodRule{
	core.Daily:   DailyRule{},
	core.Weekly:  WeeklyRule{},
	core.Monthly: MonthlyRule{},
	core.Yearly:  YearlyRule{},
}

// GetPeriodRule returns the rule for a frequency.
func GetPeriodRule(f core.Frequency) (PeriodRule, error) {
	rule, ok := periodRules[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return rule, nil
}

func daysBetween(from, to core.Date) int {
	return int(to.Sub(from.Time) / (24 * time.Hour))
}

// GenerateRecurring scans the transactions for recurring templates that are
// due at the reference date and returns the newly generated instances. The
// input is never mutated; each emitted instance carries the advanced
// LastProcessed that the caller must also write back onto its template.
//
// Multiple elapsed periods collapse into a single emitted instance whose
// date is the template date advanced by the full elapsed count. A template
// therefore produces at most one instance per invocation.
func GenerateRecurring(txs []core.Transaction, now time.Time) []core.Transaction {
	today := core.DateOf(now)
	var out []core.Transaction

	for _, t := range txs {
		if t.Recurring == nil || t.Recurring.LastProcessed.IsEmpty() {
			continue
		}
		r := t.Recurring
		if !r.EndDate.IsEmpty() && r.EndDate.Before(today.Time) {
			continue
		}
		rule, err := GetPeriodRule(r.Frequency)
		if err != nil {
			continue
		}
		elapsed := rule.Elapsed(r.LastProcessed, today)
		if elapsed < 1 {
			continue
		}

		next := rule.Advance(r.LastProcessed, elapsed)
		if r.Frequency == core.Monthly || r.Frequency == core.Yearly {
			next = restoreAnchorDay(next, t.Date.Day())
		}
		instance := t.Clone()
		instance.ID = InstanceID(t.ID, next)
		instance.Date = next
		instance.Recurring.LastProcessed = next
		out = append(out, instance)
	}
	return out
}

// restoreAnchorDay snaps a date back to the template's original day of month
// where the target month allows it. LastProcessed gets clamped passing
// through a short month (31st to Feb 29), and without this a month-end
// schedule would drift to the 29th forever. The template's date defines the
// schedule, so the anchor wins over whatever day the marker carries.
func restoreAnchorDay(d core.Date, anchor int) core.Date {
	day := anchor
	if last := lastDayOfMonth(d.Year(), d.Month()); day > last {
		day = last
	}
	return core.NewDate(d.Year(), d.Month(), day)
}

// InstanceID derives the id of a generated instance from its template id
// and occurrence date, guaranteeing per-date uniqueness.
func InstanceID(templateID string, date core.Date) string {
	return templateID + "-" + date.String()
}
