package core

import "sort"

// Anomaly reports a category whose expense total rose sharply in the most
// recent month of data compared to the month before it.
type Anomaly struct {
	CategoryID    string  `json:"categoryId"`
	Amount        Money   `json:"amount"`
	PercentChange float64 `json:"percentageChange"`
}

const (
	// anomalyMinPriorCents filters out divide-by-near-zero noise: categories
	// whose prior-month total is below 10 currency units are skipped.
	anomalyMinPriorCents = 1000

	// anomalyThresholdPercent is the month-over-month increase that counts
	// as an anomaly.
	anomalyThresholdPercent = 50.0
)

// DetectAnomalies buckets expense transactions by (year-month, category) and
// compares the two most recent months present in the data. Categories present
// in the latest month with an increase of 50% or more over the prior month
// are reported. Fewer than two distinct months yields an empty result.
func DetectAnomalies(txs []Transaction) []Anomaly {
	// Zero-padded yyyy-MM keys sort lexicographically in chronological order.
	buckets := make(map[string]map[string]Money)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		key := t.Date.Format("2006-01")
		if buckets[key] == nil {
			buckets[key] = make(map[string]Money)
		}
		buckets[key][t.CategoryID] = buckets[key][t.CategoryID].Add(t.Amount)
	}
	if len(buckets) < 2 {
		return nil
	}

	months := make([]string, 0, len(buckets))
	for k := range buckets {
		months = append(months, k)
	}
	sort.Strings(months)
	latest := buckets[months[len(months)-1]]
	prior := buckets[months[len(months)-2]]

	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Anomaly
	for _, id := range ids {
		prev := prior[id]
		if prev.Cents < anomalyMinPriorCents {
			continue
		}
		cur := latest[id]
		change := float64(cur.Cents-prev.Cents) / float64(prev.Cents) * 100
		if change >= anomalyThresholdPercent {
			out = append(out, Anomaly{CategoryID: id, Amount: cur, PercentChange: change})
		}
	}
	return out
}
