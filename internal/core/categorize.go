package core

import "strings"

// Suggester proposes a category for a transaction being entered. The keyword
// heuristic below is the default implementation; callers depend on the
// interface so a smarter classifier can be swapped in without change.
type Suggester interface {
	// Suggest returns a category id for the description, restricted to
	// categories of the given type. ok is false when nothing matched and no
	// fallback category exists.
	Suggest(description string, typ TransactionType, categories []Category) (id string, ok bool)
}

// KeywordSuggester matches lower-cased descriptions against a static keyword
// table keyed by category id. First category (in list order) with a keyword
// hit wins; otherwise the well-known "other-income"/"other-expense" fallback
// is used when present among the candidates.
type KeywordSuggester struct {
	keywords map[string][]string
}

// NewKeywordSuggester returns a suggester over the default keyword table.
func NewKeywordSuggester() *KeywordSuggester {
	return &KeywordSuggester{keywords: defaultKeywords}
}

// NewKeywordSuggesterWithTable returns a suggester over a custom table.
func NewKeywordSuggesterWithTable(table map[string][]string) *KeywordSuggester {
	return &KeywordSuggester{keywords: table}
}

var defaultKeywords = map[string][]string{
	"salary":        {"salary", "payroll", "wage", "stipend"},
	"freelance":     {"freelance", "invoice", "client", "consulting", "gig"},
	"investment":    {"dividend", "interest", "stock", "coupon", "yield"},
	"food":          {"grocery", "groceries", "supermarket", "market", "aldi", "lidl", "coop"},
	"dining":        {"restaurant", "cafe", "coffee", "bar", "pizza", "takeaway", "lunch", "dinner"},
	"transport":     {"bus", "train", "metro", "taxi", "uber", "fuel", "gas", "parking", "ticket"},
	"housing":       {"rent", "mortgage", "condo", "landlord"},
	"utilities":     {"electric", "electricity", "water", "internet", "phone", "heating", "utility"},
	"health":        {"pharmacy", "doctor", "dentist", "clinic", "medicine", "gym"},
	"entertainment": {"cinema", "movie", "netflix", "spotify", "concert", "game", "book"},
	"shopping":      {"amazon", "clothes", "clothing", "shoes", "electronics", "store"},
}

func (k *KeywordSuggester) Suggest(description string, typ TransactionType, categories []Category) (string, bool) {
	desc := strings.ToLower(description)
	fallbackID := ""
	wantFallback := "other-expense"
	if typ == Income {
		wantFallback = "other-income"
	}

	for _, c := range categories {
		if c.Type != typ {
			continue
		}
		if c.ID == wantFallback {
			fallbackID = c.ID
		}
		for _, kw := range k.keywords[c.ID] {
			if strings.Contains(desc, kw) {
				return c.ID, true
			}
		}
	}
	if fallbackID != "" {
		return fallbackID, true
	}
	return "", false
}

// SuggestCategory runs the default keyword suggester. Convenience for
// callers that do not hold a Suggester.
func SuggestCategory(description string, typ TransactionType, categories []Category) (string, bool) {
	return NewKeywordSuggester().Suggest(description, typ, categories)
}
