package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// summaryCacheKey prefixes the state version so mutations never serve stale
// summaries: a bumped version simply misses.
func summaryCacheKey(version uint64, year int, month time.Month) string {
	return "v" + strconv.FormatUint(version, 10) + "-" + strconv.Itoa(year) + "-" + strconv.Itoa(int(month))
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	key := summaryCacheKey(s.provider.Version(), year, time.Month(month))
	if cached, ok := s.monthCache.Get(key); ok {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Month summary cache hit",
			log.FieldYear, year, log.FieldMonth, month)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary := s.provider.MonthSummary(time.Month(month), year)
	s.monthCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleYearSummary(w http.ResponseWriter, r *http.Request) {
	year := queryInt(r, "year", time.Now().Year())

	key := summaryCacheKey(s.provider.Version(), year, 0)
	if cached, ok := s.yearCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary := s.provider.YearSummary(year)
	s.yearCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	anomalies := s.provider.Anomalies()
	if anomalies == nil {
		anomalies = []core.Anomaly{}
	}
	writeJSON(w, http.StatusOK, anomalies)
}

func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	description := strings.TrimSpace(r.URL.Query().Get("description"))
	if description == "" {
		writeError(w, http.StatusBadRequest, "description query parameter is required")
		return
	}
	typ := core.TransactionType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = core.Expense
	}
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}

	id, ok := s.provider.SuggestCategory(description, typ)
	writeJSON(w, http.StatusOK, map[string]any{
		"categoryId": id,
		"matched":    ok,
	})
}
