package http

import (
	"encoding/json"
	"io"
	"net/http"

	"fintrack/internal/log"
)

// maxImportBytes bounds import payloads; full states are small.
const maxImportBytes = 10 << 20

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.Undo(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "State restored",
		log.FieldOperation, log.OpUndo)
	writeJSON(w, http.StatusOK, s.provider.Snapshot())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if err := s.provider.Redo(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "State restored",
		log.FieldOperation, log.OpRedo)
	writeJSON(w, http.StatusOK, s.provider.Snapshot())
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.provider.Preferences())
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	// Decode over the current preferences so a partial body only changes
	// the keys it names.
	prefs := s.provider.Preferences()
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.provider.SavePreferences(r.Context(), prefs); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := s.provider.ExportJSON()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Export generated",
		log.FieldOperation, log.OpExport, "format", "json")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="fintrack-export.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.provider.ExportCSV()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Export generated",
		log.FieldOperation, log.OpExport, "format", "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="fintrack-export.csv"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := s.provider.ImportJSON(r.Context(), body); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Import rejected",
			log.FieldOperation, log.OpImport, log.FieldError, err.Error())
		writeDomainError(w, err)
		return
	}

	snap := s.provider.Snapshot()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Import applied",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(snap.Transactions))
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": len(snap.Transactions),
		"categories":   len(snap.Categories),
	})
}
