// Package handlers provides the HTTP API for reviewing past sessions.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/export"
	"github.com/parleyhq/parley/internal/store"
	"github.com/parleyhq/parley/internal/style"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store store.Store
}

// New creates a new Handler over the session store.
func New(st store.Store) *Handler {
	return &Handler{store: st}
}

// Router builds the HTTP router with all routes and middleware.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)

	r.Get("/api/sessions", h.handleListSessions)
	r.Get("/api/sessions/{index}", h.handleGetSession)
	r.Get("/api/sessions/{index}/export/{format}", h.handleExportSession)
	r.Get("/api/styles", h.handleListStyles)

	return r
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.LoadAll()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	summaries := make([]core.SessionSummary, 0, len(sessions))
	for i, sess := range sessions {
		summaries = append(summaries, sess.Summarize(i))
	}
	h.json(w, summaries)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}
	h.json(w, sess)
}

func (h *Handler) handleExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookupSession(w, r)
	if !ok {
		return
	}

	format := chi.URLParam(r, "format")
	exporter, err := export.GetExporter(export.Format(format))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename := export.GenerateFilename(sess, exporter.FileExtension())

	switch export.Format(format) {
	case export.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	case export.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/markdown")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := exporter.Export(sess, w); err != nil {
		slog.Error("Export failed", "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
	}
}

func (h *Handler) handleListStyles(w http.ResponseWriter, r *http.Request) {
	h.json(w, style.DefaultStyles())
}

// lookupSession resolves the {index} path parameter against the store. It
// writes the error response itself and reports success via the bool.
func (h *Handler) lookupSession(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		h.jsonError(w, "invalid session index", http.StatusBadRequest)
		return nil, false
	}

	sessions, err := h.store.LoadAll()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if index >= len(sessions) {
		h.jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sessions[index], true
}

func (h *Handler) json(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
