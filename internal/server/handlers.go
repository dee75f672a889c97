package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-scanner/internal/common"
	"github.com/joseph-ayodele/receipts-scanner/internal/ingest"
	"github.com/joseph-ayodele/receipts-scanner/internal/scan"
	"github.com/joseph-ayodele/receipts-scanner/internal/store"
)

const maxUploadBytes = 64 << 20

// Handler implements the JSON endpoints. Responses follow the
// {"status": "success"|"error"} envelope the frontend polls against.
type Handler struct {
	session *ingest.Session
	scanner *scan.Service
	repo    store.ReceiptRepository
	logger  *slog.Logger
}

func NewHandler(session *ingest.Session, scanner *scan.Service, repo store.ReceiptRepository, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{session: session, scanner: scanner, repo: repo, logger: logger}
}

// Upload accepts a multipart form with a files[] field and stores each part
// in the session upload directory.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	parts := r.MultipartForm.File["files[]"]
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, "No files part")
		return
	}

	saved := 0
	for _, part := range parts {
		if part.Filename == "" {
			continue
		}
		src, err := part.Open()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "read upload: "+err.Error())
			return
		}
		_, err = h.session.Save(part.Filename, src)
		_ = src.Close()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "save upload: "+err.Error())
			return
		}
		saved++
	}
	h.logger.Info("http.upload.ok", "files", saved)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": saved})
}

// Reset clears the upload session and its files.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, "reset session: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Session reset"})
}

// Scan starts a background scan over the session's images.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	paths := h.session.Images()
	// The scan outlives this request, so it cannot inherit the request
	// context.
	if err := h.scanner.Start(context.Background(), paths); err != nil {
		if errors.Is(err, common.ErrBusy) {
			writeError(w, http.StatusConflict, "Scan already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "Scanning started"})
}

// Status reports scan progress for the polling frontend.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scanner.Progress())
}

// Sessions lists past scan batches, newest first.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list sessions: "+err.Error())
		return
	}
	out := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, map[string]any{
			"id":         s.ID.String(),
			"started_at": s.StartedAt.Format(time.RFC3339),
			"processed":  s.Processed,
			"failed":     s.Failed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "sessions": out})
}

// SessionReceipts returns the stored rows for one session.
func (h *Handler) SessionReceipts(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	records, err := h.repo.ListBySession(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list receipts: "+err.Error())
		return
	}
	rows := make([]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "receipts": rows})
}

func (s *Server) download(path, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(path); err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		http.ServeFile(w, r, path)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"status": "error", "message": msg})
}
