package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fruitpos/internal/uploads"

	"github.com/go-chi/chi/v5"
)

type UploadsHandler struct {
	Repo   *uploads.Repo
	Worker *uploads.Worker
}

// List serves the operator job screen: jobs newest first, optionally filtered
// by status. Payload bodies never leave the store (model hides them from JSON).
func (h *UploadsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := uploads.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "", uploads.StatusQueued, uploads.StatusUploading, uploads.StatusSuccess, uploads.StatusError:
	default:
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 50)

	rows, total, err := h.Repo.List(r.Context(), status, page, pageSize)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jobs":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (h *UploadsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Repo.CountByStatus(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(counts)
}

func (h *UploadsHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Repo.Retry(r.Context(), id); err != nil {
		if errors.Is(err, uploads.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type drainReq struct {
	Limit int `json:"limit"`
}

// Drain is the operator "sync now" action: one synchronous claim+process pass.
func (h *UploadsHandler) Drain(w http.ResponseWriter, r *http.Request) {
	var req drainReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	n, err := h.Worker.DrainOnce(r.Context(), req.Limit)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"processed": n,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
