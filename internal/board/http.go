package board

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-system/internal/domain"
)

type Handler struct {
	b *Board
}

func NewHandler(b *Board) *Handler { return &Handler{b: b} }

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders", h.Orders)
	mux.HandleFunc("PATCH /orders/{id}/status", h.SetStatus)
	mux.HandleFunc("DELETE /orders/{id}", h.Delete)
}

func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	view := h.b.View(r.URL.Query().Get("search"))
	out := map[string]any{
		"pending":   view.Pending,
		"on_hold":   view.OnHold,
		"completed": view.Completed,
		"empty":     view.Empty,
	}
	if notice := h.b.Notice(); notice != "" {
		out["notice"] = notice
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	// Always accepted; a store failure is logged, not surfaced.
	h.b.SetStatus(r.Context(), req.Identity, r.PathValue("id"), domain.ParseStatus(req.Status))
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	confirmed := q.Get("confirm") == "true"
	err := h.b.Delete(r.Context(), q.Get("identity"), r.PathValue("id"), confirmed)
	if errors.Is(err, domain.ErrNotConfirmed) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
