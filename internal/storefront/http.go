package storefront

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront-system/internal/domain"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog", h.Categories)
	mux.HandleFunc("GET /catalog/{category}", h.Items)
	mux.HandleFunc("POST /cart/items", h.AddLine)
	mux.HandleFunc("DELETE /cart/items", h.RemoveLine)
	mux.HandleFunc("GET /cart", h.Cart)
	mux.HandleFunc("POST /orders", h.SubmitOrder)
	mux.HandleFunc("GET /cooldown", h.Cooldown)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.svc.Categories()})
}

func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	items := h.svc.Items(category)
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{"name": it.Name, "price": it.UnitPrice})
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "items": out})
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req domain.AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.svc.AddLine(req.Identity, req.Category, req.Item, ParseQuantity(req.Quantity)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Cart(req.Identity))
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	var req domain.RemoveLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	// A non-numeric or out-of-range index is a no-op, not an error.
	if idx, err := strconv.Atoi(req.Index); err == nil {
		h.svc.RemoveLine(req.Identity, idx)
	}
	writeJSON(w, http.StatusOK, h.svc.Cart(req.Identity))
}

func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Cart(r.URL.Query().Get("identity")))
}

func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	resp, err := h.svc.SubmitOrder(r.Context(), req.Identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Cooldown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Cooldown(r.URL.Query().Get("identity")))
}

func writeError(w http.ResponseWriter, err error) {
	if domain.IsValidation(err) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	var swe *domain.StoreWriteError
	if errors.As(err, &swe) {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "there was an error placing your order, please try again",
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
