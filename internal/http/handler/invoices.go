package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fruitpos/internal/invoice"

	"github.com/go-chi/chi/v5"
)

type InvoiceHandler struct {
	Svc *invoice.Service
}

type createInvoiceItemReq struct {
	Name      string  `json:"name"`
	WeightKg  float64 `json:"weight_kg"`
	UnitPrice float64 `json:"unit_price"`
	ThumbData string  `json:"thumb_data"`
	ImageData string  `json:"image_data"`
}

type createInvoiceReq struct {
	Code         string                 `json:"code"`
	CustomerName string                 `json:"customer_name"`
	Items        []createInvoiceItemReq `json:"items"`
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		http.Error(w, "items required", http.StatusBadRequest)
		return
	}

	in := invoice.CreateInvoiceInput{
		Code:         strings.TrimSpace(req.Code),
		CustomerName: strings.TrimSpace(req.CustomerName),
	}
	for _, it := range req.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" || it.WeightKg < 0 || it.UnitPrice < 0 {
			http.Error(w, "invalid item", http.StatusBadRequest)
			return
		}
		in.Items = append(in.Items, invoice.CreateItemInput{
			Name:      name,
			WeightKg:  it.WeightKg,
			UnitPrice: it.UnitPrice,
			ThumbData: it.ThumbData,
			ImageData: it.ImageData,
		})
	}

	inv, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":    inv.ID,
		"code":  inv.Code,
		"total": inv.Total,
	})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	inv, err := h.Svc.ByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(inv)
}
