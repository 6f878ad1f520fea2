package receipt

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/obs"
)

// Handler serves PDF reprints of retained sale snapshots.
type Handler struct {
	Store *Store
}

// Get handles GET /api/v1/receipts/{orderID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	snap, err := h.Store.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.WriteError(w, common.NotFoundError("receipt not found"))
			return
		}
		common.WriteError(w, err)
		return
	}
	pdf, err := RenderReceipt(snap)
	if err != nil {
		if obs.ReceiptRenderTotal != nil {
			obs.ReceiptRenderTotal.WithLabelValues("sale", "error").Inc()
		}
		common.WriteError(w, err)
		return
	}
	if obs.ReceiptRenderTotal != nil {
		obs.ReceiptRenderTotal.WithLabelValues("sale", "ok").Inc()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="receipt-`+orderID+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	_, _ = w.Write(pdf)
}
