package register

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/common"
)

// Handler wires register reconciliation to HTTP.
type Handler struct {
	Svc *Service
}

type closeRequest struct {
	CountedBalance decimal.Decimal `json:"countedBalance"`
}

// Get handles GET /api/v1/registers/{registerID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.View(r.Context(), chi.URLParam(r, "registerID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, view)
}

// Close handles POST /api/v1/registers/{registerID}/close.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	var payload closeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid JSON payload", nil)
		return
	}
	result, err := h.Svc.Close(r.Context(), chi.URLParam(r, "registerID"), payload.CountedBalance)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, result)
}
