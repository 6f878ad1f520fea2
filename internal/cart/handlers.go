package cart

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/common"
)

// Handler wires cart sessions to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type openCartRequest struct {
	RegisterID string `json:"registerId" validate:"required"`
	EntityID   string `json:"entityId"`
}

type addLineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId" validate:"required"`
}

type patchLineRequest struct {
	QuantityDelta *int64           `json:"quantityDelta"`
	Rate          *decimal.Decimal `json:"rate"`
}

type patchChargeRequest struct {
	Label  *string          `json:"label"`
	Amount *decimal.Decimal `json:"amount"`
}

type discountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type customerRequest struct {
	EntityID string `json:"entityId"`
}

type addPaymentRequest struct {
	AccountID string          `json:"accountId" validate:"required"`
	Amount    decimal.Decimal `json:"amount"`
	Details   string          `json:"details"`
}

type patchPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var payload openCartRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.Open(r.Context(), payload.RegisterID, payload.EntityID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, cartPayload(c))
}

// Get handles GET /api/v1/carts/{cartID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// AddLine handles POST /api/v1/carts/{cartID}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var payload addLineRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.AddLine(r.Context(), chi.URLParam(r, "cartID"), payload.ProductID, payload.VariantID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// UpdateLine handles PATCH /api/v1/carts/{cartID}/lines/{index}.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r, "index")
	if !ok {
		return
	}
	var payload patchLineRequest
	if !h.decode(w, r, &payload) {
		return
	}
	if payload.QuantityDelta == nil && payload.Rate == nil {
		common.WriteError(w, common.ValidationError("nothing to update"))
		return
	}
	c, err := h.Svc.UpdateLine(r.Context(), chi.URLParam(r, "cartID"), index, payload.QuantityDelta, payload.Rate)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// RemoveLine handles DELETE /api/v1/carts/{cartID}/lines/{index}.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r, "index")
	if !ok {
		return
	}
	c, err := h.Svc.RemoveLine(r.Context(), chi.URLParam(r, "cartID"), index)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// AddCharge handles POST /api/v1/carts/{cartID}/charges.
func (h *Handler) AddCharge(w http.ResponseWriter, r *http.Request) {
	c, id, err := h.Svc.AddCharge(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	body := cartPayload(c)
	body["chargeId"] = id
	common.JSONData(w, http.StatusCreated, body)
}

// UpdateCharge handles PATCH /api/v1/carts/{cartID}/charges/{chargeID}.
func (h *Handler) UpdateCharge(w http.ResponseWriter, r *http.Request) {
	var payload patchChargeRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.UpdateCharge(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "chargeID"), payload.Label, payload.Amount)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// RemoveCharge handles DELETE /api/v1/carts/{cartID}/charges/{chargeID}.
func (h *Handler) RemoveCharge(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.RemoveCharge(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "chargeID"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// SetDiscount handles PUT /api/v1/carts/{cartID}/discount.
func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var payload discountRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.SetDiscount(r.Context(), chi.URLParam(r, "cartID"), payload.Amount)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// SetCustomer handles PUT /api/v1/carts/{cartID}/customer.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.SetCustomer(r.Context(), chi.URLParam(r, "cartID"), payload.EntityID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// AddPayment handles POST /api/v1/carts/{cartID}/payments.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var payload addPaymentRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.AddPayment(r.Context(), chi.URLParam(r, "cartID"), payload.AccountID, payload.Amount, payload.Details)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, cartPayload(c))
}

// UpdatePayment handles PATCH /api/v1/carts/{cartID}/payments/{index}.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r, "index")
	if !ok {
		return
	}
	var payload patchPaymentRequest
	if !h.decode(w, r, &payload) {
		return
	}
	c, err := h.Svc.UpdatePayment(r.Context(), chi.URLParam(r, "cartID"), index, payload.Amount)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// RemovePayment handles DELETE /api/v1/carts/{cartID}/payments/{index}.
func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r, "index")
	if !ok {
		return
	}
	c, err := h.Svc.RemovePayment(r.Context(), chi.URLParam(r, "cartID"), index)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, cartPayload(c))
}

// Abandon handles DELETE /api/v1/carts/{cartID}.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Abandon(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid JSON payload", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
			return false
		}
	}
	return true
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid "+name, nil)
		return 0, false
	}
	return index, true
}

func cartPayload(c *Cart) map[string]any {
	return map[string]any{
		"cart":   c,
		"totals": c.Totals(),
	}
}
