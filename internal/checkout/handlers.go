package checkout

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/pos-terminal/internal/common"
)

// Handler wires checkout submission to HTTP.
type Handler struct {
	Svc *Service
}

type submitRequest struct {
	EntityID string `json:"entityId"`
}

// Submit handles POST /api/v1/carts/{cartID}/checkout. An empty body is
// accepted; the payload only carries the optional customer override.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && err != io.EOF {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid JSON payload", nil)
		return
	}
	result, err := h.Svc.Submit(r.Context(), Input{
		CartID:   chi.URLParam(r, "cartID"),
		EntityID: payload.EntityID,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, result)
}
