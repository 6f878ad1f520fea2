package catalog

import (
	"net/http"

	"github.com/noah-isme/pos-terminal/internal/common"
)

// Handler exposes the terminal's read-side endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Products handles GET /api/v1/catalog/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListProducts(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, views)
}

// Accounts handles GET /api/v1/accounts.
func (h *Handler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.Accounts(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, accounts)
}

// Entities handles GET /api/v1/entities.
func (h *Handler) Entities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.Entities(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, entities)
}
