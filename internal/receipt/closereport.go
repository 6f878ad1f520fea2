package receipt

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/obs"
	"github.com/noah-isme/pos-terminal/internal/register"
)

// RegisterViewer provides the reconciliation view a close report is built
// from. The register service implements it.
type RegisterViewer interface {
	View(ctx context.Context, id string) (register.View, error)
}

// CloseReportHandler renders the register close-out PDF.
type CloseReportHandler struct {
	Registers RegisterViewer
	Currency  string
}

// Get handles GET /api/v1/registers/{registerID}/close-report. The optional
// `counted` query parameter prints a provisional over/short; without it the
// report assumes the drawer matches the expected balance.
func (h *CloseReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	registerID := chi.URLParam(r, "registerID")
	view, err := h.Registers.View(r.Context(), registerID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	counted := view.ExpectedClosing
	if raw := r.URL.Query().Get("counted"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			common.WriteError(w, common.ValidationError("invalid counted balance"))
			return
		}
		counted = parsed
	}

	pdf, err := RenderCloseReport(CloseReport{
		RegisterID:      view.ID,
		RegisterName:    view.Name,
		Currency:        h.Currency,
		OpenedAt:        view.OpenedAt,
		ClosedAt:        time.Now().UTC(),
		OpeningBalance:  view.OpeningBalance,
		ExpectedClosing: view.ExpectedClosing,
		CountedClosing:  counted,
		OverShort:       register.OverShort(view.ExpectedClosing, counted),
		Accounts:        view.Accounts,
	})
	if err != nil {
		if obs.ReceiptRenderTotal != nil {
			obs.ReceiptRenderTotal.WithLabelValues("close_report", "error").Inc()
		}
		common.WriteError(w, err)
		return
	}
	if obs.ReceiptRenderTotal != nil {
		obs.ReceiptRenderTotal.WithLabelValues("close_report", "ok").Inc()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="close-report-`+registerID+`.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	_, _ = w.Write(pdf)
}
