package register

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/obs"
)

// SessionSource fetches and closes register sessions. The upstream client
// implements it.
type SessionSource interface {
	Register(ctx context.Context, id string) (Session, error)
	CloseRegister(ctx context.Context, id string, counted decimal.Decimal) error
}

// View is the reconciliation picture of an open register.
type View struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Status          string           `json:"status"`
	OpeningBalance  decimal.Decimal  `json:"openingBalance"`
	OpenedAt        time.Time        `json:"openedAt"`
	Accounts        []AccountSummary `json:"accounts"`
	ExpectedClosing decimal.Decimal  `json:"expectedClosing"`
}

// CloseResult reports the outcome of a register close.
type CloseResult struct {
	RegisterID      string          `json:"registerId"`
	ExpectedClosing decimal.Decimal `json:"expectedClosing"`
	CountedClosing  decimal.Decimal `json:"countedClosing"`
	OverShort       decimal.Decimal `json:"overShort"`
	ClosedAt        time.Time       `json:"closedAt"`
}

// Service folds upstream register state into reconciliation views and
// performs the close handshake.
type Service struct {
	Source SessionSource
	Logger *zerolog.Logger
}

// View loads the register and computes per-account summaries plus the
// expected closing balance.
func (s *Service) View(ctx context.Context, id string) (View, error) {
	session, err := s.Source.Register(ctx, id)
	if err != nil {
		return View{}, common.UpstreamError("could not load register", err)
	}
	summaries := SummarizeByAccount(session.Transactions)
	return View{
		ID:              session.ID,
		Name:            session.Name,
		Status:          session.Status,
		OpeningBalance:  session.OpeningBalance,
		OpenedAt:        session.OpenedAt,
		Accounts:        summaries,
		ExpectedClosing: ExpectedClosingBalance(session.OpeningBalance, summaries),
	}, nil
}

// Close computes over/short against the counted drawer and posts the close
// upstream. The over/short figure is derived locally so the operator sees it
// even when the upstream response carries none.
func (s *Service) Close(ctx context.Context, id string, counted decimal.Decimal) (CloseResult, error) {
	view, err := s.View(ctx, id)
	if err != nil {
		s.count("error")
		return CloseResult{}, err
	}
	if err := s.Source.CloseRegister(ctx, id, counted); err != nil {
		s.count("error")
		return CloseResult{}, common.UpstreamError("could not close register", err)
	}
	s.count("ok")
	result := CloseResult{
		RegisterID:      id,
		ExpectedClosing: view.ExpectedClosing,
		CountedClosing:  counted,
		OverShort:       OverShort(view.ExpectedClosing, counted),
		ClosedAt:        time.Now().UTC(),
	}
	if s.Logger != nil {
		s.Logger.Info().
			Str("register_id", id).
			Str("expected", result.ExpectedClosing.StringFixed(2)).
			Str("counted", result.CountedClosing.StringFixed(2)).
			Str("over_short", result.OverShort.StringFixed(2)).
			Msg("register closed")
	}
	return result, nil
}

func (s *Service) count(result string) {
	if obs.RegisterCloseTotal != nil {
		obs.RegisterCloseTotal.WithLabelValues(result).Inc()
	}
}
