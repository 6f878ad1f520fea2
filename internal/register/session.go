package register

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is a register's open state as reported by the upstream ledger.
type Session struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Status         string          `json:"status"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	OpenedAt       time.Time       `json:"openedAt"`
	Transactions   []Transaction   `json:"transactions"`
}
