// Package register computes cash-drawer reconciliation figures for a POS
// register session: per-account money-in/money-out summaries, the expected
// closing balance, and the over/short deviation against the counted drawer.
package register

import "github.com/shopspring/decimal"

// Transaction direction markers as reported by the upstream ledger. MISC
// entries may carry an explicit direction; older rows leave it empty.
const (
	DirectionCredit = "CREDIT"
	DirectionDebit  = "DEBIT"
)

// Transaction is a single row of a register's flat transaction history.
type Transaction struct {
	AccountID   string          `json:"accountId"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	OrderType   string          `json:"orderType"`
	Category    string          `json:"category"`
	Direction   string          `json:"direction,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// AccountSummary aggregates a register's transactions for one account.
type AccountSummary struct {
	AccountID   string          `json:"accountId"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	TotalIn     decimal.Decimal `json:"totalIn"`
	TotalOut    decimal.Decimal `json:"totalOut"`
	CountIn     int             `json:"countIn"`
	CountOut    int             `json:"countOut"`
}

// MoneyIn classifies a transaction as cash flowing into the drawer. SELL
// orders always count in. MISC entries follow their direction field when one
// is present; a MISC row without a direction counts in, matching the
// historical upstream behaviour.
func MoneyIn(t Transaction) bool {
	if t.OrderType == "SELL" {
		return true
	}
	if t.Category == "MISC" {
		return t.Direction != DirectionDebit
	}
	return false
}

// SummarizeByAccount folds the transaction history into per-account
// summaries, preserving first-appearance order of accounts.
func SummarizeByAccount(transactions []Transaction) []AccountSummary {
	index := make(map[string]int, len(transactions))
	summaries := make([]AccountSummary, 0, len(transactions))

	for _, t := range transactions {
		i, ok := index[t.AccountID]
		if !ok {
			i = len(summaries)
			index[t.AccountID] = i
			summaries = append(summaries, AccountSummary{
				AccountID:   t.AccountID,
				AccountName: t.AccountName,
				AccountType: t.AccountType,
				TotalIn:     decimal.Zero,
				TotalOut:    decimal.Zero,
			})
		}
		if MoneyIn(t) {
			summaries[i].TotalIn = summaries[i].TotalIn.Add(t.Amount)
			summaries[i].CountIn++
		} else {
			summaries[i].TotalOut = summaries[i].TotalOut.Add(t.Amount)
			summaries[i].CountOut++
		}
	}
	return summaries
}

// ExpectedClosingBalance is the opening balance plus net flow across all
// accounts.
func ExpectedClosingBalance(opening decimal.Decimal, summaries []AccountSummary) decimal.Decimal {
	balance := opening
	for _, s := range summaries {
		balance = balance.Add(s.TotalIn).Sub(s.TotalOut)
	}
	return balance
}

// OverShort is the signed deviation of the counted drawer against the
// expected balance: positive when the drawer is over, negative when short.
func OverShort(expected, counted decimal.Decimal) decimal.Decimal {
	return counted.Sub(expected)
}
