package register

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMoneyInClassification(t *testing.T) {
	cases := []struct {
		name string
		tx   Transaction
		want bool
	}{
		{"sell order", Transaction{OrderType: "SELL"}, true},
		{"purchase order", Transaction{OrderType: "BUY"}, false},
		{"misc credit", Transaction{Category: "MISC", Direction: DirectionCredit}, true},
		{"misc debit", Transaction{Category: "MISC", Direction: DirectionDebit}, false},
		{"misc without direction", Transaction{Category: "MISC"}, true},
		{"other category", Transaction{Category: "EXPENSE"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MoneyIn(tc.tx); got != tc.want {
				t.Fatalf("MoneyIn(%+v) = %v, want %v", tc.tx, got, tc.want)
			}
		})
	}
}

func TestSummarizeByAccount(t *testing.T) {
	txs := []Transaction{
		{AccountID: "cash", AccountName: "Cash", AccountType: "CASH", OrderType: "SELL", Amount: dec("100")},
		{AccountID: "bank", AccountName: "Bank", AccountType: "BANK", OrderType: "SELL", Amount: dec("250")},
		{AccountID: "cash", AccountName: "Cash", AccountType: "CASH", Category: "MISC", Direction: DirectionDebit, Amount: dec("30")},
		{AccountID: "cash", AccountName: "Cash", AccountType: "CASH", Category: "MISC", Direction: DirectionCredit, Amount: dec("15")},
	}

	summaries := SummarizeByAccount(txs)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(summaries))
	}
	cash := summaries[0]
	if cash.AccountID != "cash" {
		t.Fatalf("expected first-appearance order, got %q first", cash.AccountID)
	}
	if !cash.TotalIn.Equal(dec("115")) || cash.CountIn != 2 {
		t.Fatalf("cash in: got %s over %d entries", cash.TotalIn, cash.CountIn)
	}
	if !cash.TotalOut.Equal(dec("30")) || cash.CountOut != 1 {
		t.Fatalf("cash out: got %s over %d entries", cash.TotalOut, cash.CountOut)
	}
	bank := summaries[1]
	if !bank.TotalIn.Equal(dec("250")) || bank.CountOut != 0 {
		t.Fatalf("bank summary wrong: %+v", bank)
	}
}

func TestExpectedClosingBalance(t *testing.T) {
	summaries := []AccountSummary{
		{TotalIn: dec("115"), TotalOut: dec("30")},
		{TotalIn: dec("250"), TotalOut: dec("0")},
	}
	got := ExpectedClosingBalance(dec("50"), summaries)
	if !got.Equal(dec("385")) {
		t.Fatalf("expected 385, got %s", got)
	}
}

func TestOverShort(t *testing.T) {
	if got := OverShort(dec("385"), dec("380")); !got.Equal(dec("-5")) {
		t.Fatalf("short drawer must be negative, got %s", got)
	}
	if got := OverShort(dec("385"), dec("390")); !got.Equal(dec("5")) {
		t.Fatalf("over drawer must be positive, got %s", got)
	}
}

func TestSummarizeByAccountEmpty(t *testing.T) {
	if got := SummarizeByAccount(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	if got := ExpectedClosingBalance(dec("70"), nil); !got.Equal(dec("70")) {
		t.Fatalf("no transactions must leave opening untouched, got %s", got)
	}
}
