package register_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-terminal/internal/common"
	"github.com/noah-isme/pos-terminal/internal/register"
)

type fakeSource struct {
	session  register.Session
	err      error
	closed   bool
	closeErr error
	counted  decimal.Decimal
}

func (f *fakeSource) Register(context.Context, string) (register.Session, error) {
	return f.session, f.err
}

func (f *fakeSource) CloseRegister(_ context.Context, _ string, counted decimal.Decimal) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closed = true
	f.counted = counted
	return nil
}

func testSession() register.Session {
	return register.Session{
		ID:             "reg-1",
		Name:           "Front Counter",
		Status:         "OPEN",
		OpeningBalance: decimal.NewFromInt(250),
		OpenedAt:       time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC),
		Transactions: []register.Transaction{
			{AccountID: "acc-1", AccountName: "Cash", AccountType: "CASH", OrderType: "SELL", Amount: decimal.NewFromInt(200)},
			{AccountID: "acc-1", AccountName: "Cash", AccountType: "CASH", Category: "MISC", Direction: register.DirectionDebit, Amount: decimal.NewFromInt(40)},
		},
	}
}

func TestViewComputesExpectedClosing(t *testing.T) {
	svc := &register.Service{Source: &fakeSource{session: testSession()}}

	view, err := svc.View(context.Background(), "reg-1")
	require.NoError(t, err)
	require.Len(t, view.Accounts, 1)
	require.True(t, view.Accounts[0].TotalIn.Equal(decimal.NewFromInt(200)))
	require.True(t, view.Accounts[0].TotalOut.Equal(decimal.NewFromInt(40)))
	// 250 + 200 - 40
	require.True(t, view.ExpectedClosing.Equal(decimal.NewFromInt(410)))
}

func TestViewUpstreamFailure(t *testing.T) {
	svc := &register.Service{Source: &fakeSource{err: errors.New("timeout")}}

	_, err := svc.View(context.Background(), "reg-1")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeUpstream, appErr.Code)
}

func TestCloseComputesOverShort(t *testing.T) {
	source := &fakeSource{session: testSession()}
	svc := &register.Service{Source: source}

	result, err := svc.Close(context.Background(), "reg-1", decimal.NewFromInt(400))
	require.NoError(t, err)
	require.True(t, source.closed)
	require.True(t, source.counted.Equal(decimal.NewFromInt(400)))
	require.True(t, result.ExpectedClosing.Equal(decimal.NewFromInt(410)))
	// drawer is short by 10
	require.True(t, result.OverShort.Equal(decimal.NewFromInt(-10)))
}

func TestCloseUpstreamRejection(t *testing.T) {
	source := &fakeSource{session: testSession(), closeErr: errors.New("already closed")}
	svc := &register.Service{Source: source}

	_, err := svc.Close(context.Background(), "reg-1", decimal.NewFromInt(410))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeUpstream, appErr.Code)
	require.False(t, source.closed)
}
