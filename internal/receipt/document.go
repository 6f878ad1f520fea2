package receipt

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pos-terminal/internal/register"
)

var (
	colorInk  = &props.Color{Red: 30, Green: 30, Blue: 30}
	colorDim  = &props.Color{Red: 110, Green: 110, Blue: 110}
	colorRule = &props.Color{Red: 180, Green: 180, Blue: 180}
)

// CloseReport is the data rendered into a register close-out document.
type CloseReport struct {
	RegisterID      string
	RegisterName    string
	Currency        string
	OpenedAt        time.Time
	ClosedAt        time.Time
	OpeningBalance  decimal.Decimal
	ExpectedClosing decimal.Decimal
	CountedClosing  decimal.Decimal
	OverShort       decimal.Decimal
	Accounts        []register.AccountSummary
}

func newDocument(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()
	return maroto.New(cfg)
}

func money(currency string, v decimal.Decimal) string {
	return currency + " " + v.StringFixed(2)
}

func rule() core.Row {
	return line.NewRow(2, props.Line{Color: colorRule, Thickness: 0.3})
}

// RenderReceipt produces the printable sale receipt as PDF bytes.
func RenderReceipt(snap Snapshot) ([]byte, error) {
	m := newDocument("Sale Receipt")

	heading := "Sale Receipt"
	if snap.Number != "" {
		heading = "Sale Receipt " + snap.Number
	}
	m.AddRows(row.New(14).Add(
		col.New(7).Add(
			text.New(heading, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorInk, Top: 1}),
			text.New("Order "+snap.OrderID, props.Text{Size: 8, Top: 9, Color: colorDim}),
		),
		col.New(5).Add(
			text.New(snap.CreatedAt.Format("02 Jan 2006 15:04"), props.Text{Size: 9, Align: align.Right, Top: 2, Color: colorDim}),
			text.New("Register "+snap.RegisterID, props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorDim}),
		),
	))
	m.AddRows(rule())

	m.AddRows(row.New(7).Add(
		headerCol("Qty", 1, align.Center),
		headerCol("Item", 6, align.Left),
		headerCol("Rate", 2, align.Right),
		headerCol("Amount", 3, align.Right),
	))
	for _, ln := range snap.Lines {
		m.AddRows(row.New(6).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", ln.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(ln.Name, props.Text{Size: 8, Align: align.Left, Top: 1})),
			col.New(2).Add(text.New(ln.UnitRate.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(money(snap.Currency, ln.Amount), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	m.AddRows(rule())

	addTotal := func(label string, v decimal.Decimal, bold bool) {
		style := fontstyle.Normal
		size := 9.0
		if bold {
			style = fontstyle.Bold
			size = 11
		}
		m.AddRows(row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{Style: style, Size: size, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(money(snap.Currency, v), props.Text{Style: style, Size: size, Align: align.Right})),
		))
	}
	addTotal("Subtotal", snap.Subtotal, false)
	for _, ch := range snap.Charges {
		label := ch.Label
		if label == "" {
			label = "Charge"
		}
		addTotal(label, ch.Amount, false)
	}
	if !snap.Discount.IsZero() {
		addTotal("Discount", snap.Discount.Neg(), false)
	}
	addTotal("Total", snap.Total, true)

	if len(snap.Payments) > 0 {
		m.AddRows(rule())
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("Payments", props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
		)))
		for _, p := range snap.Payments {
			detail := p.Details
			if detail == "" {
				detail = p.AccountID
			}
			m.AddRows(row.New(5).Add(
				col.New(8).Add(text.New(detail, props.Text{Size: 8, Top: 1, Color: colorDim})),
				col.New(4).Add(text.New(money(snap.Currency, p.Amount), props.Text{Size: 8, Align: align.Right, Top: 1})),
			))
		}
		addTotal("Paid", snap.TotalPaid, false)
		if snap.Remaining.Sign() > 0 {
			addTotal("Balance due", snap.Remaining, false)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("receipt: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

// RenderCloseReport produces the register close-out document as PDF bytes.
func RenderCloseReport(rep CloseReport) ([]byte, error) {
	m := newDocument("Register Close Report")

	name := rep.RegisterName
	if name == "" {
		name = rep.RegisterID
	}
	m.AddRows(row.New(14).Add(
		col.New(7).Add(
			text.New("Register Close Report", props.Text{Style: fontstyle.Bold, Size: 13, Color: colorInk, Top: 1}),
			text.New(name, props.Text{Size: 9, Top: 9, Color: colorDim}),
		),
		col.New(5).Add(
			text.New("Opened "+rep.OpenedAt.Format("02 Jan 2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 2, Color: colorDim}),
			text.New("Closed "+rep.ClosedAt.Format("02 Jan 2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 8, Color: colorDim}),
		),
	))
	m.AddRows(rule())

	m.AddRows(row.New(7).Add(
		headerCol("Account", 5, align.Left),
		headerCol("In", 2, align.Right),
		headerCol("Out", 2, align.Right),
		headerCol("Net", 3, align.Right),
	))
	for _, a := range rep.Accounts {
		net := a.TotalIn.Sub(a.TotalOut)
		m.AddRows(row.New(6).Add(
			col.New(5).Add(text.New(a.AccountName, props.Text{Size: 8, Align: align.Left, Top: 1})),
			col.New(2).Add(text.New(a.TotalIn.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(a.TotalOut.StringFixed(2), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(money(rep.Currency, net), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	m.AddRows(rule())

	summary := func(label string, v decimal.Decimal, bold bool) {
		style := fontstyle.Normal
		size := 9.0
		if bold {
			style = fontstyle.Bold
			size = 11
		}
		m.AddRows(row.New(6).Add(
			col.New(5),
			col.New(4).Add(text.New(label, props.Text{Style: style, Size: size, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(money(rep.Currency, v), props.Text{Style: style, Size: size, Align: align.Right})),
		))
	}
	summary("Opening balance", rep.OpeningBalance, false)
	summary("Expected closing", rep.ExpectedClosing, false)
	summary("Counted closing", rep.CountedClosing, false)
	summary("Over/short", rep.OverShort, true)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("receipt: generate close report: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerCol(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorInk, Top: 1,
	}))
}
