// Package report renders the dashboard credit report as a PDF.
package report

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/dashboard"
	"github.com/sells-group/credit-cli/internal/history"
	"github.com/sells-group/credit-cli/internal/model"
)

// Options adds optional sections to the report.
type Options struct {
	BusinessID  string
	Record      *model.BusinessRecord
	History     []history.Row
	GeneratedAt time.Time
	Locale      string
}

// Generate renders the report and returns the PDF bytes.
func Generate(view dashboard.View, opts Options) ([]byte, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	fmtr := NewFormatter(opts.Locale)

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, opts)
	addSummary(m, view, fmtr)
	if view.Advice != nil {
		addAdvice(m, view)
	}
	if opts.Record != nil {
		addRecord(m, *opts.Record, fmtr)
	}
	if len(opts.History) > 0 {
		addHistory(m, opts.History)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, eris.Wrap(err, "report: generate pdf")
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, opts Options) {
	m.AddRow(12,
		text.NewCol(12, "Business Credit Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	business := opts.BusinessID
	if business == "" {
		business = "-"
	}
	m.AddRow(12,
		col.New(8).Add(
			text.New("Business ID: "+business, props.Text{Size: 9}),
			text.New("Generated: "+opts.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), props.Text{Size: 9, Top: 4}),
		),
		col.New(4),
	)
	m.AddRow(2, line.NewCol(12))
}

func addSummary(m core.Maroto, view dashboard.View, f *Formatter) {
	m.AddRow(8,
		text.NewCol(4, "CIBIL Score", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(4, "Risk Assessment", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(4, "Score Gauge", props.Text{Style: fontstyle.Bold, Size: 10}),
	)

	display := view.Display
	if view.Score.Valid() {
		display += " / 900"
	}
	m.AddRow(14,
		text.NewCol(4, display, props.Text{Size: 16, Style: fontstyle.Bold, Color: tokenColor(view.ScoreColor)}),
		text.NewCol(4, view.Risk.Level, props.Text{Size: 16, Style: fontstyle.Bold, Color: tokenColor(view.Risk.Color)}),
		text.NewCol(4, f.Percent(view.GaugePercent), props.Text{Size: 16}),
	)
}

func addAdvice(m core.Maroto, view dashboard.View) {
	a := view.Advice
	m.AddRow(12,
		text.NewCol(12, "Credit Score: "+a.Category, props.Text{
			Size:  13,
			Style: fontstyle.Bold,
			Top:   3,
			Color: tokenColor(a.Color),
		}),
	)
	for _, s := range a.Suggestions {
		m.AddRow(7,
			text.NewCol(6, s.Title, props.Text{Size: 10, Style: fontstyle.Bold}),
			text.NewCol(6, s.Impact, props.Text{Size: 10, Align: align.Right, Color: tokenColor(s.Color)}),
		)
		m.AddRow(8,
			text.NewCol(12, "Suggested action: "+s.Advice, props.Text{Size: 9}),
		)
	}
}

func addRecord(m core.Maroto, r model.BusinessRecord, f *Formatter) {
	m.AddRow(12,
		text.NewCol(12, "Business Snapshot", props.Text{Size: 13, Style: fontstyle.Bold, Top: 3}),
	)
	rows := [][2]string{
		{"Business type", string(r.BusinessType)},
		{"Industry sector", string(r.IndustrySector)},
		{"Years in operation", fmt.Sprintf("%g", r.YearsInOperation)},
		{"Monthly revenue", f.Amount(r.MonthlyRevenue)},
		{"Monthly expenses", f.Amount(r.MonthlyExpenses)},
		{"Net monthly cash flow", f.Amount(r.NetMonthlyCashFlow())},
		{"Outstanding debt", f.Amount(r.OutstandingDebt)},
		{"Loan repayment history", string(r.LoanRepaymentHistory)},
	}
	for _, kv := range rows {
		m.AddRow(6,
			text.NewCol(6, kv[0], props.Text{Size: 9}),
			text.NewCol(6, kv[1], props.Text{Size: 9, Align: align.Right}),
		)
	}
}

func addHistory(m core.Maroto, rows []history.Row) {
	m.AddRow(12,
		text.NewCol(12, "Historical Scores", props.Text{Size: 13, Style: fontstyle.Bold, Top: 3}),
	)
	m.AddRow(8,
		text.NewCol(3, "Business ID", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Month", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Score", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Change", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(1, line.NewCol(12))
	for _, r := range rows {
		m.AddRow(6,
			text.NewCol(3, r.BusinessID, props.Text{Size: 9}),
			text.NewCol(2, r.Month, props.Text{Size: 9}),
			text.NewCol(3, r.Date, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", r.Score), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, r.Change.Label(), props.Text{Size: 9, Align: align.Right, Color: trendColor(r.Change.Direction)}),
		)
	}
}

var palette = map[string]props.Color{
	"text-green-600":   {Red: 22, Green: 163, Blue: 74},
	"text-green-500":   {Red: 34, Green: 197, Blue: 94},
	"text-emerald-600": {Red: 5, Green: 150, Blue: 105},
	"text-yellow-600":  {Red: 202, Green: 138, Blue: 4},
	"text-amber-600":   {Red: 217, Green: 119, Blue: 6},
	"text-orange-600":  {Red: 234, Green: 88, Blue: 12},
	"text-red-600":     {Red: 220, Green: 38, Blue: 38},
	"text-gray-500":    {Red: 107, Green: 114, Blue: 128},
}

func tokenColor(token string) *props.Color {
	c, ok := palette[token]
	if !ok {
		return &props.Color{}
	}
	return &c
}

func trendColor(d history.Direction) *props.Color {
	switch d {
	case history.Up:
		return tokenColor("text-green-600")
	case history.Down:
		return tokenColor("text-red-600")
	default:
		return tokenColor("text-gray-500")
	}
}
