package app

import (
	"github.com/shopspring/decimal"

	"pocketwise/internal/aggregate"
	"pocketwise/internal/chart"
	"pocketwise/internal/core"
	"pocketwise/internal/query"
)

// Row is one visible transaction with its display amount.
type Row struct {
	ID       string          `json:"id"`
	Type     core.TxnType    `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Display  string          `json:"display"`
	Category string          `json:"category"`
	Date     core.Date       `json:"date"`
	Note     string          `json:"note"`
}

// Totals carries the summary figures and their formatted forms.
type Totals struct {
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Net         decimal.Decimal `json:"net"`
	IncomeText  string          `json:"incomeText"`
	ExpenseText string          `json:"expenseText"`
	NetText     string          `json:"netText"`
}

// View is everything the presentation surface draws after a pipeline run.
type View struct {
	Transactions []Row         `json:"transactions"`
	Count        int           `json:"count"`
	Totals       Totals        `json:"totals"`
	Pie          chart.Dataset `json:"pie"`
	Bar          chart.Dataset `json:"bar"`
	Options      query.Options `json:"options"`
	Filters      query.Config  `json:"filters"`
	// MonthLabel names the selected month, e.g. "Jan 2024"; empty for all.
	MonthLabel string `json:"monthLabel"`
}

func buildView(visible []core.Transaction, report aggregate.Report, opts query.Options, cfg query.Config, f core.Formatter) View {
	rows := make([]Row, len(visible))
	for i, t := range visible {
		rows[i] = Row{
			ID:       t.ID,
			Type:     t.Type,
			Amount:   t.Amount,
			Display:  f.Format(t.Amount),
			Category: t.Category,
			Date:     t.Date,
			Note:     t.Note,
		}
	}

	label := ""
	if cfg.Month != "" && cfg.Month != query.All {
		label = core.MonthLabel(cfg.Month)
	}

	return View{
		Transactions: rows,
		Count:        len(rows),
		Totals: Totals{
			Income:      report.Totals.Income,
			Expense:     report.Totals.Expense,
			Net:         report.Totals.Net,
			IncomeText:  f.Format(report.Totals.Income),
			ExpenseText: f.Format(report.Totals.Expense),
			NetText:     f.Format(report.Totals.Net),
		},
		Pie:        chart.PieDataset(report.Categories),
		Bar:        chart.BarDataset(report.Months),
		Options:    opts,
		Filters:    cfg,
		MonthLabel: label,
	}
}
