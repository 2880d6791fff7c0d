// Package chart defines the drawing capability the view hands its
// breakdowns to, plus the dataset builders for the two charts.
package chart

import (
	"context"
	"sync"

	"pocketwise/internal/core"
)

type Kind string

const (
	Pie Kind = "pie"
	Bar Kind = "bar"
)

const (
	PieTitle = "Expenses by category"
	BarTitle = "Income vs expense by month"
)

// Series is one named row of values aligned with Dataset.Labels.
type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Dataset is a labeled chart payload. Every series has one value per label.
type Dataset struct {
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Renderer draws a dataset, replacing whatever it drew before.
type Renderer interface {
	Render(ctx context.Context, ds Dataset) error
}

// PieDataset builds the category breakdown chart.
func PieDataset(categories []core.CategoryAmount) Dataset {
	labels := make([]string, len(categories))
	values := make([]float64, len(categories))
	for i, c := range categories {
		labels[i] = c.Name
		values[i] = c.Amount.InexactFloat64()
	}
	return Dataset{
		Kind:   Pie,
		Title:  PieTitle,
		Labels: labels,
		Series: []Series{{Label: "Expense", Values: values}},
	}
}

// BarDataset builds the monthly income/expense chart with "Jan 2024"
// style labels.
func BarDataset(months []core.MonthTotals) Dataset {
	labels := make([]string, len(months))
	income := make([]float64, len(months))
	expense := make([]float64, len(months))
	for i, m := range months {
		labels[i] = core.MonthLabel(m.Key)
		income[i] = m.Income.InexactFloat64()
		expense[i] = m.Expense.InexactFloat64()
	}
	return Dataset{
		Kind:   Bar,
		Title:  BarTitle,
		Labels: labels,
		Series: []Series{
			{Label: "Income", Values: income},
			{Label: "Expense", Values: expense},
		},
	}
}

// Nop discards every dataset.
type Nop struct{}

func (Nop) Render(context.Context, Dataset) error { return nil }

// Recorder keeps every dataset it receives. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	datasets []Dataset
	Err      error
}

func (r *Recorder) Render(_ context.Context, ds Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.datasets = append(r.datasets, ds)
	return nil
}

// Datasets returns a copy of everything rendered so far.
func (r *Recorder) Datasets() []Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Dataset(nil), r.datasets...)
}

// Last returns the most recent dataset.
func (r *Recorder) Last() (Dataset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.datasets) == 0 {
		return Dataset{}, false
	}
	return r.datasets[len(r.datasets)-1], true
}
