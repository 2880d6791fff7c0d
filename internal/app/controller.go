// Package app wires the ledger, the query pipeline and the aggregations
// into a single session controller that presentation surfaces drive.
package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"pocketwise/internal/aggregate"
	"pocketwise/internal/cache"
	"pocketwise/internal/chart"
	"pocketwise/internal/core"
	"pocketwise/internal/debounce"
	"pocketwise/internal/export"
	"pocketwise/internal/ledger"
	applog "pocketwise/internal/log"
	"pocketwise/internal/metrics"
	"pocketwise/internal/query"
)

const (
	optionsCacheSize = 8
	optionsCacheTTL  = 10 * time.Minute
)

// ErrClosed is returned by intents issued after Close.
var ErrClosed = errors.New("controller closed")

// Presenter receives the whole view after every pipeline run.
type Presenter interface {
	Present(ctx context.Context, v View) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ctx context.Context, v View) error

func (f PresenterFunc) Present(ctx context.Context, v View) error { return f(ctx, v) }

// Confirmer asks the user to approve a deletion.
type Confirmer interface {
	Confirm(ctx context.Context, t core.Transaction) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, t core.Transaction) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, t core.Transaction) (bool, error) { return f(ctx, t) }

// AlwaysConfirm approves every deletion.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, core.Transaction) (bool, error) { return true, nil })

// Controller owns the session state. Every intent is serialized.
type Controller struct {
	mu sync.Mutex

	store      *ledger.Store
	filters    query.Config
	view       View
	closed     bool
	categories []string

	presenter Presenter
	pie       chart.Renderer
	bar       chart.Renderer
	formatter core.Formatter
	now       func() time.Time
	search    *debounce.Debouncer
	options   *cache.LRUCache[query.Options]
	metrics   metrics.Recorder
	logger    *applog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

func WithPresenter(p Presenter) Option { return func(c *Controller) { c.presenter = p } }
func WithPieRenderer(r chart.Renderer) Option { return func(c *Controller) { c.pie = r } }
func WithBarRenderer(r chart.Renderer) Option { return func(c *Controller) { c.bar = r } }
func WithFormatter(f core.Formatter) Option { return func(c *Controller) { c.formatter = f } }
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }
func WithMetrics(m metrics.Recorder) Option { return func(c *Controller) { c.metrics = m } }
func WithLogger(l *applog.Logger) Option { return func(c *Controller) { c.logger = l } }
func WithDefaultCategories(cs []string) Option { return func(c *Controller) { c.categories = cs } }

// WithSearchDelay sets the quiet period of debounced searches.
func WithSearchDelay(d time.Duration) Option {
	return func(c *Controller) { c.search = debounce.New(d) }
}

// New creates a controller over store. Call Start to render the first view.
func New(store *ledger.Store, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		filters:    query.DefaultConfig(),
		categories: query.DefaultCategories,
		pie:        chart.Nop{},
		bar:        chart.Nop{},
		formatter:  core.NewFormatter(""),
		now:        time.Now,
		search:     debounce.New(debounce.DefaultDelay),
		options:    cache.NewLRUCache[query.Options](optionsCacheSize, optionsCacheTTL),
		metrics:    metrics.Nop{},
		logger:     applog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.WithComponent(applog.ComponentApp)
	return c
}

// Start renders the initial view from the loaded collection.
func (c *Controller) Start(ctx context.Context) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.CollectionSize(c.store.Len())
	return c.refresh(ctx)
}

// Create validates and records a new transaction, then re-renders.
// Validation and write failures leave the store and the view untouched.
func (c *Controller) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.Transaction{}, ErrClosed
	}

	txn, err := c.store.Add(ctx, d)
	c.metrics.Mutation(applog.OpCreate, err)
	if err != nil {
		if core.IsValidation(err) {
			c.logger.DebugContext(ctx, "Rejected transaction",
				applog.NewFields().WithError(err).WithErrorType(applog.ErrorTypeValidation).ToSlice()...)
		}
		return core.Transaction{}, err
	}
	c.metrics.CollectionSize(c.store.Len())
	c.refresh(ctx)
	return txn, nil
}

// Delete removes the transaction with id once confirm approves it. It
// reports false without error when id is unknown or the user declines; a
// nil confirm counts as declining.
func (c *Controller) Delete(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	c.mu.Lock()
	txn, ok := c.lookup(id)
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return false, ErrClosed
	}
	if !ok || confirm == nil {
		return false, nil
	}

	approved, err := confirm.Confirm(ctx, txn)
	if err != nil || !approved {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	removed, err := c.store.Remove(ctx, id)
	if !removed && err == nil {
		return false, nil
	}
	c.metrics.Mutation(applog.OpDelete, err)
	if err != nil {
		return false, err
	}
	c.metrics.CollectionSize(c.store.Len())
	c.refresh(ctx)
	return true, nil
}

// Lookup returns the stored transaction with id.
func (c *Controller) Lookup(id string) (core.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(id)
}

func (c *Controller) lookup(id string) (core.Transaction, bool) {
	for _, t := range c.store.All() {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// SetMonth selects a YYYY-MM bucket, or all months for "" and "all".
func (c *Controller) SetMonth(ctx context.Context, month string) View {
	return c.update(ctx, func(cfg *query.Config) { cfg.Month = orAll(month) })
}

// SetCategory selects one category, or all categories for "" and "all".
func (c *Controller) SetCategory(ctx context.Context, category string) View {
	return c.update(ctx, func(cfg *query.Config) { cfg.Category = orAll(category) })
}

// SetSort changes the ordering. Unknown modes are rejected.
func (c *Controller) SetSort(ctx context.Context, mode string) (View, error) {
	m, ok := query.ParseSortMode(mode)
	if !ok {
		return View{}, &core.ValidationError{Field: "sort", Err: query.ErrUnknownSort}
	}
	return c.update(ctx, func(cfg *query.Config) { cfg.Sort = m }), nil
}

// SetFilters replaces month, category and sort in one pass. The search
// text is left as it is.
func (c *Controller) SetFilters(ctx context.Context, next query.Config) (View, error) {
	m := query.SortLatest
	if next.Sort != "" {
		var ok bool
		if m, ok = query.ParseSortMode(string(next.Sort)); !ok {
			return View{}, &core.ValidationError{Field: "sort", Err: query.ErrUnknownSort}
		}
	}
	return c.update(ctx, func(cfg *query.Config) {
		cfg.Month = orAll(next.Month)
		cfg.Category = orAll(next.Category)
		cfg.Sort = m
	}), nil
}

// Search schedules a search; bursts collapse into one run with the last
// query. It reports false once the controller is closed.
func (c *Controller) Search(ctx context.Context, q string) bool {
	ctx = context.WithoutCancel(ctx)
	return c.search.Call(func() {
		c.update(ctx, func(cfg *query.Config) { cfg.Search = q })
	})
}

// SearchNow drops any pending search and applies q immediately.
func (c *Controller) SearchNow(ctx context.Context, q string) View {
	c.search.Cancel()
	return c.update(ctx, func(cfg *query.Config) { cfg.Search = q })
}

// FlushSearch runs a pending debounced search now.
func (c *Controller) FlushSearch() bool {
	return c.search.Flush()
}

// ResetFilters restores the default configuration and drops a pending
// search.
func (c *Controller) ResetFilters(ctx context.Context) View {
	c.search.Cancel()
	return c.update(ctx, func(cfg *query.Config) { *cfg = query.DefaultConfig() })
}

func (c *Controller) update(ctx context.Context, fn func(*query.Config)) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.filters)
	return c.refresh(ctx)
}

// Export renders the whole store, regardless of filters, as CSV.
func (c *Controller) Export(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	txns := c.store.All()
	c.mu.Unlock()

	data, err := export.CSV(txns)
	if err != nil {
		return nil, err
	}
	c.metrics.Export(len(txns))
	c.logger.InfoContext(ctx, "Exported transactions",
		applog.FieldOperation, applog.OpExport, applog.FieldCount, len(txns))
	return data, nil
}

// View returns the most recently rendered view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Filters returns the current filter configuration.
func (c *Controller) Filters() query.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Options returns the month and category filter options.
func (c *Controller) Options() query.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filterOptions()
}

// All returns every stored transaction in insertion order.
func (c *Controller) All() []core.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// Close cancels a pending search and rejects further mutations.
func (c *Controller) Close() {
	c.search.Stop()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// OptionsCache exposes the filter option cache for periodic sweeping.
func (c *Controller) OptionsCache() cache.Cleaner {
	return c.options
}

func (c *Controller) filterOptions() query.Options {
	key := strconv.FormatUint(c.store.Revision(), 10)
	return c.options.GetOrCompute(key, func() query.Options {
		return query.DeriveOptions(c.store.All(), c.categories)
	})
}

// refresh re-runs the pipeline and pushes the result to the renderers and
// the presenter. Drawing failures are logged; the view is still updated.
func (c *Controller) refresh(ctx context.Context) View {
	start := time.Now()
	opts := c.filterOptions()
	visible := query.Run(c.store.All(), c.filters)
	report := aggregate.Build(visible, c.now())
	c.view = buildView(visible, report, opts, c.filters, c.formatter)
	c.metrics.PipelineRun(time.Since(start), len(visible))

	if err := c.pie.Render(ctx, c.view.Pie); err != nil {
		c.logger.WarnContext(ctx, "Failed to render category chart", applog.FieldError, err)
	}
	if err := c.bar.Render(ctx, c.view.Bar); err != nil {
		c.logger.WarnContext(ctx, "Failed to render monthly chart", applog.FieldError, err)
	}
	if c.presenter != nil {
		if err := c.presenter.Present(ctx, c.view); err != nil {
			c.logger.WarnContext(ctx, "Failed to present view", applog.FieldError, err)
		}
	}

	c.logger.DebugContext(ctx, "View refreshed",
		applog.FieldOperation, applog.OpRefresh, applog.FieldCount, len(visible))
	return c.view
}

func orAll(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return query.All
	}
	return v
}
