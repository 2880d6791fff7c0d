package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketwise/internal/chart"
	"pocketwise/internal/core"
	"pocketwise/internal/ledger"
	"pocketwise/internal/query"
	"pocketwise/internal/storage"
)

type flakyKV struct {
	*storage.MemoryKV
	fail bool
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.MemoryKV.Set(ctx, key, value)
}

type recordingPresenter struct {
	mu    sync.Mutex
	views []View
}

func (p *recordingPresenter) Present(_ context.Context, v View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, v)
	return nil
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.views)
}

type fixture struct {
	ctrl      *Controller
	kv        *flakyKV
	adapter   *storage.Adapter
	presenter *recordingPresenter
	pie, bar  *chart.Recorder
}

var fixedNow = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	kv := &flakyKV{MemoryKV: storage.NewMemoryKV()}
	adapter := storage.NewAdapter(kv, storage.DefaultKey, nil)

	seq := 0
	store := ledger.New(adapter, adapter.Load(context.Background()), ledger.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("tx_%d", seq)
	}))

	f := &fixture{kv: kv, adapter: adapter, presenter: &recordingPresenter{}, pie: &chart.Recorder{}, bar: &chart.Recorder{}}
	base := []Option{
		WithPresenter(f.presenter),
		WithPieRenderer(f.pie),
		WithBarRenderer(f.bar),
		WithClock(func() time.Time { return fixedNow }),
		WithSearchDelay(20 * time.Millisecond),
	}
	f.ctrl = New(store, append(base, opts...)...)
	t.Cleanup(f.ctrl.Close)
	f.ctrl.Start(context.Background())
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, d := range []core.Draft{
		{Type: "income", Amount: "1000", Category: "Salary", Date: "2024-01-05"},
		{Type: "expense", Amount: "200", Category: "Food", Date: "2024-01-10", Note: "dinner out"},
		{Type: "expense", Amount: "50", Category: "Food", Date: "2024-02-01"},
	} {
		_, err := f.ctrl.Create(ctx, d)
		require.NoError(t, err)
	}
}

func rowIDs(v View) []string {
	out := make([]string, len(v.Transactions))
	for i, r := range v.Transactions {
		out[i] = r.ID
	}
	return out
}

func TestStartOnEmptyStore(t *testing.T) {
	f := newFixture(t)
	v := f.ctrl.View()

	assert.Zero(t, v.Count)
	assert.Equal(t, "₹0", v.Totals.NetText)
	assert.Equal(t, []string{core.NoExpensesLabel}, v.Pie.Labels)
	assert.Equal(t, []string{"Mar 2024"}, v.Bar.Labels)
	assert.Equal(t, query.DefaultConfig(), v.Filters)
	assert.Empty(t, v.MonthLabel)
	assert.Equal(t, 1, f.presenter.count())
	assert.Len(t, f.pie.Datasets(), 1)
	assert.Len(t, f.bar.Datasets(), 1)
}

func TestCreateRendersScenario(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	v := f.ctrl.View()
	assert.Equal(t, []string{"tx_3", "tx_2", "tx_1"}, rowIDs(v))
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, "₹1,000", v.Totals.IncomeText)
	assert.Equal(t, "₹250", v.Totals.ExpenseText)
	assert.Equal(t, "₹750", v.Totals.NetText)
	assert.Equal(t, []string{"Food"}, v.Pie.Labels)
	assert.Equal(t, []string{"Jan 2024", "Feb 2024"}, v.Bar.Labels)
	assert.Equal(t, []string{"2024-02", "2024-01"}, v.Options.Months)
	assert.Contains(t, v.Options.Categories, "Food")

	persisted := f.adapter.Load(context.Background())
	assert.Len(t, persisted, 3)
	assert.Equal(t, 4, f.presenter.count())
}

func TestCreateValidationLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	before := f.ctrl.View()
	presented := f.presenter.count()

	_, err := f.ctrl.Create(context.Background(), core.Draft{Type: "expense", Amount: "-5", Category: "Food", Date: "2024-01-01"})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	assert.Equal(t, before, f.ctrl.View())
	assert.Equal(t, presented, f.presenter.count())
	assert.Len(t, f.ctrl.All(), 3)
}

func TestCreateWriteFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	f.kv.fail = true

	_, err := f.ctrl.Create(context.Background(), core.Draft{Type: "income", Amount: "5", Date: "2024-03-01"})
	require.Error(t, err)
	assert.True(t, core.IsPersistenceWrite(err))
	assert.Len(t, f.ctrl.All(), 3)
	assert.Equal(t, 3, f.ctrl.View().Count)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	decline := ConfirmFunc(func(context.Context, core.Transaction) (bool, error) { return false, nil })
	removed, err := f.ctrl.Delete(ctx, "tx_2", decline)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, f.ctrl.All(), 3)

	removed, err = f.ctrl.Delete(ctx, "tx_2", nil)
	require.NoError(t, err)
	assert.False(t, removed)

	var asked core.Transaction
	approve := ConfirmFunc(func(_ context.Context, txn core.Transaction) (bool, error) {
		asked = txn
		return true, nil
	})
	removed, err = f.ctrl.Delete(ctx, "tx_2", approve)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "Food", asked.Category)

	v := f.ctrl.View()
	assert.Equal(t, []string{"tx_3", "tx_1"}, rowIDs(v))
	assert.Equal(t, "₹50", v.Totals.ExpenseText)
	assert.Len(t, f.adapter.Load(ctx), 2)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	presented := f.presenter.count()

	removed, err := f.ctrl.Delete(context.Background(), "tx_missing", AlwaysConfirm)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, presented, f.presenter.count())
}

func TestDeleteWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	f.kv.fail = true

	removed, err := f.ctrl.Delete(context.Background(), "tx_1", AlwaysConfirm)
	assert.False(t, removed)
	assert.True(t, core.IsPersistenceWrite(err))
	assert.Len(t, f.ctrl.All(), 3)
}

func TestFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	v := f.ctrl.SetMonth(ctx, "2024-01")
	assert.Equal(t, []string{"tx_2", "tx_1"}, rowIDs(v))
	assert.Equal(t, "Jan 2024", v.MonthLabel)

	v = f.ctrl.SetCategory(ctx, "Food")
	assert.Equal(t, []string{"tx_2"}, rowIDs(v))
	assert.Equal(t, "₹0", v.Totals.IncomeText)
	assert.Equal(t, "-₹200", v.Totals.NetText)

	v, err := f.ctrl.SetSort(ctx, "amountLow")
	require.NoError(t, err)
	assert.Equal(t, query.SortAmountLow, v.Filters.Sort)

	_, err = f.ctrl.SetSort(ctx, "random")
	assert.True(t, core.IsValidation(err))
	assert.Equal(t, query.SortAmountLow, f.ctrl.Filters().Sort)

	v = f.ctrl.ResetFilters(ctx)
	assert.Equal(t, query.DefaultConfig(), v.Filters)
	assert.Equal(t, 3, v.Count)
}

func TestSetFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()
	f.ctrl.SearchNow(ctx, "food")

	v, err := f.ctrl.SetFilters(ctx, query.Config{Month: "", Category: "Food", Sort: query.SortAmountHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{"tx_2", "tx_3"}, rowIDs(v))
	assert.Equal(t, query.All, v.Filters.Month)
	assert.Equal(t, "food", v.Filters.Search)

	_, err = f.ctrl.SetFilters(ctx, query.Config{Sort: "sideways"})
	assert.Error(t, err)
}

func TestSearchIsDebounced(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()
	presented := f.presenter.count()

	for _, q := range []string{"d", "di", "din", "dinner"} {
		assert.True(t, f.ctrl.Search(ctx, q))
	}
	assert.Equal(t, presented, f.presenter.count(), "nothing runs before the quiet period")

	assert.Eventually(t, func() bool {
		return f.ctrl.Filters().Search == "dinner"
	}, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	assert.Equal(t, presented+1, f.presenter.count())
	assert.Equal(t, []string{"tx_2"}, rowIDs(f.ctrl.View()))
}

func TestSearchNowAndFlush(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	v := f.ctrl.SearchNow(ctx, "FOOD")
	assert.Equal(t, []string{"tx_3", "tx_2"}, rowIDs(v))

	f.ctrl.Search(ctx, "salary")
	assert.True(t, f.ctrl.FlushSearch())
	assert.Equal(t, []string{"tx_1"}, rowIDs(f.ctrl.View()))
}

func TestOptionsRefreshOnlyAfterMutations(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	_, err := f.ctrl.Create(ctx, core.Draft{Type: "expense", Amount: "9", Category: "Pets", Date: "2023-12-24"})
	require.NoError(t, err)
	opts := f.ctrl.Options()
	assert.Equal(t, []string{"2024-02", "2024-01", "2023-12"}, opts.Months)
	assert.Contains(t, opts.Categories, "Pets")

	f.ctrl.SetMonth(ctx, "2023-12")
	assert.Equal(t, opts, f.ctrl.View().Options)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.Export(ctx)
	assert.ErrorIs(t, err, core.ErrExportEmpty)

	f.seed(t)
	f.ctrl.SetCategory(ctx, "Salary")
	data, err := f.ctrl.Export(ctx)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 4, "export ignores filters")
	assert.Equal(t, `expense,200,"Food",2024-01-10,"dinner out"`, lines[2])
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, chart.Dataset) error { return errors.New("no canvas") }

func TestRenderFailureStillUpdatesView(t *testing.T) {
	f := newFixture(t, WithPieRenderer(failingRenderer{}))
	f.seed(t)
	assert.Equal(t, 3, f.ctrl.View().Count)
}

func TestClosedControllerRejectsIntents(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Close()

	_, err := f.ctrl.Create(context.Background(), core.Draft{Type: "income", Amount: "1", Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, f.ctrl.Search(context.Background(), "x"))
}

func TestCloseDuringDeletePromptKeepsTransaction(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	closing := ConfirmFunc(func(context.Context, core.Transaction) (bool, error) {
		f.ctrl.Close()
		return true, nil
	})
	removed, err := f.ctrl.Delete(context.Background(), "tx_2", closing)
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, removed)
	assert.Len(t, f.ctrl.All(), 3)
}

func TestTimestampDateFiledUnderItsOwnMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	txn, err := f.ctrl.Create(ctx, core.Draft{Type: "expense", Amount: "10", Category: "Food", Date: "2024-01-31T23:30:00-05:00"})
	require.NoError(t, err)
	assert.Equal(t, core.Date("2024-01-31"), txn.Date)

	v := f.ctrl.SetMonth(ctx, "2024-01")
	assert.Equal(t, 1, v.Count)
	assert.Equal(t, []string{"Jan 2024"}, v.Bar.Labels)
	assert.Equal(t, []string{"2024-01"}, f.ctrl.Options().Months)

	data, err := f.ctrl.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `expense,10,"Food",2024-01-31,""`)
}
