package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanakrit/ledgerctl/internal/api"
	"github.com/thanakrit/ledgerctl/internal/notify"
	"github.com/thanakrit/ledgerctl/internal/session"
)

// fetchRecorder is a counting fetch binding that returns a fixed data
// set and records every query it receives.
type fetchRecorder struct {
	calls   atomic.Int32
	queries []Query
	rows    []Row
	total   int
	err     error
}

func (f *fetchRecorder) fetch(_ context.Context, _ *api.Client, q Query) ([]Row, int, error) {
	f.calls.Add(1)
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.rows, f.total, nil
}

func (f *fetchRecorder) lastQuery(t *testing.T) Query {
	t.Helper()
	require.NotEmpty(t, f.queries)
	return f.queries[len(f.queries)-1]
}

func testRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			Key:     rowKeyForTest(i),
			Cells:   map[string]string{"docno": "DOC"},
			Amounts: map[string]float64{"vatamount": float64(i + 1)},
		}
	}
	return rows
}

// rowKeyForTest synthesizes distinct keys for fixture rows.
func rowKeyForTest(i int) string {
	return string(rune('a' + i%26))
}

func shopHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/shop/shop-1":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data": map[string]any{
					"guidfixed": "shop-1",
					"names":     []map[string]string{{"code": "th", "name": "ร้านทดสอบ"}},
					"settings":  map[string]string{"taxid": "0105561000000"},
				},
			})
		case "/gl/chartofaccount", "/debtaccount/debtor", "/debtaccount/creditor":
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []any{}})
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	})
}

type testEnv struct {
	controller *Controller
	fetch      *fetchRecorder
	recorder   *notify.Recorder
	store      *session.SQLiteStore
}

func newTestEnv(t *testing.T, family Family, handler http.Handler) *testEnv {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.SaveSession(context.Background(), session.Session{
		Token:         "tok",
		ShopID:        "shop-1",
		ShopName:      "ร้านทดสอบ",
		Authenticated: true,
	}))

	fetch := &fetchRecorder{rows: testRows(3), total: 3}
	family.Fetch = fetch.fetch

	recorder := &notify.Recorder{}
	controller := NewController(family, Deps{
		Client:   api.NewClient(srv.URL),
		Store:    store,
		Notifier: recorder,
		Now: func() time.Time {
			return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
		},
	})

	return &testEnv{controller: controller, fetch: fetch, recorder: recorder, store: store}
}

func periodFamily() Family {
	return Family{
		Key:             "test-period",
		Title:           "ทดสอบ",
		PeriodBased:     true,
		DefaultPageSize: 10,
		Columns: []Column{
			{Key: "docno", Title: "เลขที่"},
			{Key: "vatamount", Title: "ภาษี", Total: true},
		},
	}
}

func TestInitializeDefaultsToCurrentMonth(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))

	require.NoError(t, env.controller.Initialize(context.Background()))

	f := env.controller.Filters()
	assert.Equal(t, "2024-03-01", f.FromDate)
	assert.Equal(t, "2024-03-31", f.ToDate)
	assert.Equal(t, 2567, f.Year)
	assert.Equal(t, 3, f.Period)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.PageSize)

	assert.Equal(t, int32(1), env.fetch.calls.Load())
	q := env.fetch.lastQuery(t)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, "ร้านทดสอบ", q.Shop.Name)
	assert.Equal(t, "0105561000000", q.Shop.TaxID)
}

func TestInitializeShopFailureSkipsFetch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	env := newTestEnv(t, periodFamily(), handler)

	require.NoError(t, env.controller.Initialize(context.Background()))

	assert.Equal(t, int32(0), env.fetch.calls.Load())
	assert.Empty(t, env.controller.Rows())
	require.Len(t, env.recorder.BySeverity("error"), 1)
}

func TestInitializeWithoutShopFailsFast(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	require.NoError(t, env.store.Clear(context.Background()))

	err := env.controller.Initialize(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(0), env.fetch.calls.Load())
}

func TestFetchValidationWarnsWithoutNetworkCall(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))

	require.NoError(t, env.controller.Fetch(context.Background(), true))

	assert.Equal(t, int32(0), env.fetch.calls.Load())
	require.Len(t, env.recorder.BySeverity("warn"), 1)
}

func TestFetchFailureClearsRows(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	require.NoError(t, env.controller.Initialize(context.Background()))
	require.NotEmpty(t, env.controller.Rows())

	env.fetch.err = &api.APIError{StatusCode: http.StatusBadGateway, Message: "upstream down"}
	require.NoError(t, env.controller.Fetch(context.Background(), false))

	assert.Empty(t, env.controller.Rows())
	assert.Zero(t, env.controller.Total())
	require.NotEmpty(t, env.recorder.BySeverity("error"))
}

func TestSetPageSizeFetchesOnceFromPageOne(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	env.fetch.total = 95
	require.NoError(t, env.controller.Initialize(context.Background()))

	require.NoError(t, env.controller.GoToPage(context.Background(), 3))
	require.Equal(t, 3, env.controller.Filters().Page)
	before := env.fetch.calls.Load()

	require.NoError(t, env.controller.SetPageSize(context.Background(), 50))

	assert.Equal(t, before+1, env.fetch.calls.Load())
	assert.Equal(t, 1, env.controller.Filters().Page)
	q := env.fetch.lastQuery(t)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 0, q.Offset)
}

func TestPageSizeAllSentinel(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	env.fetch.total = 500
	require.NoError(t, env.controller.Initialize(context.Background()))

	require.NoError(t, env.controller.SetPageSize(context.Background(), PageSizeAll))

	q := env.fetch.lastQuery(t)
	assert.Equal(t, PageSizeAll, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, 1, env.controller.Filters().Page)
	assert.Equal(t, 1, env.controller.TotalPages())
}

func TestGoToPageBounds(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	env.fetch.total = 25
	require.NoError(t, env.controller.Initialize(context.Background()))
	assert.Equal(t, 3, env.controller.TotalPages())
	before := env.fetch.calls.Load()

	require.NoError(t, env.controller.GoToPage(context.Background(), 0))
	require.NoError(t, env.controller.GoToPage(context.Background(), 4))
	assert.Equal(t, before, env.fetch.calls.Load())

	require.NoError(t, env.controller.GoToPage(context.Background(), 2))
	assert.Equal(t, before+1, env.fetch.calls.Load())
	q := env.fetch.lastQuery(t)
	assert.Equal(t, 10, q.Offset)
}

func TestTotalsSumCurrentPageOnly(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	env.fetch.total = 100
	require.NoError(t, env.controller.Initialize(context.Background()))

	totals := env.controller.Totals()
	assert.InDelta(t, 6.0, totals["vatamount"], 1e-9)
}

func TestIsDownloadDisabled(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))

	// No filters yet.
	assert.True(t, env.controller.IsDownloadDisabled())

	require.NoError(t, env.controller.Initialize(context.Background()))
	assert.False(t, env.controller.IsDownloadDisabled())

	env.fetch.err = &api.APIError{StatusCode: http.StatusBadGateway}
	require.NoError(t, env.controller.Fetch(context.Background(), false))
	assert.True(t, env.controller.IsDownloadDisabled())
}

func TestSnapshotRestoredOnInitialize(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	env.fetch.total = 95
	require.NoError(t, env.controller.Initialize(context.Background()))
	require.NoError(t, env.controller.SetPageSize(context.Background(), 50))
	require.NoError(t, env.controller.GoToPage(context.Background(), 2))

	// A fresh controller over the same store resumes where we left off.
	fetch := &fetchRecorder{rows: testRows(2), total: 95}
	family := periodFamily()
	family.Fetch = fetch.fetch
	next := NewController(family, Deps{
		Client:   env.controller.deps.Client,
		Store:    env.store,
		Notifier: &notify.Recorder{},
		Now:      env.controller.deps.Now,
	})
	require.NoError(t, next.Initialize(context.Background()))

	f := next.Filters()
	assert.Equal(t, 50, f.PageSize)
	assert.Equal(t, 2, f.Page)
	q := fetch.lastQuery(t)
	assert.Equal(t, 50, q.Offset)
}

func TestToggleExpandedPrunedOnRefetch(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	require.NoError(t, env.controller.Initialize(context.Background()))

	key := env.controller.Rows()[0].Key
	env.controller.ToggleExpanded(key)
	assert.True(t, env.controller.IsExpanded(key))

	env.fetch.rows = []Row{{Key: "zz", Cells: map[string]string{}, Amounts: map[string]float64{}}}
	require.NoError(t, env.controller.Fetch(context.Background(), false))
	assert.False(t, env.controller.IsExpanded(key))
}

func TestSearchAndCloseResetsToPageOne(t *testing.T) {
	env := newTestEnv(t, periodFamily(), shopHandler(t))
	env.fetch.total = 95
	require.NoError(t, env.controller.Initialize(context.Background()))
	require.NoError(t, env.controller.GoToPage(context.Background(), 3))

	require.NoError(t, env.controller.SearchAndClose(context.Background()))

	assert.Equal(t, 1, env.controller.Filters().Page)
	require.NotEmpty(t, env.recorder.BySeverity("success"))
}

func TestStatusFamilyRequiresAccount(t *testing.T) {
	family := periodFamily()
	family.PeriodBased = false
	family.NeedAccount = true
	env := newTestEnv(t, family, shopHandler(t))

	env.controller.SetDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, env.controller.Fetch(context.Background(), true))
	assert.Equal(t, int32(0), env.fetch.calls.Load())
	require.Len(t, env.recorder.BySeverity("warn"), 1)

	env.controller.SetAccount("2101")
	require.NoError(t, env.controller.Fetch(context.Background(), true))
	assert.Equal(t, int32(1), env.fetch.calls.Load())
}
