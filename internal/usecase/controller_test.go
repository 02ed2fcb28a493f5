package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NewsImpact/internal/domain/models"
	"NewsImpact/internal/service/remote"

	"github.com/shopspring/decimal"
)

var fixedNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

type fakeMarket struct {
	series    []models.PricePoint
	news      []models.NewsArticle
	scores    []models.SentimentResult
	priceErr  error
	newsErr   error
	scoreErr  error
	calls     atomic.Int32
	sentCalls atomic.Int32
	lastStart time.Time
	inputs    []string
}

func (f *fakeMarket) FetchPriceSeries(ctx context.Context, _ string, start, _ time.Time) ([]models.PricePoint, error) {
	f.calls.Add(1)
	f.lastStart = start
	return f.series, f.priceErr
}

func (f *fakeMarket) FetchNews(context.Context, string, time.Time, time.Time) ([]models.NewsArticle, error) {
	f.calls.Add(1)
	return f.news, f.newsErr
}

func (f *fakeMarket) FetchSentiment(_ context.Context, inputs []string) ([]models.SentimentResult, error) {
	f.sentCalls.Add(1)
	f.inputs = append([]string(nil), inputs...)
	return f.scores, f.scoreErr
}

func newController(f *fakeMarket, opts ...ControllerOption) *Controller {
	opts = append([]ControllerOption{WithClock(fixedNow)}, opts...)
	return NewController(Dependencies{Prices: f, News: f, Sentiment: f}, opts...)
}

func threeArticles() ([]models.NewsArticle, []models.SentimentResult) {
	news := []models.NewsArticle{
		{Headline: "Apple beats", Summary: "strong quarter", Datetime: 1705320000},
		{Headline: "Apple flat", Summary: "no change", Datetime: 1705320100},
		{Headline: "Apple sued", Summary: "patent case", Datetime: 1705320200},
	}
	scores := []models.SentimentResult{
		{Label: models.SentimentPositive, Confidence: 0.6},
		{Label: models.SentimentNeutral, Confidence: 0.95},
		{Label: models.SentimentNegative, Confidence: 0.8},
	}
	return news, scores
}

func submit(c *Controller, ticker, date string) models.Snapshot {
	c.EditForm(&ticker, &date)
	return c.Submit(context.Background())
}

func TestSubmitValidationFailureMakesNoCalls(t *testing.T) {
	f := &fakeMarket{}
	c := newController(f)

	snap := submit(c, "  ", "2099-01-01")
	if snap.Phase != models.PhaseIdle {
		t.Fatalf("expected idle, got %s", snap.Phase)
	}
	if snap.Errors.Ticker == "" || snap.Errors.Date == "" {
		t.Fatalf("expected both field errors, got %+v", snap.Errors)
	}
	if f.calls.Load() != 0 || f.sentCalls.Load() != 0 {
		t.Fatalf("no remote calls expected")
	}
	if snap.Generation != 0 {
		t.Fatalf("invalid submit should not start a generation")
	}
}

func TestSubmitSuccess(t *testing.T) {
	news, scores := threeArticles()
	f := &fakeMarket{series: series(400), news: news, scores: scores}
	c := newController(f)

	snap := submit(c, "aapl", "2024-01-15")
	if snap.Phase != models.PhaseSuccess || snap.Loading {
		t.Fatalf("expected success, got %s (loading=%v)", snap.Phase, snap.Loading)
	}
	vm := snap.ViewModel
	if vm == nil || vm.TickerSubmitted != "AAPL" {
		t.Fatalf("unexpected view model %+v", vm)
	}
	if len(vm.DisplaySlice) != 7 || len(vm.PriceSeries) != 400 {
		t.Fatalf("expected 7 of 400 points, got %d of %d", len(vm.DisplaySlice), len(vm.PriceSeries))
	}
	if vm.NewsList[0].Headline != "Apple flat" || vm.NewsList[1].Headline != "Apple sued" || vm.NewsList[2].Headline != "Apple beats" {
		t.Fatalf("news not ranked by confidence: %+v", vm.NewsList)
	}
	if !snap.Errors.Empty() || !snap.HasSubmitted || snap.NoArticles {
		t.Fatalf("unexpected flags %+v", snap)
	}
	if !f.lastStart.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("price window should start on the selected date, got %v", f.lastStart)
	}

	after := c.SetTicker("msft")
	if after.TickerInput != "MSFT" || after.ViewModel.TickerSubmitted != "AAPL" {
		t.Fatalf("editing the input must not relabel results: %+v", after)
	}
}

func TestSubmitEmptyNewsSkipsSentiment(t *testing.T) {
	f := &fakeMarket{series: series(10), news: []models.NewsArticle{}}
	c := newController(f)

	snap := submit(c, "AAPL", "2024-01-15")
	if snap.Phase != models.PhaseSuccess || !snap.NoArticles {
		t.Fatalf("expected success with no articles, got %+v", snap)
	}
	if len(snap.ViewModel.NewsList) != 0 || f.sentCalls.Load() != 0 {
		t.Fatalf("expected empty news and no sentiment call")
	}
	if snap.ViewModel.NewsList == nil {
		t.Fatalf("empty news list should be non-nil so it encodes as []")
	}

	idle := newController(&fakeMarket{}).Snapshot()
	if idle.NoArticles || idle.HasSubmitted || idle.Phase != models.PhaseIdle {
		t.Fatalf("initial state must differ from empty result: %+v", idle)
	}
}

func TestSubmitFailureKeepsPreviousViewModel(t *testing.T) {
	news, scores := threeArticles()
	f := &fakeMarket{series: series(40), news: news, scores: scores}
	c := newController(f)
	first := submit(c, "AAPL", "2024-01-15")

	f.newsErr = &remote.RemoteFetchError{Kind: remote.KindHTTP, Op: remote.OpNews, Status: 404, Message: "ticker not found"}
	snap := submit(c, "ZZZZ", "2024-01-15")

	if snap.Phase != models.PhaseFailed {
		t.Fatalf("expected failed, got %s", snap.Phase)
	}
	if snap.Errors.Ticker != "ticker not found" {
		t.Fatalf("unexpected ticker error %q", snap.Errors.Ticker)
	}
	if snap.ViewModel.TickerSubmitted != "AAPL" || len(snap.ViewModel.NewsList) != len(first.ViewModel.NewsList) {
		t.Fatalf("previous view model should be untouched: %+v", snap.ViewModel)
	}
}

func TestSubmitSentimentFailureFailsWholeSubmit(t *testing.T) {
	news, _ := threeArticles()
	f := &fakeMarket{series: series(40), news: news, scoreErr: fmt.Errorf("boom")}
	c := newController(f)

	snap := submit(c, "AAPL", "2024-01-15")
	if snap.Phase != models.PhaseFailed || snap.ViewModel != nil {
		t.Fatalf("expected failed without view model, got %+v", snap)
	}
	if snap.Errors.Ticker != GenericFetchError {
		t.Fatalf("expected generic message, got %q", snap.Errors.Ticker)
	}
}

func TestSubmitMismatchedSentimentFails(t *testing.T) {
	news, scores := threeArticles()
	f := &fakeMarket{series: series(40), news: news, scores: scores[:2]}
	snap := submit(newController(f), "AAPL", "2024-01-15")
	if snap.Phase != models.PhaseFailed {
		t.Fatalf("expected failed, got %s", snap.Phase)
	}
}

func TestChangeTimeRange(t *testing.T) {
	news, scores := threeArticles()
	f := &fakeMarket{series: series(400), news: news, scores: scores}
	c := newController(f)

	before := c.ChangeTimeRange(models.RangeYear)
	if before.ViewModel != nil || before.TimeRange != models.RangeWeek {
		t.Fatalf("range change before first commit should be a no-op: %+v", before)
	}

	submit(c, "AAPL", "2024-01-15")
	calls := f.calls.Load()

	snap := c.ChangeTimeRange(models.RangeMonth)
	if len(snap.ViewModel.DisplaySlice) != 30 || snap.ViewModel.TimeRange != models.RangeMonth {
		t.Fatalf("expected 30 points, got %d", len(snap.ViewModel.DisplaySlice))
	}
	snap = c.ChangeTimeRange(models.RangeYear)
	if len(snap.ViewModel.DisplaySlice) != 400 {
		t.Fatalf("expected all points, got %d", len(snap.ViewModel.DisplaySlice))
	}
	if f.calls.Load() != calls {
		t.Fatalf("range change must not fetch")
	}

	// selections carry over into the next commit
	snap = submit(c, "AAPL", "2024-01-15")
	if snap.ViewModel.TimeRange != models.RangeYear || len(snap.ViewModel.DisplaySlice) != 400 {
		t.Fatalf("range not carried over: %s", snap.ViewModel.TimeRange)
	}
}

func TestChangeSentimentFilter(t *testing.T) {
	news, scores := threeArticles()
	f := &fakeMarket{series: series(10), news: news, scores: scores}
	c := newController(f)
	submit(c, "AAPL", "2024-01-15")

	snap := c.ChangeSentimentFilter(models.FilterNegative)
	if len(snap.VisibleNews) != 1 || snap.VisibleNews[0].SentimentLabel != models.SentimentNegative {
		t.Fatalf("unexpected visible news %+v", snap.VisibleNews)
	}
	if len(snap.ViewModel.NewsList) != 3 {
		t.Fatalf("filter must not change the news list")
	}
	snap = c.ChangeSentimentFilter(models.FilterAll)
	if len(snap.VisibleNews) != 3 {
		t.Fatalf("expected all news visible")
	}
}

func TestToggleTheme(t *testing.T) {
	c := newController(&fakeMarket{})
	if !c.Snapshot().DarkTheme {
		t.Fatalf("dark theme is the default")
	}
	if c.ToggleTheme().DarkTheme {
		t.Fatalf("expected light theme after toggle")
	}
}

func TestEditClearsFieldError(t *testing.T) {
	c := newController(&fakeMarket{})
	submit(c, "", "")
	snap := c.SetTicker("aapl")
	if snap.Errors.Ticker != "" || snap.Errors.Date == "" {
		t.Fatalf("only the edited field's error should clear: %+v", snap.Errors)
	}
}

// gatedMarket blocks price fetches for the OLD ticker until release is closed.
type gatedMarket struct {
	fakeMarket
	started chan struct{}
	release chan struct{}
}

func (g *gatedMarket) FetchPriceSeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	if ticker == "OLD" {
		close(g.started)
		<-g.release
	}
	return g.series, nil
}

func TestStaleSubmitIsDiscarded(t *testing.T) {
	news, scores := threeArticles()
	g := &gatedMarket{
		fakeMarket: fakeMarket{series: series(5), news: news, scores: scores},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	c := NewController(Dependencies{Prices: g, News: g, Sentiment: g}, WithClock(fixedNow))

	ticker, date := "OLD", "2024-01-15"
	c.EditForm(&ticker, &date)
	done := make(chan models.Snapshot)
	go func() { done <- c.Submit(context.Background()) }()
	<-g.started

	fresh := submit(c, "NEW", "2024-01-15")
	if fresh.Phase != models.PhaseSuccess || fresh.ViewModel.TickerSubmitted != "NEW" || fresh.Generation != 2 {
		t.Fatalf("expected NEW committed at generation 2, got %+v", fresh)
	}

	close(g.release)
	<-done

	snap := c.Snapshot()
	if snap.ViewModel.TickerSubmitted != "NEW" || snap.Phase != models.PhaseSuccess {
		t.Fatalf("stale result overwrote newer state: %+v", snap.ViewModel)
	}
}

func TestSubscribeReceivesCommittedSnapshots(t *testing.T) {
	news, scores := threeArticles()
	c := newController(&fakeMarket{series: series(10), news: news, scores: scores})
	ch, cancel := c.Subscribe(8)
	defer cancel()

	submit(c, "AAPL", "2024-01-15")

	var last models.Snapshot
	for len(ch) > 0 {
		last = <-ch
	}
	if last.Phase != models.PhaseSuccess || last.ViewModel == nil {
		t.Fatalf("expected committed snapshot, got %+v", last)
	}

	// snapshot copies do not share slices with the controller
	last.ViewModel.NewsList[0].Headline = "mutated"
	if c.Snapshot().ViewModel.NewsList[0].Headline == "mutated" {
		t.Fatalf("snapshot aliases controller state")
	}
}

func TestEndToEndWithRemoteClient(t *testing.T) {
	points := make([]map[string]interface{}, 400)
	for i := range points {
		points[i] = map[string]interface{}{
			"date":  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"),
			"close": decimal.NewFromFloat(180 + float64(i)/10).String(),
		}
	}
	news, _ := threeArticles()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/stock/price", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(points)
	})
	mux.HandleFunc("/api/stock/news", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ticker") == "ZZZZ" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"ticker not found"}`))
			return
		}
		json.NewEncoder(w).Encode(news)
	})
	mux.HandleFunc("/api/sentiment", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"[{\"label\":\"positive\",\"score\":0.6},{\"label\":\"neutral\",\"score\":0.95},{\"label\":\"negative\",\"score\":0.8}]"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := remote.New(srv.URL)
	c := NewController(Dependencies{Prices: client, News: client, Sentiment: client}, WithClock(fixedNow))

	snap := submit(c, "AAPL", "2024-01-15")
	if snap.Phase != models.PhaseSuccess {
		t.Fatalf("expected success, got %s (%+v)", snap.Phase, snap.Errors)
	}
	if len(snap.ViewModel.DisplaySlice) != 7 || len(snap.ViewModel.NewsList) != 3 || snap.ViewModel.TickerSubmitted != "AAPL" {
		t.Fatalf("unexpected view model %+v", snap.ViewModel)
	}
	for i := 1; i < len(snap.ViewModel.NewsList); i++ {
		if snap.ViewModel.NewsList[i-1].SentimentConfidence < snap.ViewModel.NewsList[i].SentimentConfidence {
			t.Fatalf("news not sorted by confidence")
		}
	}

	snap = submit(c, "ZZZZ", "2024-01-15")
	if snap.Phase != models.PhaseFailed || snap.Errors.Ticker != "ticker not found" {
		t.Fatalf("expected ticker not found failure, got %s %q", snap.Phase, snap.Errors.Ticker)
	}
	if snap.ViewModel.TickerSubmitted != "AAPL" {
		t.Fatalf("previous view model should stay visible")
	}
}

// rendezvousMarket only answers price and news once both calls are in flight.
type rendezvousMarket struct {
	fakeMarket
	priceIn chan struct{}
	newsIn  chan struct{}
}

func (r *rendezvousMarket) FetchPriceSeries(ctx context.Context, _ string, _, _ time.Time) ([]models.PricePoint, error) {
	close(r.priceIn)
	select {
	case <-r.newsIn:
		return r.series, nil
	case <-time.After(2 * time.Second):
		return nil, fmt.Errorf("news fetch never started while price was in flight")
	}
}

func (r *rendezvousMarket) FetchNews(ctx context.Context, _ string, _, _ time.Time) ([]models.NewsArticle, error) {
	close(r.newsIn)
	select {
	case <-r.priceIn:
		return r.news, nil
	case <-time.After(2 * time.Second):
		return nil, fmt.Errorf("price fetch never started while news was in flight")
	}
}

func TestSubmitFetchesPriceAndNewsConcurrently(t *testing.T) {
	news, scores := threeArticles()
	r := &rendezvousMarket{
		fakeMarket: fakeMarket{news: news, scores: scores, series: series(10)},
		priceIn:    make(chan struct{}),
		newsIn:     make(chan struct{}),
	}
	c := NewController(Dependencies{Prices: r, News: r, Sentiment: r}, WithClock(fixedNow))

	snap := submit(c, "AAPL", "2024-01-15")
	if snap.Phase != models.PhaseSuccess {
		t.Fatalf("expected success with overlapping fetches, got %s (%q)", snap.Phase, snap.Errors.Ticker)
	}
	if len(snap.ViewModel.NewsList) != 3 || len(snap.ViewModel.PriceSeries) != 10 {
		t.Fatalf("unexpected view model %+v", snap.ViewModel)
	}
}

// cancelAwareMarket fails the price fetch and parks the news fetch until its
// context is cancelled.
type cancelAwareMarket struct {
	fakeMarket
	newsCancelled atomic.Bool
}

func (m *cancelAwareMarket) FetchPriceSeries(context.Context, string, time.Time, time.Time) ([]models.PricePoint, error) {
	return nil, &remote.RemoteFetchError{Kind: remote.KindHTTP, Op: remote.OpPrice, Status: 500, Message: "price service down"}
}

func (m *cancelAwareMarket) FetchNews(ctx context.Context, _ string, _, _ time.Time) ([]models.NewsArticle, error) {
	select {
	case <-ctx.Done():
		m.newsCancelled.Store(true)
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
		return m.news, nil
	}
}

func TestSubmitPriceFailureCancelsNewsAndSkipsSentiment(t *testing.T) {
	news, scores := threeArticles()
	m := &cancelAwareMarket{fakeMarket: fakeMarket{news: news, scores: scores}}
	c := NewController(Dependencies{Prices: m, News: m, Sentiment: m}, WithClock(fixedNow))

	snap := submit(c, "AAPL", "2024-01-15")
	if snap.Phase != models.PhaseFailed || snap.ViewModel != nil {
		t.Fatalf("expected failed without view model, got %+v", snap)
	}
	if snap.Errors.Ticker != "price service down" {
		t.Fatalf("expected the price failure to be reported, got %q", snap.Errors.Ticker)
	}
	if !m.newsCancelled.Load() {
		t.Fatalf("news fetch should observe cancellation once price fails")
	}
	if m.sentCalls.Load() != 0 {
		t.Fatalf("sentiment must not be called after a failed fetch")
	}
}

func TestSubmitSendsHeadlineAndSummaryInNewsOrder(t *testing.T) {
	news, scores := threeArticles()
	f := &fakeMarket{series: series(10), news: news, scores: scores}
	c := newController(f)

	if snap := submit(c, "AAPL", "2024-01-15"); snap.Phase != models.PhaseSuccess {
		t.Fatalf("expected success, got %s", snap.Phase)
	}
	want := []string{"Apple beats strong quarter", "Apple flat no change", "Apple sued patent case"}
	if len(f.inputs) != len(want) {
		t.Fatalf("expected %d sentiment inputs, got %v", len(want), f.inputs)
	}
	for i := range want {
		if f.inputs[i] != want[i] {
			t.Fatalf("input %d: expected %q, got %q", i, want[i], f.inputs[i])
		}
	}
}
