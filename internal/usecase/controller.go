package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"NewsImpact/internal/domain/models"
	drepo "NewsImpact/internal/domain/repository"
	dservice "NewsImpact/internal/domain/service"
	applogger "NewsImpact/pkg/logger"
	"NewsImpact/pkg/metrics"
	"NewsImpact/pkg/util"

	"golang.org/x/sync/errgroup"
)

// GenericFetchError is shown when a failure carries no message of its own.
const GenericFetchError = "Error fetching data. Please check the ticker symbol."

// Submit outcomes reported to metrics.
const (
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
	OutcomeSuccess = "success"
	OutcomeStale   = "stale"
)

// userMessager is implemented by errors that carry a message fit for the form.
type userMessager interface {
	UserMessage() string
}

// Dependencies are the remote collaborators of a Controller.
type Dependencies struct {
	Prices    drepo.PriceRepository
	News      drepo.NewsRepository
	Sentiment dservice.SentimentScorer
}

// ControllerOption configures Controller.
type ControllerOption func(*Controller)

// Controller owns one dashboard session: the live form inputs, the selectors
// and the last committed ViewModel. All state changes go through its intents
// and observers only ever see Snapshot copies.
type Controller struct {
	deps         Dependencies
	metrics      drepo.Metrics
	logger       *applogger.Logger
	loc          *time.Location
	now          func() time.Time
	lookbackDays int
	validator    *FormValidator

	mu           sync.Mutex
	phase        models.Phase
	loading      bool
	tickerInput  string
	dateInput    string
	fieldErrs    models.FieldErrors
	darkTheme    bool
	timeRange    models.TimeRange
	filter       models.SentimentFilter
	hasSubmitted bool
	noArticles   bool
	vm           *models.ViewModel
	generation   uint64

	subs    map[int]chan models.Snapshot
	nextSub int
}

func NewController(deps Dependencies, opts ...ControllerOption) *Controller {
	c := &Controller{
		deps:      deps,
		metrics:   metrics.Nop{},
		logger:    applogger.Nop(),
		loc:       time.UTC,
		now:       time.Now,
		phase:     models.PhaseIdle,
		darkTheme: true,
		timeRange: models.RangeWeek,
		filter:    models.FilterAll,
		subs:      make(map[int]chan models.Snapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.validator = NewFormValidator(c.loc, c.now)
	return c
}

func WithControllerMetrics(m drepo.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithControllerLogger(l *applogger.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithLocation sets the zone used to interpret dates and decide what "today" is.
func WithLocation(loc *time.Location) ControllerOption {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLookbackDays starts the price window n days before the selected date.
func WithLookbackDays(n int) ControllerOption {
	return func(c *Controller) {
		c.lookbackDays = n
	}
}

func WithDefaultRange(r models.TimeRange) ControllerOption {
	return func(c *Controller) {
		c.timeRange = r
	}
}

// Validate checks the inputs without touching session state.
func (c *Controller) Validate(ticker, date string) models.FieldErrors {
	return c.validator.Validate(ticker, date)
}

// SetTicker edits the ticker input. Input is upper-cased and clears the ticker error.
func (c *Controller) SetTicker(ticker string) models.Snapshot {
	return c.EditForm(&ticker, nil)
}

// SetDate edits the date input and clears the date error.
func (c *Controller) SetDate(date string) models.Snapshot {
	return c.EditForm(nil, &date)
}

// EditForm applies the given input edits and publishes one snapshot.
func (c *Controller) EditForm(ticker, date *string) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ticker != nil {
		c.tickerInput = strings.ToUpper(*ticker)
		c.fieldErrs.Ticker = ""
	}
	if date != nil {
		c.dateInput = *date
		c.fieldErrs.Date = ""
	}
	return c.publishLocked()
}

// ToggleTheme flips between the dark and light theme.
func (c *Controller) ToggleTheme() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.darkTheme = !c.darkTheme
	return c.publishLocked()
}

// ChangeTimeRange recomputes the display slice from the committed series.
// It does nothing before the first successful submit.
func (c *Controller) ChangeTimeRange(r models.TimeRange) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vm == nil {
		return c.snapshotLocked()
	}

	c.timeRange = r
	vm := *c.vm
	vm.TimeRange = r
	vm.DisplaySlice = ComputeDisplaySlice(vm.PriceSeries, r)
	c.vm = &vm
	return c.publishLocked()
}

// ChangeSentimentFilter changes which committed articles are visible.
func (c *Controller) ChangeSentimentFilter(f models.SentimentFilter) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = f
	if c.vm != nil {
		vm := *c.vm
		vm.SentimentFilter = f
		c.vm = &vm
	}
	return c.publishLocked()
}

// Submit validates the form, runs the fetch pipeline and commits the result.
// A result whose submit has been superseded by a newer one is discarded.
func (c *Controller) Submit(ctx context.Context) models.Snapshot {
	c.mu.Lock()
	prev := c.phase
	c.phase = models.PhaseValidating
	errs := c.validator.Validate(c.tickerInput, c.dateInput)
	if !errs.Empty() {
		c.phase = prev
		c.fieldErrs = errs
		c.metrics.RecordSubmit(OutcomeInvalid)
		snap := c.publishLocked()
		c.mu.Unlock()
		return snap
	}

	selected, err := util.ParseDate(c.dateInput, c.loc)
	if err != nil {
		// unreachable after validation, kept as a guard
		c.phase = prev
		c.fieldErrs.Date = formMessages["Date"]["datetime"]
		snap := c.publishLocked()
		c.mu.Unlock()
		return snap
	}

	c.generation++
	gen := c.generation
	ticker := strings.ToUpper(strings.TrimSpace(c.tickerInput))
	c.phase = models.PhaseFetching
	c.loading = true
	c.publishLocked()
	c.mu.Unlock()

	log := c.logger.With(applogger.String("ticker", ticker), applogger.Uint64("generation", gen))
	log.Debug("submit started", applogger.String("date", util.FormatDate(selected)))

	start := time.Now()
	series, news, ranked, err := c.fetch(ctx, ticker, ComputeDateWindow(selected, c.lookbackDays))

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		log.Warn("discarding stale submit result", applogger.Uint64("latest_generation", c.generation))
		c.metrics.RecordStaleDiscard()
		c.metrics.RecordSubmit(OutcomeStale)
		return c.snapshotLocked()
	}

	c.loading = false
	if err != nil {
		c.phase = models.PhaseFailed
		c.fieldErrs.Ticker = failureMessage(err)
		c.metrics.RecordSubmit(OutcomeFailed)
		log.Error("submit failed", applogger.Error(err), applogger.Duration("elapsed_ms", time.Since(start)))
		return c.publishLocked()
	}

	c.vm = BuildViewModel(ticker, series, ranked, c.timeRange, c.filter)
	c.phase = models.PhaseSuccess
	c.fieldErrs = models.FieldErrors{}
	c.hasSubmitted = true
	c.noArticles = len(news) == 0
	c.metrics.RecordSubmit(OutcomeSuccess)
	log.Info("submit committed",
		applogger.Int("points", len(series)),
		applogger.Int("articles", len(ranked)),
		applogger.Bool("no_articles", c.noArticles),
		applogger.Duration("elapsed_ms", time.Since(start)),
	)
	return c.publishLocked()
}

// fetch loads prices and news concurrently, then scores the news batch.
func (c *Controller) fetch(ctx context.Context, ticker string, w models.DateWindow) ([]models.PricePoint, []models.NewsArticle, []models.AnnotatedNewsArticle, error) {
	var (
		series []models.PricePoint
		news   []models.NewsArticle
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = c.deps.Prices.FetchPriceSeries(gctx, ticker, w.PriceStart, w.PriceEnd)
		return err
	})
	g.Go(func() error {
		var err error
		news, err = c.deps.News.FetchNews(gctx, ticker, w.NewsStart, w.NewsEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	if len(news) == 0 {
		return series, news, []models.AnnotatedNewsArticle{}, nil
	}

	inputs := make([]string, len(news))
	for i, a := range news {
		inputs[i] = a.SentimentText()
	}
	scores, err := c.deps.Sentiment.FetchSentiment(ctx, inputs)
	if err != nil {
		return nil, nil, nil, err
	}

	ranked, err := AnnotateAndRank(news, scores)
	if err != nil {
		return nil, nil, nil, err
	}
	return series, news, ranked, nil
}

func failureMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := strings.TrimSpace(um.UserMessage()); msg != "" {
			return msg
		}
	}
	return GenericFetchError
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers an observer. The channel holds at most buffer pending
// snapshots; a slow observer loses older snapshots, never the latest one.
func (c *Controller) Subscribe(buffer int) (<-chan models.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan models.Snapshot, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

// Close detaches all observers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Controller) publishLocked() models.Snapshot {
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

func (c *Controller) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		Phase:        c.phase,
		Loading:      c.loading,
		TickerInput:  c.tickerInput,
		DateInput:    c.dateInput,
		Errors:       c.fieldErrs,
		DarkTheme:    c.darkTheme,
		TimeRange:    c.timeRange,
		Filter:       c.filter,
		HasSubmitted: c.hasSubmitted,
		NoArticles:   c.noArticles,
		ViewModel:    c.vm.Clone(),
		VisibleNews:  []models.AnnotatedNewsArticle{},
		Generation:   c.generation,
	}
	if c.vm != nil {
		snap.VisibleNews = FilterBySentiment(c.vm.NewsList, c.filter)
	}
	return snap
}
