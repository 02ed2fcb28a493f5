package remote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"NewsImpact/internal/domain/models"
	drepo "NewsImpact/internal/domain/repository"
	xhttp "NewsImpact/pkg/http"
	applogger "NewsImpact/pkg/logger"
	"NewsImpact/pkg/metrics"
	"NewsImpact/pkg/util"
)

// Client talks to the price, news and sentiment endpoints behind one base URL.
// Every call is a single round trip with no retries and no caching.
type Client struct {
	baseURL string
	http    *xhttp.Client
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *xhttp.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithMetrics records call outcomes and latency.
func WithMetrics(m drepo.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(l *applogger.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics.Nop{},
		logger:  applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient()
	}
	return c
}

// FetchPriceSeries returns the daily closes between start and end, in the order served.
func (c *Client) FetchPriceSeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	var series []models.PricePoint
	err := c.do(ctx, OpPrice, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/stock/price",
		QueryParams: map[string][]string{
			"ticker":     {ticker},
			"start_date": {util.FormatDate(start)},
			"end_date":   {util.FormatDate(end)},
		},
	}, &series)
	if err != nil {
		return nil, err
	}
	return series, nil
}

// FetchNews returns the articles published for ticker between from and to.
func (c *Client) FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsArticle, error) {
	var news []models.NewsArticle
	err := c.do(ctx, OpNews, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/stock/news",
		QueryParams: map[string][]string{
			"ticker":   {ticker},
			"fromDate": {util.FormatDate(from)},
			"toDate":   {util.FormatDate(to)},
		},
	}, &news)
	if err != nil {
		return nil, err
	}
	return news, nil
}

// FetchSentiment scores inputs. The result is index-aligned with inputs.
func (c *Client) FetchSentiment(ctx context.Context, inputs []string) ([]models.SentimentResult, error) {
	if inputs == nil {
		inputs = []string{}
	}

	var body json.RawMessage
	err := c.do(ctx, OpSentiment, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/api/sentiment",
		Body:   sentimentRequest{Inputs: inputs},
	}, &body)
	if err != nil {
		return nil, err
	}

	results, err := decodeSentiment(body, len(inputs))
	if err != nil {
		fe := malformed(OpSentiment, err)
		c.logger.Error("remote call failed", applogger.String("op", OpSentiment), applogger.String("kind", string(fe.Kind)), applogger.Error(err))
		return nil, fe
	}
	return results, nil
}

func (c *Client) do(ctx context.Context, op string, req *xhttp.RequestOptions, dest interface{}) error {
	start := time.Now()
	err := c.http.SendAndParse(ctx, req, dest)
	c.metrics.RecordRemoteCall(op, time.Since(start).Seconds(), err)
	if err == nil {
		return nil
	}

	fe := classify(op, err)
	c.logger.Error("remote call failed",
		applogger.String("op", op),
		applogger.String("kind", string(fe.Kind)),
		applogger.Int("status", fe.Status),
		applogger.Duration("latency_ms", time.Since(start)),
		applogger.Error(err),
	)
	return fe
}
