package repository

import (
	"context"
	"time"

	"NewsImpact/internal/domain/models"
)

// PriceRepository fetches the daily close series for a ticker.
type PriceRepository interface {
	FetchPriceSeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
}

// NewsRepository fetches company news published between two calendar days.
type NewsRepository interface {
	FetchNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsArticle, error)
}

type Metrics interface {
	RecordRemoteCall(op string, seconds float64, err error)
	RecordSubmit(outcome string)
	RecordStaleDiscard()
	SetActiveSessions(n int)
}
