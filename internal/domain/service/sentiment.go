package service

import (
	"context"

	"NewsImpact/internal/domain/models"
)

// SentimentScorer labels each input text. The result has the same length and
// order as inputs.
type SentimentScorer interface {
	FetchSentiment(ctx context.Context, inputs []string) ([]models.SentimentResult, error)
}
