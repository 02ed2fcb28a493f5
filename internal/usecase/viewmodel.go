package usecase

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"NewsImpact/internal/domain/models"
	"NewsImpact/pkg/util"
)

// ComputeDateWindow returns the calendar days to request for a selected date.
// Prices run from lookbackDays before the selected day to one year after it;
// news covers the selected day only.
func ComputeDateWindow(selected time.Time, lookbackDays int) models.DateWindow {
	day := util.TruncateDay(selected)
	return models.DateWindow{
		PriceStart: util.AddDays(day, -lookbackDays),
		PriceEnd:   util.AddYears(day, 1),
		NewsStart:  day,
		NewsEnd:    day,
	}
}

// ComputeDisplaySlice returns the leading points shown for r. The result is a
// prefix of series and is never padded.
func ComputeDisplaySlice(series []models.PricePoint, r models.TimeRange) []models.PricePoint {
	n := r.Points()
	if n < 0 || n > len(series) {
		n = len(series)
	}
	return series[:n:n]
}

// AnnotateAndRank pairs news[i] with sentiment[i] and orders the result by
// confidence, highest first. Ties keep their positional order.
func AnnotateAndRank(news []models.NewsArticle, sentiment []models.SentimentResult) ([]models.AnnotatedNewsArticle, error) {
	if len(news) != len(sentiment) {
		return nil, fmt.Errorf("annotate: %d articles but %d sentiment results", len(news), len(sentiment))
	}

	out := make([]models.AnnotatedNewsArticle, len(news))
	for i, article := range news {
		if !sentiment[i].Valid() {
			return nil, fmt.Errorf("annotate: invalid sentiment for article %d: %+v", i, sentiment[i])
		}
		out[i] = models.AnnotatedNewsArticle{
			NewsArticle:         article,
			SentimentLabel:      sentiment[i].Label,
			SentimentConfidence: sentiment[i].Confidence,
		}
	}

	slices.SortStableFunc(out, func(a, b models.AnnotatedNewsArticle) int {
		return cmp.Compare(b.SentimentConfidence, a.SentimentConfidence)
	})
	return out, nil
}

// FilterBySentiment returns the articles visible under f in their existing order.
// The input is not modified.
func FilterBySentiment(list []models.AnnotatedNewsArticle, f models.SentimentFilter) []models.AnnotatedNewsArticle {
	out := make([]models.AnnotatedNewsArticle, 0, len(list))
	for _, a := range list {
		if f == models.FilterAll || string(a.SentimentLabel) == string(f) {
			out = append(out, a)
		}
	}
	return out
}

// BuildViewModel assembles a complete ViewModel from one submit's results.
func BuildViewModel(ticker string, series []models.PricePoint, news []models.AnnotatedNewsArticle, r models.TimeRange, f models.SentimentFilter) *models.ViewModel {
	if series == nil {
		series = []models.PricePoint{}
	}
	if news == nil {
		news = []models.AnnotatedNewsArticle{}
	}
	return &models.ViewModel{
		TickerSubmitted: ticker,
		PriceSeries:     series,
		DisplaySlice:    ComputeDisplaySlice(series, r),
		NewsList:        news,
		TimeRange:       r,
		SentimentFilter: f,
	}
}
