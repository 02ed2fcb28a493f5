package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)

// Points is the number of leading points shown for the range; -1 means all.
func (r TimeRange) Points() int {
	switch r {
	case RangeWeek:
		return 7
	case RangeMonth:
		return 30
	default:
		return -1
	}
}

func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case RangeWeek, RangeMonth, RangeYear:
		return r, nil
	default:
		return "", fmt.Errorf("unknown time range %q", s)
	}
}

// DateWindow holds the calendar days requested from the remote services.
type DateWindow struct {
	PriceStart time.Time
	PriceEnd   time.Time
	NewsStart  time.Time
	NewsEnd    time.Time
}

// ViewModel is the committed result of one successful submit.
type ViewModel struct {
	TickerSubmitted string                 `json:"tickerSubmitted"`
	PriceSeries     []PricePoint           `json:"priceSeries"`
	DisplaySlice    []PricePoint           `json:"displaySlice"`
	NewsList        []AnnotatedNewsArticle `json:"newsList"`
	TimeRange       TimeRange              `json:"timeRange"`
	SentimentFilter SentimentFilter        `json:"sentimentFilter"`
}

// Clone copies the slices so the copy can be handed to observers. Empty
// slices stay empty rather than nil so they encode as [] instead of null.
func (vm *ViewModel) Clone() *ViewModel {
	if vm == nil {
		return nil
	}
	out := *vm
	out.PriceSeries = slices.Clone(vm.PriceSeries)
	out.DisplaySlice = slices.Clone(vm.DisplaySlice)
	out.NewsList = slices.Clone(vm.NewsList)
	return &out
}
