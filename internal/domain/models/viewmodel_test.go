package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCloneKeepsEmptySlicesNonNil(t *testing.T) {
	vm := &ViewModel{
		TickerSubmitted: "AAPL",
		PriceSeries:     []PricePoint{},
		DisplaySlice:    []PricePoint{},
		NewsList:        []AnnotatedNewsArticle{},
		TimeRange:       RangeWeek,
		SentimentFilter: FilterAll,
	}

	out := vm.Clone()
	if out.PriceSeries == nil || out.DisplaySlice == nil || out.NewsList == nil {
		t.Fatalf("clone turned empty slices into nil: %+v", out)
	}

	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{`"newsList":[]`, `"priceSeries":[]`, `"displaySlice":[]`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("expected %s in %s", want, b)
		}
	}
}

func TestCloneDoesNotShareBackingArrays(t *testing.T) {
	vm := &ViewModel{NewsList: []AnnotatedNewsArticle{{}}}
	out := vm.Clone()
	out.NewsList[0].Headline = "changed"
	if vm.NewsList[0].Headline != "" {
		t.Fatalf("clone shares news backing array")
	}

	var nilVM *ViewModel
	if nilVM.Clone() != nil {
		t.Fatalf("nil view model should clone to nil")
	}
}
