package models

import (
	"fmt"
	"strings"
)

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// ParseSentimentLabel matches case-insensitively against the known labels.
func ParseSentimentLabel(s string) (SentimentLabel, error) {
	switch l := SentimentLabel(strings.ToLower(strings.TrimSpace(s))); l {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return l, nil
	default:
		return "", fmt.Errorf("unknown sentiment label %q", s)
	}
}

// SentimentResult is the score for one input text.
type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
}

// Valid reports whether the result has a known label and a confidence in [0,1].
func (r SentimentResult) Valid() bool {
	switch r.Label {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
	default:
		return false
	}
	return r.Confidence >= 0 && r.Confidence <= 1
}

// AnnotatedNewsArticle is an article paired with its sentiment score.
type AnnotatedNewsArticle struct {
	NewsArticle
	SentimentLabel      SentimentLabel `json:"sentimentLabel"`
	SentimentConfidence float64        `json:"sentimentConfidence"`
}

type SentimentFilter string

const (
	FilterAll      SentimentFilter = "all"
	FilterPositive SentimentFilter = SentimentFilter(SentimentPositive)
	FilterNeutral  SentimentFilter = SentimentFilter(SentimentNeutral)
	FilterNegative SentimentFilter = SentimentFilter(SentimentNegative)
)

func ParseSentimentFilter(s string) (SentimentFilter, error) {
	switch f := SentimentFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterPositive, FilterNeutral, FilterNegative:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sentiment filter %q", s)
	}
}
