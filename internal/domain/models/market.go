package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one trading day of the price series.
type PricePoint struct {
	Date  time.Time
	Close decimal.Decimal
}

type pricePointJSON struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

var priceDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func (p *PricePoint) UnmarshalJSON(b []byte) error {
	var raw pricePointJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s := strings.TrimSpace(raw.Date)
	for _, layout := range priceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			p.Date = t
			p.Close = raw.Close
			return nil
		}
	}
	return fmt.Errorf("price point: unrecognized date %q", raw.Date)
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricePointJSON{Date: p.Date.Format("2006-01-02"), Close: p.Close})
}

// NewsArticle is an article as returned by the news feed. Datetime is unix seconds.
type NewsArticle struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
	Source   string `json:"source"`
}

// SentimentText is the text scored for the article.
func (a NewsArticle) SentimentText() string {
	return a.Headline + " " + a.Summary
}

// Published returns the publication time in UTC.
func (a NewsArticle) Published() time.Time {
	return time.Unix(a.Datetime, 0).UTC()
}
