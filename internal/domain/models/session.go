package models

// Phase is the controller's request lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseFetching   Phase = "fetching"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// FieldErrors holds the per-field messages shown under the form inputs.
type FieldErrors struct {
	Ticker string `json:"ticker"`
	Date   string `json:"date"`
}

func (e FieldErrors) Empty() bool { return e.Ticker == "" && e.Date == "" }

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	Phase        Phase                  `json:"phase"`
	Loading      bool                   `json:"loading"`
	TickerInput  string                 `json:"tickerInput"`
	DateInput    string                 `json:"dateInput"`
	Errors       FieldErrors            `json:"errors"`
	DarkTheme    bool                   `json:"darkTheme"`
	TimeRange    TimeRange              `json:"timeRange"`
	Filter       SentimentFilter        `json:"sentimentFilter"`
	HasSubmitted bool                   `json:"hasSubmitted"`
	NoArticles   bool                   `json:"noArticles"`
	ViewModel    *ViewModel             `json:"viewModel,omitempty"`
	VisibleNews  []AnnotatedNewsArticle `json:"visibleNews"`
	Generation   uint64                 `json:"generation"`
}
