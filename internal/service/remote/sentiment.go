package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"NewsImpact/internal/domain/models"
)

// maxEncodingDepth bounds how many times the result may be JSON-encoded as a string.
const maxEncodingDepth = 3

type sentimentRequest struct {
	Inputs []string `json:"inputs"`
}

type sentimentEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type sentimentScore struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

// decodeSentiment unwraps the scorer's response into one result per input.
//
// Accepted shapes for the "result" field:
//
//	[{"label":"positive","score":0.9}, ...]
//	[[{"label":"positive","score":0.9},{"label":"negative","score":0.1}], ...]
//	"[{\"label\":\"positive\",\"score\":0.9}]"
func decodeSentiment(body []byte, want int) ([]models.SentimentResult, error) {
	var env sentimentEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Result) == 0 {
		return nil, fmt.Errorf("missing result field")
	}

	raw, err := unquote(env.Result)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("result is not an array: %w", err)
	}
	if len(items) != want {
		return nil, fmt.Errorf("got %d results for %d inputs", len(items), want)
	}

	out := make([]models.SentimentResult, len(items))
	for i, item := range items {
		res, err := decodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		out[i] = res
	}
	return out, nil
}

// unquote strips string encodings until a JSON array remains.
func unquote(raw json.RawMessage) (json.RawMessage, error) {
	for depth := 0; ; depth++ {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '"' {
			return raw, nil
		}
		if depth == maxEncodingDepth {
			return nil, fmt.Errorf("result encoded more than %d times", maxEncodingDepth)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode encoded result: %w", err)
		}
		raw = json.RawMessage(s)
	}
}

func decodeItem(item json.RawMessage) (models.SentimentResult, error) {
	item = bytes.TrimSpace(item)
	if len(item) > 0 && item[0] == '[' {
		var candidates []sentimentScore
		if err := json.Unmarshal(item, &candidates); err != nil {
			return models.SentimentResult{}, err
		}
		if len(candidates) == 0 {
			return models.SentimentResult{}, fmt.Errorf("no candidates")
		}
		best := -1
		for i, c := range candidates {
			if c.Score == nil {
				return models.SentimentResult{}, fmt.Errorf("candidate %d has no score", i)
			}
			if best < 0 || *c.Score > *candidates[best].Score {
				best = i
			}
		}
		return toResult(candidates[best])
	}

	var s sentimentScore
	if err := json.Unmarshal(item, &s); err != nil {
		return models.SentimentResult{}, err
	}
	return toResult(s)
}

func toResult(s sentimentScore) (models.SentimentResult, error) {
	label, err := models.ParseSentimentLabel(s.Label)
	if err != nil {
		return models.SentimentResult{}, err
	}
	if s.Score == nil {
		return models.SentimentResult{}, fmt.Errorf("missing score")
	}
	res := models.SentimentResult{Label: label, Confidence: *s.Score}
	if !res.Valid() {
		return models.SentimentResult{}, fmt.Errorf("score %v outside [0,1]", *s.Score)
	}
	return res, nil
}
