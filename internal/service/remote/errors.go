package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	xhttp "NewsImpact/pkg/http"
)

// ErrorKind classifies why a remote call failed.
type ErrorKind string

const (
	KindHTTP      ErrorKind = "http"
	KindNetwork   ErrorKind = "network"
	KindMalformed ErrorKind = "malformed"
)

// Op names used in errors, logs and metrics.
const (
	OpPrice     = "price"
	OpNews      = "news"
	OpSentiment = "sentiment"
)

var fallbackMessages = map[string]string{
	OpPrice:     "Failed to fetch stock data",
	OpNews:      "Failed to fetch news data",
	OpSentiment: "Failed to fetch sentiment data",
}

// RemoteFetchError is returned by every Client call that does not yield data.
// Message is safe to show to the user.
type RemoteFetchError struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Kind, e.Message)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// UserMessage is the text shown in the ticker field's error slot.
func (e *RemoteFetchError) UserMessage() string { return e.Message }

// classify turns a transport or decode failure into a RemoteFetchError.
func classify(op string, err error) *RemoteFetchError {
	var fe *RemoteFetchError
	if errors.As(err, &fe) {
		return fe
	}

	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return &RemoteFetchError{
			Kind:    KindHTTP,
			Op:      op,
			Status:  se.StatusCode,
			Message: messageFromBody(op, se.Body),
			Err:     err,
		}
	}

	var de *xhttp.DecodeError
	if errors.As(err, &de) {
		return malformed(op, err)
	}

	msg := fallbackMessages[op]
	if errors.Is(err, context.DeadlineExceeded) {
		msg = msg + ": request timed out"
	}
	return &RemoteFetchError{Kind: KindNetwork, Op: op, Message: msg, Err: err}
}

func malformed(op string, err error) *RemoteFetchError {
	return &RemoteFetchError{Kind: KindMalformed, Op: op, Message: fallbackMessages[op], Err: err}
}

// messageFromBody returns the body's "error" field, or the op's fallback.
func messageFromBody(op string, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return fallbackMessages[op]
}
