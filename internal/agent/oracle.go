package agent

import (
	"context"
	"errors"
)

var (
	// ErrOracleUnavailable wraps transport, timeout and API failures.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrEmptyCompletion is returned when the oracle answers with no text.
	ErrEmptyCompletion = errors.New("oracle returned an empty completion")
)

// CompletionRequest is a single-turn request: one system contract, one
// user message.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Oracle turns a prompt into free text. Implementations must be safe for
// concurrent use.
type Oracle interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
}
