package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/costnav/costnav/internal/security"
	"github.com/rs/zerolog/log"
)

const (
	oracleMaxTokens   = 500
	oracleTemperature = 0.1
)

// IntentKind tags the outcome of classifying one question.
type IntentKind int

const (
	IntentError IntentKind = iota
	IntentOutOfScope
	IntentDirectAnswer
	IntentStructuredQuery
)

func (k IntentKind) String() string {
	switch k {
	case IntentOutOfScope:
		return "out_of_scope"
	case IntentDirectAnswer:
		return "direct_answer"
	case IntentStructuredQuery:
		return "structured_query"
	default:
		return "error"
	}
}

// Intent is the classified form of a question. Text holds the direct answer,
// Expression the extracted statement and Explanation the oracle's full reply.
// Err is set only for IntentError and is never shown to users.
type Intent struct {
	Kind        IntentKind
	Text        string
	Expression  string
	Explanation string
	Err         error
}

// Classifier asks the oracle what a question needs.
type Classifier struct {
	oracle  Oracle
	timeout time.Duration
}

func NewClassifier(oracle Oracle, timeout time.Duration) *Classifier {
	return &Classifier{oracle: oracle, timeout: timeout}
}

// Classify never returns an error: oracle faults become IntentError.
func (c *Classifier) Classify(ctx context.Context, question string) Intent {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.oracle.Complete(ctx, CompletionRequest{
		System:      systemContract,
		Prompt:      userPrompt(question),
		MaxTokens:   oracleMaxTokens,
		Temperature: oracleTemperature,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyCompletion
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrOracleUnavailable) {
			err = errors.Join(ErrOracleUnavailable, err)
		}
		return Intent{Kind: IntentError, Err: err}
	}
	text = strings.TrimSpace(text)

	if strings.Contains(strings.ToUpper(text), OutOfScopeSentinel) {
		return Intent{Kind: IntentOutOfScope, Explanation: text}
	}

	if expr, ok := security.ExtractQuery(text); ok {
		return Intent{Kind: IntentStructuredQuery, Expression: expr, Explanation: text}
	}

	log.Debug().Int("length", len(text)).Msg("no statement in completion, treating as direct answer")
	return Intent{Kind: IntentDirectAnswer, Text: text, Explanation: text}
}
