package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/costnav/costnav/internal/models"
	"github.com/costnav/costnav/internal/security"
	"github.com/rs/zerolog/log"
)

const (
	RedirectMessage       = "I can only help with hospital pricing and quality information. Please ask about medical procedures, costs, or hospital ratings."
	OracleErrorMessage    = "I'm having trouble processing your question right now. Please try again later."
	ExecutionErrorMessage = "I encountered an error while searching the database. Please try rephrasing your question or contact support if the issue persists."
	FallbackMessage       = "I'm not sure how to process that question. Please ask about hospital costs, ratings, or procedures."
)

// Executor runs a sanitized statement. Each call must use its own
// connection so concurrent resolutions never share one.
type Executor interface {
	Query(ctx context.Context, q security.SanitizedQuery) ([]models.Row, error)
}

// Formatter renders rows for a question.
type Formatter interface {
	Format(rows []models.Row, question string) string
}

// Resolver runs the classify, validate, execute and format pipeline.
type Resolver struct {
	classifier *Classifier
	validator  *security.QueryValidator
	executor   Executor
	formatter  Formatter
	audit      *security.AuditLogger
}

func NewResolver(
	classifier *Classifier,
	validator *security.QueryValidator,
	executor Executor,
	formatter Formatter,
	audit *security.AuditLogger,
) *Resolver {
	if audit == nil {
		audit = security.NewAuditLogger(false)
	}
	return &Resolver{
		classifier: classifier,
		validator:  validator,
		executor:   executor,
		formatter:  formatter,
		audit:      audit,
	}
}

// Resolve always returns a well-formed envelope. Faults are logged, never
// copied into the answer.
func (r *Resolver) Resolve(ctx context.Context, question string) models.Envelope {
	start := time.Now()
	evt := security.ResolutionEvent{
		RequestID: models.RequestIDFromContext(ctx),
		Question:  question,
	}

	intent := r.classifier.Classify(ctx, question)
	evt.OracleMs = time.Since(start).Milliseconds()
	evt.Intent = intent.Kind.String()

	var env models.Envelope
	switch intent.Kind {
	case IntentOutOfScope:
		env = models.Envelope{Answer: RedirectMessage, DataSource: models.DataSourceAIResponse}

	case IntentError:
		log.Error().Err(intent.Err).Str("request_id", evt.RequestID).Msg("oracle call failed")
		evt.FailureKind = "oracle"
		env = models.Envelope{Answer: OracleErrorMessage, DataSource: models.DataSourceError}

	case IntentDirectAnswer:
		env = models.Envelope{Answer: intent.Text, DataSource: models.DataSourceAIKnowledge}

	case IntentStructuredQuery:
		env = r.runQuery(ctx, question, intent.Expression, &evt)

	default:
		log.Warn().Int("kind", int(intent.Kind)).Msg("unhandled intent")
		env = models.Envelope{Answer: FallbackMessage, DataSource: models.DataSourceFallback}
	}

	evt.DataSource = string(env.DataSource)
	evt.TotalMs = time.Since(start).Milliseconds()
	r.audit.LogResolution(evt)
	return env
}

func (r *Resolver) runQuery(ctx context.Context, question, expr string, evt *security.ResolutionEvent) models.Envelope {
	failed := models.Envelope{Answer: ExecutionErrorMessage, DataSource: models.DataSourceError}
	evt.SQL = expr

	q, err := r.validator.Validate(expr)
	if err != nil {
		log.Warn().Err(err).Str("request_id", evt.RequestID).Msg("generated query rejected")
		evt.FailureKind = "rejected"
		return failed
	}
	evt.SQL = q.String()

	queryStart := time.Now()
	rows, err := r.executor.Query(ctx, q)
	evt.QueryMs = time.Since(queryStart).Milliseconds()
	if err != nil {
		log.Error().Err(err).Str("request_id", evt.RequestID).Msg("query execution failed")
		evt.FailureKind = "execution"
		return failed
	}
	evt.RowCount = len(rows)

	answer, err := r.format(rows, question)
	if err != nil {
		log.Error().Err(err).Str("request_id", evt.RequestID).Msg("formatting failed")
		evt.FailureKind = "formatting"
		return failed
	}
	return models.Envelope{Answer: answer, DataSource: models.DataSourceDatabaseQuery}
}

func (r *Resolver) format(rows []models.Row, question string) (answer string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("formatter panic: %v", rec)
		}
	}()
	return r.formatter.Format(rows, question), nil
}
