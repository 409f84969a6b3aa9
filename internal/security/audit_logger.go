package security

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs resolution events with hashed identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// ResolutionEvent describes one resolved question.
type ResolutionEvent struct {
	RequestID   string
	Question    string
	SQL         string
	Intent      string
	DataSource  string
	RowCount    int
	OracleMs    int64
	QueryMs     int64
	TotalMs     int64
	FailureKind string
}

// LogResolution records a resolution without the question or SQL text.
func (a *AuditLogger) LogResolution(evt ResolutionEvent) {
	if !a.enabled {
		return
	}
	sqlHash := ""
	if evt.SQL != "" {
		sqlHash = HashString(evt.SQL)[:16]
	}

	e := log.Info().
		Str("event", "resolution_audit").
		Str("question_hash", HashString(evt.Question)[:16]).
		Str("sql_hash", sqlHash).
		Str("intent", evt.Intent).
		Str("data_source", evt.DataSource).
		Int("row_count", evt.RowCount).
		Int64("oracle_ms", evt.OracleMs).
		Int64("query_ms", evt.QueryMs).
		Int64("total_ms", evt.TotalMs)
	if evt.RequestID != "" {
		e = e.Str("request_id", evt.RequestID)
	}
	if evt.FailureKind != "" {
		e = e.Str("failure", evt.FailureKind)
	}
	e.Msg("audit")
}

// HashString returns the hex SHA-256 of s.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
