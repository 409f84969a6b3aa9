package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/costnav/costnav/internal/models"
	"github.com/costnav/costnav/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// ErrQueryExecution is matched by every *QueryExecutionError.
var ErrQueryExecution = errors.New("query execution failed")

// QueryExecutionError carries the statement and the store's own error for
// logging. Its text must not be shown to end users.
type QueryExecutionError struct {
	SQL string
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query execution: %v", e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

func (e *QueryExecutionError) Is(target error) bool { return target == ErrQueryExecution }

// PostgresService wraps a pgx pool holding the providers and ratings tables.
type PostgresService struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
}

// NewPostgresService opens a pool and verifies connectivity.
func NewPostgresService(ctx context.Context, dsn string, maxConns int32, statementTimeout time.Duration) (*PostgresService, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return NewPostgresServiceFromPool(pool, statementTimeout), nil
}

func NewPostgresServiceFromPool(pool *pgxpool.Pool, statementTimeout time.Duration) *PostgresService {
	return &PostgresService{pool: pool, statementTimeout: statementTimeout}
}

// Close releases the pool.
func (s *PostgresService) Close() {
	s.pool.Close()
}

// Ping verifies store connectivity.
func (s *PostgresService) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Query runs one sanitized statement inside a read-only transaction on its
// own pooled connection. The transaction is always rolled back.
func (s *PostgresService) Query(ctx context.Context, q security.SanitizedQuery) ([]models.Row, error) {
	sql := q.String()
	fail := func(stage string, err error) ([]models.Row, error) {
		return nil, &QueryExecutionError{SQL: sql, Err: fmt.Errorf("%s: %w", stage, err)}
	}

	start := time.Now()
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return fail("begin", err)
	}
	defer tx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck

	if s.statementTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", s.statementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fail("statement timeout", err)
		}
	}

	rows, err := tx.Query(ctx, sql)
	if err != nil {
		return fail("query", err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	var out []models.Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return fail("scan", err)
		}
		for i := range vals {
			vals[i] = normalizeValue(vals[i])
		}
		out = append(out, models.NewRow(cols, vals))
	}
	if err := rows.Err(); err != nil {
		return fail("rows", err)
	}

	log.Debug().
		Int("rows", len(out)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("query executed")
	return out, nil
}

// normalizeValue maps driver values onto the scalar set models.Row expects:
// string, int64, float64, bool or nil.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil, string, int64, float64, bool:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []byte:
		return string(t)
	case [16]byte:
		return uuid.UUID(t).String()
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

const providerSearchSQL = `
SELECT * FROM (
	SELECT
		p.provider_id::text AS provider_id,
		p.provider_name,
		p.provider_city,
		p.provider_state,
		p.provider_zip_code,
		p.ms_drg_definition,
		p.total_discharges::bigint AS total_discharges,
		p.average_covered_charges::float8 AS average_covered_charges,
		p.average_total_payments::float8 AS average_total_payments,
		p.average_medicare_payments::float8 AS average_medicare_payments,
		CASE WHEN $2::float8 IS NULL OR $3::float8 IS NULL THEN NULL
		ELSE round((6371 * 2 * asin(sqrt(
			power(sin(radians(p.latitude - $2::float8) / 2), 2) +
			cos(radians($2::float8)) * cos(radians(p.latitude)) *
			power(sin(radians(p.longitude - $3::float8) / 2), 2)
		)))::numeric, 1)::float8
		END AS distance_km,
		round(r.avg_rating::numeric, 1)::float8 AS average_rating
	FROM providers p
	LEFT JOIN (
		SELECT provider_id, avg(rating) AS avg_rating
		FROM ratings
		GROUP BY provider_id
	) r ON r.provider_id = p.provider_id
	WHERE ($1 = '' OR p.ms_drg_definition ILIKE '%' || $1 || '%')
) s
WHERE $2::float8 IS NULL OR $3::float8 IS NULL OR s.distance_km <= $4
ORDER BY s.distance_km ASC NULLS LAST, s.average_covered_charges ASC NULLS LAST
LIMIT $5`

// SearchProviders returns hospitals matching a DRG substring, optionally
// within RadiusKm of the supplied coordinates, nearest first.
func (s *PostgresService) SearchProviders(ctx context.Context, req models.ProviderSearchRequest) ([]models.ProviderResult, error) {
	req.SetDefaults()

	rows, err := s.pool.Query(ctx, providerSearchSQL,
		req.DRG, req.Latitude, req.Longitude, req.RadiusKm, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("search providers: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ProviderResult])
	if err != nil {
		return nil, fmt.Errorf("collect providers: %w", err)
	}
	return results, nil
}
