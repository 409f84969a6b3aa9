package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/costnav/costnav/internal/models"
	"github.com/costnav/costnav/internal/security"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestNormalizeValue(t *testing.T) {
	var num pgtype.Numeric
	require.NoError(t, num.Scan("1234.50"))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x12, 0x34, 0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc}

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"text", "Albany", "Albany"},
		{"int32", int32(7), int64(7)},
		{"int16", int16(3), int64(3)},
		{"float32", float32(0.5), 0.5},
		{"numeric", num, 1234.5},
		{"null numeric", pgtype.Numeric{}, nil},
		{"timestamp", ts, "2024-03-01T17:00:00Z"},
		{"bytes", []byte("abc"), "abc"},
		{"uuid", id, "12345678-1234-1234-1234-123456789abc"},
		{"bool", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}

func TestQueryExecutionError(t *testing.T) {
	cause := errors.New(`relation "nope" does not exist`)
	var err error = &QueryExecutionError{SQL: "SELECT * FROM nope", Err: cause}

	assert.True(t, errors.Is(err, ErrQueryExecution))
	assert.True(t, errors.Is(err, cause))

	var qe *QueryExecutionError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "SELECT * FROM nope", qe.SQL)
}

// ─── Integration ─────────────────────────────────────────────────────────────

const fixtureSchema = `
CREATE TABLE providers (
	provider_id TEXT PRIMARY KEY,
	provider_name TEXT NOT NULL,
	provider_city TEXT,
	provider_state TEXT,
	provider_zip_code TEXT,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	ms_drg_definition TEXT,
	total_discharges INTEGER,
	average_covered_charges NUMERIC(12,2),
	average_total_payments NUMERIC(12,2),
	average_medicare_payments NUMERIC(12,2)
);
CREATE TABLE ratings (
	id SERIAL PRIMARY KEY,
	provider_id TEXT REFERENCES providers(provider_id),
	rating INTEGER CHECK (rating BETWEEN 1 AND 10)
);
INSERT INTO providers VALUES
	('330101', 'NYU Langone', 'New York', 'NY', '10016', 40.742, -73.974, '470 - MAJOR JOINT REPLACEMENT', 120, 84210.50, 21000.00, 18000.00),
	('330214', 'Mount Sinai', 'New York', 'NY', '10029', 40.790, -73.953, '470 - MAJOR JOINT REPLACEMENT', 98, 65000.00, 19500.00, 17000.00),
	('050454', 'UCSF Medical', 'San Francisco', 'CA', '94143', 37.763, -122.458, '470 - MAJOR JOINT REPLACEMENT', 75, 99000.00, 30000.00, 25000.00),
	('330024', 'Bellevue', 'New York', 'NY', '10016', 40.739, -73.975, '291 - HEART FAILURE', 60, 40000.00, 12000.00, 10000.00);
INSERT INTO ratings (provider_id, rating) VALUES
	('330101', 9), ('330101', 8), ('330214', 7), ('050454', 6);
`

func startPostgres(t *testing.T) *PostgresService {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("costnav"),
		postgres.WithUsername("costnav"),
		postgres.WithPassword("costnav"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, fixtureSchema)
	require.NoError(t, err)
	pool.Close()

	svc, err := NewPostgresService(ctx, dsn, 4, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestPostgresService(t *testing.T) {
	svc := startPostgres(t)
	ctx := context.Background()
	v := security.NewQueryValidator(100, true)

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, svc.Ping(ctx))
	})

	t.Run("query keeps column order and normalizes numerics", func(t *testing.T) {
		q, err := v.Validate("SELECT provider_name, provider_city, average_covered_charges FROM providers WHERE ms_drg_definition ILIKE '%joint%' ORDER BY average_covered_charges")
		require.NoError(t, err)

		rows, err := svc.Query(ctx, q)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"provider_name", "provider_city", "average_covered_charges"}, rows[0].Keys())
		name, _ := rows[0].String("provider_name")
		assert.Equal(t, "Mount Sinai", name)
		cost, ok := rows[0].Numeric("average_covered_charges")
		assert.True(t, ok)
		assert.Equal(t, 65000.0, cost)
	})

	t.Run("aggregate join", func(t *testing.T) {
		q, err := v.Validate("SELECT p.provider_name, AVG(r.rating) AS avg_rating FROM providers p JOIN ratings r ON p.provider_id = r.provider_id GROUP BY p.provider_name ORDER BY avg_rating DESC LIMIT 10")
		require.NoError(t, err)
		rows, err := svc.Query(ctx, q)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		rating, ok := rows[0].Numeric("avg_rating")
		assert.True(t, ok)
		assert.Equal(t, 8.5, rating)
	})

	t.Run("invalid statement is an execution error", func(t *testing.T) {
		_, err := svc.Query(ctx, security.SanitizedQuery("SELECT nope FROM providers"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrQueryExecution))
	})

	t.Run("transaction is read only", func(t *testing.T) {
		_, err := svc.Query(ctx, security.SanitizedQuery("DELETE FROM ratings"))
		require.Error(t, err)
		rows, err := svc.Query(ctx, security.SanitizedQuery("SELECT count(*) AS n FROM ratings"))
		require.NoError(t, err)
		n, _ := rows[0].Numeric("n")
		assert.Equal(t, 4.0, n)
	})

	t.Run("statement timeout", func(t *testing.T) {
		_, err := svc.Query(ctx, security.SanitizedQuery("SELECT pg_sleep(5)"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrQueryExecution))
	})

	t.Run("search by drg", func(t *testing.T) {
		res, err := svc.SearchProviders(ctx, models.ProviderSearchRequest{DRG: "joint"})
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Equal(t, "Mount Sinai", res[0].ProviderName)
		assert.Nil(t, res[0].DistanceKm)
		require.NotNil(t, res[0].AverageRating)
		assert.Equal(t, 7.0, *res[0].AverageRating)
	})

	t.Run("search by location", func(t *testing.T) {
		lat, lon := 40.741, -73.975
		res, err := svc.SearchProviders(ctx, models.ProviderSearchRequest{
			Latitude: &lat, Longitude: &lon, RadiusKm: 10,
		})
		require.NoError(t, err)
		require.Len(t, res, 3)
		for _, h := range res {
			require.NotNil(t, h.DistanceKm)
			assert.LessOrEqual(t, *h.DistanceKm, 10.0)
			assert.NotEqual(t, "UCSF Medical", h.ProviderName)
		}
		assert.LessOrEqual(t, *res[0].DistanceKm, *res[1].DistanceKm)
	})
}
