package service_test

import (
	"strings"
	"testing"

	"github.com/costnav/costnav/internal/models"
	"github.com/costnav/costnav/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(cols []string, vals ...any) models.Row {
	return models.NewRow(cols, vals)
}

// ─── Empty ───────────────────────────────────────────────────────────────────

func TestFormat_Empty(t *testing.T) {
	f := service.NewFormatter()
	for _, q := range []string{"", "cheapest knee replacement", "best rated", "anything at all"} {
		assert.Equal(t, service.NoResultsMessage, f.Format(nil, q))
		assert.Equal(t, service.NoResultsMessage, f.Format([]models.Row{}, q))
	}
}

// ─── Ranked ──────────────────────────────────────────────────────────────────

func TestFormat_CheapestOrdersAscending(t *testing.T) {
	cols := []string{"provider_name", "average_covered_charges"}
	rows := []models.Row{
		row(cols, "A", 500.0),
		row(cols, "B", 100.0),
	}

	out := service.NewFormatter().Format(rows, "What is the cheapest option for X?")

	assert.True(t, strings.HasPrefix(out, "Based on the data, here are the most cost-effective options:"))
	assert.Contains(t, out, "1. B - $100.00")
	assert.Contains(t, out, "2. A - $500.00")
	assert.Less(t, strings.Index(out, "1. B"), strings.Index(out, "2. A"))
}

func TestFormat_CheapestTopThreeWithLocation(t *testing.T) {
	cols := []string{"provider_name", "provider_city", "provider_state", "average_total_payments"}
	rows := []models.Row{
		row(cols, "North", "Albany", "NY", 4200.0),
		row(cols, "South", "Austin", "TX", 1200.555),
		row(cols, "East", nil, "MA", 9800.0),
		row(cols, "West", "Reno", "NV", 2500.0),
	}

	out := service.NewFormatter().Format(rows, "lowest cost hospital")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "1. South in Austin, TX - $1,200.56", lines[2])
	assert.Equal(t, "2. West in Reno, NV - $2,500.00", lines[3])
	assert.Equal(t, "3. North in Albany, NY - $4,200.00", lines[4])
	assert.NotContains(t, out, "East")
}

func TestFormat_CheapestMissingValuesSortLast(t *testing.T) {
	cols := []string{"provider_name", "average_covered_charges"}
	rows := []models.Row{
		row(cols, "NoCost", nil),
		row(cols, "Pricey", 9000.0),
		row(cols, "Cheap", 10.0),
	}
	out := service.NewFormatter().Format(rows, "cheapest")
	assert.Contains(t, out, "1. Cheap - $10.00")
	assert.Contains(t, out, "2. Pricey - $9,000.00")
	assert.Contains(t, out, "3. NoCost - N/A")
}

func TestFormat_TopRatedOrdersDescending(t *testing.T) {
	cols := []string{"provider_name", "provider_city", "provider_state", "avg_rating", "rating"}
	rows := []models.Row{
		row(cols, "Low", "Dayton", "OH", 3.0, 9.0),
		row(cols, "High", "Akron", "OH", 9.25, 1.0),
		row(cols, nil, "Toledo", "OH", 6.0, 5.0),
	}

	out := service.NewFormatter().Format(rows, "Which hospitals have the best rating?")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Here are the highest-rated hospitals for your query:", lines[0])
	assert.Equal(t, "1. High in Akron, OH - Rating: 9.3/10", lines[2])
	assert.Equal(t, "2. Unknown in Toledo, OH - Rating: 6.0/10", lines[3])
	assert.Equal(t, "3. Low in Dayton, OH - Rating: 3.0/10", lines[4])
}

func TestFormat_RankedFallsBackWithoutField(t *testing.T) {
	cols := []string{"provider_name", "provider_city"}
	rows := []models.Row{row(cols, "Solo", "Albany")}

	out := service.NewFormatter().Format(rows, "cheapest place")
	assert.Equal(t, "Found information for Solo:\n- Provider City: Albany", out)

	out = service.NewFormatter().Format(rows, "highest rated place")
	assert.Equal(t, "Found information for Solo:\n- Provider City: Albany", out)
}

// ─── Generic ─────────────────────────────────────────────────────────────────

func TestFormat_SingleRow(t *testing.T) {
	cols := []string{"provider_name", "average_covered_charges", "average_rating"}
	rows := []models.Row{row(cols, "C", 1234.5, 7.25)}

	out := service.NewFormatter().Format(rows, "tell me about C")
	assert.True(t, strings.HasPrefix(out, "Found information for C:"))
	assert.Contains(t, out, "Average Covered Charges: $1,234.50")
	assert.Contains(t, out, "Average Rating: 7.3/10")
}

func TestFormat_SingleRowSkipsNullsAndDefaultsName(t *testing.T) {
	cols := []string{"provider_city", "total_discharges", "provider_zip_code", "average_medicare_payments"}
	rows := []models.Row{row(cols, "Boston", int64(42), nil, "812.1")}

	out := service.NewFormatter().Format(rows, "details")
	assert.Equal(t,
		"Found information for Hospital:\n- Provider City: Boston\n- Total Discharges: 42\n- Average Medicare Payments: $812.10",
		out)
}

func TestFormat_MultipleRowsTruncates(t *testing.T) {
	cols := []string{"provider_name", "provider_city", "provider_state", "average_covered_charges", "average_rating"}
	var rows []models.Row
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		rows = append(rows, row(cols, name, "Albany", "NY", float64(1000*(i+1)), 5.0))
	}

	out := service.NewFormatter().Format(rows, "hospitals in Albany")
	assert.True(t, strings.HasPrefix(out, "Found 7 matching hospitals:\n\n"))
	assert.Contains(t, out, "1. A in Albany, NY (Cost: $1,000.00, Rating: 5.0/10)")
	assert.Contains(t, out, "5. E in Albany, NY (Cost: $5,000.00, Rating: 5.0/10)")
	assert.NotContains(t, out, "6. F")
	assert.True(t, strings.HasSuffix(out, "\n... and 2 more hospitals"))
}

func TestFormat_MultipleRowsWithoutDetails(t *testing.T) {
	cols := []string{"provider_name", "ms_drg_definition"}
	rows := []models.Row{
		row(cols, "A", "470 - MAJOR JOINT"),
		row(cols, nil, "470 - MAJOR JOINT"),
	}
	out := service.NewFormatter().Format(rows, "which hospitals do joint replacement")
	assert.Equal(t, "Found 2 matching hospitals:\n\n1. A\n2. Unknown", out)
}

func TestFormat_ListAveragedCostIsNotARating(t *testing.T) {
	cols := []string{"provider_name", "avg_cost"}
	rows := []models.Row{
		row(cols, "A", 12000.0),
		row(cols, "B", 9000.0),
	}
	out := service.NewFormatter().Format(rows, "average cost per hospital")
	assert.Equal(t, "Found 2 matching hospitals:\n\n1. A (Cost: $12,000.00)\n2. B (Cost: $9,000.00)", out)

	// the top-rated rendering still accepts a bare avg column
	cols = []string{"provider_name", "avg"}
	rows = []models.Row{row(cols, "A", 7.0), row(cols, "B", 9.0)}
	out = service.NewFormatter().Format(rows, "top rated hospitals")
	assert.Contains(t, out, "1. B - Rating: 9.0/10")
}

func TestFormat_OddShapesDoNotPanic(t *testing.T) {
	f := service.NewFormatter()
	shapes := [][]models.Row{
		{models.Row{}},
		{models.Row{}, models.Row{}},
		{row([]string{"average_covered_charges"}, "not a number")},
		{row([]string{"rating"}, true), row([]string{"other"}, 1.0)},
	}
	for _, rows := range shapes {
		for _, q := range []string{"cheapest", "best rating", "generic"} {
			assert.NotPanics(t, func() { f.Format(rows, q) })
		}
	}
}
