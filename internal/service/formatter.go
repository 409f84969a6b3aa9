package service

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/costnav/costnav/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoResultsMessage is returned for an empty result set.
const NoResultsMessage = "I couldn't find any matching hospitals or procedures for your query."

const (
	rankedLimit  = 3
	listedLimit  = 5
	nameColumn   = "provider_name"
	cityColumn   = "provider_city"
	stateColumn  = "provider_state"
	listFallback = "Unknown"
	itemFallback = "Hospital"
)

// Formatter renders result rows as a plain-text answer.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format summarises rows for the question. It never fails: rows that do not
// fit a ranked rendering fall through to the generic one.
func (f *Formatter) Format(rows []models.Row, question string) string {
	if len(rows) == 0 {
		return NoResultsMessage
	}

	switch ClassifyHint(question) {
	case HintCheapest:
		if field, ok := rows[0].CostField(); ok {
			return formatCheapest(rows, field)
		}
	case HintTopRated:
		if field, ok := rows[0].RatingField(); ok {
			return formatTopRated(rows, field)
		}
	}

	if len(rows) == 1 {
		return formatSingle(rows[0])
	}
	return formatList(rows)
}

func formatCheapest(rows []models.Row, field string) string {
	var sb strings.Builder
	sb.WriteString("Based on the data, here are the most cost-effective options:\n\n")
	for i, row := range rankBy(rows, field, false) {
		cost := "N/A"
		if v, ok := row.Numeric(field); ok {
			cost = formatCurrency(v)
		}
		fmt.Fprintf(&sb, "%d. %s%s - %s\n", i+1, nameOf(row, listFallback), locationOf(row), cost)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTopRated(rows []models.Row, field string) string {
	var sb strings.Builder
	sb.WriteString("Here are the highest-rated hospitals for your query:\n\n")
	for i, row := range rankBy(rows, field, true) {
		rating := "N/A"
		if v, ok := row.Numeric(field); ok {
			rating = formatRating(v)
		}
		fmt.Fprintf(&sb, "%d. %s%s - Rating: %s/10\n", i+1, nameOf(row, listFallback), locationOf(row), rating)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSingle(row models.Row) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found information for %s:\n", nameOf(row, itemFallback))

	title := cases.Title(language.English)
	for _, key := range row.Keys() {
		if key == nameColumn {
			continue
		}
		if _, ok := row.Get(key); !ok {
			continue
		}
		label := title.String(strings.ReplaceAll(key, "_", " "))
		fmt.Fprintf(&sb, "- %s: %s\n", label, fieldValue(row, key))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatList(rows []models.Row) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d matching hospitals:\n\n", len(rows))

	for i, row := range rows {
		if i == listedLimit {
			break
		}
		var details []string
		if field, ok := row.CostField(); ok {
			if v, ok := row.Numeric(field); ok {
				details = append(details, "Cost: "+formatCurrency(v))
			}
		}
		if field, ok := listedRatingField(row); ok {
			if v, ok := row.Numeric(field); ok {
				details = append(details, "Rating: "+formatRating(v)+"/10")
			}
		}
		suffix := ""
		if len(details) > 0 {
			suffix = " (" + strings.Join(details, ", ") + ")"
		}
		fmt.Fprintf(&sb, "%d. %s%s%s\n", i+1, nameOf(row, listFallback), locationOf(row), suffix)
	}

	if len(rows) > listedLimit {
		fmt.Fprintf(&sb, "\n... and %d more hospitals", len(rows)-listedLimit)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// listedRatingField finds the rating shown in list details. Unlike
// Row.RatingField it ignores bare "avg" columns, which in a list are as
// likely to be averaged costs as ratings.
func listedRatingField(row models.Row) (string, bool) {
	for _, k := range row.Keys() {
		if strings.Contains(strings.ToLower(k), "rating") {
			return k, true
		}
	}
	return "", false
}

// rankBy returns up to rankedLimit rows ordered by field. Rows without a
// numeric value for field go last, keeping their relative order.
func rankBy(rows []models.Row, field string, descending bool) []models.Row {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.Row) int {
		av, aok := a.Numeric(field)
		bv, bok := b.Numeric(field)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		if descending {
			av, bv = bv, av
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	})
	if len(sorted) > rankedLimit {
		sorted = sorted[:rankedLimit]
	}
	return sorted
}

func fieldValue(row models.Row, key string) string {
	lower := strings.ToLower(key)
	switch {
	case isMoneyKey(lower):
		if v, ok := row.Numeric(key); ok {
			return formatCurrency(v)
		}
	case strings.Contains(lower, "rating"):
		if v, ok := row.Numeric(key); ok {
			return formatRating(v) + "/10"
		}
	}
	s, _ := row.String(key)
	return s
}

// isMoneyKey matches charge and payment columns but not discharge counts.
func isMoneyKey(lower string) bool {
	if strings.Contains(lower, "discharges") {
		return false
	}
	return strings.Contains(lower, "charges") || strings.Contains(lower, "payments")
}

func nameOf(row models.Row, fallback string) string {
	if name, ok := row.String(nameColumn); ok {
		return name
	}
	return fallback
}

func locationOf(row models.Row) string {
	city, cok := row.String(cityColumn)
	state, sok := row.String(stateColumn)
	if !cok || !sok {
		return ""
	}
	return " in " + city + ", " + state
}

// formatCurrency renders v as dollars with cents rounded half-up and
// thousands grouped, e.g. $1,234.50.
func formatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + d.StringFixed(2)
	}
	p := message.NewPrinter(language.English)
	return sign + "$" + p.Sprintf("%d", n) + "." + cents
}

// formatRating rounds half-up to one decimal place.
func formatRating(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1)
}
