package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row is one result row: column names in select order mapped to scalar
// values (string, int64, float64, bool or nil).
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a row from parallel column and value slices. A repeated
// column name keeps its first position and its last value.
func NewRow(columns []string, values []any) Row {
	r := Row{values: make(map[string]any, len(columns))}
	for i, col := range columns {
		var v any
		if i < len(values) {
			v = values[i]
		}
		r.Set(col, v)
	}
	return r
}

// Set appends key if new, otherwise replaces its value in place.
func (r *Row) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the column names in their natural order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Row) Len() int { return len(r.keys) }

func (r Row) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Get returns the raw value. ok is false for a missing key or a null value.
func (r Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value rendered as text; empty and null values report ok=false.
func (r Row) String(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		s = fmt.Sprint(t)
	}
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Numeric returns the value as float64. Numeric strings such as "1234.50"
// are accepted since some drivers hand back decimals as text.
func (r Row) Numeric(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// CostField returns the column used for cost ranking: average_covered_charges
// when present, else the first column whose name mentions a charge, payment
// or cost. Discharge counts are not costs.
func (r Row) CostField() (string, bool) {
	if r.Has("average_covered_charges") {
		return "average_covered_charges", true
	}
	for _, k := range r.keys {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "discharge") {
			continue
		}
		if strings.Contains(lower, "charge") || strings.Contains(lower, "payment") || strings.Contains(lower, "cost") {
			return k, true
		}
	}
	return "", false
}

// RatingField returns the first column whose name contains "rating" or "avg".
func (r Row) RatingField() (string, bool) {
	for _, k := range r.keys {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "rating") || strings.Contains(lower, "avg") {
			return k, true
		}
	}
	return "", false
}

// MarshalJSON keeps column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
