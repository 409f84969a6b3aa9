package models

import "strconv"

// AskRequest for POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// ProviderSearchRequest for GET /api/v1/providers.
type ProviderSearchRequest struct {
	DRG       string   `json:"drg"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKm  float64  `json:"radius_km"`
	Limit     int      `json:"limit"`
}

func (r *ProviderSearchRequest) SetDefaults() {
	if r.RadiusKm <= 0 {
		r.RadiusKm = 25
	}
	if r.RadiusKm > 500 {
		r.RadiusKm = 500
	}
	if r.Limit <= 0 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

// HasLocation reports whether both coordinates were supplied.
func (r *ProviderSearchRequest) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// ParseOptionalFloat returns nil for an empty string.
func ParseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
