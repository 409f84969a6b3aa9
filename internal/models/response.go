package models

// DataSource tells the caller where an answer came from.
type DataSource string

const (
	DataSourceAIResponse    DataSource = "ai_response"
	DataSourceAIKnowledge   DataSource = "ai_knowledge"
	DataSourceDatabaseQuery DataSource = "database_query"
	DataSourceError         DataSource = "error"
	DataSourceFallback      DataSource = "fallback"
)

// Envelope is the uniform result of resolving one question.
type Envelope struct {
	Answer     string     `json:"answer"`
	DataSource DataSource `json:"data_source"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ProviderResult is one hospital row returned by the provider search.
type ProviderResult struct {
	ProviderID              string   `json:"provider_id" db:"provider_id"`
	ProviderName            string   `json:"provider_name" db:"provider_name"`
	ProviderCity            *string  `json:"provider_city,omitempty" db:"provider_city"`
	ProviderState           *string  `json:"provider_state,omitempty" db:"provider_state"`
	ProviderZipCode         *string  `json:"provider_zip_code,omitempty" db:"provider_zip_code"`
	MSDRGDefinition         *string  `json:"ms_drg_definition,omitempty" db:"ms_drg_definition"`
	TotalDischarges         *int64   `json:"total_discharges,omitempty" db:"total_discharges"`
	AverageCoveredCharges   *float64 `json:"average_covered_charges,omitempty" db:"average_covered_charges"`
	AverageTotalPayments    *float64 `json:"average_total_payments,omitempty" db:"average_total_payments"`
	AverageMedicarePayments *float64 `json:"average_medicare_payments,omitempty" db:"average_medicare_payments"`
	DistanceKm              *float64 `json:"distance_km,omitempty" db:"distance_km"`
	AverageRating           *float64 `json:"average_rating,omitempty" db:"average_rating"`
}

// ProviderSearchResponse is returned by GET /api/v1/providers.
type ProviderSearchResponse struct {
	Hospitals  []ProviderResult `json:"hospitals"`
	TotalCount int              `json:"total_count"`
}
