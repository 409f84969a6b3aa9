package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/costnav/costnav/internal/models"
	"github.com/rs/zerolog/log"
)

// ProviderSearcher finds hospitals by procedure and distance
type ProviderSearcher interface {
	SearchProviders(ctx context.Context, req models.ProviderSearchRequest) ([]models.ProviderResult, error)
}

// ProvidersHandler handles GET /api/v1/providers
type ProvidersHandler struct {
	store ProviderSearcher
}

func NewProvidersHandler(store ProviderSearcher) *ProvidersHandler {
	return &ProvidersHandler{store: store}
}

// Search handles GET /api/v1/providers?drg=&lat=&lon=&radius_km=&limit=
func (h *ProvidersHandler) Search(w http.ResponseWriter, r *http.Request) {
	req, msg := parseProviderSearch(r)
	if msg != "" {
		models.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	hospitals, err := h.store.SearchProviders(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("request_id", models.RequestIDFromContext(r.Context())).Msg("provider search failed")
		models.WriteError(w, http.StatusInternalServerError, "provider search failed")
		return
	}
	if hospitals == nil {
		hospitals = []models.ProviderResult{}
	}

	models.WriteJSON(w, http.StatusOK, models.ProviderSearchResponse{
		Hospitals:  hospitals,
		TotalCount: len(hospitals),
	})
}

func parseProviderSearch(r *http.Request) (models.ProviderSearchRequest, string) {
	q := r.URL.Query()
	req := models.ProviderSearchRequest{DRG: q.Get("drg")}

	var err error
	if req.Latitude, err = models.ParseOptionalFloat(q.Get("lat")); err != nil {
		return req, "lat must be a number"
	}
	if req.Longitude, err = models.ParseOptionalFloat(q.Get("lon")); err != nil {
		return req, "lon must be a number"
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return req, "lat and lon must be supplied together"
	}
	if req.HasLocation() {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return req, "lat must be between -90 and 90"
		}
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return req, "lon must be between -180 and 180"
		}
	}

	if v := q.Get("radius_km"); v != "" {
		if req.RadiusKm, err = strconv.ParseFloat(v, 64); err != nil {
			return req, "radius_km must be a number"
		}
	}
	if v := q.Get("limit"); v != "" {
		if req.Limit, err = strconv.Atoi(v); err != nil {
			return req, "limit must be an integer"
		}
	}

	req.SetDefaults()
	return req, ""
}
