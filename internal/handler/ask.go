package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/costnav/costnav/internal/models"
	"github.com/costnav/costnav/internal/security"
	"github.com/rs/zerolog/log"
)

const maxAskBodyBytes = 64 << 10

// Resolver answers a single question
type Resolver interface {
	Resolve(ctx context.Context, question string) models.Envelope
}

// AskHandler handles POST /api/v1/ask
type AskHandler struct {
	resolver  Resolver
	promptVal *security.PromptValidator
	phi       *security.PHIDetector
}

func NewAskHandler(resolver Resolver, promptVal *security.PromptValidator, phi *security.PHIDetector) *AskHandler {
	return &AskHandler{
		resolver:  resolver,
		promptVal: promptVal,
		phi:       phi,
	}
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAskBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if vr := h.promptVal.Validate(req.Question); !vr.Valid {
		models.WriteError(w, http.StatusBadRequest, vr.Message)
		return
	}

	if found, kind := h.phi.Detect(req.Question); found {
		log.Warn().
			Str("request_id", models.RequestIDFromContext(r.Context())).
			Str("match", kind).
			Msg("question rejected: personal health identifier")
		models.WriteError(w, http.StatusBadRequest, "please remove personal health information ("+kind+") from your question")
		return
	}

	models.WriteJSON(w, http.StatusOK, h.resolver.Resolve(r.Context(), req.Question))
}
