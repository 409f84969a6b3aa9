package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/costnav/costnav/internal/models"
	"golang.org/x/sync/errgroup"
)

// Version is reported by /health and the version command.
var Version = "1.0.0"

// Pinger is implemented by dependencies that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles GET /health.
type HealthHandler struct {
	store          Pinger
	oracleProvider string
}

func NewHealthHandler(store Pinger, oracleProvider string) *HealthHandler {
	return &HealthHandler{store: store, oracleProvider: oracleProvider}
}

// Health probes dependencies concurrently and reports 503 when any is down.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	checks := map[string]string{"server": "ok"}
	degraded := false
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = "unavailable"
			degraded = true
			return
		}
		checks[name] = "ok"
	}

	g, gctx := errgroup.WithContext(ctx)
	if h.store != nil {
		g.Go(func() error {
			record("database", h.store.Ping(gctx))
			return nil
		})
	} else {
		checks["database"] = "disabled"
		degraded = true
	}
	_ = g.Wait()

	if h.oracleProvider != "" {
		checks["oracle"] = h.oracleProvider
	} else {
		checks["oracle"] = "disabled"
		degraded = true
	}

	status, code := "healthy", http.StatusOK
	if degraded {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	models.WriteJSON(w, code, models.HealthResponse{
		Status:  status,
		Version: Version,
		Checks:  checks,
	})
}
