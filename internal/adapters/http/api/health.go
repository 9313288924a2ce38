package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/lojista/internal/adapters/repository"
	"github.com/okian/lojista/pkg/metrics"
)

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	catalog repository.Catalog
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(catalog repository.Catalog) *HealthHandler {
	return &HealthHandler{
		catalog: catalog,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Merchants int    `json:"lojistas"`
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Merchants: h.catalog.Count(r.Context())})
}

// HandleMetrics serves the Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
