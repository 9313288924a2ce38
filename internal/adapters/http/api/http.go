// Package api serves the merchant backend endpoints used by the screen client:
// merchant profile, product list and rating submission.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/lojista/internal/adapters/repository"
	"github.com/okian/lojista/internal/domain/dedupe"
	"github.com/okian/lojista/pkg/logger"
)

// Server wires HTTP routes for the stub backend.
type Server struct {
	merchantsHandler *MerchantsHandler
	productsHandler  *ProductsHandler
	ratingsHandler   *RatingsHandler
	healthHandler    *HealthHandler
	logger           logger.Logger
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger logger.Logger
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(catalog repository.Catalog, deduper dedupe.Deduper, opts ...Option) *Server {
	o := serverOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	validate := validator.New()
	return &Server{
		merchantsHandler: NewMerchantsHandler(catalog, o.logger),
		productsHandler:  NewProductsHandler(catalog, o.logger),
		ratingsHandler:   NewRatingsHandler(catalog, deduper, validate, o.logger),
		healthHandler:    NewHealthHandler(catalog),
		logger:           o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", instrument("healthz", s.logger, s.healthHandler.HandleHealth))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/lojistas", instrument("lojistas", s.logger, s.merchantsHandler.HandleGetMerchant))
	mux.HandleFunc("/produtos", instrument("produtos", s.logger, s.productsHandler.HandleGetProducts))
	mux.HandleFunc("/avaliacoes", instrument("avaliacoes", s.logger, s.ratingsHandler.HandlePostRating))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	return false
}
