package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/lojista/internal/adapters/repository"
	"github.com/okian/lojista/internal/domain/dedupe"
	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

const maxRatingBody = 16 << 10

// RatingsHandler serves POST /avaliacoes.
type RatingsHandler struct {
	catalog  repository.Catalog
	deduper  dedupe.Deduper
	validate *validator.Validate
	logger   logger.Logger
}

// NewRatingsHandler creates the handler.
func NewRatingsHandler(catalog repository.Catalog, deduper dedupe.Deduper, validate *validator.Validate, log logger.Logger) *RatingsHandler {
	return &RatingsHandler{catalog: catalog, deduper: deduper, validate: validate, logger: log}
}

// ratingRequest mirrors the JSON body of POST /avaliacoes.
type ratingRequest struct {
	MerchantID  string    `json:"idLojista" validate:"required"`
	Stars       int       `json:"nota" validate:"min=1,max=5"`
	Feedback    string    `json:"feedback" validate:"max=50"`
	SubmittedAt time.Time `json:"dataAvaliacao"`
}

type ratingResponse struct {
	Key       string  `json:"key"`
	Duplicate bool    `json:"duplicate"`
	Average   float64 `json:"avaliacao"`
}

// HandlePostRating accepts a rating once per Idempotency-Key. A replay answers
// 200 with duplicate set and leaves the average alone.
func (h *RatingsHandler) HandlePostRating(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing_key", ErrMissingKey)
		return
	}

	var req ratingRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRatingBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rating", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	if h.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordDuplicateRating()
		h.logger.Debug(ctx, "duplicate rating", logger.String("key", key))
		current, err := h.catalog.Merchant(ctx, req.MerchantID, nil)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeJSON(w, http.StatusOK, ratingResponse{Key: key, Duplicate: true, Average: current.RatingAverage})
		return
	}

	avg, err := h.catalog.AddRating(ctx, req.MerchantID, req.Stars)
	if err != nil {
		h.deduper.Unrecord(ctx, key)
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_rating", err)
		return
	}

	h.logger.Info(ctx, "rating accepted",
		logger.String("merchant", req.MerchantID),
		logger.Int("stars", req.Stars),
		logger.Float64("average", avg),
	)
	writeJSON(w, http.StatusCreated, ratingResponse{Key: key, Average: avg})
}
