package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/lojista/internal/adapters/repository"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/pkg/logger"
)

// MerchantsHandler serves GET /lojistas.
type MerchantsHandler struct {
	catalog repository.Catalog
	logger  logger.Logger
}

// NewMerchantsHandler creates the handler.
func NewMerchantsHandler(catalog repository.Catalog, log logger.Logger) *MerchantsHandler {
	return &MerchantsHandler{catalog: catalog, logger: log}
}

// HandleGetMerchant answers GET /lojistas?id=&latitude=&longitude=. The
// coordinates are optional; without them distancia is 0.
func (h *MerchantsHandler) HandleGetMerchant(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_id", errors.New("missing id"))
		return
	}
	from, err := parseCoordinates(q.Get("latitude"), q.Get("longitude"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_coordinates", err)
		return
	}

	profile, err := h.catalog.Merchant(r.Context(), id, from)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	case err != nil:
		h.logger.Error(r.Context(), "merchant lookup failed", logger.String("id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func parseCoordinates(lat, lon string) (*model.Coordinates, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, ErrBadCoordinates
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return nil, ErrBadCoordinates
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || lo < -180 || lo > 180 {
		return nil, ErrBadCoordinates
	}
	return &model.Coordinates{Latitude: la, Longitude: lo}, nil
}
