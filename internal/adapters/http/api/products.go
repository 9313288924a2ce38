package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/lojista/internal/adapters/repository"
	"github.com/okian/lojista/pkg/logger"
)

// ProductsHandler serves GET /produtos.
type ProductsHandler struct {
	catalog repository.Catalog
	logger  logger.Logger
}

// NewProductsHandler creates the handler.
func NewProductsHandler(catalog repository.Catalog, log logger.Logger) *ProductsHandler {
	return &ProductsHandler{catalog: catalog, logger: log}
}

// HandleGetProducts answers GET /produtos?idLojista= with a JSON array, empty
// for merchants without products.
func (h *ProductsHandler) HandleGetProducts(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("idLojista"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_id", errors.New("missing idLojista"))
		return
	}
	products, err := h.catalog.Products(r.Context(), id)
	if err != nil {
		h.logger.Error(r.Context(), "product lookup failed", logger.String("id", id), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return
	}
	writeJSON(w, http.StatusOK, products)
}
