package handlers

import (
	"net/http"

	"github.com/Ionito/pedidos-colectivos/internal/catalog"
)

// ParseCatalogHandler godoc
// @Summary Parse a pasted price list into catalog products
// @Description Live-preview parsing: bad lines are reported individually and never abort the batch
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param text body ParseRequest true "Raw multi-line price list"
// @Success 200 {object} catalog.Result
// @Failure 400 {string} string "Invalid input"
// @Router /catalog/parse [post]
func ParseCatalogHandler(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, catalog.Parse(req.Text))
}
