package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Ionito/pedidos-colectivos/internal/models"
	"github.com/Ionito/pedidos-colectivos/internal/redissvc"
)

// SetItemQuantityHandler godoc
// @Summary Set the caller's claimed quantity for a product
// @Description Idempotent set-to-value: repeating the call changes nothing, zero removes the claim
// @Tags items
// @Accept json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param productId path string true "Product ID"
// @Param quantity body QuantityRequest true "Quantity to set"
// @Success 204 "Set successfully"
// @Failure 400 {string} string "Invalid quantity"
// @Failure 401 {string} string "Unauthorized"
// @Failure 404 {string} string "Order not found"
// @Failure 409 {string} string "Order closed"
// @Router /orders/{id}/items/{productId} [put]
func SetItemQuantityHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		http.Error(w, "product ID is required", http.StatusBadRequest)
		return
	}

	var req QuantityRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if err := ledgerSvc.SetQuantity(currentUserID(r), orderID, productID, req.Quantity); err != nil {
		writeLedgerError(w, err)
		return
	}

	// the summary for this order is derived state, drop it
	if cache != nil {
		cache.Invalidate(redissvc.SummaryKey(orderID))
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMyItemsHandler godoc
// @Summary List the caller's claims in an order
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {array} ItemResponse
// @Failure 400 {string} string "Invalid ID"
// @Router /orders/{id}/items/mine [get]
func GetMyItemsHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	items, err := ledgerSvc.ItemsFor(currentUserID(r), orderID)
	if err != nil {
		http.Error(w, "could not fetch items", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, itemsToResponses(items))
}

// GetParticipantsHandler godoc
// @Summary Participant summaries for an order
// @Description Who claimed what and how much each participant owes, recomputed from the current ledger and catalog
// @Tags items
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {array} ParticipantResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Order not found"
// @Router /orders/{id}/participants [get]
func GetParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	if cache != nil {
		if data, ok := cache.GetCached(redissvc.SummaryKey(orderID)); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	summaries, err := ledgerSvc.Summarize(orderID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	resp := toParticipantResponses(summaries)
	if cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			cache.SetCached(redissvc.SummaryKey(orderID), data, time.Minute)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func itemsToResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = ItemResponse{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}
