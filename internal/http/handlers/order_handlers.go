package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Ionito/pedidos-colectivos/internal/ledger"
	"github.com/Ionito/pedidos-colectivos/internal/models"
	"github.com/Ionito/pedidos-colectivos/internal/redissvc"
	"github.com/Ionito/pedidos-colectivos/internal/repo"
)

// writeLedgerError maps core errors onto HTTP statuses. Persistence
// failures stay opaque.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotAuthenticated):
		http.Error(w, "not authenticated", http.StatusUnauthorized)
	case errors.Is(err, ledger.ErrNotOwner):
		http.Error(w, "only the order owner may do this", http.StatusForbidden)
	case errors.Is(err, ledger.ErrOrderClosed):
		http.Error(w, "order is closed", http.StatusConflict)
	case errors.Is(err, ledger.ErrInvalidQuantity):
		http.Error(w, "quantity must be zero or positive", http.StatusBadRequest)
	case errors.Is(err, repo.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func orderIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func requestProducts(reqs []ProductRequest) []models.Product {
	products := make([]models.Product, len(reqs))
	for i, p := range reqs {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		products[i] = models.Product{
			ID:          id,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Unit:        p.Unit,
		}
	}
	return products
}

// CreateOrderHandler godoc
// @Summary Create a new collective order
// @Description Creates an order with its product catalog, owned by the caller
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body OrderRequest true "Order to create"
// @Success 201 {object} OrderResponse
// @Failure 400 {array} ValidationError
// @Failure 401 {string} string "Unauthorized"
// @Router /orders [post]
func CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if validationErrors := validateOrder(req); len(validationErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrors)
		return
	}

	order := models.Order{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Products:    requestProducts(req.Products),
	}
	created, err := ledgerSvc.CreateOrder(currentUserID(r), order)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	invalidateOrderCaches(created.ID)
	writeJSON(w, http.StatusCreated, toOrderResponse(created, time.Now()))
}

// GetOrdersHandler godoc
// @Summary List all orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (open|closed)"
// @Success 200 {array} OrderResponse
// @Failure 400 {string} string "Invalid status"
// @Failure 500 {string} string "Internal error"
// @Router /orders [get]
func GetOrdersHandler(w http.ResponseWriter, r *http.Request) {
	filter := repo.OrderFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := models.OrderStatus(statusParam)
		if status != models.StatusOpen && status != models.StatusClosed {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}
		filter.Status = &status
	}

	orders, err := ledgerSvc.ListOrders(filter)
	if err != nil {
		http.Error(w, "could not fetch orders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ordersToResponses(orders))
}

// GetOpenOrdersHandler godoc
// @Summary List open orders (public landing page)
// @Tags orders
// @Produce json
// @Success 200 {array} OrderResponse
// @Failure 500 {string} string "Internal error"
// @Router /orders/open [get]
func GetOpenOrdersHandler(w http.ResponseWriter, r *http.Request) {
	if cache != nil {
		if data, ok := cache.GetCached(redissvc.OpenOrdersKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	status := models.StatusOpen
	orders, err := ledgerSvc.ListOrders(repo.OrderFilter{Status: &status})
	if err != nil {
		http.Error(w, "could not fetch orders", http.StatusInternalServerError)
		return
	}

	resp := ordersToResponses(orders)
	if cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			cache.SetCached(redissvc.OpenOrdersKey, data, time.Minute)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetOrderByIDHandler godoc
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /orders/{id} [get]
func GetOrderByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := ledgerSvc.GetOrder(id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order, time.Now()))
}

// UpdateOrderHandler godoc
// @Summary Update an order's metadata and catalog
// @Description Owner-only; status and ownership are never changed here
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param order body OrderRequest true "Updated order"
// @Success 200 {object} OrderResponse
// @Failure 400 {array} ValidationError
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Router /orders/{id} [put]
func UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	var req OrderRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if validationErrors := validateOrder(req); len(validationErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrors)
		return
	}

	order := models.Order{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Products:    requestProducts(req.Products),
	}
	updated, err := ledgerSvc.UpdateOrder(currentUserID(r), order)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	// catalog edits change derived summaries too
	invalidateOrderCaches(id)
	writeJSON(w, http.StatusOK, toOrderResponse(updated, time.Now()))
}

// CloseOrderHandler godoc
// @Summary Close an order
// @Description Owner-only, irreversible open->closed transition
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 403 {string} string "Forbidden"
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Already closed"
// @Router /orders/{id}/close [post]
func CloseOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDParam(r)
	if err != nil {
		http.Error(w, "invalid order ID", http.StatusBadRequest)
		return
	}

	closed, err := ledgerSvc.CloseOrder(currentUserID(r), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	invalidateOrderCaches(id)
	writeJSON(w, http.StatusOK, toOrderResponse(closed, time.Now()))
}

func ordersToResponses(orders []models.Order) []OrderResponse {
	now := time.Now()
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o, now)
	}
	return out
}

func invalidateOrderCaches(orderID int) {
	if cache == nil {
		return
	}
	cache.Invalidate(redissvc.OpenOrdersKey, redissvc.SummaryKey(orderID))
}
