package repo

import (
	"errors"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

// OrderFilter narrows order listings. A nil Status means all orders.
type OrderFilter struct {
	Status *models.OrderStatus
}

// OrderRepository defines the interface for order data operations.
// Update replaces title, description, deadline and the product catalog
// but never touches status or ownership; status changes go through
// SetStatus.
type OrderRepository interface {
	Create(order models.Order) (models.Order, error)
	GetAll(filter OrderFilter) ([]models.Order, error)
	GetByID(id int) (models.Order, error)
	Update(order models.Order) (models.Order, error)
	SetStatus(id int, status models.OrderStatus) (models.Order, error)
}

// ErrOrderNotFound is returned when an order is not found in the repository.
var ErrOrderNotFound = errors.New("order not found")
