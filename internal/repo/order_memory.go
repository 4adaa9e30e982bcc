package repo

import (
	"sync"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

// InMemoryOrderRepository is an in-memory implementation of
// OrderRepository, used by the handler test suites.
type InMemoryOrderRepository struct {
	mu     sync.Mutex
	orders []models.Order
	nextID int
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: []models.Order{},
		nextID: 1,
	}
}

func (r *InMemoryOrderRepository) Create(order models.Order) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = r.nextID
	r.nextID++
	r.orders = append(r.orders, order)
	return order, nil
}

// GetAll returns orders newest first.
func (r *InMemoryOrderRepository) GetAll(filter OrderFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []models.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		o := r.orders[i]
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func (r *InMemoryOrderRepository) GetByID(id int) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

func (r *InMemoryOrderRepository) Update(order models.Order) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID == order.ID {
			o.Title = order.Title
			o.Description = order.Description
			o.Deadline = order.Deadline
			o.Products = order.Products
			o.UpdatedAt = order.UpdatedAt
			r.orders[i] = o
			return o, nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

func (r *InMemoryOrderRepository) SetStatus(id int, status models.OrderStatus) (models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.ID == id {
			r.orders[i].Status = status
			return r.orders[i], nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

// Clear removes all orders, for test cleanup.
func (r *InMemoryOrderRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders = []models.Order{}
	r.nextID = 1
}
