package repo

import (
	"sync"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

// InMemoryItemRepository is an in-memory implementation of
// ItemRepository. The mutex makes Upsert atomic per triple, matching
// the uniqueness guarantee the postgres implementation gets from its
// composite key.
type InMemoryItemRepository struct {
	mu    sync.Mutex
	items []models.Item
}

func NewInMemoryItemRepository() *InMemoryItemRepository {
	return &InMemoryItemRepository{
		items: []models.Item{},
	}
}

func (r *InMemoryItemRepository) Upsert(item models.Item) (models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.OrderID == item.OrderID && it.UserID == item.UserID && it.ProductID == item.ProductID {
			r.items[i].Quantity = item.Quantity
			return r.items[i], nil
		}
	}
	r.items = append(r.items, item)
	return item, nil
}

func (r *InMemoryItemRepository) Delete(orderID, userID int, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, it := range r.items {
		if it.OrderID == orderID && it.UserID == userID && it.ProductID == productID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *InMemoryItemRepository) GetByOrder(orderID int) ([]models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []models.Item{}
	for _, it := range r.items {
		if it.OrderID == orderID {
			result = append(result, it)
		}
	}
	return result, nil
}

func (r *InMemoryItemRepository) GetByUserAndOrder(userID, orderID int) ([]models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []models.Item{}
	for _, it := range r.items {
		if it.UserID == userID && it.OrderID == orderID {
			result = append(result, it)
		}
	}
	return result, nil
}

// Clear removes all items, for test cleanup.
func (r *InMemoryItemRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = []models.Item{}
}
