package repo

import "github.com/Ionito/pedidos-colectivos/internal/models"

// ItemRepository stores claimed quantities, at most one row per
// (order, user, product) triple. Upsert is a set, never an increment:
// concurrent writes to the same triple converge to last-write-wins.
// Delete is a no-op when the triple has no row.
//
// GetByOrder and GetByUserAndOrder return items in first-claim order;
// overwriting a quantity keeps the item's original position.
type ItemRepository interface {
	Upsert(item models.Item) (models.Item, error)
	Delete(orderID, userID int, productID string) error
	GetByOrder(orderID int) ([]models.Item, error)
	GetByUserAndOrder(userID, orderID int) ([]models.Item, error)
}
