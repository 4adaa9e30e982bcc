package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

type PostgresItemRepository struct {
	db *sql.DB
}

func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{db: db}
}

// Upsert sets the quantity for a (order, user, product) triple. The
// composite unique key on order_items makes this a single atomic
// read-modify-write: concurrent calls for the same triple serialize to
// last-write-wins, and no second row can ever appear.
func (r *PostgresItemRepository) Upsert(item models.Item) (models.Item, error) {
	query := `
		INSERT INTO order_items (order_id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, query, item.OrderID, item.UserID, item.ProductID, item.Quantity)
	return item, err
}

func (r *PostgresItemRepository) Delete(orderID, userID int, productID string) error {
	query := `DELETE FROM order_items WHERE order_id = $1 AND user_id = $2 AND product_id = $3`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// deleting an absent row is not an error
	_, err := r.db.ExecContext(ctx, query, orderID, userID, productID)
	return err
}

func (r *PostgresItemRepository) GetByOrder(orderID int) ([]models.Item, error) {
	query := `SELECT order_id, user_id, product_id, quantity FROM order_items
		WHERE order_id = $1 ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return r.queryItems(ctx, query, orderID)
}

func (r *PostgresItemRepository) GetByUserAndOrder(userID, orderID int) ([]models.Item, error) {
	query := `SELECT order_id, user_id, product_id, quantity FROM order_items
		WHERE user_id = $1 AND order_id = $2 ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return r.queryItems(ctx, query, userID, orderID)
}

func (r *PostgresItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.OrderID, &it.UserID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
