package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(o models.Order) (models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, err
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (title, description, deadline, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		o.Title, o.Description, o.Deadline, o.Status, o.CreatedBy, o.CreatedAt, o.UpdatedAt).Scan(&o.ID)
	if err != nil {
		return models.Order{}, err
	}

	if err := insertProducts(ctx, tx, o.ID, o.Products); err != nil {
		return models.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (r *PostgresOrderRepository) GetAll(filter OrderFilter) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	query := `SELECT id, title, description, deadline, status, created_by, created_at, updated_at FROM orders`
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.Deadline, &o.Status,
			&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		products, err := r.productsFor(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Products = products
	}
	return orders, nil
}

func (r *PostgresOrderRepository) GetByID(id int) (models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	query := `SELECT id, title, description, deadline, status, created_by, created_at, updated_at
		FROM orders WHERE id = $1`

	var o models.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.Title, &o.Description,
		&o.Deadline, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}

	o.Products, err = r.productsFor(ctx, o.ID)
	return o, err
}

// Update replaces the order's metadata and its whole product catalog
// in one transaction.
func (r *PostgresOrderRepository) Update(o models.Order) (models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Order{}, err
	}
	defer tx.Rollback()

	query := `UPDATE orders SET title = $1, description = $2, deadline = $3, updated_at = $4 WHERE id = $5`
	res, err := tx.ExecContext(ctx, query, o.Title, o.Description, o.Deadline, o.UpdatedAt, o.ID)
	if err != nil {
		return models.Order{}, err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Order{}, ErrOrderNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = $1`, o.ID); err != nil {
		return models.Order{}, err
	}
	if err := insertProducts(ctx, tx, o.ID, o.Products); err != nil {
		return models.Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func (r *PostgresOrderRepository) SetStatus(id int, status models.OrderStatus) (models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return models.Order{}, err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return models.Order{}, ErrOrderNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresOrderRepository) productsFor(ctx context.Context, orderID int) ([]models.Product, error) {
	query := `SELECT id, title, description, price, unit FROM order_products
		WHERE order_id = $1 ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Unit); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func insertProducts(ctx context.Context, tx *sql.Tx, orderID int, products []models.Product) error {
	query := `INSERT INTO order_products (order_id, id, title, description, price, unit, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, p := range products {
		if _, err := tx.ExecContext(ctx, query, orderID, p.ID, p.Title, p.Description, p.Price, p.Unit, i); err != nil {
			return err
		}
	}
	return nil
}
