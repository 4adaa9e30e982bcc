package models

import "time"

// OrderStatus is the lifecycle state of an order. The only legal
// transition is open -> closed.
type OrderStatus string

const (
	StatusOpen   OrderStatus = "open"
	StatusClosed OrderStatus = "closed"
)

// Product is a single catalog entry of an order. Identity is the ID
// (a client-side UUID); title, price and unit are mutable attributes.
// Price is an integer amount with no fractional part.
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Unit        string `json:"unit"`
}

// Order represents a collective purchase with its own product catalog.
// The deadline is advisory display state only; closing is always an
// explicit owner action.
type Order struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Deadline    time.Time   `json:"deadline"`
	Status      OrderStatus `json:"status"`
	CreatedBy   int         `json:"created_by"`
	Products    []Product   `json:"products"`
	CreatedAt   time.Time   `json:"created_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at,omitempty"`
}

// ProductByID returns the catalog entry with the given id, if present.
func (o Order) ProductByID(id string) (Product, bool) {
	for _, p := range o.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
