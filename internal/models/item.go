package models

// Item is one participant's claimed quantity of one product in one
// order. At most one item exists per (order, user, product) triple and
// a quantity of zero is never stored: setting it to zero deletes the
// item instead.
type Item struct {
	OrderID   int    `json:"order_id"`
	UserID    int    `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
