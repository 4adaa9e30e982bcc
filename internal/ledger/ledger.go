// Package ledger keeps the canonical record of who claimed what in a
// collective order and derives the money owed from it. It also owns
// the authorization boundary: only the order's creator mutates the
// order itself, any authenticated participant mutates their own claims
// while the order is open, and nobody mutates anything once it closed.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/Ionito/pedidos-colectivos/internal/models"
	"github.com/Ionito/pedidos-colectivos/internal/repo"
)

var (
	// ErrNotAuthenticated rejects mutations from callers without an identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotOwner rejects owner-only mutations from other participants.
	ErrNotOwner = errors.New("only the order owner may do this")
	// ErrOrderClosed rejects any mutation on a closed order.
	ErrOrderClosed = errors.New("order is closed")
	// ErrInvalidQuantity rejects negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be zero or positive")
)

// SummaryLine is one claimed product inside a participant summary.
type SummaryLine struct {
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	LineTotal int            `json:"line_total"`
}

// ParticipantSummary is everything one participant owes in one order.
// It is derived, never stored.
type ParticipantSummary struct {
	User  models.User   `json:"user"`
	Lines []SummaryLine `json:"lines"`
	Total int           `json:"total"`
}

// Service implements order lifecycle and claim bookkeeping over the
// repositories it is given. It holds no other state; every operation
// names the order and participant it acts on.
type Service struct {
	orders repo.OrderRepository
	items  repo.ItemRepository
	users  repo.UserRepository
}

func NewService(orders repo.OrderRepository, items repo.ItemRepository, users repo.UserRepository) *Service {
	return &Service{orders: orders, items: items, users: users}
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *Service) ListOrders(filter repo.OrderFilter) ([]models.Order, error) {
	return s.orders.GetAll(filter)
}

// GetOrder returns one order with its catalog.
func (s *Service) GetOrder(orderID int) (models.Order, error) {
	return s.orders.GetByID(orderID)
}

// CreateOrder stores a new order owned by userID. Status is always
// forced to open regardless of input.
func (s *Service) CreateOrder(userID int, order models.Order) (models.Order, error) {
	if userID == 0 {
		return models.Order{}, ErrNotAuthenticated
	}

	now := time.Now().UTC()
	order.CreatedBy = userID
	order.Status = models.StatusOpen
	order.CreatedAt = now
	order.UpdatedAt = now
	return s.orders.Create(order)
}

// UpdateOrder replaces title, description, deadline and catalog of an
// existing order. Only the owner may call it; status and ownership are
// never touched.
func (s *Service) UpdateOrder(userID int, order models.Order) (models.Order, error) {
	existing, err := s.ownedOrder(userID, order.ID)
	if err != nil {
		return models.Order{}, err
	}

	order.CreatedBy = existing.CreatedBy
	order.Status = existing.Status
	order.UpdatedAt = time.Now().UTC()
	return s.orders.Update(order)
}

// CloseOrder transitions an open order to closed. The transition is
// owner-only and irreversible; closing an already closed order fails
// with ErrOrderClosed.
func (s *Service) CloseOrder(userID, orderID int) (models.Order, error) {
	order, err := s.ownedOrder(userID, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status == models.StatusClosed {
		return models.Order{}, ErrOrderClosed
	}
	return s.orders.SetStatus(orderID, models.StatusClosed)
}

// SetQuantity records that userID wants quantity units of productID in
// orderID. It is a set, never an increment: repeating a call leaves
// the same stored state. Zero deletes the claim and is never an error,
// even when no claim exists. Mutations are refused once the order is
// closed; the deadline alone never blocks anything.
func (s *Service) SetQuantity(userID, orderID int, productID string, quantity int) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.Status == models.StatusClosed {
		return ErrOrderClosed
	}

	if quantity == 0 {
		return s.items.Delete(orderID, userID, productID)
	}

	_, err = s.items.Upsert(models.Item{
		OrderID:   orderID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return err
}

// ItemsFor returns userID's current claims in orderID. Callers without
// an identity get an empty result, not an error.
func (s *Service) ItemsFor(userID, orderID int) ([]models.Item, error) {
	if userID == 0 {
		return []models.Item{}, nil
	}
	return s.items.GetByUserAndOrder(userID, orderID)
}

// Summarize recomputes participant summaries for an order from the
// current ledger and the current catalog. Participants appear in the
// order of their first claim and so do lines within a participant.
// Claims whose product has since left the catalog contribute nothing.
func (s *Service) Summarize(orderID int) ([]ParticipantSummary, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.GetByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger for order %d: %w", orderID, err)
	}

	summaries := []ParticipantSummary{}
	index := map[int]int{}

	for _, it := range items {
		product, ok := order.ProductByID(it.ProductID)
		if !ok {
			// orphaned claim, product was edited out of the catalog
			continue
		}

		pos, seen := index[it.UserID]
		if !seen {
			user, err := s.users.GetByID(it.UserID)
			if errors.Is(err, repo.ErrUserNotFound) {
				user = models.User{ID: it.UserID}
			} else if err != nil {
				return nil, err
			}
			pos = len(summaries)
			index[it.UserID] = pos
			summaries = append(summaries, ParticipantSummary{User: user, Lines: []SummaryLine{}})
		}

		line := SummaryLine{
			Product:   product,
			Quantity:  it.Quantity,
			LineTotal: product.Price * it.Quantity,
		}
		summaries[pos].Lines = append(summaries[pos].Lines, line)
		summaries[pos].Total += line.LineTotal
	}

	return summaries, nil
}

func (s *Service) ownedOrder(userID, orderID int) (models.Order, error) {
	if userID == 0 {
		return models.Order{}, ErrNotAuthenticated
	}
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.CreatedBy != userID {
		return models.Order{}, ErrNotOwner
	}
	return order, nil
}
