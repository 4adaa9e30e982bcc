package handlers

import (
	"time"

	"github.com/Ionito/pedidos-colectivos/internal/ledger"
	"github.com/Ionito/pedidos-colectivos/internal/models"
)

type ProductRequest struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Unit        string `json:"unit"`
}

type OrderRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Deadline    time.Time        `json:"deadline"`
	Products    []ProductRequest `json:"products"`
}

type OrderResponse struct {
	Id            int              `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Deadline      time.Time        `json:"deadline"`
	DeadlineState string           `json:"deadline_state"`
	Status        string           `json:"status"`
	CreatedBy     int              `json:"created_by"`
	Products      []models.Product `json:"products"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UserResponse struct {
	Id        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ParticipantResponse struct {
	User  UserResponse         `json:"user"`
	Lines []ledger.SummaryLine `json:"lines"`
	Total int                  `json:"total"`
}

type ParseRequest struct {
	Text string `json:"text"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenPairResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterResult struct {
	Message      string `json:"message"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// deadlineState classifies a deadline against now, for display only.
// It never affects whether mutations are accepted.
func deadlineState(deadline, now time.Time) string {
	switch {
	case deadline.Before(now):
		return "expired"
	case deadline.Sub(now) < 24*time.Hour:
		return "closing_soon"
	default:
		return "upcoming"
	}
}

func toOrderResponse(o models.Order, now time.Time) OrderResponse {
	products := o.Products
	if products == nil {
		products = []models.Product{}
	}
	return OrderResponse{
		Id:            o.ID,
		Title:         o.Title,
		Description:   o.Description,
		Deadline:      o.Deadline,
		DeadlineState: deadlineState(o.Deadline, now),
		Status:        string(o.Status),
		CreatedBy:     o.CreatedBy,
		Products:      products,
	}
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		Id:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

func toParticipantResponses(summaries []ledger.ParticipantSummary) []ParticipantResponse {
	out := make([]ParticipantResponse, len(summaries))
	for i, s := range summaries {
		out[i] = ParticipantResponse{
			User:  toUserResponse(s.User),
			Lines: s.Lines,
			Total: s.Total,
		}
	}
	return out
}
