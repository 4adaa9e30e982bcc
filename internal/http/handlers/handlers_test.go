package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	api "github.com/Ionito/pedidos-colectivos/internal/http"
	handler "github.com/Ionito/pedidos-colectivos/internal/http/handlers"
	rl "github.com/Ionito/pedidos-colectivos/internal/http/rate_limiter"
	"github.com/Ionito/pedidos-colectivos/internal/ledger"
	"github.com/Ionito/pedidos-colectivos/internal/models"
	"github.com/Ionito/pedidos-colectivos/internal/repo"
)

var (
	router    http.Handler
	orderRepo *repo.InMemoryOrderRepository
	itemRepo  *repo.InMemoryItemRepository
	userRepo  *repo.InMemoryUserRepository

	anaToken string
	benToken string
)

func init() {
	setupTestRepos("secret")
	router = api.NewRouter()

	var err error
	if anaToken, err = login("ana", "secret"); err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	if benToken, err = login("ben", "secret"); err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestRepos(password string) {
	rl.CleanupAllVisitors()

	orderRepo = repo.NewInMemoryOrderRepository()
	itemRepo = repo.NewInMemoryItemRepository()
	userRepo = repo.NewInMemoryUserRepository()

	handler.SetLedger(ledger.NewService(orderRepo, itemRepo, userRepo))
	handler.SetUserRepo(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	userRepo.CreateUser(models.User{Username: "ana", Name: "Ana", PasswordHash: string(hash)})
	userRepo.CreateUser(models.User{Username: "ben", Name: "Ben", PasswordHash: string(hash)})
}

func login(username, password string) (string, error) {
	w := doJSON(http.MethodPost, "/login", handler.CredentialsRequest{Username: username, Password: password}, "")
	if w.Code != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	var result handler.TokenPairResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func clearOrders() {
	orderRepo.Clear()
	itemRepo.Clear()
}

func sampleOrder() handler.OrderRequest {
	return handler.OrderRequest{
		Title:       "Mariscos de la semana",
		Description: "Pedido conjunto del barrio",
		Deadline:    time.Now().Add(48 * time.Hour),
		Products: []handler.ProductRequest{
			{ID: "prod-a", Title: "Langostinos", Price: 3500, Unit: "100 grs"},
			{ID: "prod-b", Title: "Mejillones", Price: 2300, Unit: "kg"},
		},
	}
}

func createOrder(t *testing.T, token string) handler.OrderResponse {
	t.Helper()
	w := doJSON(http.MethodPost, "/orders", sampleOrder(), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 Created, got %d: %s", w.Code, w.Body.String())
	}
	var resp handler.OrderResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	return resp
}

func TestCreateOrderHandler_Valid(t *testing.T) {
	t.Cleanup(clearOrders)

	resp := createOrder(t, anaToken)

	if resp.Title != "Mariscos de la semana" {
		t.Errorf("expected title to round-trip, got %q", resp.Title)
	}
	if resp.Status != "open" {
		t.Errorf("expected new order to be open, got %q", resp.Status)
	}
	if len(resp.Products) != 2 {
		t.Errorf("expected 2 products, got %d", len(resp.Products))
	}
	if resp.DeadlineState != "upcoming" {
		t.Errorf("expected upcoming deadline, got %q", resp.DeadlineState)
	}
}

func TestCreateOrderHandler_Invalid(t *testing.T) {
	t.Cleanup(clearOrders)

	tests := []struct {
		name    string
		mutate  func(*handler.OrderRequest)
		wantErr string
	}{
		{
			name:    "missing title",
			mutate:  func(o *handler.OrderRequest) { o.Title = " " },
			wantErr: "Title",
		},
		{
			name:    "missing deadline",
			mutate:  func(o *handler.OrderRequest) { o.Deadline = time.Time{} },
			wantErr: "Deadline",
		},
		{
			name:    "zero product price",
			mutate:  func(o *handler.OrderRequest) { o.Products[0].Price = 0 },
			wantErr: "Products[0].Price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder()
			tt.mutate(&order)

			w := doJSON(http.MethodPost, "/orders", order, anaToken)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}

			var errs []handler.ValidationError
			if err := json.NewDecoder(w.Body).Decode(&errs); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantErr {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.wantErr, errs)
			}
		})
	}
}

func TestCreateOrderHandler_Unauthenticated(t *testing.T) {
	w := doJSON(http.MethodPost, "/orders", sampleOrder(), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetOpenOrdersHandler_Public(t *testing.T) {
	t.Cleanup(clearOrders)
	createOrder(t, anaToken)

	w := doJSON(http.MethodGet, "/orders/open", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var orders []handler.OrderResponse
	if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("expected 1 open order, got %d", len(orders))
	}
}

func TestGetOrdersHandler_StatusFilter(t *testing.T) {
	t.Cleanup(clearOrders)
	createOrder(t, anaToken)
	closedResp := createOrder(t, anaToken)

	w := doJSON(http.MethodPost, fmt.Sprintf("/orders/%d/close", closedResp.Id), nil, anaToken)
	if w.Code != http.StatusOK {
		t.Fatalf("close failed: %d", w.Code)
	}

	w = doJSON(http.MethodGet, "/orders?status=closed", nil, anaToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var orders []handler.OrderResponse
	json.NewDecoder(w.Body).Decode(&orders)
	if len(orders) != 1 || orders[0].Id != closedResp.Id {
		t.Errorf("expected only the closed order, got %v", orders)
	}

	w = doJSON(http.MethodGet, "/orders?status=weird", nil, anaToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %d", w.Code)
	}
}

func TestGetOrderByIDHandler_NotFound(t *testing.T) {
	w := doJSON(http.MethodGet, "/orders/9999", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpdateOrderHandler_OwnerOnly(t *testing.T) {
	t.Cleanup(clearOrders)
	created := createOrder(t, anaToken)

	update := sampleOrder()
	update.Title = "Cambiado"

	w := doJSON(http.MethodPut, fmt.Sprintf("/orders/%d", created.Id), update, benToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", w.Code)
	}

	w = doJSON(http.MethodPut, fmt.Sprintf("/orders/%d", created.Id), update, anaToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d: %s", w.Code, w.Body.String())
	}
	var resp handler.OrderResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Title != "Cambiado" {
		t.Errorf("expected updated title, got %q", resp.Title)
	}
}

func TestSetItemQuantityHandler_FullFlow(t *testing.T) {
	t.Cleanup(clearOrders)
	created := createOrder(t, anaToken)
	itemPath := fmt.Sprintf("/orders/%d/items/prod-a", created.Id)

	w := doJSON(http.MethodPut, itemPath, handler.QuantityRequest{Quantity: 2}, benToken)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	// my claims reflect the set
	w = doJSON(http.MethodGet, fmt.Sprintf("/orders/%d/items/mine", created.Id), nil, benToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var items []handler.ItemResponse
	json.NewDecoder(w.Body).Decode(&items)
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected one claim of 2, got %v", items)
	}

	// participants show the derived total
	w = doJSON(http.MethodGet, fmt.Sprintf("/orders/%d/participants", created.Id), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var participants []handler.ParticipantResponse
	json.NewDecoder(w.Body).Decode(&participants)
	if len(participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(participants))
	}
	if participants[0].Total != 7000 {
		t.Errorf("expected total 7000, got %d", participants[0].Total)
	}
	if participants[0].User.Username != "ben" {
		t.Errorf("expected ben, got %q", participants[0].User.Username)
	}

	// zero removes the claim and the participant
	w = doJSON(http.MethodPut, itemPath, handler.QuantityRequest{Quantity: 0}, benToken)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doJSON(http.MethodGet, fmt.Sprintf("/orders/%d/participants", created.Id), nil, "")
	participants = nil
	json.NewDecoder(w.Body).Decode(&participants)
	if len(participants) != 0 {
		t.Errorf("expected no participants after zeroing, got %v", participants)
	}
}

func TestSetItemQuantityHandler_Validation(t *testing.T) {
	t.Cleanup(clearOrders)
	created := createOrder(t, anaToken)
	itemPath := fmt.Sprintf("/orders/%d/items/prod-a", created.Id)

	w := doJSON(http.MethodPut, itemPath, handler.QuantityRequest{Quantity: -1}, benToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative quantity, got %d", w.Code)
	}

	w = doJSON(http.MethodPut, itemPath, handler.QuantityRequest{Quantity: 1}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	w = doJSON(http.MethodPut, "/orders/9999/items/prod-a", handler.QuantityRequest{Quantity: 1}, benToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown order, got %d", w.Code)
	}
}

func TestCloseOrderHandler_GuardsLedger(t *testing.T) {
	t.Cleanup(clearOrders)
	created := createOrder(t, anaToken)
	itemPath := fmt.Sprintf("/orders/%d/items/prod-a", created.Id)

	w := doJSON(http.MethodPut, itemPath, handler.QuantityRequest{Quantity: 3}, benToken)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = doJSON(http.MethodPost, fmt.Sprintf("/orders/%d/close", created.Id), nil, benToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner close, got %d", w.Code)
	}

	w = doJSON(http.MethodPost, fmt.Sprintf("/orders/%d/close", created.Id), nil, anaToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	// further mutations are rejected, the ledger stays as it was
	w = doJSON(http.MethodPut, itemPath, handler.QuantityRequest{Quantity: 5}, benToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on closed order, got %d", w.Code)
	}

	w = doJSON(http.MethodGet, fmt.Sprintf("/orders/%d/participants", created.Id), nil, "")
	var participants []handler.ParticipantResponse
	json.NewDecoder(w.Body).Decode(&participants)
	if len(participants) != 1 || participants[0].Total != 3*3500 {
		t.Errorf("ledger changed after close: %v", participants)
	}

	w = doJSON(http.MethodPost, fmt.Sprintf("/orders/%d/close", created.Id), nil, anaToken)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on double close, got %d", w.Code)
	}
}

func TestParseCatalogHandler(t *testing.T) {
	body := handler.ParseRequest{Text: "_Langostinos $3.500 x 100 grs\nSin precio\nCamarones $0 x kg"}

	w := doJSON(http.MethodPost, "/catalog/parse", body, anaToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var result struct {
		Products []models.Product `json:"products"`
		Errors   []struct {
			Line   string `json:"line"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}

	if len(result.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result.Products))
	}
	p := result.Products[0]
	if p.Title != "Langostinos" || p.Price != 3500 || p.Unit != "100 grs" {
		t.Errorf("unexpected product: %+v", p)
	}

	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(result.Errors))
	}
	if result.Errors[0].Reason != "could not parse this line" {
		t.Errorf("unexpected reason: %q", result.Errors[0].Reason)
	}
	if result.Errors[1].Reason != "invalid price" {
		t.Errorf("unexpected reason: %q", result.Errors[1].Reason)
	}
}

func TestRegisterHandler(t *testing.T) {
	w := doJSON(http.MethodPost, "/register", handler.RegisterRequest{
		Username: "carla",
		Password: "secreto123",
		Name:     "Carla",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var result handler.RegisterResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a token for the new user")
	}

	// duplicate username is rejected
	w = doJSON(http.MethodPost, "/register", handler.RegisterRequest{
		Username: "carla",
		Password: "secreto123",
	}, "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", w.Code)
	}

	// too-short credentials are rejected
	w = doJSON(http.MethodPost, "/register", handler.RegisterRequest{Username: "cb", Password: "x"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short credentials, got %d", w.Code)
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	w := doJSON(http.MethodPost, "/login", handler.CredentialsRequest{Username: "ana", Password: "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestMeHandler(t *testing.T) {
	w := doJSON(http.MethodGet, "/me", nil, anaToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var me handler.UserResponse
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("error decoding response: %v", err)
	}
	if me.Username != "ana" {
		t.Errorf("expected ana, got %q", me.Username)
	}

	w = doJSON(http.MethodGet, "/me", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}
