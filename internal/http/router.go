package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/Ionito/pedidos-colectivos/internal/http/handlers"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()

	// credentials, rate-limited per client
	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware)
		r.Post("/register", handlers.RegisterHandler)
		r.Post("/login", handlers.LoginHandler)
		r.Post("/refresh", handlers.RefreshHandler)
	})

	// public reads: landing page and order detail need no account
	r.Get("/orders/open", handlers.GetOpenOrdersHandler)
	r.Get("/orders/{id}", handlers.GetOrderByIDHandler)
	r.Get("/orders/{id}/participants", handlers.GetParticipantsHandler)

	// authenticated
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)
		r.Get("/me", handlers.MeHandler)
		r.Get("/orders", handlers.GetOrdersHandler)
		r.Post("/orders", handlers.CreateOrderHandler)
		r.Put("/orders/{id}", handlers.UpdateOrderHandler)
		r.Post("/orders/{id}/close", handlers.CloseOrderHandler)
		r.Put("/orders/{id}/items/{productId}", handlers.SetItemQuantityHandler)
		r.Get("/orders/{id}/items/mine", handlers.GetMyItemsHandler)
		r.Post("/catalog/parse", handlers.ParseCatalogHandler)
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
