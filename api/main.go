package main

import (
	"context"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/Ionito/pedidos-colectivos/docs"
	"github.com/Ionito/pedidos-colectivos/internal/auth"
	"github.com/Ionito/pedidos-colectivos/internal/config"
	"github.com/Ionito/pedidos-colectivos/internal/db"
	api "github.com/Ionito/pedidos-colectivos/internal/http"
	"github.com/Ionito/pedidos-colectivos/internal/http/handlers"
	rl "github.com/Ionito/pedidos-colectivos/internal/http/rate_limiter"
	"github.com/Ionito/pedidos-colectivos/internal/ledger"
	"github.com/Ionito/pedidos-colectivos/internal/logger"
	"github.com/Ionito/pedidos-colectivos/internal/redissvc"
	"github.com/Ionito/pedidos-colectivos/internal/repo"
)

// @title Pedidos Colectivos API
// @version 1.0
// @description REST API for pooling collective purchases: shared catalogs, claimed quantities and per-participant totals.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zl.Sync()

	auth.Configure(cfg.JWTSecret, cfg.TokenTTL)
	handlers.SetRefreshTTL(cfg.RefreshTTL)

	go rl.StartVisitorCleanupLoop()

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		// summaries are recomputed on demand, redis only speeds them up
		zl.Warn("redis unavailable, caching and refresh tokens disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		handlers.SetRedisService(redissvc.NewRedisService(rdb, ctx))
	}

	var (
		orderRepo repo.OrderRepository
		itemRepo  repo.ItemRepository
		userRepo  repo.UserRepository
	)
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("could not connect to database", zap.Error(err))
		}
		defer database.Close()

		orderRepo = repo.NewPostgresOrderRepository(database)
		itemRepo = repo.NewPostgresItemRepository(database)
		userRepo = repo.NewPostgresUserRepository(database)
	} else {
		zl.Warn("DATABASE_URL not set, using in-memory repositories")
		orderRepo = repo.NewInMemoryOrderRepository()
		itemRepo = repo.NewInMemoryItemRepository()
		userRepo = repo.NewInMemoryUserRepository()
	}

	handlers.SetLedger(ledger.NewService(orderRepo, itemRepo, userRepo))
	handlers.SetUserRepo(userRepo)

	handler := logger.RequestLog(zl)(api.NewRouter())

	zl.Info("server running", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
