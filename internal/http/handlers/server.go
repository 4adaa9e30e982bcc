package handlers

import (
	"time"

	"github.com/Ionito/pedidos-colectivos/internal/ledger"
	"github.com/Ionito/pedidos-colectivos/internal/redissvc"
	"github.com/Ionito/pedidos-colectivos/internal/repo"
)

var (
	ledgerSvc *ledger.Service
	userRepo  repo.UserRepository

	// cache is optional; a nil cache disables caching entirely
	cache      *redissvc.RedisService
	refreshTTL = 30 * 24 * time.Hour
)

func SetLedger(s *ledger.Service) {
	ledgerSvc = s
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetRedisService(rs *redissvc.RedisService) {
	cache = rs
}

func SetRefreshTTL(ttl time.Duration) {
	if ttl > 0 {
		refreshTTL = ttl
	}
}
