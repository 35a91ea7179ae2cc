// Package routes wires repositories, services and handlers into the HTTP
// surface.
package routes

import (
	"time"

	"tally/internal/config"
	"tally/internal/handlers"
	"tally/internal/middleware"
	"tally/internal/repositories"
	"tally/internal/repositories/cache"
	"tally/internal/services/ledger"
	"tally/internal/services/policy"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, log *zap.Logger) {
	repo := repositories.NewLedgerRepository(db)

	var balanceCache ledger.BalanceCache
	if host := config.GetEnv("REDIS_HOST", ""); host != "" {
		client := cache.NewRedisClient(&cache.RedisConfig{
			Host:     host,
			Port:     config.GetEnv("REDIS_PORT", "6379"),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetIntEnv("REDIS_DB", 0),
		})
		balanceCache = cache.NewRedisBalanceCache(client, config.GetDurationEnv("BALANCE_CACHE_TTL", 24*time.Hour))
	} else {
		balanceCache = cache.NewMemoryBalanceCache()
	}

	feePolicy := policy.NewPercentFee(config.GetEnv("TRANSFER_FEE_PERCENT", "0"))
	ledgerService := ledger.NewService(repo, balanceCache, repo, feePolicy, nil, log)

	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	walletHandler := handlers.NewWalletHandler(repo)

	app.Get("/health", handlers.Health)

	api := app.Group("/api/v1")
	api.Use(middleware.RequireAuth(config.GetEnv("JWT_SECRET", "tally")))

	api.Post("/wallets", walletHandler.Create)
	api.Get("/wallets/:id", walletHandler.Get)
	api.Get("/wallets/:id/balance", ledgerHandler.Balance)
	api.Get("/wallets/:id/transactions", walletHandler.Transactions)
	api.Get("/wallets/:id/transfers", walletHandler.Transfers)

	api.Post("/wallets/deposit", ledgerHandler.Deposit)
	api.Post("/wallets/withdraw", ledgerHandler.Withdraw)
	api.Post("/wallets/transfer", ledgerHandler.Transfer)
}
