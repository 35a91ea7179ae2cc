// Package main is the entry point for the ledger server. It loads
// configuration, connects Postgres, wires the service graph and starts the
// HTTP listener.
package main

import (
	"log"

	"tally/internal/config"
	"tally/internal/repositories"
	"tally/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	var zlog *zap.Logger
	var err error
	if config.IsProduction() {
		zlog, err = zap.NewProduction()
	} else {
		zlog, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := repositories.Connect(repositories.DefaultDBConfig())
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName: "tally",
	})
	app.Use(cors.New())
	app.Use(logger.New())

	routes.SetupRoutes(app, db, zlog)

	addr := ":" + config.GetEnv("PORT", "8080")
	zlog.Info("server listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
