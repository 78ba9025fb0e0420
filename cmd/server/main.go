// Package main implements the entry point for the listkeeper server, a
// multi-tenant TODO-list service with token authentication, inactivity-based
// account expiry and asynchronous deletion notifications.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/Holography7/listkeeper/internal/config"
	"github.com/Holography7/listkeeper/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("listkeeper: %v", err)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if migrateCmd != "" {
		return handleMigrations(cfg, appLogger, migrateCmd)
	}

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}
