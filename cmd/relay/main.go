// Package main implements the reference push-delivery relay. It accepts
// notification envelopes from the listkeeper server over TCP, logs them and
// acknowledges each one, standing in for a real messenger integration.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Holography7/listkeeper/internal/config"
	"github.com/Holography7/listkeeper/internal/platform/logger"
	"github.com/Holography7/listkeeper/internal/relay"
)

func main() {
	addr := flag.String("addr", "", "listen address, overrides the configured relay host and port")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	if err := run(*addr, *logLevel); err != nil {
		log.Fatalf("relay: %v", err)
	}
}

func run(addr, logLevel string) error {
	appLogger, err := logger.Setup(config.ServerConfig{LogLevel: logLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	// Without -addr the relay binds the address the server is configured
	// to deliver to, so both sides can share one environment.
	if addr == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration (pass -addr to run without one): %w", err)
		}
		addr = fmt.Sprintf("%s:%d", cfg.Relay.Host, cfg.Relay.Port)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := relay.NewServer(addr, nil, appLogger)
	return server.Serve(ctx)
}
