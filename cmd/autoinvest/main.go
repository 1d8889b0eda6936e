package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/prosper-autoinvest/internal/app"
	"github.com/samvad-hq/prosper-autoinvest/internal/config"
	"github.com/samvad-hq/prosper-autoinvest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "autoinvest start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("autoinvest starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	investor, err := app.NewAutoInvestor(ctx, cfg, logger.NewZapLogger(sugar))
	if err != nil {
		logger.ErrorObj("failed to initialize auto investor", "error", err)
		return err
	}

	if err := investor.Run(ctx); err != nil {
		return fmt.Errorf("autoinvest run: %w", err)
	}

	return nil
}
