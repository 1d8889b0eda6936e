package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/prosper-autoinvest/internal/config"
	"github.com/samvad-hq/prosper-autoinvest/internal/investor"
	"github.com/samvad-hq/prosper-autoinvest/internal/logger"
	"github.com/samvad-hq/prosper-autoinvest/internal/storage"
	"github.com/samvad-hq/prosper-autoinvest/pkg/httpclient"
	"github.com/samvad-hq/prosper-autoinvest/pkg/prosper"
	"github.com/samvad-hq/prosper-autoinvest/pkg/publishers"
	"github.com/samvad-hq/prosper-autoinvest/pkg/strategy"
)

// ErrAuthentication is returned by Run when the configured credentials are rejected.
var ErrAuthentication = errors.New("prosper rejected the configured credentials")

// AutoInvestor is the auto-invest runtime. It owns the Prosper client, the order
// ledger and the publishers, and runs investment passes on a fixed interval.
type AutoInvestor struct {
	cfg            *config.Config
	client         *prosper.Client
	fanout         *publishers.Fanout
	service        *investor.Service
	investInterval time.Duration
	log            logger.Logger
	store          storage.Store
}

// NewAutoInvestor builds the runtime from config. No requests are made.
func NewAutoInvestor(ctx context.Context, cfg *config.Config, log logger.Logger) (*AutoInvestor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := prosper.New(cfg.ProsperUsername, cfg.ProsperPassword,
		prosper.WithBaseURL(cfg.ProsperBaseURL),
		prosper.WithHTTPClient(httpclient.NewRestyClient(cfg.HTTPTimeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("create prosper client: %w", err)
	}

	strat, err := strategy.Load(cfg.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	log.InfoObj("strategy loaded", "strategy", strat)

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		EntryTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"entry_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &AutoInvestor{
		cfg:            cfg,
		client:         client,
		fanout:         fanout,
		service:        investor.NewService(client, strat, fanout, log, store, cfg.DryRun),
		investInterval: cfg.InvestInterval,
		log:            log,
		store:          store,
	}, nil
}

// buildFanout loads the publishers file. An empty path disables publishing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.WarnObj("no publishers file configured; events will not be published", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run verifies the credentials and then runs passes until the context is cancelled.
func (a *AutoInvestor) Run(ctx context.Context) error {
	if a == nil || a.service == nil {
		return fmt.Errorf("auto investor is not initialized")
	}
	defer a.close()

	if !a.client.Authenticate(ctx) {
		return ErrAuthentication
	}

	a.log.InfoObj("auto invest loop starting", "autoinvest_state", map[string]any{
		"base_url":         a.client.BaseURL(),
		"publishers_count": a.fanout.Size(),
		"invest_interval":  a.investInterval.String(),
		"dry_run":          a.cfg.DryRun,
	})

	if err := a.runOnce(ctx); err != nil {
		a.log.ErrorObj("initial pass failed", "error", err)
	}

	ticker := time.NewTicker(a.investInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("auto invest loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := a.runOnce(ctx); err != nil {
				a.log.ErrorObj("scheduled pass failed", "error", err)
			}
		}
	}
}

// runOnce performs a single investment pass.
func (a *AutoInvestor) runOnce(ctx context.Context) error {
	start := time.Now()
	a.log.InfoObj("pass started", "pass_meta", map[string]any{
		"started_at": start.UTC(),
	})
	summary, err := a.service.Run(ctx)
	a.log.InfoObj("pass completed", "pass_meta", map[string]any{
		"summary":    summary,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// close releases the ledger and publishers, logging any errors encountered.
func (a *AutoInvestor) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := a.fanout.Close(); err != nil {
		a.log.ErrorObj("publishers close failed", "error", err)
	}
}
