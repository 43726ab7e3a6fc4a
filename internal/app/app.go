package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/webresolver-client/internal/config"
	"github.com/samvad-hq/webresolver-client/internal/logger"
	"github.com/samvad-hq/webresolver-client/internal/runner"
	"github.com/samvad-hq/webresolver-client/internal/storage"
	"github.com/samvad-hq/webresolver-client/pkg/httpclient"
	"github.com/samvad-hq/webresolver-client/pkg/lookups"
	"github.com/samvad-hq/webresolver-client/pkg/sinks"
	"github.com/samvad-hq/webresolver-client/pkg/webresolver"
)

// App is the batch lookup runtime. It owns the lookup registry, the history
// store and the sinks, and drives the runner once or on an interval.
type App struct {
	cfg       *config.Config
	lookupReg *lookups.Registry
	fanout    *sinks.Fanout
	runner    *runner.Service
	interval  time.Duration
	log       logger.Logger
	store     storage.Store
}

// NewClient builds the webresolver client described by cfg.
func NewClient(cfg *config.Config, log logger.Logger) *webresolver.Client {
	if log == nil {
		log = logger.NopLogger{}
	}
	return webresolver.New(cfg.APIKey,
		webresolver.WithEndpoint(cfg.Endpoint),
		webresolver.WithHTTPClient(httpclient.NewRestyClientWithAgent(cfg.HTTPTimeout, cfg.UserAgent)),
		webresolver.WithLogger(log),
		webresolver.WithEscapedQuery(cfg.EscapeQuery),
	)
}

// New builds the runtime from config files. The sinks file is optional.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lookupReg, err := lookups.LoadRegistry(cfg.LookupsFile)
	if err != nil {
		return nil, fmt.Errorf("load lookups registry: %w", err)
	}
	lookupList := lookupReg.All()
	lookupIDs := make([]string, 0, len(lookupList))
	for _, l := range lookupList {
		lookupIDs = append(lookupIDs, l.ID)
	}
	log.InfoObj("lookups registry loaded", "lookups_meta", map[string]any{
		"count": len(lookupIDs),
		"ids":   lookupIDs,
	})

	fanout, err := buildSinks(ctx, cfg.SinksFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		RecordTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"record_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	svc := runner.NewService(NewClient(cfg, log), fanout, log, store)

	return &App{
		cfg:       cfg,
		lookupReg: lookupReg,
		fanout:    fanout,
		runner:    svc,
		interval:  cfg.RunInterval,
		log:       log,
		store:     store,
	}, nil
}

func buildSinks(ctx context.Context, path string, log logger.Logger) (*sinks.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no sinks file configured; results are only stored", "sinks_file", path)
		return sinks.NewFanout(nil), nil
	}

	sinkReg, err := sinks.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabled := sinkReg.Enabled()
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, sc := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   sc.ID,
			"type": sc.Type,
		})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// RunOnce executes a single pass over the enabled lookups.
func (a *App) RunOnce(ctx context.Context) (runner.Summary, error) {
	if a == nil || a.runner == nil {
		return runner.Summary{}, fmt.Errorf("app is not initialized")
	}

	items := a.lookupReg.Enabled()
	start := time.Now()
	a.log.InfoObj("lookup pass started", "pass_meta", map[string]any{
		"lookups_count": len(items),
		"started_at":    start.UTC(),
	})

	sum, err := a.runner.Run(ctx, items)
	a.log.InfoObj("lookup pass completed", "pass_meta", map[string]any{
		"fetched":    sum.Fetched,
		"skipped":    sum.Skipped,
		"rejected":   sum.Rejected,
		"failed":     sum.Failed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return sum, err
}

// Run executes one pass, then repeats every run interval until the context is
// cancelled. With no interval it returns after the first pass.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.runner == nil {
		return fmt.Errorf("app is not initialized")
	}

	if a.interval <= 0 {
		_, err := a.RunOnce(ctx)
		return err
	}

	a.log.InfoObj("lookup loop starting", "loop_state", map[string]any{
		"lookups_count": len(a.lookupReg.Enabled()),
		"sinks_count":   a.fanout.Size(),
		"run_interval":  a.interval.String(),
	})

	if _, err := a.RunOnce(ctx); err != nil {
		a.log.ErrorObj("initial lookup pass failed", "error", err.Error())
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("lookup loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				a.log.ErrorObj("scheduled lookup pass failed", "error", err.Error())
			}
		}
	}
}

// Close releases the store and any sink clients.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := a.fanout.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sinks: %w", err))
	}
	return errors.Join(errs...)
}
