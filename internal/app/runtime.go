package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/socli/external/sorare"
	"github.com/riskibarqy/socli/internal/config"
	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/domain/state"
	"github.com/riskibarqy/socli/internal/domain/storage"
	"github.com/riskibarqy/socli/internal/infrastructure/storage/file"
	"github.com/riskibarqy/socli/internal/infrastructure/storage/postgres"
	"github.com/riskibarqy/socli/internal/infrastructure/storage/redis"
	"github.com/riskibarqy/socli/internal/interfaces/tui"
	"github.com/riskibarqy/socli/internal/observability"
	"github.com/riskibarqy/socli/internal/platform/cache"
	"github.com/riskibarqy/socli/internal/platform/logging"
	"github.com/riskibarqy/socli/internal/platform/sandbox"
	"github.com/riskibarqy/socli/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Runtime owns every long-lived component of the market watcher.
type Runtime struct {
	cfg    config.Config
	logger *logging.Logger
	ring   *logging.Ring

	store        *state.Store
	orchestrator *usecase.Orchestrator
	scheduler    *usecase.RefreshScheduler
	controller   *tui.Controller

	closers []func(context.Context) error
}

// New builds the runtime. Only configuration and startup wiring errors are
// returned; provider failures surface later through State.
func New(ctx context.Context, cfg config.Config) (*Runtime, error) {
	rt := &Runtime{cfg: cfg, ring: logging.NewRing(cfg.LogRingSize)}

	logger, err := rt.buildLogger()
	if err != nil {
		return nil, err
	}
	rt.logger = logger
	logging.SetDefault(logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.closers = append(rt.closers, shutdownTracing)

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.closers = append(rt.closers, func(context.Context) error { return stopProfiler() })

	repo, err := rt.openRepository(ctx)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	source := sorare.NewClient(sorare.ClientConfig{
		GraphQLURL:       cfg.SorareGraphQLURL,
		SportsGraphQLURL: cfg.SorareSportsGraphQLURL,
		Timeout:          cfg.SorareTimeout,
		MaxRetries:       cfg.SorareMaxRetries,
		Logger:           logger,
		CircuitBreaker:   cfg.SorareCircuit,
	})

	rosterSvc := usecase.NewRosterService(source, repo, usecase.RosterConfig{
		PageSize:      cfg.RosterPageSize,
		PageDelay:     cfg.RosterPageDelay,
		MaxStuckPages: cfg.RosterMaxStuckPages,
	}, logger)
	loader := usecase.NewRosterLoader(rosterSvc, usecase.RosterLoaderConfig{
		MaxAttempts:    cfg.RosterLoadMaxAttempts,
		InitialBackoff: cfg.RosterLoadBackoff,
		MaxBackoff:     cfg.RosterLoadMaxBackoff,
	}, logger)
	strategies := usecase.NewStrategyService(cfg.StrategiesDir, sandbox.New(cfg.StrategyTimeout), logger)

	var prices *cache.TTL[[]player.Price]
	if cfg.PriceCacheTTL > 0 {
		prices = cache.NewTTL[[]player.Price](cfg.PriceCacheTTL)
	}

	rt.store = state.NewStore()
	rt.orchestrator, err = usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Store:      rt.store,
		Source:     source,
		Roster:     loader,
		Strategies: strategies,
		Prices:     prices,
		Logger:     logger,
	}, usecase.OrchestratorConfig{
		Workers:   cfg.OrchestratorWorkers,
		QueueSize: cfg.OrchestratorQueueSize,
	})
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	rt.scheduler = usecase.NewRefreshScheduler(rt.store, rt.orchestrator, usecase.RefreshSchedulerConfig{
		Interval:  cfg.RefreshInterval,
		BatchSize: cfg.RefreshBatchSize,
	}, logger)
	rt.controller = tui.NewController(rt.store, rt.orchestrator, logger)

	logger.InfoContext(ctx, "runtime ready",
		"env", cfg.AppEnv,
		"store_driver", cfg.StoreDriver,
		"strategies_dir", cfg.StrategiesDir,
		"headless", cfg.UIHeadless,
	)
	return rt, nil
}

// Run starts the orchestrator, asks for the roster, starts the scheduler once
// the roster is installed and blocks on the UI, or on ctx when headless.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := r.orchestrator.Run(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "orchestrator stopped", "error", err)
		}
	})
	wg.Go(func() {
		select {
		case <-ctx.Done():
			return
		case <-r.orchestrator.Ready():
		}
		if err := r.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "refresh scheduler stopped", "error", err)
		}
	})

	if err := r.orchestrator.Dispatch(ctx, usecase.InitializeIntent()); err != nil {
		cancel()
		wg.Wait()
		return errors.Wrap(err, "dispatch initialize")
	}

	runErr := r.present(ctx)
	cancel()
	r.orchestrator.Close(shutdownTimeout)
	if recovered := wg.WaitAndRecover(); recovered != nil {
		r.logger.Error("background goroutine panicked", "panic", recovered.String())
	}
	return runErr
}

func (r *Runtime) present(ctx context.Context) error {
	if r.cfg.UIHeadless {
		<-ctx.Done()
		return nil
	}

	program := tea.NewProgram(
		tui.NewModel(ctx, r.store, r.ring, r.controller),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run terminal ui")
	}
	return nil
}

// Close releases stores, exporters and the log sink in reverse build order.
func (r *Runtime) Close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil && r.logger != nil {
			r.logger.Warn("shutdown step failed", "error", err)
		}
	}
	r.closers = nil
	if r.logger != nil {
		_ = r.logger.Sync()
	}
}

// buildLogger writes JSON to LOG_FILE; the ring feeds the Logs panel. The
// terminal belongs to the UI unless running headless.
func (r *Runtime) buildLogger() (*logging.Logger, error) {
	var sinks []io.Writer
	if r.cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(r.cfg.LogFile), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create log directory for %s", r.cfg.LogFile)
		}
		f, err := os.OpenFile(r.cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %s", r.cfg.LogFile)
		}
		r.closers = append(r.closers, func(context.Context) error { return f.Close() })
		sinks = append(sinks, f)
	}
	if r.cfg.UIHeadless || len(sinks) == 0 {
		sinks = append(sinks, os.Stdout)
	}

	return logging.New(r.cfg.LogLevel, io.MultiWriter(sinks...), r.ring).With(
		"service", r.cfg.ServiceName,
		"version", r.cfg.ServiceVersion,
	), nil
}

func (r *Runtime) openRepository(ctx context.Context) (storage.Repository, error) {
	switch r.cfg.StoreDriver {
	case config.StoreDriverRedis:
		store, err := redis.Open(ctx, redis.Config{
			Addr:      r.cfg.RedisAddr,
			Password:  r.cfg.RedisPassword,
			DB:        r.cfg.RedisDB,
			KeyPrefix: r.cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, func(context.Context) error { return store.Close() })
		return store, nil

	case config.StoreDriverPostgres:
		if err := postgres.MigrateUp(r.cfg.DBURL); err != nil {
			return nil, err
		}
		db, err := postgres.Open(ctx, r.cfg.DBURL)
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(db)
		r.closers = append(r.closers, func(context.Context) error { return store.Close() })
		return store, nil

	default:
		store, err := file.NewStore(r.cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
