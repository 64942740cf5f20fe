package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/domain/state"
	"github.com/riskibarqy/socli/internal/platform/cache"
	"github.com/riskibarqy/socli/internal/platform/logging"
)

var ErrOrchestratorClosed = errors.New("orchestrator is closed")

type rosterLoader interface {
	Load(ctx context.Context) ([]player.Player, error)
}

type strategyRunner interface {
	RunAll(ctx context.Context, p player.Player) ([]decision.Decision, error)
}

type OrchestratorConfig struct {
	Workers   int
	QueueSize int
	// OnTransition observes every intent status change. Optional.
	OnTransition func(intent Intent, status IntentStatus)
}

type OrchestratorDeps struct {
	Store      *state.Store
	Source     RemoteDataSource
	Roster     rosterLoader
	Strategies strategyRunner
	// Prices caches provider prices per slug. Nil disables caching.
	Prices *cache.TTL[[]player.Price]
	Logger *logging.Logger
}

// Orchestrator serializes work on State through a bounded queue drained by a
// fixed worker pool. The State lock is taken only to read inputs and to apply
// merges, never across provider calls or strategy runs.
type Orchestrator struct {
	store      *state.Store
	source     RemoteDataSource
	roster     rosterLoader
	strategies strategyRunner
	prices     *cache.TTL[[]player.Price]
	logger     *logging.Logger
	cfg        OrchestratorConfig

	queue chan Intent
	pool  *ants.Pool

	ready     chan struct{}
	readyOnce sync.Once
	closed    chan struct{}
	closeOnce sync.Once
	inflight  sync.WaitGroup
}

func NewOrchestrator(deps OrchestratorDeps, cfg OrchestratorConfig) (*Orchestrator, error) {
	if deps.Store == nil || deps.Source == nil || deps.Roster == nil || deps.Strategies == nil {
		return nil, wrapInvalid("orchestrator requires store, source, roster and strategies")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "create orchestrator worker pool")
	}

	return &Orchestrator{
		store:      deps.Store,
		source:     deps.Source,
		roster:     deps.Roster,
		strategies: deps.Strategies,
		prices:     deps.Prices,
		logger:     logger.With("component", "orchestrator"),
		cfg:        cfg,
		queue:      make(chan Intent, cfg.QueueSize),
		pool:       pool,
		ready:      make(chan struct{}),
		closed:     make(chan struct{}),
	}, nil
}

// Ready is closed once the roster has been installed into State.
func (o *Orchestrator) Ready() <-chan struct{} {
	return o.ready
}

// Dispatch enqueues intent, blocking while the queue is full.
func (o *Orchestrator) Dispatch(ctx context.Context, intent Intent) error {
	if err := intent.validate(); err != nil {
		return err
	}
	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}

	select {
	case <-o.closed:
		return ErrOrchestratorClosed
	default:
	}

	o.store.BeginWork()
	select {
	case o.queue <- intent:
		o.transition(ctx, intent, IntentQueued, nil)
		return nil
	case <-ctx.Done():
		o.store.EndWork()
		return ctx.Err()
	case <-o.closed:
		o.store.EndWork()
		return ErrOrchestratorClosed
	}
}

// Run feeds queued intents to the worker pool until ctx ends or Close is called.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-o.closed:
			return nil
		case intent := <-o.queue:
			o.inflight.Add(1)
			err := o.pool.Submit(func() {
				defer o.inflight.Done()
				o.execute(ctx, intent)
			})
			if err != nil {
				o.inflight.Done()
				o.transition(ctx, intent, IntentFailed, errors.Wrap(err, "submit intent"))
				o.store.EndWork()
			}
		}
	}
}

// Close stops intake, waits for running intents up to timeout and frees the pool.
func (o *Orchestrator) Close(timeout time.Duration) {
	o.closeOnce.Do(func() { close(o.closed) })

	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		o.logger.Warn("orchestrator closed with intents still running")
	}
	o.pool.Release()
}

func (o *Orchestrator) drain(ctx context.Context) {
	for {
		select {
		case intent := <-o.queue:
			o.transition(ctx, intent, IntentFailed, ErrOrchestratorClosed)
			o.store.EndWork()
		default:
			return
		}
	}
}

func (o *Orchestrator) execute(ctx context.Context, intent Intent) {
	defer o.store.EndWork()
	defer func() {
		if r := recover(); r != nil {
			o.transition(ctx, intent, IntentFailed, errors.Newf("intent panicked: %v", r))
		}
	}()

	o.transition(ctx, intent, IntentRunning, nil)
	if err := o.handle(ctx, intent); err != nil {
		o.transition(ctx, intent, IntentFailed, err)
		return
	}
	o.transition(ctx, intent, IntentCompleted, nil)
}

func (o *Orchestrator) transition(ctx context.Context, intent Intent, status IntentStatus, err error) {
	args := []any{"intent_id", intent.ID, "kind", intent.Kind, "status", status}
	if intent.Slug != "" {
		args = append(args, "slug", intent.Slug)
	}
	if len(intent.Slugs) > 0 {
		args = append(args, "slugs", len(intent.Slugs))
	}

	switch {
	case err != nil:
		o.logger.WarnContext(ctx, "intent failed", append(args, "error", err)...)
	case status == IntentCompleted:
		o.logger.InfoContext(ctx, "intent completed", args...)
	default:
		o.logger.DebugContext(ctx, "intent "+string(status), args...)
	}

	if o.cfg.OnTransition != nil {
		o.cfg.OnTransition(intent, status)
	}
}

func (o *Orchestrator) handle(ctx context.Context, intent Intent) error {
	ctx, span := startIntentSpan(ctx, intent)
	defer span.End()

	switch intent.Kind {
	case IntentInitialize:
		return o.initialize(ctx)
	case IntentRefreshPrices:
		return o.refreshPrices(ctx, intent.Slug, intent.Force)
	case IntentRefreshStats:
		return o.refreshStats(ctx, intent.Slugs)
	case IntentRefreshInjuries:
		return o.refreshInjuries(ctx, intent.Slugs)
	case IntentRunStrategies:
		return o.runStrategies(ctx, intent.Slug)
	default:
		return wrapInvalid("unknown intent kind %q", intent.Kind)
	}
}

func (o *Orchestrator) initialize(ctx context.Context) error {
	if _, ok := o.store.Snapshot().(state.Uninitialized); !ok {
		o.logger.InfoContext(ctx, "state already initialized, skipping roster load")
		return nil
	}

	players, err := o.roster.Load(ctx)
	if err != nil {
		o.store.Fail("unable to load players: " + err.Error())
		return err
	}
	if !o.store.Initialize(players) {
		return nil
	}
	o.readyOnce.Do(func() { close(o.ready) })
	o.logger.InfoContext(ctx, "roster installed", "players", len(players))

	if len(players) == 0 {
		return nil
	}
	return o.refreshPrices(ctx, players[0].Slug, false)
}

func (o *Orchestrator) refreshPrices(ctx context.Context, slug string, force bool) error {
	load := func(ctx context.Context) ([]player.Price, error) {
		return o.source.GetPrices(ctx, slug)
	}

	var (
		prices []player.Price
		err    error
	)
	if o.prices != nil {
		prices, err = o.prices.GetOrLoad(ctx, slug, force, load)
	} else {
		prices, err = load(ctx)
	}
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "get prices for %s", slug), ErrDataAccess)
	}

	o.store.Update(func(ready *state.Ready) {
		ready.MergePrices(slug, prices)
	})
	return o.runStrategies(ctx, slug)
}

func (o *Orchestrator) refreshStats(ctx context.Context, slugs []string) error {
	stats, err := o.source.GetStats(ctx, slugs)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "get stats for %d players", len(slugs)), ErrDataAccess)
	}
	o.store.Update(func(ready *state.Ready) {
		ready.MergeStats(stats)
	})
	return o.runStrategiesFor(ctx, slugs)
}

func (o *Orchestrator) refreshInjuries(ctx context.Context, slugs []string) error {
	injuries, err := o.source.GetInjuries(ctx, slugs)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "get injuries for %d players", len(slugs)), ErrDataAccess)
	}
	o.store.Update(func(ready *state.Ready) {
		ready.MergeInjuries(slugs, injuries)
	})
	return o.runStrategiesFor(ctx, slugs)
}

func (o *Orchestrator) runStrategiesFor(ctx context.Context, slugs []string) error {
	for _, slug := range slugs {
		if err := o.runStrategies(ctx, slug); err != nil {
			return err
		}
	}
	return nil
}

// runStrategies evaluates a copy of the player outside the lock and replaces
// its decisions, including with an empty list.
func (o *Orchestrator) runStrategies(ctx context.Context, slug string) error {
	p, ok := o.store.Player(slug)
	if !ok {
		return nil
	}

	decisions, err := o.strategies.RunAll(ctx, p)
	if err != nil {
		return err
	}
	o.store.Update(func(ready *state.Ready) {
		ready.MergeDecisions(slug, decisions)
	})
	return nil
}
