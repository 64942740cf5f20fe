package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/domain/state"
	"github.com/riskibarqy/socli/internal/platform/cache"
	usecasemock "github.com/riskibarqy/socli/internal/mocks/usecase"
)

type stubRosterLoader struct {
	players []player.Player
	err     error
}

func (s stubRosterLoader) Load(context.Context) ([]player.Player, error) {
	return s.players, s.err
}

// countingStrategies emits one WATCH decision per player that has prices.
type countingStrategies struct {
	mu    sync.Mutex
	calls map[string]int
}

func (s *countingStrategies) RunAll(_ context.Context, p player.Player) ([]decision.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[p.Slug]++
	if len(p.Prices) == 0 {
		return nil, nil
	}
	return []decision.Decision{
		decision.New(decision.Verdict{Action: decision.ActionWatch, Comment: p.Prices[0].EUR}, p.Slug, p.DisplayName, "stub"),
	}, nil
}

func (s *countingStrategies) count(slug string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[slug]
}

type orchestratorHarness struct {
	store      *state.Store
	source     *usecasemock.RemoteDataSource
	strategies *countingStrategies
	orch       *Orchestrator
	done       chan Intent
	cancel     context.CancelFunc
}

func newOrchestratorHarness(t *testing.T, roster rosterLoader, prices *cache.TTL[[]player.Price]) *orchestratorHarness {
	t.Helper()

	h := &orchestratorHarness{
		store:      state.NewStore(),
		source:     usecasemock.NewRemoteDataSource(t),
		strategies: &countingStrategies{},
		done:       make(chan Intent, 64),
	}
	orch, err := NewOrchestrator(OrchestratorDeps{
		Store:      h.store,
		Source:     h.source,
		Roster:     roster,
		Strategies: h.strategies,
		Prices:     prices,
	}, OrchestratorConfig{
		Workers:   2,
		QueueSize: 100,
		OnTransition: func(intent Intent, status IntentStatus) {
			if status == IntentCompleted || status == IntentFailed {
				h.done <- intent
			}
		},
	})
	require.NoError(t, err)
	h.orch = orch

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { _ = orch.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		orch.Close(time.Second)
	})
	return h
}

func (h *orchestratorHarness) dispatchAndWait(t *testing.T, intents ...Intent) {
	t.Helper()
	for _, intent := range intents {
		require.NoError(t, h.orch.Dispatch(context.Background(), intent))
	}
	for range intents {
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for intents")
		}
	}
}

func TestOrchestrator_InitializeInstallsRosterAndPricesFirstPlayer(t *testing.T) {
	t.Parallel()

	roster := stubRosterLoader{players: []player.Player{named("a", "A"), named("b", "B")}}
	h := newOrchestratorHarness(t, roster, nil)
	h.source.On("GetPrices", mock.Anything, "a").Return([]player.Price{{Slug: "a", EUR: "4.20"}}, nil).Once()

	h.dispatchAndWait(t, InitializeIntent())

	select {
	case <-h.orch.Ready():
	default:
		t.Fatalf("expected Ready to be closed after initialize")
	}

	ready, ok := h.store.Snapshot().(*state.Ready)
	require.True(t, ok)
	require.Len(t, ready.Players, 2)
	require.Equal(t, "4.20", ready.Players[0].Prices[0].EUR)
	require.Len(t, ready.Decisions, 1)
	require.Equal(t, "a", ready.Decisions[0].Slug)
	require.Eventually(t, func() bool { return !h.store.Busy() }, time.Second, 5*time.Millisecond,
		"expected store idle after intents completed")
}

func TestOrchestrator_InitializeFailureMovesToFailed(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{err: errors.New("provider down")}, nil)
	h.dispatchAndWait(t, InitializeIntent())

	failed, ok := h.store.Snapshot().(state.Failed)
	require.True(t, ok)
	require.Contains(t, failed.Message, "unable to load players")
	require.Contains(t, failed.Message, "provider down")
}

func TestOrchestrator_InitializeRunsOnce(t *testing.T) {
	t.Parallel()

	var loads atomic.Int32
	roster := rosterFunc(func(context.Context) ([]player.Player, error) {
		loads.Add(1)
		return []player.Player{named("a", "A")}, nil
	})
	h := newOrchestratorHarness(t, roster, nil)
	h.source.On("GetPrices", mock.Anything, "a").Return([]player.Price{{Slug: "a", EUR: "1"}}, nil).Once()

	h.dispatchAndWait(t, InitializeIntent())
	h.dispatchAndWait(t, InitializeIntent())

	if loads.Load() != 1 {
		t.Fatalf("expected roster loaded once, got %d", loads.Load())
	}
}

type rosterFunc func(context.Context) ([]player.Player, error)

func (f rosterFunc) Load(ctx context.Context) ([]player.Player, error) { return f(ctx) }

func TestOrchestrator_RefreshStatsAndInjuriesMergeAndReevaluate(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{}, nil)
	h.store.Initialize([]player.Player{named("a", "A"), named("b", "B")})

	h.source.On("GetStats", mock.Anything, []string{"a", "b"}).
		Return([]player.Stats{{Slug: "a", Score: 55}, {Slug: "ghost", Score: 99}}, nil).Once()
	h.source.On("GetInjuries", mock.Anything, []string{"b"}).
		Return([]player.Injury{{Slug: "b", Description: "hamstring"}}, nil).Once()

	h.dispatchAndWait(t, RefreshStatsIntent([]string{"a", "b"}), RefreshInjuriesIntent([]string{"b"}))

	a, _ := h.store.Player("a")
	b, _ := h.store.Player("b")
	require.NotNil(t, a.Stats)
	require.Equal(t, int64(55), a.Stats.Score)
	require.NotNil(t, b.Injury)
	require.Equal(t, "hamstring", b.Injury.Description)
	if _, ok := h.store.Player("ghost"); ok {
		t.Fatalf("merge must not create unknown players")
	}
	if h.strategies.count("a") != 1 || h.strategies.count("b") != 2 {
		t.Fatalf("unexpected strategy runs: a=%d b=%d", h.strategies.count("a"), h.strategies.count("b"))
	}
}

func TestOrchestrator_RefreshInjuriesClearsRecoveredPlayers(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{}, nil)
	a, b := named("a", "A"), named("b", "B")
	a.Injury = &player.Injury{Slug: "a", Description: "ankle"}
	b.Injury = &player.Injury{Slug: "b", Description: "knee"}
	h.store.Initialize([]player.Player{a, b})

	h.source.On("GetInjuries", mock.Anything, []string{"a"}).Return([]player.Injury{}, nil).Once()

	h.dispatchAndWait(t, RefreshInjuriesIntent([]string{"a"}))

	got, _ := h.store.Player("a")
	require.Nil(t, got.Injury, "a player missing from the report has recovered")
	got, _ = h.store.Player("b")
	require.NotNil(t, got.Injury, "players outside the request keep their injury")
	require.Equal(t, "knee", got.Injury.Description)
}

func TestOrchestrator_RunStrategiesReplacesDecisions(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{}, nil)
	a, b := named("a", "A"), named("b", "B")
	a.Prices = []player.Price{{Slug: "a", EUR: "1.00"}}
	b.Prices = []player.Price{{Slug: "b", EUR: "3.00"}}
	h.store.Initialize([]player.Player{a, b})

	decisionsFor := func(slug string) []decision.Decision {
		var out []decision.Decision
		h.store.View(func(ready *state.Ready) {
			for _, d := range ready.Decisions {
				if d.Slug == slug {
					out = append(out, d)
				}
			}
		})
		return out
	}

	h.dispatchAndWait(t, RunStrategiesIntent("a"), RunStrategiesIntent("b"))
	require.Len(t, decisionsFor("a"), 1)
	require.Equal(t, "1.00", decisionsFor("a")[0].Comment)

	h.store.Update(func(ready *state.Ready) {
		ready.MergePrices("a", []player.Price{{Slug: "a", EUR: "2.00"}})
	})
	h.dispatchAndWait(t, RunStrategiesIntent("a"))
	require.Len(t, decisionsFor("a"), 1, "rerun must replace, not append")
	require.Equal(t, "2.00", decisionsFor("a")[0].Comment)

	h.store.Update(func(ready *state.Ready) {
		for i := range ready.Players {
			if ready.Players[i].Slug == "a" {
				ready.Players[i].Prices = nil
			}
		}
	})
	h.dispatchAndWait(t, RunStrategiesIntent("a"))
	require.Empty(t, decisionsFor("a"), "an empty run must drop earlier decisions")
	require.Len(t, decisionsFor("b"), 1, "other players keep their decisions")
	require.Equal(t, 3, h.strategies.count("a"))
}

func TestOrchestrator_PriceCacheHonorsForce(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{}, cache.NewTTL[[]player.Price](time.Minute))
	h.store.Initialize([]player.Player{named("a", "A")})

	h.source.On("GetPrices", mock.Anything, "a").Return([]player.Price{{Slug: "a", EUR: "1.00"}}, nil).Once()
	h.dispatchAndWait(t, RefreshPricesIntent("a", false))
	h.dispatchAndWait(t, RefreshPricesIntent("a", false))

	h.source.On("GetPrices", mock.Anything, "a").Return([]player.Price{{Slug: "a", EUR: "2.00"}}, nil).Once()
	h.dispatchAndWait(t, RefreshPricesIntent("a", true))

	p, _ := h.store.Player("a")
	require.Equal(t, "2.00", p.Prices[0].EUR)
}

func TestOrchestrator_FailedProviderCallKeepsState(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{}, nil)
	h.store.Initialize([]player.Player{named("a", "A")})
	h.source.On("GetPrices", mock.Anything, "a").Return(nil, errors.New("timeout")).Once()

	h.dispatchAndWait(t, RefreshPricesIntent("a", true))

	p, ok := h.store.Player("a")
	require.True(t, ok)
	require.Empty(t, p.Prices)
	require.Eventually(t, func() bool { return !h.store.Busy() }, time.Second, 5*time.Millisecond,
		"failed intents must still release the busy flag")
}

func TestOrchestrator_DispatchValidation(t *testing.T) {
	t.Parallel()

	h := newOrchestratorHarness(t, stubRosterLoader{}, nil)

	err := h.orch.Dispatch(context.Background(), RefreshStatsIntent(nil))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	h.orch.Close(time.Second)
	err = h.orch.Dispatch(context.Background(), InitializeIntent())
	if !errors.Is(err, ErrOrchestratorClosed) {
		t.Fatalf("expected ErrOrchestratorClosed, got %v", err)
	}
}

func TestOrchestrator_DispatchBlocksWhenQueueFull(t *testing.T) {
	t.Parallel()

	// Run is never started, so nothing drains the queue.
	orch, err := NewOrchestrator(OrchestratorDeps{
		Store:      state.NewStore(),
		Source:     usecasemock.NewRemoteDataSource(t),
		Roster:     stubRosterLoader{},
		Strategies: &countingStrategies{},
	}, OrchestratorConfig{Workers: 1, QueueSize: 1})
	require.NoError(t, err)
	t.Cleanup(func() { orch.Close(time.Second) })

	require.NoError(t, orch.Dispatch(context.Background(), InitializeIntent()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := orch.Dispatch(ctx, InitializeIntent()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected dispatch to block until deadline, got %v", err)
	}
}
