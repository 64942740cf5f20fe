package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/platform/logging"
	"github.com/riskibarqy/socli/internal/platform/sandbox"
)

const alwaysBuy = `package main

import (
	"socli/decision"
	"socli/player"
)

func Decide(p player.Player) *decision.Verdict {
	return &decision.Verdict{Action: decision.ActionBuy, Comment: "always"}
}
`

const neverFires = `package main

import (
	"socli/decision"
	"socli/player"
)

func Decide(p player.Player) *decision.Verdict {
	return nil
}
`

const panics = `package main

import (
	"socli/decision"
	"socli/player"
)

func Decide(p player.Player) *decision.Verdict {
	var items []int
	_ = items[3]
	return nil
}
`

func writeScripts(t *testing.T, scripts map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write script %s: %v", name, err)
		}
	}
	return dir
}

func tradablePlayer() player.Player {
	return player.Player{
		Slug:        "kylian-mbappe",
		DisplayName: "Kylian Mbappe",
		Prices:      []player.Price{{Slug: "kylian-mbappe", EUR: "120.00", USD: "130.00"}},
		Stats:       &player.Stats{Slug: "kylian-mbappe", Score: 70},
	}
}

func TestStrategyService_RunAll_IsolatesFailingScripts(t *testing.T) {
	t.Parallel()

	dir := writeScripts(t, map[string]string{
		"a_buy.go":    alwaysBuy,
		"b_broken.go": "package main\n\nfunc Decide( {",
		"c_panic.go":  panics,
		"d_quiet.go":  neverFires,
		".hidden.go":  alwaysBuy,
		"notes.md":    alwaysBuy,
	})
	ring := logging.NewRing(50)
	logger := logging.New(logging.LevelDebug, io.Discard, ring)

	service := NewStrategyService(dir, sandbox.New(time.Second), logger)
	got, err := service.RunAll(context.Background(), tradablePlayer())
	require.NoError(t, err)

	require.Len(t, got, 1)
	require.Equal(t, decision.Decision{
		Action:     decision.ActionBuy,
		Slug:       "kylian-mbappe",
		PlayerName: "Kylian Mbappe",
		Strategy:   "a_buy",
		Comment:    "always",
	}, got[0])

	failures := 0
	for _, line := range ring.Lines() {
		if strings.Contains(line, "strategy failed") {
			failures++
		}
	}
	if failures != 2 {
		t.Fatalf("expected two logged strategy failures, got %d in %v", failures, ring.Lines())
	}
}

func TestStrategyService_RunAll_SkipsPlayersWithoutMarketData(t *testing.T) {
	t.Parallel()

	service := NewStrategyService(writeScripts(t, map[string]string{"buy.go": alwaysBuy}), sandbox.New(time.Second), nil)

	noPrices := tradablePlayer()
	noPrices.Prices = nil
	got, err := service.RunAll(context.Background(), noPrices)
	require.NoError(t, err)
	require.Empty(t, got)

	noStats := tradablePlayer()
	noStats.Stats = nil
	got, err = service.RunAll(context.Background(), noStats)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestStrategyService_RunAll_MissingDirectoryIsConfigError(t *testing.T) {
	t.Parallel()

	service := NewStrategyService(filepath.Join(t.TempDir(), "missing"), sandbox.New(time.Second), nil)
	_, err := service.RunAll(context.Background(), tradablePlayer())
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestStrategyService_RunAll_PicksUpNewScripts(t *testing.T) {
	t.Parallel()

	dir := writeScripts(t, map[string]string{"quiet.go": neverFires})
	service := NewStrategyService(dir, sandbox.New(time.Second), nil)

	got, err := service.RunAll(context.Background(), tradablePlayer())
	require.NoError(t, err)
	require.Empty(t, got)

	if err := os.WriteFile(filepath.Join(dir, "buy.go"), []byte(alwaysBuy), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	got, err = service.RunAll(context.Background(), tradablePlayer())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "buy", got[0].Strategy)
}

func TestStrategyService_BundledStrategies(t *testing.T) {
	t.Parallel()

	service := NewStrategyService(filepath.Join("..", "..", "strats"), sandbox.New(5*time.Second), nil)

	rising := player.Player{
		Slug:        "victor-wembanyama",
		DisplayName: "Victor Wembanyama",
		BirthDate:   time.Now().AddDate(-20, 0, -1).UTC().Format(time.RFC3339),
		Prices:      []player.Price{{Slug: "victor-wembanyama", EUR: "10.00", USD: "11.00"}},
		Stats: &player.Stats{
			Slug:  "victor-wembanyama",
			Score: 40,
			Games: []player.Game{
				{DidPlay: true, Score: 45},
				{DidPlay: true, Score: 38},
			},
		},
	}
	got, err := service.RunAll(context.Background(), rising)
	require.NoError(t, err)

	strategies := make([]string, 0, len(got))
	for _, d := range got {
		require.Equal(t, decision.ActionBuy, d.Action)
		strategies = append(strategies, d.Strategy)
	}
	require.ElementsMatch(t, []string{"performers", "underdog", "young_players"}, strategies)

	veteran := rising.Clone()
	veteran.BirthDate = "1985-01-01T00:00:00Z"
	veteran.Stats.Score = 20
	veteran.Stats.Games[0].DidPlay = false
	got, err = service.RunAll(context.Background(), veteran)
	require.NoError(t, err)
	require.Empty(t, got)
}
