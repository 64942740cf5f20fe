package player

import (
	"testing"
	"time"
)

func samplePlayer() Player {
	team := "team"
	return Player{
		Slug:        "slug",
		DisplayName: "name",
		BirthDate:   "2003-07-22T17:15:13Z",
		Team:        &team,
		Country:     "US",
		Number:      23,
		Prices: []Price{
			{Slug: "slug", EUR: "40", USD: "50", Date: "2023-07-22T16:15:13Z"},
			{Slug: "slug", EUR: "60", USD: "70", Date: "2023-07-22T15:15:13Z"},
		},
	}
}

func TestPriceAvg(t *testing.T) {
	t.Parallel()

	p := samplePlayer()
	cases := []struct {
		name     string
		currency Currency
		maxCount int
		want     float64
	}{
		{name: "exact count eur", currency: CurrencyEUR, maxCount: 2, want: 50},
		{name: "exact count usd", currency: CurrencyUSD, maxCount: 2, want: 60},
		{name: "newest only eur", currency: CurrencyEUR, maxCount: 1, want: 40},
		{name: "newest only usd", currency: CurrencyUSD, maxCount: 1, want: 50},
		{name: "count above length", currency: CurrencyEUR, maxCount: 5, want: 50},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := p.PriceAvg(tc.currency, tc.maxCount)
			if !ok {
				t.Fatalf("expected average to be available")
			}
			if got != tc.want {
				t.Fatalf("unexpected average: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestPriceAvg_EmptyPrices(t *testing.T) {
	t.Parallel()

	p := samplePlayer()
	p.Prices = nil
	if _, ok := p.PriceAvg(CurrencyEUR, 3); ok {
		t.Fatalf("expected no average without prices")
	}
}

func TestPriceDeltaRatio(t *testing.T) {
	t.Parallel()

	got, ok := samplePlayer().PriceDeltaRatio(CurrencyEUR)
	if !ok {
		t.Fatalf("expected ratio")
	}
	want := (40.0 - 60.0) / 60.0
	if got < want-1e-9 || got > want+1e-9 {
		t.Fatalf("unexpected ratio: got=%v want=%v", got, want)
	}
}

func TestAge(t *testing.T) {
	t.Parallel()

	p := samplePlayer()
	if got := p.Age(time.Date(2026, 7, 22, 0, 0, 0, 0, time.UTC)); got != 23 {
		t.Fatalf("unexpected age before birthday hour: got=%d", got)
	}
	if got := p.Age(time.Date(2026, 7, 21, 0, 0, 0, 0, time.UTC)); got != 22 {
		t.Fatalf("unexpected age the day before birthday: got=%d", got)
	}
	p.BirthDate = "not-a-date"
	if got := p.Age(time.Now()); got != 0 {
		t.Fatalf("expected zero age for invalid birth date, got=%d", got)
	}
}

func TestSalesHoursIntervalAvg(t *testing.T) {
	t.Parallel()

	p := samplePlayer()
	got, ok := p.SalesHoursIntervalAvg()
	if !ok || got != 1 {
		t.Fatalf("unexpected interval: got=%v ok=%v", got, ok)
	}

	p.Prices = nil
	if _, ok := p.SalesHoursIntervalAvg(); ok {
		t.Fatalf("expected no interval without prices")
	}
}

func TestRank_RequiresEveryPlayerStats(t *testing.T) {
	t.Parallel()

	a := Player{Slug: "a", Stats: &Stats{Slug: "a", Score: 10}}
	b := Player{Slug: "b", Stats: &Stats{Slug: "b", Score: 30}}
	c := Player{Slug: "c"}

	if _, ok := a.Rank([]Player{a, b, c}); ok {
		t.Fatalf("expected rank to be unknown while stats are missing")
	}
	rank, ok := a.Rank([]Player{a, b})
	if !ok || rank != 2 {
		t.Fatalf("unexpected rank: got=%d ok=%v", rank, ok)
	}
}

func TestStatsPlayedGames(t *testing.T) {
	t.Parallel()

	stats := Stats{Games: []Game{{DidPlay: true, Score: 30}, {DidPlay: false}, {DidPlay: true, Score: 12}, {DidPlay: true}}}
	count, ok := stats.PlayedGamesCount()
	if !ok || count != 3 {
		t.Fatalf("unexpected played count: %d", count)
	}
	ratio, _ := stats.PlayedGamesRatio()
	if ratio != 0.75 {
		t.Fatalf("unexpected played ratio: %v", ratio)
	}
	if scores := stats.LastGameScores(); len(scores) != 4 || scores[0] != 30 {
		t.Fatalf("unexpected scores: %v", scores)
	}
	if (Stats{}).LastGameScores() != nil {
		t.Fatalf("expected nil scores without games")
	}
}

func TestClone_DoesNotAlias(t *testing.T) {
	t.Parallel()

	p := samplePlayer()
	p.Stats = &Stats{Slug: "slug", Games: []Game{{Score: 1}}}
	c := p.Clone()
	c.Prices[0].EUR = "999"
	c.Stats.Games[0].Score = 99
	*c.Team = "other"

	if p.Prices[0].EUR != "40" || p.Stats.Games[0].Score != 1 || p.TeamName() != "team" {
		t.Fatalf("clone mutated the original player")
	}
}

func TestSortByDisplayName_CaseInsensitive(t *testing.T) {
	t.Parallel()

	players := []Player{{DisplayName: "bob"}, {DisplayName: "Alice"}, {DisplayName: "carl"}, {DisplayName: "Bea"}}
	SortByDisplayName(players)
	want := []string{"Alice", "Bea", "bob", "carl"}
	for i, name := range want {
		if players[i].DisplayName != name {
			t.Fatalf("unexpected order at %d: got=%s want=%s", i, players[i].DisplayName, name)
		}
	}
}
