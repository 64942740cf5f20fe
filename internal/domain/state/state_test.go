package state

import (
	"reflect"
	"sync"
	"testing"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
)

func roster(slugs ...string) []player.Player {
	out := make([]player.Player, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, player.Player{
			Slug:        slug,
			DisplayName: slug,
			Prices:      []player.Price{{Slug: slug, EUR: "1.00", USD: "1.10"}},
		})
	}
	return out
}

func TestMerge_UnknownSlugIsNoOp(t *testing.T) {
	t.Parallel()

	ready := NewReady(roster("a", "b"))
	before := ready.clone()

	ready.MergePrices("ghost", []player.Price{{Slug: "ghost", EUR: "9"}})
	ready.MergeStats([]player.Stats{{Slug: "ghost", Score: 90}})
	ready.MergeInjuries([]string{"ghost"}, []player.Injury{{Slug: "ghost", Description: "knee"}})

	if !reflect.DeepEqual(before.Players, ready.Players) {
		t.Fatalf("expected players unchanged, got %+v", ready.Players)
	}
	if len(ready.Players) != 2 {
		t.Fatalf("merge must never create a player")
	}
}

func TestMergeInjuries_ClearsRecoveredPlayers(t *testing.T) {
	t.Parallel()

	ready := NewReady(roster("a", "b", "c"))
	for i := range ready.Players {
		ready.Players[i].Injury = &player.Injury{Slug: ready.Players[i].Slug, Description: "ankle"}
	}

	ready.MergeInjuries([]string{"a", "b", "ghost"}, []player.Injury{{Slug: "b", Description: "knee"}})

	if ready.Players[0].Injury != nil {
		t.Fatalf("expected a to recover, got %+v", ready.Players[0].Injury)
	}
	if ready.Players[1].Injury == nil || ready.Players[1].Injury.Description != "knee" {
		t.Fatalf("expected b to carry the new injury, got %+v", ready.Players[1].Injury)
	}
	if ready.Players[2].Injury == nil || ready.Players[2].Injury.Description != "ankle" {
		t.Fatalf("expected c to be untouched, got %+v", ready.Players[2].Injury)
	}
	if len(ready.Players) != 3 {
		t.Fatalf("merge must never create a player")
	}
}

func TestMergeDecisions_ReplacesForSlug(t *testing.T) {
	t.Parallel()

	ready := NewReady(roster("slug1", "slug2"))
	ready.Decisions = []decision.Decision{
		{Action: "A", Slug: "slug1"},
		{Action: "B", Slug: "slug2"},
	}

	ready.MergeDecisions("slug1", []decision.Decision{{Action: "C", Slug: "slug1"}})

	want := map[decision.Action]string{"B": "slug2", "C": "slug1"}
	if len(ready.Decisions) != len(want) {
		t.Fatalf("unexpected decisions: %+v", ready.Decisions)
	}
	for _, d := range ready.Decisions {
		if want[d.Action] != d.Slug {
			t.Fatalf("unexpected decision %+v", d)
		}
	}
}

func TestMergeDecisions_EmptyRemovesAndReclamps(t *testing.T) {
	t.Parallel()

	ready := NewReady(roster("a", "b"))
	ready.Decisions = []decision.Decision{{Slug: "b"}, {Slug: "a"}, {Slug: "a"}}
	ready.SelectedDecision = 2

	ready.MergeDecisions("a", nil)

	if len(ready.Decisions) != 1 || ready.Decisions[0].Slug != "b" {
		t.Fatalf("unexpected decisions: %+v", ready.Decisions)
	}
	if ready.SelectedDecision != 0 {
		t.Fatalf("expected selection re-clamped to 0, got %d", ready.SelectedDecision)
	}
}

func TestUpdateSelection_Clamps(t *testing.T) {
	t.Parallel()

	ready := NewReady(roster("a", "b", "c"))
	ready.UpdateSelection(999, PanelPlayers)
	if ready.SelectedPlayer != 2 {
		t.Fatalf("expected selected player 2, got %d", ready.SelectedPlayer)
	}

	ready.UpdateSelection(-4, PanelPlayers)
	if ready.SelectedPlayer != 0 {
		t.Fatalf("expected selected player 0, got %d", ready.SelectedPlayer)
	}

	ready.UpdateSelection(5, PanelDecisions)
	if ready.SelectedDecision != 0 || ready.SelectedPanel != PanelDecisions {
		t.Fatalf("expected empty decision selection to stay at 0, got %d", ready.SelectedDecision)
	}

	ready.UpdateSelection(7, PanelLogs)
	if ready.SelectedPlayer != 0 || ready.SelectedPanel != PanelLogs {
		t.Fatalf("logs panel must not move player selection")
	}
}

func TestPanelCycle(t *testing.T) {
	t.Parallel()

	if PanelLogs.Next() != PanelPlayers || PanelPlayers.Prev() != PanelLogs {
		t.Fatalf("panel navigation must wrap around")
	}
	if PanelDecisions.String() != "Decisions" {
		t.Fatalf("unexpected panel name %q", PanelDecisions.String())
	}
}

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if _, ok := store.Snapshot().(Uninitialized); !ok {
		t.Fatalf("expected Uninitialized at startup")
	}
	if store.Update(func(*Ready) {}) {
		t.Fatalf("update must not run before Ready")
	}
	if !store.Initialize(roster("a")) {
		t.Fatalf("expected first initialize to succeed")
	}
	if store.Initialize(roster("b")) {
		t.Fatalf("expected Ready to be entered only once")
	}

	store.Fail("roster unavailable")
	failed, ok := store.Snapshot().(Failed)
	if !ok || failed.Message != "roster unavailable" {
		t.Fatalf("expected Failed phase, got %#v", store.Snapshot())
	}
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Initialize(roster("a"))
	snap := store.Snapshot().(*Ready)
	snap.Players[0].Prices[0].EUR = "500"

	p, _ := store.Player("a")
	if p.Prices[0].EUR != "1.00" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

func TestStore_FieldGroupsLastWriteWins(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Initialize(roster("a"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update(func(r *Ready) {
				r.MergePrices("a", []player.Price{{Slug: "a", EUR: "2.00"}})
			})
		}()
		go func() {
			defer wg.Done()
			store.Update(func(r *Ready) {
				r.MergeStats([]player.Stats{{Slug: "a", Score: 40}})
			})
		}()
	}
	wg.Wait()

	store.Update(func(r *Ready) {
		r.MergePrices("a", []player.Price{{Slug: "a", EUR: "3.00"}})
	})

	p, _ := store.Player("a")
	if p.Prices[0].EUR != "3.00" {
		t.Fatalf("expected latest price write to win, got %s", p.Prices[0].EUR)
	}
	if p.Stats == nil || p.Stats.Score != 40 {
		t.Fatalf("price merge must not touch stats, got %+v", p.Stats)
	}
}

func TestStore_Busy(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.BeginWork()
	store.BeginWork()
	store.EndWork()
	if !store.Busy() {
		t.Fatalf("expected busy with one intent in flight")
	}
	store.EndWork()
	store.EndWork()
	if store.Busy() {
		t.Fatalf("expected idle after all intents ended")
	}
}

func TestStore_SlugAtWraps(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if _, size := store.SlugAt(0); size != 0 {
		t.Fatalf("expected empty roster before initialize")
	}
	store.Initialize(roster("a", "b", "c"))
	slug, size := store.SlugAt(4)
	if slug != "b" || size != 3 {
		t.Fatalf("unexpected slug=%s size=%d", slug, size)
	}
}
