// Package state holds the in-memory roster, selection and decisions.
//
// Field groups of a player (prices, stats, injury) and the decision list are
// merged independently. The last merge applied for a group wins; there is no
// transaction spanning groups, so a strategy run may see prices that a newer
// fetch is about to replace.
package state

import (
	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
)

// State is one of Uninitialized, *Ready or Failed.
type State interface {
	isState()
}

type Uninitialized struct{}

type Failed struct {
	Message string
}

type Ready struct {
	Players          []player.Player
	SelectedPlayer   int
	Decisions        []decision.Decision
	SelectedPanel    Panel
	SelectedDecision int
}

func (Uninitialized) isState() {}
func (Failed) isState()        {}
func (*Ready) isState()        {}

type Panel int

const (
	PanelPlayers Panel = iota
	PanelPlayerDetail
	PanelDecisions
	PanelLogs
)

var panelNames = [...]string{"Players", "Player", "Decisions", "Logs"}

func (p Panel) String() string {
	if p < 0 || int(p) >= len(panelNames) {
		return "Unknown"
	}
	return panelNames[p]
}

func (p Panel) Next() Panel {
	return Panel((int(p) + 1) % len(panelNames))
}

func (p Panel) Prev() Panel {
	return Panel((int(p) + len(panelNames) - 1) % len(panelNames))
}

// NewReady installs a roster that is already sorted by display name.
func NewReady(players []player.Player) *Ready {
	roster := make([]player.Player, 0, len(players))
	for _, p := range players {
		roster = append(roster, p.Clone())
	}
	return &Ready{
		Players:       roster,
		Decisions:     []decision.Decision{},
		SelectedPanel: PanelPlayers,
	}
}

// clamp keeps index inside [0, length-1], or 0 for an empty collection.
// An empty collection already has selection 0, so that is also "unchanged".
func clamp(index, length int) int {
	if length == 0 || index < 0 {
		return 0
	}
	if index > length-1 {
		return length - 1
	}
	return index
}

// UpdateSelection switches to panel and moves the selection that panel owns.
func (r *Ready) UpdateSelection(index int, panel Panel) {
	r.SelectedPanel = panel
	switch panel {
	case PanelPlayers:
		r.SelectedPlayer = clamp(index, len(r.Players))
	case PanelDecisions:
		r.SelectedDecision = clamp(index, len(r.Decisions))
	}
}

func (r *Ready) SelectPanel(panel Panel) {
	r.SelectedPanel = panel
}

// Selection returns the index owned by the active panel.
func (r *Ready) Selection() int {
	if r.SelectedPanel == PanelDecisions {
		return r.SelectedDecision
	}
	return r.SelectedPlayer
}

func (r *Ready) Get(slug string) (player.Player, bool) {
	idx := r.indexOf(slug)
	if idx < 0 {
		return player.Player{}, false
	}
	return r.Players[idx], true
}

func (r *Ready) Selected() (player.Player, bool) {
	if len(r.Players) == 0 {
		return player.Player{}, false
	}
	return r.Players[clamp(r.SelectedPlayer, len(r.Players))], true
}

func (r *Ready) indexOf(slug string) int {
	for i := range r.Players {
		if r.Players[i].Slug == slug {
			return i
		}
	}
	return -1
}

func (r *Ready) MergePrices(slug string, prices []player.Price) {
	idx := r.indexOf(slug)
	if idx < 0 {
		return
	}
	r.Players[idx].Prices = append([]player.Price(nil), prices...)
}

func (r *Ready) MergeStats(stats []player.Stats) {
	for _, item := range stats {
		idx := r.indexOf(item.Slug)
		if idx < 0 {
			continue
		}
		item.Games = append([]player.Game(nil), item.Games...)
		r.Players[idx].Stats = &item
	}
}

// MergeInjuries sets the injuries reported for the requested slugs. A
// requested player missing from injuries has recovered and loses its injury.
func (r *Ready) MergeInjuries(requested []string, injuries []player.Injury) {
	reported := make(map[string]struct{}, len(injuries))
	for _, item := range injuries {
		reported[item.Slug] = struct{}{}
	}
	for _, slug := range requested {
		if _, ok := reported[slug]; ok {
			continue
		}
		if idx := r.indexOf(slug); idx >= 0 {
			r.Players[idx].Injury = nil
		}
	}
	for _, item := range injuries {
		idx := r.indexOf(item.Slug)
		if idx < 0 {
			continue
		}
		r.Players[idx].Injury = &item
	}
}

// MergeDecisions drops every decision for slug then appends next, even when
// next is empty.
func (r *Ready) MergeDecisions(slug string, next []decision.Decision) {
	kept := make([]decision.Decision, 0, len(r.Decisions)+len(next))
	for _, d := range r.Decisions {
		if d.Slug != slug {
			kept = append(kept, d)
		}
	}
	kept = append(kept, next...)
	r.Decisions = kept
	r.SelectedDecision = clamp(r.SelectedDecision, len(r.Decisions))
}

func (r *Ready) ClearDecisions() {
	r.Decisions = []decision.Decision{}
	r.SelectedDecision = 0
}

func (r *Ready) clone() *Ready {
	out := *r
	out.Players = make([]player.Player, 0, len(r.Players))
	for _, p := range r.Players {
		out.Players = append(out.Players, p.Clone())
	}
	out.Decisions = append([]decision.Decision(nil), r.Decisions...)
	return &out
}
