package player

import (
	"sort"
	"strings"
)

// Player is a tracked athlete whose market prices and performance are watched.
// Prices are ordered newest first.
type Player struct {
	Slug        string   `json:"slug" validate:"required"`
	DisplayName string   `json:"display_name" validate:"required"`
	BirthDate   string   `json:"birth_date"`
	Team        *string  `json:"team,omitempty"`
	Positions   []string `json:"positions"`
	Country     string   `json:"country"`
	Number      int64    `json:"number"`
	Prices      []Price  `json:"prices"`
	Stats       *Stats   `json:"stats,omitempty"`
	Injury      *Injury  `json:"injury,omitempty"`
}

// Price is one market sale. Amounts are decimal strings as reported by the provider.
type Price struct {
	Slug string `json:"slug"`
	Date string `json:"date"`
	EUR  string `json:"eur"`
	USD  string `json:"usd"`
}

// Game is one entry of a player's recent game log.
type Game struct {
	Date          string `json:"date"`
	DidPlay       bool   `json:"did_play"`
	MinutesPlayed int64  `json:"minutes_played"`
	Score         int64  `json:"score"`
}

// Stats aggregates recent performance. Games are ordered most recent first.
type Stats struct {
	Slug  string `json:"slug" validate:"required"`
	Score int64  `json:"score"`
	Games []Game `json:"games"`
}

// Injury describes the current injury status of a player.
type Injury struct {
	Slug        string  `json:"slug" validate:"required"`
	Date        string  `json:"date"`
	UpdateDate  *string `json:"update_date,omitempty"`
	Description string  `json:"description"`
	Comment     string  `json:"comment"`
}

// TeamName returns the team or an empty string for free agents.
func (p Player) TeamName() string {
	if p.Team == nil {
		return ""
	}
	return *p.Team
}

// Clone returns a deep copy so snapshots never alias live state.
func (p Player) Clone() Player {
	out := p
	if p.Team != nil {
		team := *p.Team
		out.Team = &team
	}
	out.Positions = append([]string(nil), p.Positions...)
	out.Prices = append([]Price(nil), p.Prices...)
	if p.Stats != nil {
		stats := *p.Stats
		stats.Games = append([]Game(nil), p.Stats.Games...)
		out.Stats = &stats
	}
	if p.Injury != nil {
		injury := *p.Injury
		if p.Injury.UpdateDate != nil {
			updated := *p.Injury.UpdateDate
			injury.UpdateDate = &updated
		}
		out.Injury = &injury
	}
	return out
}

// SortByDisplayName orders players by case-insensitive display name, ascending.
// Players sharing a name are ordered by slug.
func SortByDisplayName(players []Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := strings.ToLower(players[i].DisplayName), strings.ToLower(players[j].DisplayName)
		if a != b {
			return a < b
		}
		return players[i].Slug < players[j].Slug
	})
}
