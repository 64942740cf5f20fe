package player

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Currency selects which fiat amount of a Price is used.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

func (p Price) Amount(currency Currency) (decimal.Decimal, bool) {
	raw := p.EUR
	if currency == CurrencyUSD {
		raw = p.USD
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// LastPrice returns the newest sale amount.
func (p Player) LastPrice(currency Currency) (float64, bool) {
	if len(p.Prices) == 0 {
		return 0, false
	}
	value, ok := p.Prices[0].Amount(currency)
	if !ok {
		return 0, false
	}
	return value.InexactFloat64(), true
}

// PriceDeltaRatio compares the newest sale with the oldest known one.
func (p Player) PriceDeltaRatio(currency Currency) (float64, bool) {
	if len(p.Prices) == 0 {
		return 0, false
	}
	last, ok := p.Prices[0].Amount(currency)
	if !ok {
		return 0, false
	}
	oldest, ok := p.Prices[len(p.Prices)-1].Amount(currency)
	if !ok || oldest.IsZero() {
		return 0, false
	}
	return last.Sub(oldest).Div(oldest).InexactFloat64(), true
}

// PriceAvg averages the maxCount newest sales.
func (p Player) PriceAvg(currency Currency, maxCount int) (float64, bool) {
	if len(p.Prices) == 0 || maxCount <= 0 {
		return 0, false
	}
	count := maxCount
	if count > len(p.Prices) {
		count = len(p.Prices)
	}

	sum := decimal.Zero
	for _, price := range p.Prices[:count] {
		value, ok := price.Amount(currency)
		if !ok {
			return 0, false
		}
		sum = sum.Add(value)
	}
	return sum.Div(decimal.NewFromInt(int64(count))).InexactFloat64(), true
}

// Age returns full years elapsed since the birth date, 0 when unknown.
func (p Player) Age(now time.Time) int {
	birth, err := time.Parse(time.RFC3339, p.BirthDate)
	if err != nil {
		return 0
	}
	birth = birth.UTC()
	now = now.UTC()
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Rank is the 1-based position of p by stats score among players. It is only
// known once every player has stats.
func (p Player) Rank(players []Player) (int, bool) {
	if p.Stats == nil {
		return 0, false
	}
	for _, other := range players {
		if other.Stats == nil {
			return 0, false
		}
	}

	sorted := append([]Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Stats.Score > sorted[j].Stats.Score
	})
	for i, other := range sorted {
		if other.Slug == p.Slug {
			return i + 1, true
		}
	}
	return 0, false
}

// SalesHoursIntervalAvg is the mean number of whole hours between consecutive sales.
func (p Player) SalesHoursIntervalAvg() (float64, bool) {
	if len(p.Prices) < 2 {
		return 0, false
	}

	dates := make([]time.Time, 0, len(p.Prices))
	for i := len(p.Prices) - 1; i >= 0; i-- {
		at, err := time.Parse(time.RFC3339, p.Prices[i].Date)
		if err != nil {
			return 0, false
		}
		dates = append(dates, at)
	}

	var total int64
	for i := 0; i+1 < len(dates); i++ {
		total += int64(dates[i+1].Sub(dates[i]) / time.Hour)
	}
	return float64(total) / float64(len(dates)-1), true
}

// LastGameScores lists game scores, most recent first.
func (s Stats) LastGameScores() []int64 {
	if len(s.Games) == 0 {
		return nil
	}
	out := make([]int64, 0, len(s.Games))
	for _, game := range s.Games {
		out = append(out, game.Score)
	}
	return out
}

func (s Stats) PlayedGamesCount() (int, bool) {
	if len(s.Games) == 0 {
		return 0, false
	}
	played := 0
	for _, game := range s.Games {
		if game.DidPlay {
			played++
		}
	}
	return played, true
}

func (s Stats) PlayedGamesRatio() (float64, bool) {
	played, ok := s.PlayedGamesCount()
	if !ok {
		return 0, false
	}
	return float64(played) / float64(len(s.Games)), true
}
