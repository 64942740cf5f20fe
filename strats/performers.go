package main

import (
	"fmt"

	"socli/decision"
	"socli/player"
)

const minScore = 35

// Decide buys any priced player averaging more than minScore.
func Decide(p player.Player) *decision.Verdict {
	last, ok := p.LastPrice(player.CurrencyEUR)
	if !ok || p.Stats == nil || p.Stats.Score <= minScore {
		return nil
	}
	return &decision.Verdict{
		Action:  decision.ActionBuy,
		Comment: fmt.Sprintf("score: %d, price: %.2f€", p.Stats.Score, last),
	}
}
