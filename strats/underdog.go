// Underdog looks for cheap points: the price per point, weighted by how many
// recent games the player missed, must stay under maxPointPrice, the last game
// must have been played and its score must not trail the average.
package main

import (
	"fmt"

	"socli/decision"
	"socli/player"
)

const (
	maxPointPrice       = 0.4
	minProgressionRatio = 0.0
)

func Decide(p player.Player) *decision.Verdict {
	if p.Stats == nil || p.Stats.Score <= 0 || len(p.Stats.Games) == 0 {
		return nil
	}
	last, ok := p.LastPrice(player.CurrencyEUR)
	if !ok {
		return nil
	}
	playedRatio, _ := p.Stats.PlayedGamesRatio()
	if !p.Stats.Games[0].DidPlay {
		return nil
	}

	score := float64(p.Stats.Score)
	pointPrice := last/score + (last/score)*(1-playedRatio)
	progression := float64(p.Stats.Games[0].Score)/score - 1
	if pointPrice >= maxPointPrice || progression < minProgressionRatio {
		return nil
	}

	return &decision.Verdict{
		Action: decision.ActionBuy,
		Comment: fmt.Sprintf("price: %.2f€, point price: %.2f€, score progression: %.2f%%",
			last, pointPrice, progression*100),
	}
}
