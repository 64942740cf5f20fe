package main

import (
	"fmt"
	"time"

	"socli/decision"
	"socli/player"
)

const maxAge = 25

func Decide(p player.Player) *decision.Verdict {
	if p.BirthDate == "" || p.Stats == nil {
		return nil
	}
	age := p.Age(time.Now())
	if age >= maxAge {
		return nil
	}
	return &decision.Verdict{
		Action:  decision.ActionBuy,
		Comment: fmt.Sprintf("age: %d, score: %d", age, p.Stats.Score),
	}
}
