package sandbox

import (
	"reflect"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
)

// Import paths scripts use for the host packages.
const (
	PlayerImport   = "socli/player"
	DecisionImport = "socli/decision"

	inputImport = "socli/input"
)

// allowedStdlib lists the standard packages a strategy may import. Anything
// reaching the filesystem, network or process is left out.
var allowedStdlib = []string{
	"fmt/fmt",
	"math/math",
	"sort/sort",
	"strconv/strconv",
	"strings/strings",
	"time/time",
}

func hostSymbols() interp.Exports {
	exports := interp.Exports{
		PlayerImport + "/player": {
			"Player":            reflect.ValueOf((*player.Player)(nil)),
			"Price":             reflect.ValueOf((*player.Price)(nil)),
			"Stats":             reflect.ValueOf((*player.Stats)(nil)),
			"Game":              reflect.ValueOf((*player.Game)(nil)),
			"Injury":            reflect.ValueOf((*player.Injury)(nil)),
			"Currency":          reflect.ValueOf((*player.Currency)(nil)),
			"CurrencyEUR":       reflect.ValueOf(player.CurrencyEUR),
			"CurrencyUSD":       reflect.ValueOf(player.CurrencyUSD),
			"SortByDisplayName": reflect.ValueOf(player.SortByDisplayName),
		},
		DecisionImport + "/decision": {
			"Verdict":     reflect.ValueOf((*decision.Verdict)(nil)),
			"Action":      reflect.ValueOf((*decision.Action)(nil)),
			"ActionBuy":   reflect.ValueOf(decision.ActionBuy),
			"ActionSell":  reflect.ValueOf(decision.ActionSell),
			"ActionWatch": reflect.ValueOf(decision.ActionWatch),
		},
	}
	for _, key := range allowedStdlib {
		if symbols, ok := stdlib.Symbols[key]; ok {
			exports[key] = symbols
		}
	}
	return exports
}

// inputSymbols exposes the player under evaluation to the call snippet.
func inputSymbols(p *player.Player) interp.Exports {
	return interp.Exports{
		inputImport + "/input": {
			"Player": reflect.ValueOf(p).Elem(),
		},
	}
}
