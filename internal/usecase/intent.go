package usecase

import (
	"context"
	"strings"
)

type IntentKind string

const (
	IntentInitialize      IntentKind = "initialize"
	IntentRefreshPrices   IntentKind = "refresh_prices"
	IntentRefreshStats    IntentKind = "refresh_stats"
	IntentRefreshInjuries IntentKind = "refresh_injuries"
	IntentRunStrategies   IntentKind = "run_strategies"
)

type IntentStatus string

const (
	IntentQueued    IntentStatus = "queued"
	IntentRunning   IntentStatus = "running"
	IntentCompleted IntentStatus = "completed"
	IntentFailed    IntentStatus = "failed"
)

// Intent is one unit of orchestrated work. ID is assigned on dispatch.
type Intent struct {
	ID    string
	Kind  IntentKind
	Slug  string
	Slugs []string
	// Force bypasses the price cache.
	Force bool
}

// IntentDispatcher accepts work for the orchestrator. Producers only hold
// this, never the orchestrator itself.
type IntentDispatcher interface {
	Dispatch(ctx context.Context, intent Intent) error
}

func InitializeIntent() Intent {
	return Intent{Kind: IntentInitialize}
}

func RefreshPricesIntent(slug string, force bool) Intent {
	return Intent{Kind: IntentRefreshPrices, Slug: slug, Force: force}
}

func RefreshStatsIntent(slugs []string) Intent {
	return Intent{Kind: IntentRefreshStats, Slugs: append([]string(nil), slugs...)}
}

func RefreshInjuriesIntent(slugs []string) Intent {
	return Intent{Kind: IntentRefreshInjuries, Slugs: append([]string(nil), slugs...)}
}

func RunStrategiesIntent(slug string) Intent {
	return Intent{Kind: IntentRunStrategies, Slug: slug}
}

func (i Intent) validate() error {
	switch i.Kind {
	case IntentInitialize:
		return nil
	case IntentRefreshPrices, IntentRunStrategies:
		if strings.TrimSpace(i.Slug) == "" {
			return wrapInvalid("%s requires a slug", i.Kind)
		}
		return nil
	case IntentRefreshStats, IntentRefreshInjuries:
		if len(i.Slugs) == 0 {
			return wrapInvalid("%s requires at least one slug", i.Kind)
		}
		return nil
	default:
		return wrapInvalid("unknown intent kind %q", i.Kind)
	}
}
