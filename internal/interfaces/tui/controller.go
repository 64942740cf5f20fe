package tui

import (
	"context"

	"github.com/riskibarqy/socli/internal/domain/state"
	"github.com/riskibarqy/socli/internal/platform/logging"
	"github.com/riskibarqy/socli/internal/usecase"
)

type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionUp
	ActionDown
	ActionPageUp
	ActionPageDown
	ActionClearDecisions
	ActionNextPanel
	ActionPrevPanel
)

const pageStep = 20

// Controller turns user actions into State updates or intents. It never
// talks to the Orchestrator directly.
type Controller struct {
	store      *state.Store
	dispatcher usecase.IntentDispatcher
	logger     *logging.Logger
}

func NewController(store *state.Store, dispatcher usecase.IntentDispatcher, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{store: store, dispatcher: dispatcher, logger: logger}
}

// Handle applies action and reports whether the program should exit. Actions
// other than quit are ignored until the roster is ready.
func (c *Controller) Handle(ctx context.Context, action Action) (quit bool) {
	switch action {
	case ActionQuit:
		return true
	case ActionUp:
		c.move(ctx, -1)
	case ActionDown:
		c.move(ctx, 1)
	case ActionPageUp:
		c.move(ctx, -pageStep)
	case ActionPageDown:
		c.move(ctx, pageStep)
	case ActionClearDecisions:
		c.store.Update(func(ready *state.Ready) { ready.ClearDecisions() })
	case ActionNextPanel:
		c.store.Update(func(ready *state.Ready) { ready.SelectPanel(ready.SelectedPanel.Next()) })
	case ActionPrevPanel:
		c.store.Update(func(ready *state.Ready) { ready.SelectPanel(ready.SelectedPanel.Prev()) })
	}
	return false
}

// move shifts the selection owned by the active panel. Landing on a player
// without prices asks for them, through the cache. The request is sent from
// its own goroutine since Dispatch blocks while the intent queue is full and
// move runs on the UI loop.
func (c *Controller) move(ctx context.Context, step int) {
	var (
		slug      string
		needsLoad bool
	)
	c.store.Update(func(ready *state.Ready) {
		ready.UpdateSelection(ready.Selection()+step, ready.SelectedPanel)
		if ready.SelectedPanel != state.PanelPlayers {
			return
		}
		if p, ok := ready.Selected(); ok && len(p.Prices) == 0 {
			slug, needsLoad = p.Slug, true
		}
	})
	if !needsLoad {
		return
	}
	go c.requestPrices(ctx, slug)
}

func (c *Controller) requestPrices(ctx context.Context, slug string) {
	if err := c.dispatcher.Dispatch(ctx, usecase.RefreshPricesIntent(slug, false)); err != nil {
		c.logger.WarnContext(ctx, "request prices for selection failed", "slug", slug, "error", err)
	}
}
