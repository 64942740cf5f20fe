package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riskibarqy/socli/internal/domain/state"
	"github.com/riskibarqy/socli/internal/platform/logging"
)

const renderInterval = 250 * time.Millisecond

type renderTickMsg time.Time

// Model is the Presenter. It only reads State, through snapshots taken on a
// render tick, and forwards key presses to the Controller.
type Model struct {
	ctx        context.Context
	store      *state.Store
	ring       *logging.Ring
	controller *Controller
	keys       keyMap
	help       help.Model
	now        func() time.Time

	snapshot  state.State
	busy      bool
	logLines  []string
	logScroll int
	frame     int
	width     int
	height    int
}

func NewModel(ctx context.Context, store *state.Store, ring *logging.Ring, controller *Controller) *Model {
	m := &Model{
		ctx:        ctx,
		store:      store,
		ring:       ring,
		controller: controller,
		keys:       defaultKeyMap(),
		help:       help.New(),
		now:        time.Now,
		width:      120,
		height:     40,
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	return scheduleRender()
}

func scheduleRender() tea.Cmd {
	return tea.Tick(renderInterval, func(t time.Time) tea.Msg { return renderTickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case renderTickMsg:
		m.frame++
		m.refresh()
		return m, scheduleRender()

	case tea.KeyMsg:
		action := m.keys.resolve(msg)
		if action == ActionNone {
			return m, nil
		}
		if m.scrollLogs(action) {
			return m, nil
		}
		if m.controller.Handle(m.ctx, action) {
			return m, tea.Quit
		}
		m.refresh()
		return m, nil
	}
	return m, nil
}

func (m *Model) refresh() {
	m.snapshot = m.store.Snapshot()
	m.busy = m.store.Busy()
	if m.ring != nil {
		m.logLines = m.ring.Lines()
	}
}

// scrollLogs consumes vertical moves while the Logs panel is focused. The
// scroll offset counts lines back from the newest entry.
func (m *Model) scrollLogs(action Action) bool {
	ready, ok := m.snapshot.(*state.Ready)
	if !ok || ready.SelectedPanel != state.PanelLogs {
		return false
	}

	step := 0
	switch action {
	case ActionUp:
		step = 1
	case ActionDown:
		step = -1
	case ActionPageUp:
		step = pageStep
	case ActionPageDown:
		step = -pageStep
	default:
		return false
	}
	m.logScroll = max(0, min(m.logScroll+step, len(m.logLines)-1))
	return true
}
