package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/riskibarqy/socli/internal/domain/decision"
	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/domain/state"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#3C3C6E"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	focusedStyle  = panelStyle.BorderForeground(lipgloss.Color("#5B8DEF"))

	actionStyles = map[decision.Action]lipgloss.Style{
		decision.ActionBuy:   lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		decision.ActionSell:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		decision.ActionWatch: lipgloss.NewStyle().Foreground(lipgloss.Color("#F0C674")),
	}
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m *Model) View() string {
	var body string
	switch current := m.snapshot.(type) {
	case state.Failed:
		body = errorStyle.Render("Error: " + current.Message)
	case *state.Ready:
		body = m.renderReady(current)
	default:
		body = mutedStyle.Render(m.spinner() + " Loading players...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.help.View(m.keys))
}

func (m *Model) spinner() string {
	return spinnerFrames[m.frame%len(spinnerFrames)]
}

func (m *Model) renderHeader() string {
	status := mutedStyle.Render("idle")
	if m.busy {
		status = m.spinner() + " working"
	}
	header := titleStyle.Render("socli") + "  " + status
	if ready, ok := m.snapshot.(*state.Ready); ok {
		header += mutedStyle.Render(fmt.Sprintf("  %d players  %d decisions  [%s]",
			len(ready.Players), len(ready.Decisions), ready.SelectedPanel))
	}
	return header
}

func (m *Model) renderReady(ready *state.Ready) string {
	leftWidth := max(30, m.width*2/5)
	rightWidth := max(30, m.width-leftWidth-4)
	listHeight := max(5, m.height-12)

	selected, _ := ready.Selected()
	left := m.panel(ready, state.PanelPlayers, leftWidth, renderPlayers(ready, listHeight, leftWidth-4))
	detail := m.panel(ready, state.PanelPlayerDetail, rightWidth, m.renderDetail(selected, ready.Players))
	decisions := m.panel(ready, state.PanelDecisions, rightWidth, renderDecisions(ready, max(3, listHeight/2)))

	top := lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.JoinVertical(lipgloss.Left, detail, decisions))
	logs := m.panel(ready, state.PanelLogs, leftWidth+rightWidth+4, m.renderLogs(6))
	return lipgloss.JoinVertical(lipgloss.Left, top, logs)
}

func (m *Model) panel(ready *state.Ready, panel state.Panel, width int, content string) string {
	style := panelStyle
	if ready.SelectedPanel == panel {
		style = focusedStyle
	}
	return style.Width(width).Render(titleStyle.Render(panel.String()) + "\n" + content)
}

// renderPlayers shows a window of rows that keeps the selection visible.
func renderPlayers(ready *state.Ready, height, width int) string {
	if len(ready.Players) == 0 {
		return mutedStyle.Render("No players")
	}
	start := max(0, min(ready.SelectedPlayer-height/2, len(ready.Players)-height))
	end := min(len(ready.Players), start+height)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		p := ready.Players[i]
		price := "-"
		if last, ok := p.LastPrice(player.CurrencyEUR); ok {
			price = strconv.FormatFloat(last, 'f', 2, 64) + "€"
		}
		score := "-"
		if p.Stats != nil {
			score = strconv.FormatInt(p.Stats.Score, 10)
		}
		row := fmt.Sprintf("%-*s %8s %4s", max(10, width-15), truncate(p.DisplayName, max(10, width-15)), price, score)
		if i == ready.SelectedPlayer {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderDetail(p player.Player, roster []player.Player) string {
	if p.Slug == "" {
		return mutedStyle.Render("No player selected")
	}

	lines := []string{titleStyle.Render(p.DisplayName) + mutedStyle.Render(" ("+p.Slug+")")}
	info := []string{}
	if team := p.TeamName(); team != "" {
		info = append(info, team)
	}
	if len(p.Positions) > 0 {
		info = append(info, strings.Join(p.Positions, "/"))
	}
	if p.BirthDate != "" {
		info = append(info, fmt.Sprintf("%d yo", p.Age(m.now())))
	}
	if len(info) > 0 {
		lines = append(lines, strings.Join(info, " · "))
	}

	if len(p.Prices) == 0 {
		lines = append(lines, mutedStyle.Render("Prices: loading..."))
	} else {
		last, _ := p.LastPrice(player.CurrencyEUR)
		avg, _ := p.PriceAvg(player.CurrencyEUR, 5)
		line := fmt.Sprintf("Last %.2f€  Avg(5) %.2f€  Sales %d", last, avg, len(p.Prices))
		if delta, ok := p.PriceDeltaRatio(player.CurrencyEUR); ok {
			line += fmt.Sprintf("  Δ %+.1f%%", delta*100)
		}
		if hours, ok := p.SalesHoursIntervalAvg(); ok {
			line += fmt.Sprintf("  every %.0fh", hours)
		}
		lines = append(lines, line)
	}

	if p.Stats == nil {
		lines = append(lines, mutedStyle.Render("Stats: pending"))
	} else {
		line := fmt.Sprintf("Score %d  Last games %v", p.Stats.Score, p.Stats.LastGameScores())
		if ratio, ok := p.Stats.PlayedGamesRatio(); ok {
			line += fmt.Sprintf("  Played %.0f%%", ratio*100)
		}
		if rank, ok := p.Rank(roster); ok {
			line += fmt.Sprintf("  Rank #%d", rank)
		}
		lines = append(lines, line)
	}

	if p.Injury != nil {
		lines = append(lines, errorStyle.Render("Injury: "+p.Injury.Description)+" "+mutedStyle.Render(p.Injury.Comment))
	}
	return strings.Join(lines, "\n")
}

func renderDecisions(ready *state.Ready, height int) string {
	if len(ready.Decisions) == 0 {
		return mutedStyle.Render("No decisions yet")
	}
	start := max(0, min(ready.SelectedDecision-height/2, len(ready.Decisions)-height))
	end := min(len(ready.Decisions), start+height)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		d := ready.Decisions[i]
		action := string(d.Action)
		if style, ok := actionStyles[d.Action]; ok {
			action = style.Render(fmt.Sprintf("%-5s", d.Action))
		}
		row := fmt.Sprintf("%s %-24s %-16s %s", action, truncate(d.PlayerName, 24), truncate(d.Strategy, 16), d.Comment)
		if i == ready.SelectedDecision && ready.SelectedPanel == state.PanelDecisions {
			row = selectedStyle.Render(row)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderLogs(height int) string {
	if len(m.logLines) == 0 {
		return mutedStyle.Render("No logs")
	}
	end := len(m.logLines) - m.logScroll
	start := max(0, end-height)
	return strings.Join(m.logLines[start:end], "\n")
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
