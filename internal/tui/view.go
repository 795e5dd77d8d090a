package tui

import (
	"fmt"
	"strings"

	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/duration"
	"github.com/tinytelemetry/spdash/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Rows taken by the header, tab bar, status line and help line.
const chromeHeight = 7

// View renders the UI
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	snap := m.ctrl.Snapshot()
	switch snap.State.Phase {
	case model.PhaseIdle, model.PhaseLoading:
		return renderLoadingPlaceholder(m.width, m.height)
	case model.PhaseFailed:
		return m.renderFailed(snap.State.Error)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(snap))
	b.WriteString("\n")
	b.WriteString(m.renderTabs(snap.State.Tab))
	b.WriteString("\n\n")

	bodyHeight := m.bodyHeight()
	if snap.State.Tab == model.TabCharts {
		b.WriteString(m.renderCharts(bodyHeight))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine(snap))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderFailed replaces the whole body with the error banner.
func (m *DashboardModel) renderFailed(message string) string {
	banner := errorBannerStyle.Width(m.width).Render("Error: " + message)
	hint := helpStyle.Render("ctrl+r reload • q quit")
	return lipgloss.JoinVertical(lipgloss.Left, banner, "", hint)
}

func (m *DashboardModel) renderHeader(snap dashboard.Snapshot) string {
	title := titleStyle.Render(fmt.Sprintf("Vehicle records (%d)", len(snap.Rows)))
	if m.siteLabel == "" {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", helpStyle.Render(m.siteLabel))
}

func (m *DashboardModel) renderTabs(active model.Tab) string {
	tabs := []model.Tab{model.TabTable, model.TabCharts}
	rendered := make([]string, 0, len(tabs))
	for i, t := range tabs {
		label := fmt.Sprintf("%d %s", i+1, tabLabel(t))
		if t == active {
			rendered = append(rendered, activeTabStyle.Render(label))
		} else {
			rendered = append(rendered, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func tabLabel(t model.Tab) string {
	if t == model.TabCharts {
		return "Charts"
	}
	return "Table"
}

// renderCharts lays the two surfaces side by side, or stacked on narrow terminals.
func (m *DashboardModel) renderCharts(height int) string {
	if m.width >= 100 {
		w := m.width / 2
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.board.Render(dashboard.SurfaceCategories, w, height),
			m.board.Render(dashboard.SurfaceDurations, m.width-w, height),
		)
	}
	h := max(6, height/2)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.board.Render(dashboard.SurfaceCategories, m.width, h),
		m.board.Render(dashboard.SurfaceDurations, m.width, h),
	)
}

func (m *DashboardModel) renderStatusLine(snap dashboard.Snapshot) string {
	sum := snap.Aggregate().Summary
	parts := []string{
		fmt.Sprintf(" %d rows", sum.Rows),
		"total " + duration.Format(sum.TotalMinutes),
		fmt.Sprintf("avg %.0f min", sum.AverageMinutes),
	}
	if sum.MaxLabel != "" {
		parts = append(parts, fmt.Sprintf("longest %s (%s)", sum.MaxLabel, duration.Format(sum.MaxMinutes)))
	}
	if col, desc := m.table.SortState(); col != "" && snap.State.Tab == model.TabTable {
		dir := "asc"
		if desc {
			dir = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", col, dir))
	}
	if !snap.LoadedAt.IsZero() {
		parts = append(parts, "loaded "+snap.LoadedAt.Format("15:04:05"))
	}
	line := strings.Join(parts, " │ ")
	if m.notice != "" {
		line += " │ " + m.notice
	}
	return statusLineStyle.Width(m.width).Render(truncate(line, m.width))
}

func (m *DashboardModel) renderHelp() string {
	if m.showHelp {
		return m.help.FullHelpView(m.keys.FullHelp())
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *DashboardModel) bodyHeight() int {
	return max(5, m.height-chromeHeight)
}

func (m *DashboardModel) resizeTable() {
	m.table.SetSize(m.width, m.bodyHeight())
}
