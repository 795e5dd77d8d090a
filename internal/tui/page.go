package tui

import tea "github.com/charmbracelet/bubbletea"

// Page represents a top-level screen in the TUI.
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}

// DashboardPageID identifies the dashboard page.
const DashboardPageID = "dashboard"

// DashboardPage adapts a DashboardModel to the Page interface.
type DashboardPage struct {
	model *DashboardModel
}

// NewDashboardPage wraps m as a routable page.
func NewDashboardPage(m *DashboardModel) *DashboardPage {
	return &DashboardPage{model: m}
}

func (p *DashboardPage) ID() string { return DashboardPageID }

func (p *DashboardPage) Init() tea.Cmd { return p.model.Init() }

func (p *DashboardPage) Update(msg tea.Msg) tea.Cmd {
	_, cmd := p.model.Update(msg)
	return cmd
}

func (p *DashboardPage) View(width, height int) string {
	return p.model.View()
}

// Close unmounts the dashboard controller.
func (p *DashboardPage) Close() error {
	p.model.ctrl.Close()
	return nil
}
