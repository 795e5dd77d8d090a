package tui

import (
	"errors"
	"log"

	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the one load of this mount.
func (m *DashboardModel) Init() tea.Cmd {
	return m.startLoad()
}

func (m *DashboardModel) startLoad() tea.Cmd {
	m.loadInFlight = true
	return tea.Batch(m.loadCmd(), spinnerTick())
}

// loadCmd runs the controller load off the UI goroutine.
func (m *DashboardModel) loadCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return LoadFinishedMsg{Err: ctrl.Load(ctx)}
	}
}

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeTable()
		return m, nil

	case SpinnerTickMsg:
		return m.handleSpinnerTick()

	case LoadFinishedMsg:
		return m.handleLoadFinished(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *DashboardModel) handleLoadFinished(msg LoadFinishedMsg) (tea.Model, tea.Cmd) {
	// A superseded or closed attempt says nothing about the current view.
	if errors.Is(msg.Err, dashboard.ErrStale) || errors.Is(msg.Err, dashboard.ErrClosed) {
		return m, nil
	}
	m.loadInFlight = false

	snap := m.ctrl.Snapshot()
	if snap.State.Phase == model.PhaseLoaded {
		m.table.SetData(snap.Fields, snap.Rows, snap.Schema)
		m.resizeTable()
		if msg.Err != nil {
			m.notice = msg.Err.Error()
		}
	}
	return m, nil
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if err := m.ctrl.Remount(nil); err != nil {
			log.Printf("tui: remount: %v", err)
			return m, nil
		}
		m.notice = ""
		return m, m.startLoad()
	}

	state := m.ctrl.State()
	if state.Phase != model.PhaseLoaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.TableTab):
		return m.selectTab(model.TabTable)
	case key.Matches(msg, m.keys.ChartsTab):
		return m.selectTab(model.TabCharts)
	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		next := model.TabCharts
		if state.Tab == model.TabCharts {
			next = model.TabTable
		}
		return m.selectTab(next)
	}

	if state.Tab != model.TabTable {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.SortNext):
		m.table.CycleSort()
		return m, nil
	case key.Matches(msg, m.keys.SortReverse):
		m.table.ReverseSort()
		return m, nil
	case key.Matches(msg, m.keys.SortClear):
		m.table.ClearSort()
		return m, nil
	}

	return m, m.table.Update(msg)
}

func (m *DashboardModel) selectTab(tab model.Tab) (tea.Model, tea.Cmd) {
	if err := m.ctrl.SelectTab(tab); err != nil {
		log.Printf("tui: select %s tab: %v", tab, err)
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	return m, nil
}
