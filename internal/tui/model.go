package tui

import (
	"context"

	"github.com/tinytelemetry/spdash/internal/dashboard"

	"github.com/charmbracelet/bubbles/help"
)

// DashboardModel is the Bubble Tea model of one dashboard instance. All view
// state lives in the controller; the model only holds layout and surfaces.
type DashboardModel struct {
	ctrl  *dashboard.Controller
	board *ChartBoard
	table *TableSurface

	keys     KeyMap
	help     help.Model
	showHelp bool

	// Window dimensions
	width  int
	height int

	// Parent context of every load; cancelled by the caller on exit.
	ctx context.Context

	loadInFlight bool
	notice       string // non-fatal message, e.g. a chart binding failure
	siteLabel    string
}

// NewDashboardModel wires a controller to its surfaces. The controller must
// have been built with board as its ChartFactory.
func NewDashboardModel(ctx context.Context, ctrl *dashboard.Controller, board *ChartBoard, siteLabel string) *DashboardModel {
	if ctx == nil {
		ctx = context.Background()
	}
	return &DashboardModel{
		ctrl:      ctrl,
		board:     board,
		table:     NewTableSurface(),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		ctx:       ctx,
		siteLabel: siteLabel,
	}
}

// Controller exposes the underlying controller (used by the entrypoint on exit).
func (m *DashboardModel) Controller() *dashboard.Controller {
	return m.ctrl
}

// LoadFinishedMsg reports the end of one controller load.
type LoadFinishedMsg struct {
	Err error
}
