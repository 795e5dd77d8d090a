package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tinytelemetry/spdash/internal/dashboard"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	"github.com/charmbracelet/lipgloss"
)

// ChartBoard owns the two chart surfaces of the Charts tab and implements
// dashboard.ChartFactory. Each surface holds at most one live chart.
type ChartBoard struct {
	mu       sync.Mutex
	bound    map[dashboard.Surface]*boundChart
	binds    int
	destroys int
}

// NewChartBoard creates an empty board.
func NewChartBoard() *ChartBoard {
	return &ChartBoard{bound: make(map[dashboard.Surface]*boundChart)}
}

// Bind attaches spec to its surface.
func (b *ChartBoard) Bind(spec dashboard.ChartSpec) (dashboard.Chart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, busy := b.bound[spec.Surface]; busy {
		return nil, dashboard.ErrSurfaceBusy
	}
	c := &boundChart{board: b, spec: spec}
	b.bound[spec.Surface] = c
	b.binds++
	return c, nil
}

// Bound reports whether surface currently holds a chart.
func (b *ChartBoard) Bound(surface dashboard.Surface) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bound[surface]
	return ok
}

// Counts returns lifetime bind and destroy totals.
func (b *ChartBoard) Counts() (binds, destroys int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.binds, b.destroys
}

// Render draws the chart bound to surface inside a width x height panel.
func (b *ChartBoard) Render(surface dashboard.Surface, width, height int) string {
	b.mu.Lock()
	c, ok := b.bound[surface]
	var spec dashboard.ChartSpec
	if ok {
		spec = c.spec
	}
	b.mu.Unlock()

	style := sectionStyle.Width(max(10, width-2)).Height(max(3, height-2))
	if !ok {
		return style.Render(helpStyle.Render("No data available"))
	}

	innerW := max(10, width-6)
	innerH := max(3, height-5)

	title := chartTitleStyle.Render(spec.Title)
	var body string
	switch spec.Kind {
	case dashboard.KindBar:
		body = renderBars(spec, innerW, innerH)
	default:
		body = renderLine(spec, innerW, innerH)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, renderLegend(spec, innerW)))
}

type boundChart struct {
	board *ChartBoard
	spec  dashboard.ChartSpec
}

// Destroy releases the surface. Destroying twice is harmless.
func (c *boundChart) Destroy() {
	b := c.board
	b.mu.Lock()
	defer b.mu.Unlock()
	if cur, ok := b.bound[c.spec.Surface]; ok && cur == c {
		delete(b.bound, c.spec.Surface)
		b.destroys++
	}
}

func renderBars(spec dashboard.ChartSpec, width, height int) string {
	n := len(spec.Values)
	if n == 0 {
		return helpStyle.Render("No data available")
	}

	barWidth := (width - (n - 1)) / n
	if barWidth > 8 {
		barWidth = 8
	}
	if barWidth < 1 {
		barWidth = 1
		// Show as many bars as fit; the legend still lists every category.
		n = min(n, (width+1)/2)
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(spec.Style.Color))
	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
	)
	for i := 0; i < n; i++ {
		bc.Push(barchart.BarData{
			Label: spec.Labels[i],
			Values: []barchart.BarValue{
				{Name: spec.Labels[i], Value: spec.Values[i], Style: barStyle},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

func renderLine(spec dashboard.ChartSpec, width, height int) string {
	if len(spec.Values) == 0 {
		return helpStyle.Render("No data available")
	}

	maxY := 1.0
	for _, v := range spec.Values {
		if v > maxY {
			maxY = v
		}
	}

	slc := streamlinechart.New(width, height)
	slc.SetYRange(0, maxY)
	slc.SetViewYRange(0, maxY)
	for _, v := range spec.Values {
		slc.Push(v)
	}
	slc.Draw()
	return slc.View()
}

func renderLegend(spec dashboard.ChartSpec, width int) string {
	color := lipgloss.NewStyle().Foreground(lipgloss.Color(spec.Style.Color))
	var parts []string
	switch spec.Kind {
	case dashboard.KindBar:
		for i, label := range spec.Labels {
			parts = append(parts, fmt.Sprintf("%s: %.0f", label, spec.Values[i]))
		}
	default:
		best := 0
		total := 0.0
		for i, v := range spec.Values {
			total += v
			if v > spec.Values[best] {
				best = i
			}
		}
		if len(spec.Values) > 0 {
			parts = append(parts,
				spec.SeriesLabel,
				fmt.Sprintf("max %s %.0f", spec.Labels[best], spec.Values[best]),
				fmt.Sprintf("avg %.1f", total/float64(len(spec.Values))),
			)
		}
	}
	line := strings.Join(parts, " • ")
	if lipgloss.Width(line) > width && width > 1 {
		line = truncate(line, width)
	}
	return color.Render(line)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 {
		return ""
	}
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
