package dashboard

import (
	"errors"

	"github.com/tinytelemetry/spdash/internal/aggregate"
)

// Surface names one fixed chart rendering target.
type Surface string

const (
	SurfaceCategories Surface = "categories"
	SurfaceDurations  Surface = "durations"
)

// ChartKind selects the chart renderer.
type ChartKind int

const (
	KindBar ChartKind = iota
	KindLine
)

// ErrSurfaceBusy is returned by a ChartFactory asked to bind a surface that
// still holds a live chart.
var ErrSurfaceBusy = errors.New("dashboard: surface already bound")

// ChartStyle carries the renderer-independent styling of one chart.
type ChartStyle struct {
	Color       string // hex, e.g. "#4BC0C0"
	Fill        bool
	XAxisTitle  string
	YAxisTitle  string
	BeginAtZero bool
}

// ChartSpec is everything a surface needs to draw one chart.
type ChartSpec struct {
	Surface     Surface
	Kind        ChartKind
	Title       string
	SeriesLabel string
	Labels      []string
	Values      []float64
	Style       ChartStyle
}

// Chart is a live binding of a chart to its surface.
type Chart interface {
	Destroy()
}

// ChartFactory binds chart specs to rendering surfaces.
type ChartFactory interface {
	Bind(spec ChartSpec) (Chart, error)
}

// ChartSpecs returns the bar (categories) and line (durations) specs for res.
func ChartSpecs(res aggregate.Result) []ChartSpec {
	counts := make([]float64, len(res.Categories.Counts))
	for i, c := range res.Categories.Counts {
		counts[i] = float64(c)
	}
	minutes := make([]float64, len(res.Durations.Minutes))
	for i, m := range res.Durations.Minutes {
		minutes[i] = float64(m)
	}

	return []ChartSpec{
		{
			Surface:     SurfaceCategories,
			Kind:        KindBar,
			Title:       "Vehicles by brand",
			SeriesLabel: "Vehicles by brand",
			Labels:      append([]string(nil), res.Categories.Labels...),
			Values:      counts,
			Style:       ChartStyle{Color: "#4BC0C0", BeginAtZero: true},
		},
		{
			Surface:     SurfaceDurations,
			Kind:        KindLine,
			Title:       "Duration per vehicle",
			SeriesLabel: "Duration (minutes)",
			Labels:      append([]string(nil), res.Durations.Labels...),
			Values:      minutes,
			Style: ChartStyle{
				Color:       "#FF6384",
				Fill:        true,
				XAxisTitle:  "Vehicles (plates)",
				YAxisTitle:  "Minutes",
				BeginAtZero: true,
			},
		},
	}
}
