// Package chartimg renders dashboard chart specs to PNG images.
package chartimg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tinytelemetry/spdash/internal/aggregate"
	"github.com/tinytelemetry/spdash/internal/dashboard"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned for a spec without any data points.
var ErrNoData = errors.New("chartimg: no data to plot")

// ErrUnknownSurface is returned when no chart targets the requested surface.
var ErrUnknownSurface = errors.New("chartimg: unknown surface")

const (
	DefaultWidth  = 800
	DefaultHeight = 400

	// Above this many points only every n-th label gets an x-axis tick.
	maxTicks = 20
)

// PNG renders spec into an in-memory PNG.
func PNG(spec dashboard.ChartSpec, width, height int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, spec, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Surface renders the chart of res that targets surface.
func Surface(res aggregate.Result, surface dashboard.Surface, width, height int) ([]byte, error) {
	for _, spec := range dashboard.ChartSpecs(res) {
		if spec.Surface == surface {
			return PNG(spec, width, height)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSurface, surface)
}

// Render writes spec as PNG to w. Non-positive sizes fall back to the defaults.
func Render(w io.Writer, spec dashboard.ChartSpec, width, height int) error {
	if len(spec.Values) == 0 || len(spec.Labels) != len(spec.Values) {
		return ErrNoData
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var err error
	switch spec.Kind {
	case dashboard.KindBar:
		err = barChart(spec, width, height).Render(chart.PNG, w)
	case dashboard.KindLine:
		err = lineChart(spec, width, height).Render(chart.PNG, w)
	default:
		return fmt.Errorf("chartimg: unsupported chart kind %d", spec.Kind)
	}
	if err != nil {
		return fmt.Errorf("chartimg: render %s: %w", spec.Surface, err)
	}
	return nil
}

func barChart(spec dashboard.ChartSpec, width, height int) chart.BarChart {
	col := color(spec.Style.Color)
	bars := make([]chart.Value, len(spec.Values))
	for i, v := range spec.Values {
		bars[i] = chart.Value{
			Label: spec.Labels[i],
			Value: v,
			Style: chart.Style{
				FillColor:   col.WithAlpha(160),
				StrokeColor: col,
				StrokeWidth: 1,
			},
		}
	}

	barWidth := max(8, width/(2*len(bars)+1))
	return chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  spec.Style.YAxisTitle,
			Range: yRange(spec),
		},
		Bars: bars,
	}
}

func lineChart(spec dashboard.ChartSpec, width, height int) *chart.Chart {
	col := color(spec.Style.Color)
	xs := make([]float64, len(spec.Values))
	for i := range xs {
		xs[i] = float64(i)
	}

	style := chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
	if spec.Style.Fill {
		style.FillColor = col.WithAlpha(50)
	}

	stride := max(1, (len(spec.Labels)+maxTicks-1)/maxTicks)
	ticks := make([]chart.Tick, 0, len(spec.Labels)/stride+1)
	for i := 0; i < len(spec.Labels); i += stride {
		ticks = append(ticks, chart.Tick{Value: xs[i], Label: spec.Labels[i]})
	}

	ch := &chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48}},
		XAxis: chart.XAxis{
			Name:  spec.Style.XAxisTitle,
			Ticks: ticks,
			// A single point still needs a non-empty domain.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(1, len(xs)-1))},
		},
		YAxis: chart.YAxis{
			Name:  spec.Style.YAxisTitle,
			Range: yRange(spec),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.SeriesLabel,
				XValues: xs,
				YValues: spec.Values,
				Style:   style,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}

func yRange(spec dashboard.ChartSpec) *chart.ContinuousRange {
	lo, hi := spec.Values[0], spec.Values[0]
	for _, v := range spec.Values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if spec.Style.BeginAtZero {
		lo = min(0, lo)
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + 1}
}

func color(hex string) drawing.Color {
	if hex == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
