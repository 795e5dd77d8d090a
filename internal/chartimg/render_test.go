package chartimg

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/spdash/internal/aggregate"
	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"
)

func sampleResult() aggregate.Result {
	rows := []model.Row{
		{"placa": "ABC123", "marca": "Toyota", "duracion": "1h 30min"},
		{"placa": "XYZ789", "marca": "Honda", "duracion": "0h 45min"},
		{"placa": "DEF456", "marca": "Toyota", "duracion": "2h 0min"},
	}
	return aggregate.Aggregate(rows, model.DefaultSchema())
}

func TestSurface_RendersDecodablePNG(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	for _, surface := range []dashboard.Surface{dashboard.SurfaceCategories, dashboard.SurfaceDurations} {
		t.Run(string(surface), func(t *testing.T) {
			data, err := Surface(res, surface, 640, 320)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, 640, img.Bounds().Dx())
			require.Equal(t, 320, img.Bounds().Dy())
		})
	}
}

func TestSurface_SinglePointLine(t *testing.T) {
	t.Parallel()

	res := aggregate.Aggregate([]model.Row{{"placa": "ONE", "duracion": "0h 5min"}}, model.DefaultSchema())
	data, err := Surface(res, dashboard.SurfaceDurations, 0, 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, DefaultWidth, img.Bounds().Dx())
}

func TestRender_NoData(t *testing.T) {
	t.Parallel()

	res := aggregate.Aggregate(nil, model.DefaultSchema())
	_, err := Surface(res, dashboard.SurfaceCategories, 100, 100)
	require.ErrorIs(t, err, ErrNoData)

	_, err = Surface(res, dashboard.SurfaceDurations, 100, 100)
	require.ErrorIs(t, err, ErrNoData)
}

func TestSurface_Unknown(t *testing.T) {
	t.Parallel()

	_, err := Surface(sampleResult(), dashboard.Surface("pie"), 100, 100)
	require.ErrorIs(t, err, ErrUnknownSurface)
}
