package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"
)

func loadedSnapshot() dashboard.Snapshot {
	return dashboard.Snapshot{
		State:  model.ViewState{Phase: model.PhaseLoaded},
		Schema: model.DefaultSchema(),
		Fields: []model.FieldDescriptor{{Key: "placa", DisplayName: "Plate"}},
		Rows: []model.Row{
			{"placa": "ABC123", "marca": "Toyota", "duracion": "1h 30min"},
			{"placa": "XYZ789", "duracion": "0h 45min"},
		},
		LoadedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, " yml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	require.Error(t, err)
}

func TestBuild_LoadedIncludesAggregate(t *testing.T) {
	doc := Build(loadedSnapshot(), "https://contoso.sharepoint.com/sites/x")

	require.Equal(t, "tabla_v_prueba", doc.List)
	require.Equal(t, "loaded", doc.Phase)
	require.NotNil(t, doc.LoadedAt)
	require.NotNil(t, doc.Aggregate)
	require.Equal(t, []string{"Toyota", "Sin marca"}, doc.Aggregate.Categories.Labels)
	require.Equal(t, []int{90, 45}, doc.Aggregate.Durations.Minutes)
}

func TestBuild_FailedHasNoAggregate(t *testing.T) {
	snap := dashboard.Snapshot{
		State:  model.ViewState{Phase: model.PhaseFailed, Error: "error fetching list data"},
		Schema: model.DefaultSchema(),
	}
	doc := Build(snap, "")

	require.Equal(t, "failed", doc.Phase)
	require.Equal(t, "error fetching list data", doc.Error)
	require.Nil(t, doc.Aggregate)
	require.NotNil(t, doc.Rows)
	require.Empty(t, doc.Rows)
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build(loadedSnapshot(), ""), FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "loaded", got["phase"])
	require.NotContains(t, got, "site")
	require.Len(t, got["rows"], 2)

	agg := got["aggregate"].(map[string]any)
	summary := agg["summary"].(map[string]any)
	require.EqualValues(t, 135, summary["totalMinutes"])
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Build(loadedSnapshot(), "https://site"), FormatYAML))

	var got struct {
		Site      string `yaml:"site"`
		List      string `yaml:"list"`
		Aggregate struct {
			Categories model.CategoryTally `yaml:"categories"`
		} `yaml:"aggregate"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "https://site", got.Site)
	require.Equal(t, "tabla_v_prueba", got.List)
	require.Equal(t, []int{1, 1}, got.Aggregate.Categories.Counts)
}

func TestWrite_UnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, Document{}, Format("xml")))
}
