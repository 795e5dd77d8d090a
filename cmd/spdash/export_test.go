package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/spdash/internal/export"
)

func newListServer(t *testing.T, itemsStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/fields"):
			_, _ = w.Write([]byte(`{"value":[{"Title":"Plate","InternalName":"placa"},{"Title":"Brand","InternalName":"marca"}]}`))
		case strings.HasSuffix(r.URL.Path, "/items"):
			if itemsStatus != http.StatusOK {
				http.Error(w, `{"error":"boom"}`, itemsStatus)
				return
			}
			_, _ = w.Write([]byte(`{"value":[{"placa":"ABC123","marca":"Toyota","duracion":"1h 30min"},{"placa":"XYZ789","marca":null,"duracion":"0h 45min"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, siteURL string) appConfig {
	t.Helper()
	cfg, err := loadConfig(writeConfig(t, "site-url: "+siteURL+"\n"))
	require.NoError(t, err)
	return cfg
}

func TestRunExport_JSON(t *testing.T) {
	srv := newListServer(t, http.StatusOK)

	var buf bytes.Buffer
	require.NoError(t, runExport(testConfig(t, srv.URL), export.FormatJSON, &buf))

	var doc export.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, "loaded", doc.Phase)
	require.Len(t, doc.Rows, 2)
	require.Len(t, doc.Fields, 2)
	require.NotNil(t, doc.Aggregate)
	require.Equal(t, []string{"Toyota", "Sin marca"}, doc.Aggregate.Categories.Labels)
	require.Equal(t, 135, doc.Aggregate.Summary.TotalMinutes)
}

func TestRunExport_FailedLoadStillWritesDocument(t *testing.T) {
	srv := newListServer(t, http.StatusInternalServerError)

	var buf bytes.Buffer
	err := runExport(testConfig(t, srv.URL), export.FormatYAML, &buf)
	require.ErrorContains(t, err, "error fetching list data")
	require.Contains(t, buf.String(), "phase: failed")
	require.Contains(t, buf.String(), "error: error fetching list data")
}
