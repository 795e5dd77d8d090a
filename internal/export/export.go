// Package export renders a loaded dashboard snapshot as JSON or YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tinytelemetry/spdash/internal/aggregate"
	"github.com/tinytelemetry/spdash/internal/dashboard"
	"github.com/tinytelemetry/spdash/internal/model"

	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want json or yaml)", s)
}

// Document is the exported view of one dashboard snapshot.
type Document struct {
	Site      string                  `json:"site,omitempty" yaml:"site,omitempty"`
	List      string                  `json:"list" yaml:"list"`
	Phase     string                  `json:"phase" yaml:"phase"`
	Error     string                  `json:"error,omitempty" yaml:"error,omitempty"`
	LoadedAt  *time.Time              `json:"loadedAt,omitempty" yaml:"loadedAt,omitempty"`
	Fields    []model.FieldDescriptor `json:"fields" yaml:"fields"`
	Rows      []model.Row             `json:"rows" yaml:"rows"`
	Aggregate *aggregate.Result       `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
}

// Build converts snap into a Document. Aggregates are only present once loaded.
func Build(snap dashboard.Snapshot, site string) Document {
	doc := Document{
		Site:   site,
		List:   snap.Schema.ListTitle,
		Phase:  snap.State.Phase.String(),
		Error:  snap.State.Error,
		Fields: snap.Fields,
		Rows:   snap.Rows,
	}
	if doc.Fields == nil {
		doc.Fields = []model.FieldDescriptor{}
	}
	if doc.Rows == nil {
		doc.Rows = []model.Row{}
	}
	if snap.State.Phase == model.PhaseLoaded {
		res := snap.Aggregate()
		doc.Aggregate = &res
		loadedAt := snap.LoadedAt.UTC()
		doc.LoadedAt = &loadedAt
	}
	return doc
}

// Write encodes doc to w.
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export: encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("export: encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
	return nil
}
