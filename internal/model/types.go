package model

import (
	"strconv"
)

// FieldDescriptor describes one list column as reported by the field-metadata lookup.
type FieldDescriptor struct {
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// Row is one list item keyed by field internal name. Values are string,
// float64 (JSON numbers), bool or nil.
type Row map[string]any

// Text returns the row value for key rendered as text. ok is false when the
// value is absent or nil.
func (r Row) Text(key string) (string, bool) {
	v, present := r[key]
	if !present || v == nil {
		return "", false
	}
	return FormatValue(v), true
}

// FormatValue renders a row value the way the table surface shows it.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// IsBlank reports whether v counts as missing for aggregation: nil, empty
// string, numeric zero or false.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case float32:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case bool:
		return !t
	default:
		return false
	}
}

// ListSchema fixes which list is read and which of its fields feed the charts.
type ListSchema struct {
	ListTitle        string   `json:"listTitle" yaml:"listTitle"`
	Fields           []string `json:"fields" yaml:"fields"`
	CategoryField    string   `json:"categoryField" yaml:"categoryField"`
	LabelField       string   `json:"labelField" yaml:"labelField"`
	DurationField    string   `json:"durationField" yaml:"durationField"`
	CategorySentinel string   `json:"categorySentinel" yaml:"categorySentinel"`
	LabelSentinel    string   `json:"labelSentinel" yaml:"labelSentinel"`
	MaxRows          int      `json:"maxRows" yaml:"maxRows"`
}

// CategoryTally counts rows per category in first-seen order.
type CategoryTally struct {
	Labels []string `json:"labels" yaml:"labels"`
	Counts []int    `json:"counts" yaml:"counts"`
}

// Map returns the tally as a label to count map.
func (t CategoryTally) Map() map[string]int {
	out := make(map[string]int, len(t.Labels))
	for i, label := range t.Labels {
		out[label] = t.Counts[i]
	}
	return out
}

// Total returns the sum of all counts.
func (t CategoryTally) Total() int {
	total := 0
	for _, c := range t.Counts {
		total += c
	}
	return total
}

// DurationSeries holds one label and one parsed duration per row, in row order.
type DurationSeries struct {
	Labels  []string `json:"labels" yaml:"labels"`
	Minutes []int    `json:"minutes" yaml:"minutes"`
}

// Len returns the number of points in the series.
func (s DurationSeries) Len() int {
	return len(s.Labels)
}

// Tab identifies the selected dashboard tab.
type Tab int

const (
	TabTable Tab = iota
	TabCharts
)

func (t Tab) String() string {
	switch t {
	case TabCharts:
		return "charts"
	default:
		return "table"
	}
}

// ParseTab maps "table"/"charts" to a Tab.
func ParseTab(s string) (Tab, bool) {
	switch s {
	case "table":
		return TabTable, true
	case "charts":
		return TabCharts, true
	}
	return TabTable, false
}

// Phase is the load lifecycle of one dashboard instance.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ViewState is the small state machine rendered by every surface.
type ViewState struct {
	Phase   Phase
	Loading bool
	Error   string
	Tab     Tab
}
