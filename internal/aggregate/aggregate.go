// Package aggregate derives chart inputs from the loaded list rows.
package aggregate

import (
	"github.com/tinytelemetry/spdash/internal/duration"
	"github.com/tinytelemetry/spdash/internal/model"
)

// Result holds every structure derived from one row collection.
type Result struct {
	Categories model.CategoryTally  `json:"categories" yaml:"categories"`
	Durations  model.DurationSeries `json:"durations" yaml:"durations"`
	Summary    Summary              `json:"summary" yaml:"summary"`
}

// Summary is a compact description of the duration series.
type Summary struct {
	Rows           int     `json:"rows" yaml:"rows"`
	TotalMinutes   int     `json:"totalMinutes" yaml:"totalMinutes"`
	AverageMinutes float64 `json:"averageMinutes" yaml:"averageMinutes"`
	MaxMinutes     int     `json:"maxMinutes" yaml:"maxMinutes"`
	MaxLabel       string  `json:"maxLabel" yaml:"maxLabel"`
}

// Aggregate tallies rows by category and builds the duration series.
// Every row contributes one entry to each structure; rows missing the
// category or label field are counted under the schema sentinels.
func Aggregate(rows []model.Row, schema model.ListSchema) Result {
	categories := Tally(rows, schema.CategoryField, schema.CategorySentinel)
	durations := Durations(rows, schema.LabelField, schema.LabelSentinel, schema.DurationField)
	return Result{
		Categories: categories,
		Durations:  durations,
		Summary:    Summarize(durations),
	}
}

// Tally counts rows per value of field, in first-seen order.
func Tally(rows []model.Row, field, sentinel string) model.CategoryTally {
	tally := model.CategoryTally{
		Labels: make([]string, 0),
		Counts: make([]int, 0),
	}
	index := make(map[string]int)

	for _, row := range rows {
		label := LabelOf(row, field, sentinel)
		if i, ok := index[label]; ok {
			tally.Counts[i]++
			continue
		}
		index[label] = len(tally.Labels)
		tally.Labels = append(tally.Labels, label)
		tally.Counts = append(tally.Counts, 1)
	}

	return tally
}

// Durations builds parallel label/minute sequences in row order.
func Durations(rows []model.Row, labelField, sentinel, durationField string) model.DurationSeries {
	series := model.DurationSeries{
		Labels:  make([]string, len(rows)),
		Minutes: make([]int, len(rows)),
	}
	for i, row := range rows {
		series.Labels[i] = LabelOf(row, labelField, sentinel)
		series.Minutes[i] = duration.FromValue(row[durationField])
	}
	return series
}

// Summarize computes totals over a duration series.
func Summarize(series model.DurationSeries) Summary {
	s := Summary{Rows: series.Len()}
	for i, minutes := range series.Minutes {
		s.TotalMinutes += minutes
		if i == 0 || minutes > s.MaxMinutes {
			s.MaxMinutes = minutes
			s.MaxLabel = series.Labels[i]
		}
	}
	if s.Rows > 0 {
		s.AverageMinutes = float64(s.TotalMinutes) / float64(s.Rows)
	}
	return s
}

// LabelOf stringifies row[field], falling back to sentinel for blank values.
func LabelOf(row model.Row, field, sentinel string) string {
	v := row[field]
	if model.IsBlank(v) {
		return sentinel
	}
	text := model.FormatValue(v)
	if text == "" {
		return sentinel
	}
	return text
}
