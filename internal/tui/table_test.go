package tui

import (
	"slices"
	"testing"

	"github.com/tinytelemetry/spdash/internal/model"
)

func columnText(s *TableSurface, col int) []string {
	rows := s.VisibleRows()
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[col]
	}
	return out
}

func TestTableSurface_SortByDurationMinutes(t *testing.T) {
	t.Parallel()

	fixture := vehicleReader()
	s := NewTableSurface()
	s.SetSize(100, 10)
	s.SetData(fixture.fields, fixture.rows, model.DefaultSchema())

	// placa -> marca -> duracion
	s.CycleSort()
	s.CycleSort()
	s.CycleSort()
	if col, desc := s.SortState(); col != "duracion" || desc {
		t.Fatalf("sort = %q desc=%v, want duracion asc", col, desc)
	}

	got := columnText(s, 2)
	want := []string{"0h 45min", "1h 30min", "2h 0min"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ascending order = %v, want %v", got, want)
		}
	}

	s.ReverseSort()
	if got := columnText(s, 2)[0]; got != "2h 0min" {
		t.Fatalf("descending first = %q, want 2h 0min", got)
	}

	s.ClearSort()
	if got := s.VisibleRows()[0][0]; got != "ABC123" {
		t.Fatalf("source order first = %q, want ABC123", got)
	}
}

func TestTableSurface_EmptyListAndFallbackColumns(t *testing.T) {
	t.Parallel()

	s := NewTableSurface()
	s.SetData(nil, nil, model.DefaultSchema())
	if got := s.View(); got == "" {
		t.Fatal("empty view rendered nothing")
	}
	if got := s.RowCount(); got != 0 {
		t.Fatalf("rows = %d, want 0", got)
	}

	s.SetData(nil, []model.Row{{"ID": float64(7), "placa": "AAA"}}, model.DefaultSchema())
	row := s.VisibleRows()[0]
	if row[0] != "7" || row[1] != "AAA" {
		t.Fatalf("row = %v, want ID and placa in schema order", row)
	}
	if row[2] != "" {
		t.Fatalf("missing marca = %q, want empty", row[2])
	}
}

func TestTableSurface_MissingValuesLastBothDirections(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDescriptor{{Key: "placa", DisplayName: "Plate"}, {Key: "marca", DisplayName: "Brand"}}
	rows := []model.Row{
		{"placa": "AAA", "marca": nil},
		{"placa": "BBB", "marca": "Kia"},
		{"placa": "CCC", "marca": ""},
		{"placa": "DDD", "marca": "Audi"},
	}
	s := NewTableSurface()
	s.SetSize(80, 10)
	s.SetData(fields, rows, model.DefaultSchema())

	s.CycleSort()
	s.CycleSort()
	if col, _ := s.SortState(); col != "marca" {
		t.Fatalf("sort column = %q, want marca", col)
	}

	want := []string{"Audi", "Kia", "", ""}
	if got := columnText(s, 1); !slices.Equal(got, want) {
		t.Fatalf("ascending = %q, want %q", got, want)
	}

	s.ReverseSort()
	want = []string{"Kia", "Audi", "", ""}
	if got := columnText(s, 1); !slices.Equal(got, want) {
		t.Fatalf("descending = %q, want %q", got, want)
	}
}

func TestCompareValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     any
		duration bool
		want     int
	}{
		{"numbers", float64(2), float64(10), false, -1},
		{"strings fold case", "honda", "Toyota", false, -1},
		{"missing last", nil, "x", false, 1},
		{"both missing", nil, "", false, 0},
		{"durations by minutes", "0h 90min", "1h 0min", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValues(tt.a, tt.b, tt.duration); got != tt.want {
				t.Fatalf("compareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
