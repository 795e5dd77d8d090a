package model

import "testing"

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Toyota", "Toyota"},
		{float64(42), "42"},
		{float64(1.5), "1.5"},
		{true, "true"},
		{int64(7), "7"},
		{[]string{"x"}, ""},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	t.Parallel()

	for _, v := range []any{nil, "", float64(0), false, 0} {
		if !IsBlank(v) {
			t.Errorf("IsBlank(%#v) = false, want true", v)
		}
	}
	for _, v := range []any{"x", float64(3), true, "0"} {
		if IsBlank(v) {
			t.Errorf("IsBlank(%#v) = true, want false", v)
		}
	}
}

func TestRowText(t *testing.T) {
	t.Parallel()

	r := Row{"placa": "ABC123", "marca": nil, "ID": float64(3)}
	if got, ok := r.Text("placa"); !ok || got != "ABC123" {
		t.Fatalf("Text(placa) = %q, %v", got, ok)
	}
	if _, ok := r.Text("marca"); ok {
		t.Fatal("Text(marca) ok for nil value")
	}
	if _, ok := r.Text("missing"); ok {
		t.Fatal("Text(missing) ok for absent key")
	}
	if got, _ := r.Text("ID"); got != "3" {
		t.Fatalf("Text(ID) = %q, want 3", got)
	}
}

func TestCategoryTally(t *testing.T) {
	t.Parallel()

	tally := CategoryTally{Labels: []string{"Toyota", "Honda"}, Counts: []int{2, 1}}
	if got := tally.Total(); got != 3 {
		t.Fatalf("Total() = %d, want 3", got)
	}
	m := tally.Map()
	if m["Toyota"] != 2 || m["Honda"] != 1 || len(m) != 2 {
		t.Fatalf("Map() = %v", m)
	}
}

func TestParseTab(t *testing.T) {
	t.Parallel()

	for _, tab := range []Tab{TabTable, TabCharts} {
		got, ok := ParseTab(tab.String())
		if !ok || got != tab {
			t.Fatalf("ParseTab(%q) = %v, %v", tab.String(), got, ok)
		}
	}
	if _, ok := ParseTab("pie"); ok {
		t.Fatal("ParseTab(pie) ok")
	}
}

func TestDefaultSchemaIsIndependentCopy(t *testing.T) {
	t.Parallel()

	a := DefaultSchema()
	a.Fields[0] = "changed"
	if DefaultSchema().Fields[0] != DefaultFields[0] {
		t.Fatal("DefaultSchema shares its field slice")
	}
	if a.MaxRows != MaxRows {
		t.Fatalf("MaxRows = %d, want %d", a.MaxRows, MaxRows)
	}
}
