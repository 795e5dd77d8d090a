package duration

import (
	"strconv"
	"testing"
)

func TestParse_WellFormed(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2h 15min", 135},
		{"0h 0min", 0},
		{"0h 45min", 45},
		{"3h0min", 180},
		{"1h   5min", 65},
		{"1h\t5min", 65},
		{"1h 90min", 150},
		{"duración: 2h 15min aprox", 135},
		{"12h 01min", 721},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Grid(t *testing.T) {
	for h := 0; h <= 30; h += 3 {
		for m := 0; m <= 120; m += 7 {
			input := strconv.Itoa(h) + "h " + strconv.Itoa(m) + "min"
			if got := Parse(input); got != 60*h+m {
				t.Fatalf("Parse(%q) = %d, want %d", input, got, 60*h+m)
			}
		}
	}
}

func TestParse_NoMatchIsZero(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"2 hours",
		"2h",
		"15min",
		"2h 15m",
		"h min",
		"99999999999999999999999h 1min",
	}

	for _, input := range inputs {
		if got := Parse(input); got != 0 {
			t.Errorf("Parse(%q) = %d, want 0", input, got)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if got := Parse("4h 20min"); got != 260 {
			t.Fatalf("run %d: Parse = %d, want 260", i, got)
		}
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"nil", nil, 0},
		{"string", "1h 30min", 90},
		{"number", float64(42), 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromValue(tt.value); got != tt.want {
				t.Errorf("FromValue(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormat_RoundTrips(t *testing.T) {
	for _, minutes := range []int{0, 5, 60, 135, 1441} {
		if got := Parse(Format(minutes)); got != minutes {
			t.Errorf("Parse(Format(%d)) = %d", minutes, got)
		}
	}
	if got := Format(-3); got != "0h 0min" {
		t.Errorf("Format(-3) = %q, want %q", got, "0h 0min")
	}
}
