// Package duration converts "XhYmin" duration text into whole minutes.
package duration

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/tinytelemetry/spdash/internal/model"
)

// pattern matches "<hours>h <minutes>min" anywhere in the text.
var pattern = regexp.MustCompile(`(\d+)h\s*(\d+)min`)

// Parse returns hours*60+minutes for the first "XhYmin" match in text.
// Text without a match yields 0. Minutes are taken verbatim, so "1h 90min" is 150.
func Parse(text string) int {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	if hours > (maxInt-minutes)/60 {
		return 0
	}
	return hours*60 + minutes
}

const maxInt = int(^uint(0) >> 1)

// FromValue parses a raw row value. Missing values are 0 minutes.
func FromValue(v any) int {
	if v == nil {
		return 0
	}
	return Parse(model.FormatValue(v))
}

// Format renders minutes back into the "XhYmin" form Parse accepts.
func Format(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}
