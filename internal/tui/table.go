package tui

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tinytelemetry/spdash/internal/duration"
	"github.com/tinytelemetry/spdash/internal/model"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 24
)

// TableSurface renders the loaded rows with one column per field descriptor.
// Sorting happens here only; the controller's row set is never reordered.
type TableSurface struct {
	model         table.Model
	keys          []string
	titles        []string
	rows          []model.Row
	durationField string

	sortCol  int // -1 = unsorted (source order)
	sortDesc bool

	width  int
	height int
}

// NewTableSurface creates an empty, focused table.
func NewTableSurface() *TableSurface {
	t := table.New(table.WithFocused(true))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(sectionStyle.GetBorderStyle()).
		BorderForeground(ColorGray).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(ColorWhite).
		Background(ColorBlue)
	t.SetStyles(styles)
	return &TableSurface{model: t, sortCol: -1}
}

// SetData replaces the columns and rows. fields drives column order and
// titles; when empty the schema allow-list is used with raw keys as titles.
func (s *TableSurface) SetData(fields []model.FieldDescriptor, rows []model.Row, schema model.ListSchema) {
	s.keys = s.keys[:0]
	s.titles = s.titles[:0]
	if len(fields) > 0 {
		for _, f := range fields {
			s.keys = append(s.keys, f.Key)
			title := f.DisplayName
			if title == "" {
				title = f.Key
			}
			s.titles = append(s.titles, title)
		}
	} else {
		s.keys = append(s.keys, schema.Fields...)
		s.titles = append(s.titles, schema.Fields...)
	}
	s.rows = rows
	s.durationField = schema.DurationField
	if s.sortCol >= len(s.keys) {
		s.sortCol = -1
	}
	s.refresh()
}

// SetSize resizes the table to the given content area.
func (s *TableSurface) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.refresh()
}

// RowCount returns the number of rows shown.
func (s *TableSurface) RowCount() int { return len(s.rows) }

// SortState returns the sort column key ("" when unsorted) and direction.
func (s *TableSurface) SortState() (string, bool) {
	if s.sortCol < 0 || s.sortCol >= len(s.keys) {
		return "", false
	}
	return s.keys[s.sortCol], s.sortDesc
}

// CycleSort moves the sort to the next column, ascending.
func (s *TableSurface) CycleSort() {
	if len(s.keys) == 0 {
		return
	}
	s.sortCol = (s.sortCol + 1) % len(s.keys)
	s.sortDesc = false
	s.refresh()
}

// ReverseSort flips the direction; it sorts by the first column when unsorted.
func (s *TableSurface) ReverseSort() {
	if len(s.keys) == 0 {
		return
	}
	if s.sortCol < 0 {
		s.sortCol = 0
	}
	s.sortDesc = !s.sortDesc
	s.refresh()
}

// ClearSort restores source order.
func (s *TableSurface) ClearSort() {
	s.sortCol = -1
	s.sortDesc = false
	s.refresh()
}

// Update forwards navigation messages to the bubbles table.
func (s *TableSurface) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.model, cmd = s.model.Update(msg)
	return cmd
}

// View renders the table.
func (s *TableSurface) View() string {
	if len(s.rows) == 0 {
		return helpStyle.Render("The list has no items")
	}
	return s.model.View()
}

// VisibleRows returns the rendered cell text in display order.
func (s *TableSurface) VisibleRows() []table.Row {
	return s.model.Rows()
}

func (s *TableSurface) refresh() {
	columns := s.columns()
	rows := s.sortedRows()

	// Rows must never outnumber the columns while either is being swapped.
	s.model.SetRows(nil)
	s.model.SetColumns(columns)
	s.model.SetRows(rows)
	if s.height > 0 {
		s.model.SetHeight(s.height)
	}
	if s.width > 0 {
		s.model.SetWidth(s.width)
	}
}

func (s *TableSurface) columns() []table.Column {
	n := len(s.keys)
	if n == 0 {
		return nil
	}
	width := minColumnWidth
	if s.width > 0 {
		width = s.width/n - 2
	}
	width = min(max(width, minColumnWidth), maxColumnWidth)

	sortKey, desc := s.SortState()
	cols := make([]table.Column, n)
	for i, title := range s.titles {
		if s.keys[i] == sortKey {
			if desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols[i] = table.Column{Title: title, Width: width}
	}
	return cols
}

func (s *TableSurface) sortedRows() []table.Row {
	order := make([]int, len(s.rows))
	for i := range order {
		order[i] = i
	}

	if s.sortCol >= 0 && s.sortCol < len(s.keys) {
		key := s.keys[s.sortCol]
		sort.SliceStable(order, func(a, b int) bool {
			av, bv := s.rows[order[a]][key], s.rows[order[b]][key]
			// Missing values stay last in either direction.
			if aBlank, bBlank := model.FormatValue(av) == "", model.FormatValue(bv) == ""; aBlank || bBlank {
				return !aBlank && bBlank
			}
			c := compareValues(av, bv, key == s.durationField)
			if s.sortDesc {
				return c > 0
			}
			return c < 0
		})
	}

	out := make([]table.Row, len(order))
	for i, idx := range order {
		row := s.rows[idx]
		cells := make(table.Row, len(s.keys))
		for j, key := range s.keys {
			cells[j] = model.FormatValue(row[key])
		}
		out[i] = cells
	}
	return out
}

// compareValues sorts missing values after present ones, numbers numerically, durations
// by minutes and everything else case-insensitively.
func compareValues(a, b any, isDuration bool) int {
	aText, bText := model.FormatValue(a), model.FormatValue(b)
	switch {
	case aText == "" && bText == "":
		return 0
	case aText == "":
		return 1
	case bText == "":
		return -1
	}

	if isDuration {
		return compareInts(duration.Parse(aText), duration.Parse(bText))
	}
	if af, err := strconv.ParseFloat(aText, 64); err == nil {
		if bf, err := strconv.ParseFloat(bText, 64); err == nil {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(aText), strings.ToLower(bText))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
