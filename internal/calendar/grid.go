// Package calendar builds fixed-size month grids and day-keyed record indexes
// for the calendar views.
package calendar

import (
	"fmt"
	"time"
)

const (
	// GridCells is six full weeks. Every month renders with the same shape.
	GridCells = 42
	gridWeeks = 6
)

// KeyLayout formats day keys.
const KeyLayout = "2006-01-02"

type Cell struct {
	Date           time.Time `json:"-"`
	Key            string    `json:"date"`
	InCurrentMonth bool      `json:"inCurrentMonth"`
}

type Grid struct {
	Year     int             `json:"year"`
	Month    time.Month      `json:"month"`
	FirstDay time.Weekday    `json:"firstDayOfWeek"`
	Cells    [GridCells]Cell `json:"cells"`
}

// BuildMonthGrid returns the 42 consecutive days starting at the firstDay-aligned
// week that contains the 1st of month. Out-of-range months are normalised the
// way time.Date does (month 13 is January of the next year).
func BuildMonthGrid(year int, month time.Month, firstDay time.Weekday) Grid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	if firstDay < time.Sunday || firstDay > time.Saturday {
		firstDay = time.Monday
	}
	offset := (int(first.Weekday()) - int(firstDay) + 7) % 7
	start := first.AddDate(0, 0, -offset)

	g := Grid{Year: first.Year(), Month: first.Month(), FirstDay: firstDay}
	for i := range g.Cells {
		d := start.AddDate(0, 0, i)
		g.Cells[i] = Cell{
			Date:           d,
			Key:            d.Format(KeyLayout),
			InCurrentMonth: d.Month() == first.Month(),
		}
	}
	return g
}

// Weeks splits the grid into six rows of seven days.
func (g Grid) Weeks() [][]Cell {
	rows := make([][]Cell, 0, gridWeeks)
	for w := 0; w < gridWeeks; w++ {
		rows = append(rows, g.Cells[w*7:(w+1)*7])
	}
	return rows
}

// Start and End bound the grid, inclusive.
func (g Grid) Start() time.Time { return g.Cells[0].Date }
func (g Grid) End() time.Time   { return g.Cells[GridCells-1].Date }

func (g Grid) Label() string {
	return MonthLabel(g.Year, g.Month)
}

func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month, year)
}

// Weekdays returns short weekday names in column order for firstDay.
func Weekdays(firstDay time.Weekday) []string {
	out := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		out = append(out, time.Weekday((int(firstDay)+i)%7).String()[:3])
	}
	return out
}

// DayKey is the canonical YYYY-MM-DD key for t's calendar day in t's location.
func DayKey(t time.Time) string {
	return t.Format(KeyLayout)
}

func ParseDayKey(s string) (time.Time, bool) {
	if len(s) != len(KeyLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(KeyLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
