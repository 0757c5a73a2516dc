package widget

import "time"

// WeekRow is one Monday-first row of the month grid. Hidden rows stay in
// the slice so navigation still knows about them.
type WeekRow struct {
	Days   [7]time.Time
	Hidden bool
}

// Monday returns the first day of the row.
func (w WeekRow) Monday() time.Time {
	return w.Days[0]
}

// Contains reports whether t falls on one of the row's seven days.
func (w WeekRow) Contains(t time.Time) bool {
	day := startOfDay(t)

	return !day.Before(w.Days[0]) && day.Before(w.Days[0].AddDate(0, 0, 7))
}

type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks []WeekRow
}

// BuildMonthGrid lays out the weeks covering the given month, rows starting
// on Monday. Leading and trailing days spill into adjacent months the way
// any wall calendar does.
func BuildMonthGrid(year int, month time.Month, loc *time.Location) MonthGrid {
	if loc == nil {
		loc = time.Local
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	nextMonth := first.AddDate(0, 1, 0)

	grid := MonthGrid{Year: year, Month: month}

	for cur := startOfWeek(first); cur.Before(nextMonth); cur = cur.AddDate(0, 0, 7) {
		var row WeekRow

		for i := 0; i < 7; i++ {
			row.Days[i] = cur.AddDate(0, 0, i)
		}

		grid.Weeks = append(grid.Weeks, row)
	}

	return grid
}

// PromoteCurrentWeek moves the row containing today to the top and hides
// every row that lies entirely before it. Rows after today's week keep
// their relative order. A today outside the grid leaves it untouched.
func (g *MonthGrid) PromoteCurrentWeek(today time.Time) {
	idx := -1

	for i, row := range g.Weeks {
		if row.Contains(today) {
			idx = i
			break
		}
	}

	if idx < 0 {
		return
	}

	monday := g.Weeks[idx].Monday()

	reordered := make([]WeekRow, 0, len(g.Weeks))
	reordered = append(reordered, g.Weeks[idx])

	for i, row := range g.Weeks {
		if i == idx {
			continue
		}

		if row.Monday().Before(monday) {
			row.Hidden = true
		}

		reordered = append(reordered, row)
	}

	g.Weeks = reordered
}

// Start is the grid's earliest day, hidden rows included. Promotion
// changes what is shown, never what is fetched, so data loading keys
// off this bound.
func (g MonthGrid) Start() time.Time {
	var earliest time.Time

	for _, row := range g.Weeks {
		if earliest.IsZero() || row.Monday().Before(earliest) {
			earliest = row.Monday()
		}
	}

	return earliest
}

// ValidRangeStart is the navigation floor: the first of today's month.
// Earlier months are never shown.
func ValidRangeStart(today time.Time) time.Time {
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)

	// time.Weekday counts Sunday as 0; shift so Monday is the row start.
	offset := (int(day.Weekday()) + 6) % 7

	return day.AddDate(0, 0, -offset)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
