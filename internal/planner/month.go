package planner

import (
	"fmt"
	"time"

	"github.com/tripstitch/tripstitch-api/internal/models"
)

// WeekdayLabels are the grid column headers, starting on Sunday.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DaysInMonth returns the day cells of a month grid. Leading zeros are blank
// cells that push day 1 under its weekday column, then 1..N follow.
func DaysInMonth(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	count := daysIn(year, month)

	cells := make([]int, offset, offset+count)
	for day := 1; day <= count; day++ {
		cells = append(cells, day)
	}
	return cells
}

// MonthRange returns the first and last day of a month.
func MonthRange(year int, month time.Month) (Date, Date) {
	return NewDate(year, month, 1), NewDate(year, month, daysIn(year, month))
}

// MonthName formats a header such as "March 2025".
func MonthName(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", month.String(), year)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Placement is one event drawn in one day cell.
type Placement struct {
	Event   models.Event
	Segment Segment
}

// Cell is a single grid square. Blank cells have Day == 0 and a zero Date.
type Cell struct {
	Day        int
	Date       Date
	Placements []Placement
}

func (c Cell) IsBlank() bool {
	return c.Day == 0
}

type Month struct {
	Year  int
	Month time.Month
	Cells []Cell
}

// BuildMonth materializes every cell of the month grid with the events that
// occupy it. Events are expected in display order and keep that order per cell.
func BuildMonth(year int, month time.Month, events []models.Event) Month {
	days := DaysInMonth(year, month)
	grid := Month{Year: year, Month: month, Cells: make([]Cell, len(days))}

	for i, day := range days {
		if day == 0 {
			continue
		}
		date := NewDate(year, month, day)
		dayEvents := EventsForDay(events, year, month, day)
		cell := Cell{Day: day, Date: date}
		if len(dayEvents) > 0 {
			cell.Placements = make([]Placement, len(dayEvents))
			for j, e := range dayEvents {
				cell.Placements[j] = Placement{Event: e, Segment: SegmentInfo(e, date)}
			}
		}
		grid.Cells[i] = cell
	}
	return grid
}
