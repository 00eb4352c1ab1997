package planner

import (
	"fmt"
	"time"

	"github.com/tripstitch/tripstitch-api/internal/models"
)

// Segment classifies how an event is drawn on a particular day.
type Segment struct {
	IsStart  bool `json:"is_start"`
	IsEnd    bool `json:"is_end"`
	IsMiddle bool `json:"is_middle"`
	ShowTime bool `json:"show_time"`
}

const (
	SegmentSingle = "single"
	SegmentStart  = "start"
	SegmentMiddle = "middle"
	SegmentEnd    = "end"
)

// Kind collapses the flags into one rendering tag.
func (s Segment) Kind() string {
	switch {
	case s.IsStart && s.IsEnd:
		return SegmentSingle
	case s.IsStart:
		return SegmentStart
	case s.IsEnd:
		return SegmentEnd
	}
	return SegmentMiddle
}

// Span returns the first and last day an event occupies. A single-day event
// occupies only its start date regardless of the stored end date.
func Span(e models.Event) (Date, Date) {
	start := DateOf(e.StartDate)
	if !e.IsMultiDay {
		return start, start
	}
	return start, DateOf(e.EndDate)
}

// Occupies reports whether the event is drawn on day d.
func Occupies(e models.Event, d Date) bool {
	start, end := Span(e)
	return d.Between(start, end)
}

// EventsForDay filters events down to those occupying the given day,
// preserving input order.
func EventsForDay(events []models.Event, year int, month time.Month, day int) []models.Event {
	d := NewDate(year, month, day)
	var out []models.Event
	for _, e := range events {
		if Occupies(e, d) {
			out = append(out, e)
		}
	}
	return out
}

// SegmentInfo describes how event e renders on day d.
func SegmentInfo(e models.Event, d Date) Segment {
	if !e.IsMultiDay {
		return Segment{IsStart: true, IsEnd: true, ShowTime: true}
	}
	isStart := d.Equal(DateOf(e.StartDate))
	isEnd := d.Equal(DateOf(e.EndDate))
	return Segment{
		IsStart:  isStart,
		IsEnd:    isEnd,
		IsMiddle: !isStart && !isEnd,
		ShowTime: isStart,
	}
}

// FormatDuration renders minutes as "45min", "1h" or "1h 30min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	hours, rem := minutes/60, minutes%60
	if rem == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dmin", hours, rem)
}
