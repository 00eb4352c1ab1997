package dto

import (
	"time"

	"github.com/google/uuid"
)

// EventRequest dates are calendar days in YYYY-MM-DD form.
type EventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Time        string  `json:"time"`
	Duration    *int    `json:"duration"`
	IsMultiDay  bool    `json:"is_multi_day"`
	Color       string  `json:"color"`
}

type EventResponse struct {
	ID                uuid.UUID `json:"id"`
	CalendarID        uuid.UUID `json:"calendar_id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"`
	StartDate         string    `json:"start_date"`
	EndDate           string    `json:"end_date"`
	Time              string    `json:"time"`
	Duration          int       `json:"duration"`
	DurationFormatted string    `json:"duration_formatted"`
	IsMultiDay        bool      `json:"is_multi_day"`
	Color             string    `json:"color"`
	CreatedBy         uuid.UUID `json:"created_by"`
	CreatorName       string    `json:"creator_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SegmentResponse struct {
	Kind     string `json:"kind"`
	IsStart  bool   `json:"is_start"`
	IsEnd    bool   `json:"is_end"`
	IsMiddle bool   `json:"is_middle"`
	ShowTime bool   `json:"show_time"`
}

type PlacementResponse struct {
	Event   EventResponse   `json:"event"`
	Segment SegmentResponse `json:"segment"`
}

// CellResponse has a nil Day for the blank cells before the first of the month.
type CellResponse struct {
	Day        *int                `json:"day"`
	Date       string              `json:"date,omitempty"`
	Placements []PlacementResponse `json:"placements"`
}

type MonthResponse struct {
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	Title         string         `json:"title"`
	WeekdayLabels []string       `json:"weekday_labels"`
	Cells         []CellResponse `json:"cells"`
}
