package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultEventTime     = "09:00"
	DefaultEventDuration = 30
)

// Event dates are calendar days stored at UTC midnight.
type Event struct {
	ID          uuid.UUID `json:"id"`
	CalendarID  uuid.UUID `json:"calendar_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Time        string    `json:"time"`
	Duration    int       `json:"duration"`
	IsMultiDay  bool      `json:"is_multi_day"`
	Color       string    `json:"color"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Creator     *Profile  `json:"creator,omitempty"`
}
