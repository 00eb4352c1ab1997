package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/planner"
)

var ErrEventNotFound = errors.New("event not found")

const eventColumns = `e.id, e.calendar_id, e.title, e.description, e.start_date, e.end_date, e.time, e.duration,
		e.is_multi_day, e.color, e.created_by, e.created_at, e.updated_at`

const eventReturning = `id, calendar_id, title, description, start_date, end_date, time, duration,
		is_multi_day, color, created_by, created_at, updated_at`

const eventTimeLayout = "15:04"

// EventInput is the user-supplied shape of an event before validation.
type EventInput struct {
	Title       string
	Description *string
	StartDate   string
	EndDate     string
	Time        string
	Duration    *int
	IsMultiDay  bool
	Color       string
}

// EventFields is an EventInput with defaults applied.
type EventFields struct {
	Title       string
	Description *string
	Start       planner.Date
	End         planner.Date
	Time        string
	Duration    int
	IsMultiDay  bool
	Color       string
}

// Validate applies defaults and rejects malformed input. An empty color
// takes defaultColor.
func (in EventInput) Validate(defaultColor string) (*EventFields, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if len(title) > 255 {
		return nil, invalid("title", "must be at most 255 characters")
	}

	start, err := planner.ParseDate(in.StartDate)
	if err != nil {
		return nil, invalid("start_date", "must be a date in YYYY-MM-DD format")
	}

	// Single-day events always end where they start.
	end := start
	if in.IsMultiDay && in.EndDate != "" {
		end, err = planner.ParseDate(in.EndDate)
		if err != nil {
			return nil, invalid("end_date", "must be a date in YYYY-MM-DD format")
		}
		if end.Before(start) {
			return nil, invalid("end_date", "must not be before start_date")
		}
	}

	eventTime := in.Time
	if eventTime == "" {
		eventTime = models.DefaultEventTime
	}
	if _, err := time.Parse(eventTimeLayout, eventTime); err != nil {
		return nil, invalid("time", "must be HH:MM")
	}

	duration := models.DefaultEventDuration
	if in.Duration != nil {
		duration = *in.Duration
	}
	if duration <= 0 {
		return nil, invalid("duration", "must be a positive number of minutes")
	}

	color := in.Color
	if color == "" {
		color = defaultColor
	}
	if !colorPattern.MatchString(color) {
		return nil, invalid("color", "must be a hex color like #3B82F6")
	}

	return &EventFields{
		Title:       title,
		Description: in.Description,
		Start:       start,
		End:         end,
		Time:        eventTime,
		Duration:    duration,
		IsMultiDay:  in.IsMultiDay,
		Color:       color,
	}, nil
}

type EventService struct {
	db *database.DB
}

func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db}
}

func scanEvent(row pgx.Row, e *models.Event) error {
	return row.Scan(
		&e.ID, &e.CalendarID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Time, &e.Duration,
		&e.IsMultiDay, &e.Color, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
}

func (s *EventService) queryEvents(ctx context.Context, sql string, args ...any) ([]models.Event, error) {
	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		var creatorName, creatorEmail *string
		if err := rows.Scan(
			&e.ID, &e.CalendarID, &e.Title, &e.Description, &e.StartDate, &e.EndDate, &e.Time, &e.Duration,
			&e.IsMultiDay, &e.Color, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
			&creatorEmail, &creatorName,
		); err != nil {
			return nil, err
		}
		if creatorEmail != nil {
			e.Creator = &models.Profile{ID: e.CreatedBy, Email: *creatorEmail, FullName: creatorName}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListByCalendar returns every event of the calendar in display order.
func (s *EventService) ListByCalendar(ctx context.Context, calendarID uuid.UUID) ([]models.Event, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+`, p.email, p.full_name
		FROM events e
		LEFT JOIN profiles p ON p.id = e.created_by
		WHERE e.calendar_id = $1
		ORDER BY e.start_date, e.time, e.created_at
	`, calendarID)
}

// ListInRange returns events overlapping the closed range [from, to].
func (s *EventService) ListInRange(ctx context.Context, calendarID uuid.UUID, from, to planner.Date) ([]models.Event, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+`, p.email, p.full_name
		FROM events e
		LEFT JOIN profiles p ON p.id = e.created_by
		WHERE e.calendar_id = $1 AND e.start_date <= $2 AND e.end_date >= $3
		ORDER BY e.start_date, e.time, e.created_at
	`, calendarID, to.Time(), from.Time())
}

func (s *EventService) GetByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var e models.Event
	err := scanEvent(s.db.Pool.QueryRow(ctx, `
		SELECT `+eventColumns+` FROM events e WHERE e.id = $1
	`, eventID), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EventService) calendarColor(ctx context.Context, calendarID uuid.UUID) (string, error) {
	var color string
	err := s.db.Pool.QueryRow(ctx, `SELECT color FROM calendars WHERE id = $1`, calendarID).Scan(&color)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCalendarNotFound
	}
	return color, err
}

// Create validates in and stores it. Events without a color inherit the calendar's.
func (s *EventService) Create(ctx context.Context, calendarID, userID uuid.UUID, in EventInput) (*models.Event, error) {
	defaultColor := models.DefaultCalendarColor
	if in.Color == "" {
		color, err := s.calendarColor(ctx, calendarID)
		if err != nil {
			return nil, err
		}
		defaultColor = color
	}

	v, err := in.Validate(defaultColor)
	if err != nil {
		return nil, err
	}

	var e models.Event
	err = scanEvent(s.db.Pool.QueryRow(ctx, `
		INSERT INTO events (calendar_id, title, description, start_date, end_date, time, duration, is_multi_day, color, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+eventReturning+`
	`, calendarID, v.Title, v.Description, v.Start.Time(), v.End.Time(), v.Time, v.Duration, v.IsMultiDay, v.Color, userID), &e)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &e, nil
}

// Update replaces the editable fields of an event.
func (s *EventService) Update(ctx context.Context, eventID uuid.UUID, in EventInput) (*models.Event, error) {
	existing, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	v, err := in.Validate(existing.Color)
	if err != nil {
		return nil, err
	}

	var e models.Event
	err = scanEvent(s.db.Pool.QueryRow(ctx, `
		UPDATE events SET
			title = $1, description = $2, start_date = $3, end_date = $4, time = $5,
			duration = $6, is_multi_day = $7, color = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+eventReturning+`
	`, v.Title, v.Description, v.Start.Time(), v.End.Time(), v.Time, v.Duration, v.IsMultiDay, v.Color, eventID), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &e, nil
}

func (s *EventService) Delete(ctx context.Context, eventID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// CanEditEvent: owners edit anything, editors only what they created.
func CanEditEvent(role string, userID uuid.UUID, e *models.Event) bool {
	switch role {
	case models.RoleOwner:
		return true
	case models.RoleEditor:
		return e.CreatedBy == userID
	}
	return false
}

// CanDeleteEvent: owners delete anything, creators delete their own even
// after being demoted to viewer.
func CanDeleteEvent(role string, userID uuid.UUID, e *models.Event) bool {
	if role == models.RoleOwner {
		return true
	}
	return models.IsValidRole(role) && e.CreatedBy == userID
}
