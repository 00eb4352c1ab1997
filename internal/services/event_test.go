package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/planner"
)

var eventRowColumns = []string{
	"id", "calendar_id", "title", "description", "start_date", "end_date", "time", "duration",
	"is_multi_day", "color", "created_by", "created_at", "updated_at",
}

func setupEventService(t *testing.T) (*EventService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewEventService(&database.DB{Pool: mock}), mock
}

func intPtr(n int) *int { return &n }

func TestEventInput_Validate(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		v, err := EventInput{Title: " Flight ", StartDate: "2025-06-10"}.Validate("#3B82F6")

		require.NoError(t, err)
		assert.Equal(t, "Flight", v.Title)
		assert.Equal(t, planner.NewDate(2025, time.June, 10), v.Start)
		assert.Equal(t, v.Start, v.End)
		assert.Equal(t, "09:00", v.Time)
		assert.Equal(t, 30, v.Duration)
		assert.Equal(t, "#3B82F6", v.Color)
	})

	t.Run("single day ignores end date", func(t *testing.T) {
		v, err := EventInput{Title: "Dinner", StartDate: "2025-06-10", EndDate: "2025-06-12"}.Validate("#3B82F6")

		require.NoError(t, err)
		assert.Equal(t, v.Start, v.End)
	})

	t.Run("multi day keeps end date", func(t *testing.T) {
		v, err := EventInput{
			Title: "Hotel", StartDate: "2025-06-10", EndDate: "2025-06-14", IsMultiDay: true,
			Time: "15:30", Duration: intPtr(90), Color: "#10b981",
		}.Validate("#3B82F6")

		require.NoError(t, err)
		assert.Equal(t, planner.NewDate(2025, time.June, 14), v.End)
		assert.Equal(t, "15:30", v.Time)
		assert.Equal(t, 90, v.Duration)
		assert.Equal(t, "#10b981", v.Color)
	})

	t.Run("multi day without end is one day", func(t *testing.T) {
		v, err := EventInput{Title: "Hotel", StartDate: "2025-06-10", IsMultiDay: true}.Validate("#3B82F6")

		require.NoError(t, err)
		assert.Equal(t, v.Start, v.End)
	})

	invalidTests := []struct {
		name  string
		in    EventInput
		field string
	}{
		{"missing title", EventInput{StartDate: "2025-06-10"}, "title"},
		{"bad start", EventInput{Title: "x", StartDate: "2025-6-10"}, "start_date"},
		{"bad end", EventInput{Title: "x", StartDate: "2025-06-10", EndDate: "june", IsMultiDay: true}, "end_date"},
		{"end before start", EventInput{Title: "x", StartDate: "2025-06-10", EndDate: "2025-06-09", IsMultiDay: true}, "end_date"},
		{"bad time", EventInput{Title: "x", StartDate: "2025-06-10", Time: "25:00"}, "time"},
		{"zero duration", EventInput{Title: "x", StartDate: "2025-06-10", Duration: intPtr(0)}, "duration"},
		{"negative duration", EventInput{Title: "x", StartDate: "2025-06-10", Duration: intPtr(-15)}, "duration"},
		{"bad color", EventInput{Title: "x", StartDate: "2025-06-10", Color: "red"}, "color"},
	}

	for _, tt := range invalidTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Validate("#3B82F6")

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEventService_Create_InheritsCalendarColor(t *testing.T) {
	svc, mock := setupEventService(t)
	calendarID, userID, eventID := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`SELECT color FROM calendars WHERE id = \$1`).
		WithArgs(calendarID).
		WillReturnRows(pgxmock.NewRows([]string{"color"}).AddRow("#EF4444"))
	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(calendarID, "Flight", pgxmock.AnyArg(), start, start, "09:00", 30, false, "#EF4444", userID).
		WillReturnRows(pgxmock.NewRows(eventRowColumns).
			AddRow(eventID, calendarID, "Flight", nil, start, start, "09:00", 30, false, "#EF4444", userID, now, now))

	e, err := svc.Create(context.Background(), calendarID, userID, EventInput{Title: "Flight", StartDate: "2025-06-10"})

	require.NoError(t, err)
	assert.Equal(t, eventID, e.ID)
	assert.Equal(t, "#EF4444", e.Color)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Create_UnknownCalendar(t *testing.T) {
	svc, mock := setupEventService(t)
	calendarID := uuid.New()

	mock.ExpectQuery(`SELECT color FROM calendars`).
		WithArgs(calendarID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Create(context.Background(), calendarID, uuid.New(), EventInput{Title: "Flight", StartDate: "2025-06-10"})

	assert.ErrorIs(t, err, ErrCalendarNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_ListInRange(t *testing.T) {
	svc, mock := setupEventService(t)
	calendarID, userID := uuid.New(), uuid.New()
	from, to := planner.MonthRange(2025, time.June)
	start := time.Date(2025, time.May, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	email := "ana@example.com"

	columns := append(append([]string{}, eventRowColumns...), "email", "full_name")
	mock.ExpectQuery(`SELECT .+ FROM events e\s+LEFT JOIN profiles p`).
		WithArgs(calendarID, to.Time(), from.Time()).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(uuid.New(), calendarID, "Road trip", nil, start, end, "08:00", 60, true, "#3B82F6", userID, now, now, &email, nil))

	events, err := svc.ListInRange(context.Background(), calendarID, from, to)

	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Creator)
	assert.Equal(t, "ana@example.com", events[0].Creator.DisplayName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Update_NotFound(t *testing.T) {
	svc, mock := setupEventService(t)
	eventID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM events e WHERE e.id = \$1`).
		WithArgs(eventID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Update(context.Background(), eventID, EventInput{Title: "x", StartDate: "2025-06-10"})

	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventService_Delete(t *testing.T) {
	svc, mock := setupEventService(t)
	eventID := uuid.New()

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
		WithArgs(eventID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, svc.Delete(context.Background(), eventID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventPermissions(t *testing.T) {
	creator, other := uuid.New(), uuid.New()
	e := &models.Event{CreatedBy: creator}

	assert.True(t, CanEditEvent(models.RoleOwner, other, e))
	assert.True(t, CanEditEvent(models.RoleEditor, creator, e))
	assert.False(t, CanEditEvent(models.RoleEditor, other, e))
	assert.False(t, CanEditEvent(models.RoleViewer, creator, e))

	assert.True(t, CanDeleteEvent(models.RoleOwner, other, e))
	assert.True(t, CanDeleteEvent(models.RoleViewer, creator, e))
	assert.False(t, CanDeleteEvent(models.RoleEditor, other, e))
	assert.False(t, CanDeleteEvent("", creator, e))
}
