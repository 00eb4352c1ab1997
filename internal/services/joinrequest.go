package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
)

var ErrJoinRequestNotFound = errors.New("join request not found")

const joinRequestColumns = `id, calendar_id, user_id, status, role, decided_by, decided_at, created_at`

// CalendarSummary is the public view of a calendar shown on a join link.
type CalendarSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	MemberCount int       `json:"member_count"`
}

// JoinService handles request-to-join through a calendar's generic link.
type JoinService struct {
	db *database.DB
}

func NewJoinService(db *database.DB) *JoinService {
	return &JoinService{db: db}
}

func scanJoinRequest(row pgx.Row, r *models.JoinRequest) error {
	return row.Scan(&r.ID, &r.CalendarID, &r.UserID, &r.Status, &r.Role, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt)
}

func (s *JoinService) Summary(ctx context.Context, calendarID uuid.UUID) (*CalendarSummary, error) {
	var summary CalendarSummary
	err := s.db.Pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.color, `+memberCountSQL+`
		FROM calendars c WHERE c.id = $1
	`, calendarID).Scan(&summary.ID, &summary.Name, &summary.Color, &summary.MemberCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Request records a pending request. Asking twice returns the open request.
func (s *JoinService) Request(ctx context.Context, calendarID, userID uuid.UUID) (*models.JoinRequest, error) {
	if _, err := s.Summary(ctx, calendarID); err != nil {
		return nil, err
	}

	_, err := memberOf(ctx, s.db.Pool, calendarID, userID)
	if err == nil {
		return nil, ErrAlreadyMember
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var req models.JoinRequest
	err = scanJoinRequest(s.db.Pool.QueryRow(ctx, `
		INSERT INTO join_requests (calendar_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (calendar_id, user_id) WHERE status = 'pending' DO NOTHING
		RETURNING `+joinRequestColumns+`
	`, calendarID, userID), &req)
	if errors.Is(err, pgx.ErrNoRows) {
		err = scanJoinRequest(s.db.Pool.QueryRow(ctx, `
			SELECT `+joinRequestColumns+`
			FROM join_requests
			WHERE calendar_id = $1 AND user_id = $2 AND status = $3
		`, calendarID, userID, models.JoinStatusPending), &req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record join request: %w", err)
	}
	return &req, nil
}

func (s *JoinService) ListPending(ctx context.Context, calendarID uuid.UUID) ([]models.JoinRequest, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT jr.id, jr.calendar_id, jr.user_id, jr.status, jr.role, jr.decided_by, jr.decided_at, jr.created_at,
		       p.id, p.email, p.full_name, p.avatar_url
		FROM join_requests jr
		JOIN profiles p ON p.id = jr.user_id
		WHERE jr.calendar_id = $1 AND jr.status = $2
		ORDER BY jr.created_at
	`, calendarID, models.JoinStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.JoinRequest{}
	for rows.Next() {
		var req models.JoinRequest
		var profile models.Profile
		if err := rows.Scan(
			&req.ID, &req.CalendarID, &req.UserID, &req.Status, &req.Role, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt,
			&profile.ID, &profile.Email, &profile.FullName, &profile.AvatarURL,
		); err != nil {
			return nil, err
		}
		req.Profile = &profile
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Approve grants membership with role (viewer when empty) and closes the request.
func (s *JoinService) Approve(ctx context.Context, calendarID, requestID, deciderID uuid.UUID, role string) (*models.CalendarMember, error) {
	if role == "" {
		role = models.RoleViewer
	}
	if role != models.RoleEditor && role != models.RoleViewer {
		return nil, ErrInvalidRole
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE join_requests SET status = $1, role = $2, decided_by = $3, decided_at = NOW()
		WHERE id = $4 AND calendar_id = $5 AND status = $6
		RETURNING user_id
	`, models.JoinStatusApproved, role, deciderID, requestID, calendarID, models.JoinStatusPending).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJoinRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve join request: %w", err)
	}

	member, err := insertMember(ctx, tx, calendarID, userID, role)
	if errors.Is(err, ErrAlreadyMember) {
		member, err = memberOf(ctx, tx, calendarID, userID)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return member, nil
}

func (s *JoinService) Decline(ctx context.Context, calendarID, requestID, deciderID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE join_requests SET status = $1, decided_by = $2, decided_at = NOW()
		WHERE id = $3 AND calendar_id = $4 AND status = $5
	`, models.JoinStatusDeclined, deciderID, requestID, calendarID, models.JoinStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrJoinRequestNotFound
	}
	return nil
}
