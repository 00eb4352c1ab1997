package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/models"
)

var (
	ErrCalendarNotFound  = errors.New("calendar not found")
	ErrNotMember         = errors.New("not a member of this calendar")
	ErrMemberNotFound    = errors.New("member not found")
	ErrCannotRemoveOwner = errors.New("cannot remove the calendar owner")
	ErrAlreadyMember     = errors.New("user is already a member of this calendar")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const calendarColumns = `c.id, c.name, c.description, c.color, c.created_by, c.created_at, c.updated_at`

const memberCountSQL = `(SELECT COUNT(*) FROM calendar_members m WHERE m.calendar_id = c.id)`

type CalendarService struct {
	db *database.DB
}

func NewCalendarService(db *database.DB) *CalendarService {
	return &CalendarService{db: db}
}

func validateCalendar(name string, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", invalid("name", "is required")
	}
	if len(name) > 255 {
		return "", "", invalid("name", "must be at most 255 characters")
	}
	if color == "" {
		color = models.DefaultCalendarColor
	}
	if !colorPattern.MatchString(color) {
		return "", "", invalid("color", "must be a hex color like #3B82F6")
	}
	return name, color, nil
}

// Create inserts the calendar and its owner membership atomically.
func (s *CalendarService) Create(ctx context.Context, name string, description *string, color string, ownerID uuid.UUID) (*models.Calendar, error) {
	name, color, err := validateCalendar(name, color)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cal models.Calendar
	err = tx.QueryRow(ctx, `
		INSERT INTO calendars (name, description, color, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, color, created_by, created_at, updated_at
	`, name, description, color, ownerID).Scan(
		&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.CreatedBy, &cal.CreatedAt, &cal.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO calendar_members (calendar_id, user_id, role)
		VALUES ($1, $2, $3)
	`, cal.ID, ownerID, models.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	cal.MemberCount = 1
	cal.UserRole = models.RoleOwner
	return &cal, nil
}

// ListForUser returns every calendar the user belongs to with their role.
func (s *CalendarService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Calendar, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+calendarColumns+`, cm.role, `+memberCountSQL+`
		FROM calendars c
		JOIN calendar_members cm ON cm.calendar_id = c.id
		WHERE cm.user_id = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calendars := []models.Calendar{}
	for rows.Next() {
		var cal models.Calendar
		if err := rows.Scan(
			&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.CreatedBy, &cal.CreatedAt, &cal.UpdatedAt,
			&cal.UserRole, &cal.MemberCount,
		); err != nil {
			return nil, err
		}
		calendars = append(calendars, cal)
	}
	return calendars, rows.Err()
}

func (s *CalendarService) GetByID(ctx context.Context, calendarID uuid.UUID) (*models.Calendar, error) {
	var cal models.Calendar
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+calendarColumns+`, `+memberCountSQL+`
		FROM calendars c WHERE c.id = $1
	`, calendarID).Scan(
		&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.CreatedBy, &cal.CreatedAt, &cal.UpdatedAt,
		&cal.MemberCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

// Update changes only the non-nil fields.
func (s *CalendarService) Update(ctx context.Context, calendarID uuid.UUID, name, description, color *string) (*models.Calendar, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, invalid("name", "is required")
		}
		name = &trimmed
	}
	if color != nil && !colorPattern.MatchString(*color) {
		return nil, invalid("color", "must be a hex color like #3B82F6")
	}

	var cal models.Calendar
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE calendars SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			color = COALESCE($3, color),
			updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, description, color, created_by, created_at, updated_at
	`, name, description, color, calendarID).Scan(
		&cal.ID, &cal.Name, &cal.Description, &cal.Color, &cal.CreatedBy, &cal.CreatedAt, &cal.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCalendarNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

func (s *CalendarService) Delete(ctx context.Context, calendarID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `DELETE FROM calendars WHERE id = $1`, calendarID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCalendarNotFound
	}
	return nil
}

// RoleOf returns the user's role, or ErrNotMember.
func (s *CalendarService) RoleOf(ctx context.Context, calendarID, userID uuid.UUID) (string, error) {
	var role string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM calendar_members WHERE calendar_id = $1 AND user_id = $2
	`, calendarID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotMember
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

func (s *CalendarService) GetMembers(ctx context.Context, calendarID uuid.UUID) ([]models.CalendarMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT cm.id, cm.calendar_id, cm.user_id, cm.role, cm.joined_at,
		       p.id, p.email, p.full_name, p.avatar_url
		FROM calendar_members cm
		JOIN profiles p ON p.id = cm.user_id
		WHERE cm.calendar_id = $1
		ORDER BY cm.joined_at
	`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.CalendarMember{}
	for rows.Next() {
		var member models.CalendarMember
		var profile models.Profile
		if err := rows.Scan(
			&member.ID, &member.CalendarID, &member.UserID, &member.Role, &member.JoinedAt,
			&profile.ID, &profile.Email, &profile.FullName, &profile.AvatarURL,
		); err != nil {
			return nil, err
		}
		member.Profile = &profile
		members = append(members, member)
	}
	return members, rows.Err()
}

// AddMember inserts a membership, returning ErrAlreadyMember if one exists.
func (s *CalendarService) AddMember(ctx context.Context, calendarID, userID uuid.UUID, role string) (*models.CalendarMember, error) {
	return insertMember(ctx, s.db.Pool, calendarID, userID, role)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertMember(ctx context.Context, q queryRower, calendarID, userID uuid.UUID, role string) (*models.CalendarMember, error) {
	if !models.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	var member models.CalendarMember
	err := q.QueryRow(ctx, `
		INSERT INTO calendar_members (calendar_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (calendar_id, user_id) DO NOTHING
		RETURNING id, calendar_id, user_id, role, joined_at
	`, calendarID, userID, role).Scan(&member.ID, &member.CalendarID, &member.UserID, &member.Role, &member.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyMember
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return &member, nil
}

func memberOf(ctx context.Context, q queryRower, calendarID, userID uuid.UUID) (*models.CalendarMember, error) {
	var member models.CalendarMember
	err := q.QueryRow(ctx, `
		SELECT id, calendar_id, user_id, role, joined_at
		FROM calendar_members WHERE calendar_id = $1 AND user_id = $2
	`, calendarID, userID).Scan(&member.ID, &member.CalendarID, &member.UserID, &member.Role, &member.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *CalendarService) memberRole(ctx context.Context, calendarID, memberID uuid.UUID) (string, error) {
	var role string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT role FROM calendar_members WHERE id = $1 AND calendar_id = $2
	`, memberID, calendarID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrMemberNotFound
	}
	return role, err
}

func (s *CalendarService) requireOwner(ctx context.Context, calendarID, actorID uuid.UUID) error {
	role, err := s.RoleOf(ctx, calendarID, actorID)
	if errors.Is(err, ErrNotMember) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return ErrForbidden
	}
	return nil
}

// RemoveMember revokes a membership. Only an owner may do this and an
// owner membership can never be revoked.
func (s *CalendarService) RemoveMember(ctx context.Context, calendarID, actorID, memberID uuid.UUID) error {
	if err := s.requireOwner(ctx, calendarID, actorID); err != nil {
		return err
	}

	role, err := s.memberRole(ctx, calendarID, memberID)
	if err != nil {
		return err
	}
	if role == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM calendar_members WHERE id = $1 AND calendar_id = $2 AND role != $3
	`, memberID, calendarID, models.RoleOwner)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Leave removes the caller's own non-owner membership.
func (s *CalendarService) Leave(ctx context.Context, calendarID, userID uuid.UUID) error {
	role, err := s.RoleOf(ctx, calendarID, userID)
	if err != nil {
		return err
	}
	if role == models.RoleOwner {
		return ErrCannotRemoveOwner
	}

	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM calendar_members WHERE calendar_id = $1 AND user_id = $2 AND role != $3
	`, calendarID, userID, models.RoleOwner)
	return err
}

// UpdateMemberRole switches a member between editor and viewer.
func (s *CalendarService) UpdateMemberRole(ctx context.Context, calendarID, actorID, memberID uuid.UUID, role string) (*models.CalendarMember, error) {
	if role != models.RoleEditor && role != models.RoleViewer {
		return nil, ErrInvalidRole
	}
	if err := s.requireOwner(ctx, calendarID, actorID); err != nil {
		return nil, err
	}

	current, err := s.memberRole(ctx, calendarID, memberID)
	if err != nil {
		return nil, err
	}
	if current == models.RoleOwner {
		return nil, ErrCannotRemoveOwner
	}

	var member models.CalendarMember
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE calendar_members SET role = $1
		WHERE id = $2 AND calendar_id = $3
		RETURNING id, calendar_id, user_id, role, joined_at
	`, role, memberID, calendarID).Scan(&member.ID, &member.CalendarID, &member.UserID, &member.Role, &member.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// TransferOwnership makes userID the sole owner, demoting the previous owner to editor.
func (s *CalendarService) TransferOwnership(ctx context.Context, calendarID, userID uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE calendars SET created_by = $1, updated_at = NOW() WHERE id = $2
	`, userID, calendarID)
	if err != nil {
		return fmt.Errorf("failed to update calendar: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCalendarNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE calendar_members SET role = $1
		WHERE calendar_id = $2 AND role = $3 AND user_id != $4
	`, models.RoleEditor, calendarID, models.RoleOwner, userID)
	if err != nil {
		return fmt.Errorf("failed to demote previous owner: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO calendar_members (calendar_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (calendar_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, calendarID, userID, models.RoleOwner)
	if err != nil {
		return fmt.Errorf("failed to promote owner: %w", err)
	}

	return tx.Commit(ctx)
}
