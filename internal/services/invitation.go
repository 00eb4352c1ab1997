package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tripstitch/tripstitch-api/internal/database"
	"github.com/tripstitch/tripstitch-api/internal/invite"
	"github.com/tripstitch/tripstitch-api/internal/models"
)

var (
	ErrInviteNotFound        = errors.New("invitation not found")
	ErrInviteExpired         = errors.New("invitation has expired")
	ErrInviteRejected        = errors.New("invitation was rejected")
	ErrInviteAlreadyAccepted = errors.New("invitation was already accepted")
	ErrInviteAlreadyExists   = errors.New("an active invitation already exists for this email")
)

// ConflictError carries the active invitation that blocked a new one.
type ConflictError struct {
	Existing *models.Invitation
}

func (e *ConflictError) Error() string { return ErrInviteAlreadyExists.Error() }

func (e *ConflictError) Unwrap() error { return ErrInviteAlreadyExists }

// Resolution is what a token holder can do with a token.
type Resolution struct {
	State      invite.State
	Invitation *models.Invitation
}

// InviteOutcome holds exactly one of a pending invitation or, for an
// email that already has a profile, the membership created directly.
type InviteOutcome struct {
	Invitation *models.Invitation
	Member     *models.CalendarMember
}

const invitationColumns = `i.id, i.calendar_id, i.email, i.role, i.invited_by, i.token, i.expires_at,
		i.accepted_at, i.rejected_at, i.created_at`

const activeInvitation = `i.accepted_at IS NULL AND i.rejected_at IS NULL`

type InvitationService struct {
	db  *database.DB
	ttl time.Duration
	now func() time.Time
}

func NewInvitationService(db *database.DB, ttl time.Duration) *InvitationService {
	return &InvitationService{db: db, ttl: ttl, now: time.Now}
}

func invitationDest(inv *models.Invitation) []any {
	return []any{
		&inv.ID, &inv.CalendarID, &inv.Email, &inv.Role, &inv.InvitedBy, &inv.Token, &inv.ExpiresAt,
		&inv.AcceptedAt, &inv.RejectedAt, &inv.CreatedAt,
	}
}

// stateError maps a non-pending resolution state onto its error.
func stateError(state invite.State) error {
	switch state {
	case invite.StateInvalid:
		return ErrInviteNotFound
	case invite.StateExpired:
		return ErrInviteExpired
	case invite.StateRejected:
		return ErrInviteRejected
	case invite.StateAlreadyAccepted:
		return ErrInviteAlreadyAccepted
	}
	return nil
}

// ResolveToken looks a token up for display. An unknown token resolves to
// StateInvalid rather than an error.
func (s *InvitationService) ResolveToken(ctx context.Context, token string) (*Resolution, error) {
	var inv models.Invitation
	var cal models.Calendar
	var inviter models.Profile

	dest := append(invitationDest(&inv),
		&cal.ID, &cal.Name, &cal.Description, &cal.Color,
		&inviter.ID, &inviter.Email, &inviter.FullName, &inviter.AvatarURL,
	)
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns+`,
		       c.id, c.name, c.description, c.color,
		       p.id, p.email, p.full_name, p.avatar_url
		FROM calendar_invitations i
		JOIN calendars c ON c.id = i.calendar_id
		JOIN profiles p ON p.id = i.invited_by
		WHERE i.token = $1
	`, token).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Resolution{State: invite.Resolve(nil, s.now())}, nil
	}
	if err != nil {
		return nil, err
	}

	inv.Calendar = &cal
	inv.Inviter = &inviter
	return &Resolution{State: invite.Resolve(&inv, s.now()), Invitation: &inv}, nil
}

// Create invites email to the calendar. A known email becomes a member
// immediately and no token is issued.
func (s *InvitationService) Create(ctx context.Context, calendarID uuid.UUID, email, role string, invitedBy uuid.UUID) (*InviteOutcome, error) {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, invalid("email", err.Error())
	}
	if !invite.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	var profileID uuid.UUID
	err = s.db.Pool.QueryRow(ctx, `SELECT id FROM profiles WHERE email = $1`, email).Scan(&profileID)
	switch {
	case err == nil:
		member, err := insertMember(ctx, s.db.Pool, calendarID, profileID, role)
		if err != nil {
			return nil, err
		}
		return &InviteOutcome{Member: member}, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("failed to look up invitee: %w", err)
	}

	now := s.now()

	// An expired invitation that was never answered must not block a new one.
	_, err = s.db.Pool.Exec(ctx, `
		DELETE FROM calendar_invitations i
		WHERE i.calendar_id = $1 AND i.email = $2 AND `+activeInvitation+` AND i.expires_at <= $3
	`, calendarID, email, now)
	if err != nil {
		return nil, fmt.Errorf("failed to purge stale invitations: %w", err)
	}

	token, err := invite.NewToken()
	if err != nil {
		return nil, err
	}

	var inv models.Invitation
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO calendar_invitations (calendar_id, email, role, invited_by, token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, calendar_id, email, role, invited_by, token, expires_at, accepted_at, rejected_at, created_at
	`, calendarID, email, role, invitedBy, token, invite.ExpiryFrom(now, s.ttl)).Scan(invitationDest(&inv)...)
	if database.IsUniqueViolation(err) {
		existing, lookupErr := s.active(ctx, calendarID, email)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to create invitation: %w", err)
		}
		return nil, &ConflictError{Existing: existing}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return &InviteOutcome{Invitation: &inv}, nil
}

func (s *InvitationService) active(ctx context.Context, calendarID uuid.UUID, email string) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM calendar_invitations i
		WHERE i.calendar_id = $1 AND i.email = $2 AND `+activeInvitation+`
	`, calendarID, email).Scan(invitationDest(&inv)...)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Accept turns a pending invitation into a membership for userID. Accepting
// again as an existing member returns that membership unchanged.
func (s *InvitationService) Accept(ctx context.Context, token string, userID uuid.UUID) (*models.CalendarMember, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inv models.Invitation
	err = tx.QueryRow(ctx, `
		SELECT `+invitationColumns+`
		FROM calendar_invitations i
		WHERE i.token = $1
		FOR UPDATE
	`, token).Scan(invitationDest(&inv)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch state := invite.Resolve(&inv, now); state {
	case invite.StatePending:
	case invite.StateAlreadyAccepted:
		member, err := memberOf(ctx, tx, inv.CalendarID, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInviteAlreadyAccepted
		}
		if err != nil {
			return nil, err
		}
		return member, nil
	default:
		return nil, stateError(state)
	}

	member, err := insertMember(ctx, tx, inv.CalendarID, userID, inv.Role)
	if errors.Is(err, ErrAlreadyMember) {
		member, err = memberOf(ctx, tx, inv.CalendarID, userID)
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE calendar_invitations SET accepted_at = $1 WHERE id = $2
	`, now, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invitation accepted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return member, nil
}

// Reject declines a pending invitation. Membership is not touched.
func (s *InvitationService) Reject(ctx context.Context, token string) error {
	now := s.now()
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE calendar_invitations i SET rejected_at = $1
		WHERE i.token = $2 AND `+activeInvitation+` AND i.expires_at > $1
	`, now, token)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	res, err := s.ResolveToken(ctx, token)
	if err != nil {
		return err
	}
	if err := stateError(res.State); err != nil {
		return err
	}
	return ErrInviteNotFound
}

func (s *InvitationService) scanWithProfile(rows pgx.Rows, withCalendar bool) ([]models.Invitation, error) {
	defer rows.Close()

	invitations := []models.Invitation{}
	for rows.Next() {
		var inv models.Invitation
		var cal models.Calendar
		var inviter models.Profile
		dest := append(invitationDest(&inv), &inviter.ID, &inviter.Email, &inviter.FullName)
		if withCalendar {
			dest = append(dest, &cal.ID, &cal.Name, &cal.Color)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		inv.Inviter = &inviter
		if withCalendar {
			inv.Calendar = &cal
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// ListForCalendar returns the unanswered, unexpired invitations of a calendar.
func (s *InvitationService) ListForCalendar(ctx context.Context, calendarID uuid.UUID) ([]models.Invitation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+invitationColumns+`, p.id, p.email, p.full_name
		FROM calendar_invitations i
		JOIN profiles p ON p.id = i.invited_by
		WHERE i.calendar_id = $1 AND `+activeInvitation+` AND i.expires_at > $2
		ORDER BY i.created_at DESC
	`, calendarID, s.now())
	if err != nil {
		return nil, err
	}
	return s.scanWithProfile(rows, false)
}

// ListForEmail returns the pending invitations addressed to email.
func (s *InvitationService) ListForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	email, err := models.NormalizeEmail(email)
	if err != nil {
		return nil, invalid("email", err.Error())
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+invitationColumns+`, p.id, p.email, p.full_name, c.id, c.name, c.color
		FROM calendar_invitations i
		JOIN profiles p ON p.id = i.invited_by
		JOIN calendars c ON c.id = i.calendar_id
		WHERE i.email = $1 AND `+activeInvitation+` AND i.expires_at > $2
		ORDER BY i.created_at DESC
	`, email, s.now())
	if err != nil {
		return nil, err
	}
	return s.scanWithProfile(rows, true)
}

// Cancel withdraws an unanswered invitation.
func (s *InvitationService) Cancel(ctx context.Context, invitationID, calendarID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM calendar_invitations i
		WHERE i.id = $1 AND i.calendar_id = $2 AND `+activeInvitation+`
	`, invitationID, calendarID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInviteNotFound
	}
	return nil
}

// PurgeExpired deletes invitations that expired without an answer more than
// retention ago. Younger expired rows are kept so their tokens still resolve
// to EXPIRED rather than INVALID.
func (s *InvitationService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM calendar_invitations i
		WHERE `+activeInvitation+` AND i.expires_at <= $1
	`, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
