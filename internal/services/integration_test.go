package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripstitch/tripstitch-api/internal/invite"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/planner"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/internal/testutil"
)

func TestInvitationFlow_Integration_UnknownEmailAcceptsToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	calendars := services.NewCalendarService(tdb.DB)
	invitations := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	accounts := services.NewAccountService(tdb.DB)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	cal, err := calendars.Create(ctx, "Trip A", nil, "", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCalendarColor, cal.Color)

	outcome, err := invitations.Create(ctx, cal.ID, "Newcomer@Example.com", models.RoleEditor, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, outcome.Invitation)
	assert.Nil(t, outcome.Member)
	assert.Equal(t, "newcomer@example.com", outcome.Invitation.Email)
	token := outcome.Invitation.Token

	res, err := invitations.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, invite.StatePending, res.State)
	require.NotNil(t, res.Invitation.Calendar)
	assert.Equal(t, "Trip A", res.Invitation.Calendar.Name)

	// A second invite to the same address hands back the open token.
	_, err = invitations.Create(ctx, cal.ID, "newcomer@example.com", models.RoleViewer, owner.ID)
	var conflict *services.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, token, conflict.Existing.Token)

	newcomer, err := accounts.SignUp(ctx, "newcomer@example.com", "correct-horse", "New Comer")
	require.NoError(t, err)

	mine, err := invitations.ListForEmail(ctx, newcomer.Email)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	member, err := invitations.Accept(ctx, token, newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, member.Role)

	again, err := invitations.Accept(ctx, token, newcomer.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, again.ID)

	res, err = invitations.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, invite.StateAlreadyAccepted, res.State)

	members, err := calendars.GetMembers(ctx, cal.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	list, err := calendars.ListForUser(ctx, newcomer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].MemberCount)
	assert.Equal(t, models.RoleEditor, list[0].UserRole)
}

func TestInvitationFlow_Integration_KnownEmailJoinsDirectly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	calendars := services.NewCalendarService(tdb.DB)
	invitations := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	friend := fixtures.CreateProfile(t, testutil.WithEmail("friend@example.com"))
	cal := fixtures.CreateCalendar(t, owner, "Trip B")

	outcome, err := invitations.Create(ctx, cal.ID, "FRIEND@example.com", models.RoleViewer, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, outcome.Member)
	assert.Nil(t, outcome.Invitation)
	assert.Equal(t, friend.ID, outcome.Member.UserID)

	role, err := calendars.RoleOf(ctx, cal.ID, friend.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, role)

	_, err = invitations.Create(ctx, cal.ID, "friend@example.com", models.RoleEditor, owner.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyMember)

	pending, err := invitations.ListForCalendar(ctx, cal.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInvitationFlow_Integration_RejectIsFinal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	calendars := services.NewCalendarService(tdb.DB)
	invitations := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	cal := fixtures.CreateCalendar(t, owner, "Trip C")

	outcome, err := invitations.Create(ctx, cal.ID, "stranger@example.com", models.RoleViewer, owner.ID)
	require.NoError(t, err)
	token := outcome.Invitation.Token

	require.NoError(t, invitations.Reject(ctx, token))

	res, err := invitations.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, invite.StateRejected, res.State)

	stranger := fixtures.CreateProfile(t, testutil.WithEmail("stranger@example.com"))
	_, err = invitations.Accept(ctx, token, stranger.ID)
	assert.ErrorIs(t, err, services.ErrInviteRejected)

	_, err = calendars.RoleOf(ctx, cal.ID, stranger.ID)
	assert.ErrorIs(t, err, services.ErrNotMember)

	// The rejected row no longer counts as active, so a fresh invite is allowed.
	again, err := invitations.Create(ctx, cal.ID, "someone-else@example.com", models.RoleViewer, owner.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, again.Invitation.Token)

	res, err = invitations.ResolveToken(ctx, "no-such-token")
	require.NoError(t, err)
	assert.Equal(t, invite.StateInvalid, res.State)
}

func TestInvitationFlow_Integration_ExpiredSurvivesCleanup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	cal := fixtures.CreateCalendar(t, owner, "Trip F")

	recent, err := invitations.Create(ctx, cal.ID, "late@example.com", models.RoleViewer, owner.ID)
	require.NoError(t, err)
	stale, err := invitations.Create(ctx, cal.ID, "long-gone@example.com", models.RoleViewer, owner.ID)
	require.NoError(t, err)

	_, err = tdb.DB.Pool.Exec(ctx, `UPDATE calendar_invitations SET expires_at = NOW() - INTERVAL '3 hours' WHERE id = $1`,
		recent.Invitation.ID)
	require.NoError(t, err)
	_, err = tdb.DB.Pool.Exec(ctx, `UPDATE calendar_invitations SET expires_at = NOW() - INTERVAL '31 days' WHERE id = $1`,
		stale.Invitation.ID)
	require.NoError(t, err)

	n, err := invitations.PurgeExpired(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err := invitations.ResolveToken(ctx, recent.Invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, invite.StateExpired, res.State)

	res, err = invitations.ResolveToken(ctx, stale.Invitation.Token)
	require.NoError(t, err)
	assert.Equal(t, invite.StateInvalid, res.State)
}

func TestInvitationFlow_Integration_ConcurrentCreateConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	invitations := services.NewInvitationService(tdb.DB, 7*24*time.Hour)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	cal := fixtures.CreateCalendar(t, owner, "Trip G")

	type result struct {
		outcome *services.InviteOutcome
		err     error
	}
	results := make([]result, 2)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			outcome, err := invitations.Create(ctx, cal.ID, "race@example.com", models.RoleEditor, owner.ID)
			results[i] = result{outcome: outcome, err: err}
		}(i)
	}
	close(start)
	wg.Wait()

	var winner *services.InviteOutcome
	var conflicts []*services.ConflictError
	for _, r := range results {
		var conflict *services.ConflictError
		switch {
		case r.err == nil:
			require.Nil(t, winner, "only one invitation may be issued")
			winner = r.outcome
		case errors.As(r.err, &conflict):
			conflicts = append(conflicts, conflict)
		default:
			t.Fatalf("unexpected error: %v", r.err)
		}
	}

	require.NotNil(t, winner)
	require.NotNil(t, winner.Invitation)
	require.Len(t, conflicts, 1)
	assert.Equal(t, winner.Invitation.Token, conflicts[0].Existing.Token)

	pending, err := invitations.ListForCalendar(ctx, cal.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestMembership_Integration_RevokeAndOwnerProtection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	calendars := services.NewCalendarService(tdb.DB)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	editor := fixtures.CreateProfile(t)
	cal := fixtures.CreateCalendar(t, owner, "Trip D")
	fixtures.AddMember(t, cal, editor, models.RoleEditor)

	members, err := calendars.GetMembers(ctx, cal.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	var ownerMember, editorMember models.CalendarMember
	for _, m := range members {
		if m.UserID == owner.ID {
			ownerMember = m
		} else {
			editorMember = m
		}
	}

	err = calendars.RemoveMember(ctx, cal.ID, editor.ID, ownerMember.ID)
	assert.Error(t, err)

	err = calendars.RemoveMember(ctx, cal.ID, owner.ID, ownerMember.ID)
	assert.ErrorIs(t, err, services.ErrCannotRemoveOwner)

	require.NoError(t, calendars.RemoveMember(ctx, cal.ID, owner.ID, editorMember.ID))

	_, err = calendars.RoleOf(ctx, cal.ID, editor.ID)
	assert.ErrorIs(t, err, services.ErrNotMember)
}

func TestEvents_Integration_MonthPlacement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	events := services.NewEventService(tdb.DB)
	ctx := context.Background()

	owner := fixtures.CreateProfile(t)
	cal := fixtures.CreateCalendar(t, owner, "Trip E")

	_, err := events.Create(ctx, cal.ID, owner.ID, services.EventInput{
		Title:      "Road trip",
		StartDate:  "2025-01-30",
		EndDate:    "2025-02-02",
		IsMultiDay: true,
	})
	require.NoError(t, err)

	_, err = events.Create(ctx, cal.ID, owner.ID, services.EventInput{
		Title:     "Dinner",
		StartDate: "2025-02-01",
		Time:      "19:30",
	})
	require.NoError(t, err)

	from, to := planner.MonthRange(2025, time.February)
	inFebruary, err := events.ListInRange(ctx, cal.ID, from, to)
	require.NoError(t, err)
	require.Len(t, inFebruary, 2)

	month := planner.BuildMonth(2025, time.February, inFebruary)
	// February 1st 2025 is a Saturday.
	first := month.Cells[6]
	require.Equal(t, 1, first.Day)
	require.Len(t, first.Placements, 2)
	assert.Equal(t, planner.SegmentMiddle, first.Placements[0].Segment.Kind())
	assert.Equal(t, planner.SegmentSingle, first.Placements[1].Segment.Kind())
	assert.Equal(t, models.DefaultEventDuration, first.Placements[1].Event.Duration)

	second := month.Cells[7]
	require.Len(t, second.Placements, 1)
	assert.Equal(t, planner.SegmentEnd, second.Placements[0].Segment.Kind())
}
