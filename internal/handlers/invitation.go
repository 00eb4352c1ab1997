package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/config"
	"github.com/tripstitch/tripstitch-api/internal/invite"
	"github.com/tripstitch/tripstitch-api/internal/middleware"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/internal/sse"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

type InvitationHandler struct {
	cfg               *config.Config
	invitationService InvitationServiceInterface
	calendarService   CalendarServiceInterface
	profileService    ProfileServiceInterface
	emailService      EmailServiceInterface
	hub               HubInterface
	async             func(func())
}

func NewInvitationHandler(
	cfg *config.Config,
	invitationService InvitationServiceInterface,
	calendarService CalendarServiceInterface,
	profileService ProfileServiceInterface,
	emailService EmailServiceInterface,
	hub HubInterface,
) *InvitationHandler {
	return &InvitationHandler{
		cfg:               cfg,
		invitationService: invitationService,
		calendarService:   calendarService,
		profileService:    profileService,
		emailService:      emailService,
		hub:               hub,
		async:             func(f func()) { go f() },
	}
}

func (h *InvitationHandler) Create(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	role, ok := calendarRole(c, h.calendarService, calendarID, userID)
	if !ok {
		return
	}
	if !models.CanWrite(role) {
		c.Forbidden("viewers cannot invite members")
		return
	}

	var req dto.CreateInvitationRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	outcome, err := h.invitationService.Create(context.Background(), calendarID, req.Email, req.Role, userID)
	if err != nil {
		var conflict *services.ConflictError
		if errors.As(err, &conflict) {
			resp := dto.InvitationConflictResponse{
				Code:    dto.CodeInvitationExists,
				Message: err.Error(),
			}
			if conflict.Existing != nil {
				resp.Token = conflict.Existing.Token
				resp.Link = h.cfg.InviteLink(conflict.Existing.Token)
			}
			_ = c.JSON(409, resp)
			return
		}
		respondError(c, err, "failed to create invitation")
		return
	}

	if outcome.Member != nil {
		member := toMemberResponse(outcome.Member)
		recipient, _ := models.NormalizeEmail(req.Email)
		h.notify(calendarID, userID, func(calendarName, inviterName string) error {
			return h.emailService.SendAddedToCalendar(recipient, calendarName, inviterName, h.cfg.CalendarLink(calendarID.String()))
		})
		h.hub.BroadcastCalendarChange(calendarID, sse.ChangeMemberJoined, outcome.Member.ID, userID)

		_ = c.JSON(200, dto.InviteResultResponse{Kind: dto.InviteKindMember, Member: &member})
		return
	}

	inv := outcome.Invitation
	link := h.cfg.InviteLink(inv.Token)
	h.notify(calendarID, userID, func(calendarName, inviterName string) error {
		return h.emailService.SendCalendarInvite(inv.Email, calendarName, inviterName, link)
	})

	_ = c.JSON(201, dto.InviteResultResponse{
		Kind:       dto.InviteKindInvitation,
		Invitation: toInvitationResponse(inv, link),
	})
}

// notify sends an email off the request path; failures are only logged.
func (h *InvitationHandler) notify(calendarID, inviterID uuid.UUID, send func(calendarName, inviterName string) error) {
	h.async(func() {
		ctx := context.Background()

		cal, err := h.calendarService.GetByID(ctx, calendarID)
		if err != nil {
			slog.Warn("invitation email skipped", "calendar_id", calendarID, "error", err)
			return
		}

		inviterName := "Someone"
		if inviter, err := h.profileService.GetByID(ctx, inviterID); err == nil {
			inviterName = inviter.DisplayName()
		}

		if err := send(cal.Name, inviterName); err != nil {
			slog.Warn("failed to send invitation email", "calendar_id", calendarID, "error", err)
		}
	})
}

func (h *InvitationHandler) ListForCalendar(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	role, ok := calendarRole(c, h.calendarService, calendarID, userID)
	if !ok {
		return
	}
	if !models.CanWrite(role) {
		c.Forbidden("viewers cannot manage invitations")
		return
	}

	invitations, err := h.invitationService.ListForCalendar(context.Background(), calendarID)
	if err != nil {
		respondError(c, err, "failed to list invitations")
		return
	}

	_ = c.JSON(200, h.withLinks(invitations))
}

func (h *InvitationHandler) Cancel(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	invitationID, ok := paramID(c, "invitationId", "invitation")
	if !ok {
		return
	}

	role, ok := calendarRole(c, h.calendarService, calendarID, userID)
	if !ok {
		return
	}
	if !models.CanWrite(role) {
		c.Forbidden("viewers cannot manage invitations")
		return
	}

	if err := h.invitationService.Cancel(context.Background(), invitationID, calendarID); err != nil {
		respondError(c, err, "failed to cancel invitation")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation cancelled"})
}

// Mine lists the open invitations addressed to the caller's email.
func (h *InvitationHandler) Mine(c *drift.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	invitations, err := h.invitationService.ListForEmail(context.Background(), middleware.GetUserEmail(c))
	if err != nil {
		respondError(c, err, "failed to list invitations")
		return
	}

	_ = c.JSON(200, h.withLinks(invitations))
}

func (h *InvitationHandler) withLinks(invitations []models.Invitation) []dto.InvitationResponse {
	response := make([]dto.InvitationResponse, len(invitations))
	for i := range invitations {
		response[i] = *toInvitationResponse(&invitations[i], h.cfg.InviteLink(invitations[i].Token))
	}
	return response
}

func resolveStatus(state invite.State) int {
	switch state {
	case invite.StateInvalid:
		return 404
	case invite.StateExpired, invite.StateRejected:
		return 410
	}
	return 200
}

// Resolve is public: anyone holding the token may see what it offers.
func (h *InvitationHandler) Resolve(c *drift.Context) {
	token := c.Param("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	res, err := h.invitationService.ResolveToken(context.Background(), token)
	if err != nil {
		respondError(c, err, "failed to resolve invitation")
		return
	}

	resp := dto.ResolveInvitationResponse{State: string(res.State)}
	if res.Invitation != nil {
		resp.Invitation = toInvitationResponse(res.Invitation, "")
	}

	_ = c.JSON(resolveStatus(res.State), resp)
}

func (h *InvitationHandler) Accept(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	token := c.Param("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	member, err := h.invitationService.Accept(context.Background(), token, userID)
	if err != nil {
		respondError(c, err, "failed to accept invitation")
		return
	}

	h.hub.BroadcastCalendarChange(member.CalendarID, sse.ChangeMemberJoined, member.ID, userID)

	_ = c.JSON(200, toMemberResponse(member))
}

func (h *InvitationHandler) Reject(c *drift.Context) {
	token := c.Param("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	if err := h.invitationService.Reject(context.Background(), token); err != nil {
		respondError(c, err, "failed to reject invitation")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation rejected"})
}
