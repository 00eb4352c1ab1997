package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/sse"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

// JoinHandler serves the generic request-to-join link of a calendar.
type JoinHandler struct {
	joinService     JoinServiceInterface
	calendarService CalendarServiceInterface
	hub             HubInterface
}

func NewJoinHandler(joinService JoinServiceInterface, calendarService CalendarServiceInterface, hub HubInterface) *JoinHandler {
	return &JoinHandler{
		joinService:     joinService,
		calendarService: calendarService,
		hub:             hub,
	}
}

func (h *JoinHandler) Summary(c *drift.Context) {
	calendarID, ok := paramID(c, "calendarId", "calendar")
	if !ok {
		return
	}

	summary, err := h.joinService.Summary(context.Background(), calendarID)
	if err != nil {
		respondError(c, err, "failed to load calendar")
		return
	}

	_ = c.JSON(200, summary)
}

func (h *JoinHandler) Request(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "calendarId", "calendar")
	if !ok {
		return
	}

	req, err := h.joinService.Request(context.Background(), calendarID, userID)
	if err != nil {
		respondError(c, err, "failed to request to join")
		return
	}

	_ = c.JSON(202, toJoinRequestResponse(req))
}

// managerRole admits owners and editors, who decide join requests.
func (h *JoinHandler) managerRole(c *drift.Context) (calendarID, userID uuid.UUID, ok bool) {
	userID, ok = currentUser(c)
	if !ok {
		return
	}

	calendarID, ok = paramID(c, "id", "calendar")
	if !ok {
		return
	}

	role, ok := calendarRole(c, h.calendarService, calendarID, userID)
	if !ok {
		return
	}
	if !models.CanWrite(role) {
		c.Forbidden("viewers cannot manage join requests")
		return calendarID, userID, false
	}
	return calendarID, userID, true
}

func (h *JoinHandler) ListPending(c *drift.Context) {
	calendarID, _, ok := h.managerRole(c)
	if !ok {
		return
	}

	requests, err := h.joinService.ListPending(context.Background(), calendarID)
	if err != nil {
		respondError(c, err, "failed to list join requests")
		return
	}

	response := make([]dto.JoinRequestResponse, len(requests))
	for i := range requests {
		response[i] = toJoinRequestResponse(&requests[i])
	}

	_ = c.JSON(200, response)
}

func (h *JoinHandler) Approve(c *drift.Context) {
	calendarID, userID, ok := h.managerRole(c)
	if !ok {
		return
	}

	requestID, ok := paramID(c, "requestId", "join request")
	if !ok {
		return
	}

	var req dto.ApproveJoinRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	member, err := h.joinService.Approve(context.Background(), calendarID, requestID, userID, req.Role)
	if err != nil {
		respondError(c, err, "failed to approve join request")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeMemberJoined, member.ID, userID)

	_ = c.JSON(200, toMemberResponse(member))
}

func (h *JoinHandler) Decline(c *drift.Context) {
	calendarID, userID, ok := h.managerRole(c)
	if !ok {
		return
	}

	requestID, ok := paramID(c, "requestId", "join request")
	if !ok {
		return
	}

	if err := h.joinService.Decline(context.Background(), calendarID, requestID, userID); err != nil {
		respondError(c, err, "failed to decline join request")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "join request declined"})
}
