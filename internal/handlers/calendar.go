package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/ics"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/planner"
	"github.com/tripstitch/tripstitch-api/internal/sse"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

type CalendarHandler struct {
	calendarService CalendarServiceInterface
	eventService    EventServiceInterface
	hub             HubInterface
	now             func() time.Time
}

func NewCalendarHandler(calendarService CalendarServiceInterface, eventService EventServiceInterface, hub HubInterface) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		eventService:    eventService,
		hub:             hub,
		now:             time.Now,
	}
}

func (h *CalendarHandler) Colors(c *drift.Context) {
	_ = c.JSON(200, dto.ColorsResponse{Colors: models.CalendarColors})
}

func (h *CalendarHandler) List(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendars, err := h.calendarService.ListForUser(context.Background(), userID)
	if err != nil {
		respondError(c, err, "failed to list calendars")
		return
	}

	response := make([]dto.CalendarResponse, len(calendars))
	for i := range calendars {
		response[i] = toCalendarResponse(&calendars[i], "")
	}

	_ = c.JSON(200, response)
}

func (h *CalendarHandler) Create(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CreateCalendarRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	cal, err := h.calendarService.Create(context.Background(), req.Name, req.Description, req.Color, userID)
	if err != nil {
		respondError(c, err, "failed to create calendar")
		return
	}

	cal.MemberCount = 1
	_ = c.JSON(201, toCalendarResponse(cal, models.RoleOwner))
}

func (h *CalendarHandler) Get(c *drift.Context) {
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

	cal, err := h.calendarService.GetByID(context.Background(), calendarID)
	if err != nil {
		respondError(c, err, "failed to load calendar")
		return
	}

	_ = c.JSON(200, toCalendarResponse(cal, role))
}

func (h *CalendarHandler) Update(c *drift.Context) {
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
	if role != models.RoleOwner {
		c.Forbidden("only the owner can update the calendar")
		return
	}

	var req dto.UpdateCalendarRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	cal, err := h.calendarService.Update(context.Background(), calendarID, req.Name, req.Description, req.Color)
	if err != nil {
		respondError(c, err, "failed to update calendar")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeCalendarUpdated, calendarID, userID)

	_ = c.JSON(200, toCalendarResponse(cal, role))
}

func (h *CalendarHandler) Delete(c *drift.Context) {
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
	if role != models.RoleOwner {
		c.Forbidden("only the owner can delete the calendar")
		return
	}

	if err := h.calendarService.Delete(context.Background(), calendarID); err != nil {
		respondError(c, err, "failed to delete calendar")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeCalendarDeleted, calendarID, userID)

	_ = c.JSON(200, map[string]string{"message": "calendar deleted"})
}

// Month returns the placement grid for ?year=&month=, defaulting to the current month.
func (h *CalendarHandler) Month(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	year, month, err := h.monthParams(c)
	if err != nil {
		c.BadRequest(err.Error())
		return
	}

	if _, ok := calendarRole(c, h.calendarService, calendarID, userID); !ok {
		return
	}

	from, to := planner.MonthRange(year, month)
	events, err := h.eventService.ListInRange(context.Background(), calendarID, from, to)
	if err != nil {
		respondError(c, err, "failed to load events")
		return
	}

	_ = c.JSON(200, toMonthResponse(planner.BuildMonth(year, month, events)))
}

func (h *CalendarHandler) monthParams(c *drift.Context) (int, time.Month, error) {
	now := h.now()
	year, month := now.Year(), now.Month()

	if raw := c.QueryParam("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 || y > 9999 {
			return 0, 0, fmt.Errorf("invalid year")
		}
		year = y
	}
	if raw := c.QueryParam("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("month must be between 1 and 12")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

func (h *CalendarHandler) ExportICS(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	if _, ok := calendarRole(c, h.calendarService, calendarID, userID); !ok {
		return
	}

	ctx := context.Background()

	cal, err := h.calendarService.GetByID(ctx, calendarID)
	if err != nil {
		respondError(c, err, "failed to load calendar")
		return
	}

	events, err := h.eventService.ListByCalendar(ctx, calendarID)
	if err != nil {
		respondError(c, err, "failed to load events")
		return
	}

	var buf bytes.Buffer
	if err := ics.Encode(&buf, cal, events, h.now()); err != nil {
		respondError(c, err, "failed to encode calendar")
		return
	}

	c.Response.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	c.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ics.Filename(cal)))
	c.Response.WriteHeader(200)
	_, _ = c.Response.Write(buf.Bytes())
}

func (h *CalendarHandler) GetMembers(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	if _, ok := calendarRole(c, h.calendarService, calendarID, userID); !ok {
		return
	}

	members, err := h.calendarService.GetMembers(context.Background(), calendarID)
	if err != nil {
		respondError(c, err, "failed to get members")
		return
	}

	response := make([]dto.MemberResponse, len(members))
	for i := range members {
		response[i] = toMemberResponse(&members[i])
	}

	_ = c.JSON(200, response)
}

func (h *CalendarHandler) RemoveMember(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	memberID, ok := paramID(c, "memberId", "member")
	if !ok {
		return
	}

	ctx := context.Background()

	members, err := h.calendarService.GetMembers(ctx, calendarID)
	if err != nil {
		respondError(c, err, "failed to get members")
		return
	}
	removedUser := uuid.Nil
	for _, m := range members {
		if m.ID == memberID {
			removedUser = m.UserID
			break
		}
	}

	if err := h.calendarService.RemoveMember(ctx, calendarID, userID, memberID); err != nil {
		respondError(c, err, "failed to remove member")
		return
	}

	if removedUser != uuid.Nil {
		h.hub.RevokeAccess(calendarID, removedUser)
	}
	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeMemberRemoved, memberID, userID)

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

func (h *CalendarHandler) UpdateMemberRole(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	memberID, ok := paramID(c, "memberId", "member")
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	member, err := h.calendarService.UpdateMemberRole(context.Background(), calendarID, userID, memberID, req.Role)
	if err != nil {
		respondError(c, err, "failed to update member")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeMemberUpdated, member.ID, userID)

	_ = c.JSON(200, toMemberResponse(member))
}

func (h *CalendarHandler) Leave(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	if err := h.calendarService.Leave(context.Background(), calendarID, userID); err != nil {
		respondError(c, err, "failed to leave calendar")
		return
	}

	h.hub.RevokeAccess(calendarID, userID)
	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeMemberRemoved, userID, userID)

	_ = c.JSON(200, map[string]string{"message": "left calendar"})
}
