package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/services"
	"github.com/tripstitch/tripstitch-api/internal/sse"
	"github.com/tripstitch/tripstitch-api/pkg/dto"
)

type EventHandler struct {
	eventService    EventServiceInterface
	calendarService CalendarServiceInterface
	hub             HubInterface
}

func NewEventHandler(eventService EventServiceInterface, calendarService CalendarServiceInterface, hub HubInterface) *EventHandler {
	return &EventHandler{
		eventService:    eventService,
		calendarService: calendarService,
		hub:             hub,
	}
}

func toEventInput(req dto.EventRequest) services.EventInput {
	return services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Time:        req.Time,
		Duration:    req.Duration,
		IsMultiDay:  req.IsMultiDay,
		Color:       req.Color,
	}
}

func (h *EventHandler) List(c *drift.Context) {
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

	events, err := h.eventService.ListByCalendar(context.Background(), calendarID)
	if err != nil {
		respondError(c, err, "failed to list events")
		return
	}

	_ = c.JSON(200, toEventResponses(events))
}

func (h *EventHandler) Create(c *drift.Context) {
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
		c.Forbidden("viewers cannot add events")
		return
	}

	var req dto.EventRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	event, err := h.eventService.Create(context.Background(), calendarID, userID, toEventInput(req))
	if err != nil {
		respondError(c, err, "failed to create event")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeEventCreated, event.ID, userID)

	_ = c.JSON(201, toEventResponse(event))
}

// loadEvent resolves :eventId within :id, answering 404 for events of other calendars.
func (h *EventHandler) loadEvent(c *drift.Context, calendarID uuid.UUID) (*models.Event, bool) {
	eventID, ok := paramID(c, "eventId", "event")
	if !ok {
		return nil, false
	}

	event, err := h.eventService.GetByID(context.Background(), eventID)
	if err != nil {
		respondError(c, err, "failed to load event")
		return nil, false
	}
	if event.CalendarID != calendarID {
		c.NotFound(services.ErrEventNotFound.Error())
		return nil, false
	}
	return event, true
}

func (h *EventHandler) Get(c *drift.Context) {
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

	event, ok := h.loadEvent(c, calendarID)
	if !ok {
		return
	}

	_ = c.JSON(200, toEventResponse(event))
}

func (h *EventHandler) Update(c *drift.Context) {
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

	event, ok := h.loadEvent(c, calendarID)
	if !ok {
		return
	}
	if !services.CanEditEvent(role, userID, event) {
		c.Forbidden("you cannot edit this event")
		return
	}

	var req dto.EventRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	updated, err := h.eventService.Update(context.Background(), event.ID, toEventInput(req))
	if err != nil {
		respondError(c, err, "failed to update event")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeEventUpdated, updated.ID, userID)

	_ = c.JSON(200, toEventResponse(updated))
}

func (h *EventHandler) Delete(c *drift.Context) {
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

	event, ok := h.loadEvent(c, calendarID)
	if !ok {
		return
	}
	if !services.CanDeleteEvent(role, userID, event) {
		c.Forbidden("you cannot delete this event")
		return
	}

	if err := h.eventService.Delete(context.Background(), event.ID); err != nil {
		respondError(c, err, "failed to delete event")
		return
	}

	h.hub.BroadcastCalendarChange(calendarID, sse.ChangeEventDeleted, event.ID, userID)

	_ = c.JSON(200, map[string]string{"message": "event deleted"})
}
