package handlers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/tripstitch/tripstitch-api/internal/sse"
)

type SSEHandler struct {
	hub             HubInterface
	calendarService CalendarServiceInterface
}

func NewSSEHandler(hub HubInterface, calendarService CalendarServiceInterface) *SSEHandler {
	return &SSEHandler{
		hub:             hub,
		calendarService: calendarService,
	}
}

// Connect opens a change stream already subscribed to :id. Further
// calendars can be added with Subscribe using the announced client id.
func (h *SSEHandler) Connect(c *drift.Context) {
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

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &sse.Client{
		ID:        clientID,
		UserID:    userID,
		Calendars: map[uuid.UUID]bool{calendarID: true},
		Send:      make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SSEHandler) Subscribe(c *drift.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	if _, ok := calendarRole(c, h.calendarService, calendarID, userID); !ok {
		return
	}

	if !h.hub.SubscribeToCalendar(clientID, userID, calendarID) {
		c.NotFound("stream not found")
		return
	}

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("subscribed to calendar %s", calendarID),
	})
}

func (h *SSEHandler) Unsubscribe(c *drift.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	clientID := c.Param("clientId")
	if clientID == "" {
		c.BadRequest("client_id is required")
		return
	}

	calendarID, ok := paramID(c, "id", "calendar")
	if !ok {
		return
	}

	h.hub.UnsubscribeFromCalendar(clientID, calendarID)

	_ = c.JSON(200, map[string]string{
		"message": fmt.Sprintf("unsubscribed from calendar %s", calendarID),
	})
}
