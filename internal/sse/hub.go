package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

const (
	TypeCalendarChanged = "calendar_changed"
	TypeAccessRevoked   = "access_revoked"
)

// Change kinds carried by calendar_changed events.
const (
	ChangeEventCreated    = "event_created"
	ChangeEventUpdated    = "event_updated"
	ChangeEventDeleted    = "event_deleted"
	ChangeCalendarUpdated = "calendar_updated"
	ChangeCalendarDeleted = "calendar_deleted"
	ChangeMemberJoined    = "member_joined"
	ChangeMemberRemoved   = "member_removed"
	ChangeMemberUpdated   = "member_updated"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type CalendarChangedEvent struct {
	CalendarID uuid.UUID `json:"calendar_id"`
	Kind       string    `json:"kind"`
	EntityID   uuid.UUID `json:"entity_id"`
	ActorID    uuid.UUID `json:"actor_id"`
}

type AccessRevokedEvent struct {
	CalendarID uuid.UUID `json:"calendar_id"`
}

type Client struct {
	ID        string
	UserID    uuid.UUID
	Calendars map[uuid.UUID]bool
	Send      chan []byte
}

type CalendarMessage struct {
	CalendarID uuid.UUID
	Event      Event
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *CalendarMessage
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *CalendarMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if client.Calendars[msg.CalendarID] {
					trySend(client, data)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// trySend drops the message when the client is not keeping up.
func trySend(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToCalendar(clientID string, userID, calendarID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[clientID]
	if !ok || client.UserID != userID {
		return false
	}
	client.Calendars[calendarID] = true
	return true
}

func (h *Hub) UnsubscribeFromCalendar(clientID string, calendarID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Calendars, calendarID)
	}
}

func (h *Hub) BroadcastCalendarChange(calendarID uuid.UUID, kind string, entityID, actorID uuid.UUID) {
	h.broadcast <- &CalendarMessage{
		CalendarID: calendarID,
		Event: Event{
			Type: TypeCalendarChanged,
			Data: CalendarChangedEvent{
				CalendarID: calendarID,
				Kind:       kind,
				EntityID:   entityID,
				ActorID:    actorID,
			},
		},
	}
}

// RevokeAccess drops every subscription userID holds on calendarID and
// tells those clients why.
func (h *Hub) RevokeAccess(calendarID, userID uuid.UUID) {
	data, _ := json.Marshal(Event{Type: TypeAccessRevoked, Data: AccessRevokedEvent{CalendarID: calendarID}})

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		if client.UserID == userID && client.Calendars[calendarID] {
			delete(client.Calendars, calendarID)
			trySend(client, data)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
