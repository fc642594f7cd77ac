package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hub fans recognition and attendance events out to the clients watching
// each lesson. Clients subscribe to exactly one lesson.
type Hub struct {
	clients    map[*Client]bool
	lessons    map[uuid.UUID]map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		lessons:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastToLesson(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.lessons[client.lessonID] == nil {
		h.lessons[client.lessonID] = make(map[*Client]bool)
	}
	h.lessons[client.lessonID][client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		delete(h.lessons[client.lessonID], client)

		if len(h.lessons[client.lessonID]) == 0 {
			delete(h.lessons, client.lessonID)
		}

		close(client.send)
	}
}

func (h *Hub) broadcastToLesson(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.lessons[event.LessonID]
	if clients == nil {
		return
	}

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			delete(h.lessons[event.LessonID], client)
		}
	}
}

func (h *Hub) BroadcastToLesson(lessonID uuid.UUID, eventType EventType, data interface{}) {
	event := Event{
		LessonID:  lessonID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

// NotifyLesson adapts the hub to the services' notifier contract.
func (h *Hub) NotifyLesson(lessonID uuid.UUID, event string, payload any) {
	h.BroadcastToLesson(lessonID, EventType(event), payload)
}

func (h *Hub) GetConnectedClients(lessonID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.lessons[lessonID])
}
