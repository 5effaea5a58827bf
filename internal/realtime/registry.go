package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Conn is the write half of a websocket connection the registry needs.
// *websocket.Conn satisfies it; tests substitute in-memory fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// wsEvent is the envelope for every server-to-client push.
type wsEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// session pairs a connection with a write lock, since websocket
// connections do not support concurrent writers.
type session struct {
	conn Conn
	mu   sync.Mutex
}

func (s *session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Registry maintains the live mapping from authenticated user identity
// to active realtime connections. Each user gets a room holding every
// connection they have open (multiple tabs, multiple devices), so a
// push addressed to the user reaches all of them. It is safe for
// concurrent use from many connection handlers.
//
// The registry is process-local; swapping it for a shared pub/sub
// backend is the extension point for horizontal scaling.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*session]bool
	index map[Conn]*session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[*session]bool),
		index: make(map[Conn]*session),
	}
}

// Join adds a connection to the user's room.
func (r *Registry) Join(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &session{conn: conn}
	room, ok := r.rooms[userID]
	if !ok {
		room = make(map[*session]bool)
		r.rooms[userID] = room
	}
	room[s] = true
	r.index[conn] = s
}

// Leave removes a connection from the user's room. The room is dropped
// once its last connection leaves; other connections of the same user
// are unaffected.
func (r *Registry) Leave(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.index[conn]
	if !ok {
		return
	}
	delete(r.index, conn)
	if room, ok := r.rooms[userID]; ok {
		delete(room, s)
		if len(room) == 0 {
			delete(r.rooms, userID)
		}
	}
}

// Connections reports how many active connections the user has.
func (r *Registry) Connections(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[userID])
}

// DeliverToUser pushes an event to every connection in the user's
// room. Best-effort: a user with no connections is a silent no-op, and
// a failed write to one connection does not affect the others. The
// payload is not queued for offline users; they see the persisted
// record on next fetch.
func (r *Registry) DeliverToUser(userID, event string, payload interface{}) {
	body, err := json.Marshal(wsEvent{Event: event, Data: payload})
	if err != nil {
		log.Printf("Failed to marshal %s event for user %s: %v", event, userID, err)
		return
	}

	r.mu.RLock()
	sessions := make([]*session, 0, len(r.rooms[userID]))
	for s := range r.rooms[userID] {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if err := s.write(body); err != nil {
			log.Printf("Failed to push %s event to a connection of user %s: %v", event, userID, err)
		}
	}
}
