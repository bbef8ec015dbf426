package ws

import (
	"sync"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	UserID() string
	RoomID() string
}

// Hub is the in-process broadcaster behind the room.<id> channels.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{} // roomID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[c.RoomID()]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[c.RoomID()] = rs
	}
	rs[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[c.RoomID()]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, c.RoomID())
		}
	}
}

// Broadcast delivers msg to every connection in the room, best-effort.
func (h *Hub) Broadcast(roomID string, msg Message) {
	msg.Channel = ChannelName(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for c := range rs {
			_ = c.Send(msg)
		}
	}
}

// BroadcastExcept delivers msg to everyone in the room except the given
// user. The excluded peer already applied the payload locally.
func (h *Hub) BroadcastExcept(roomID, exceptUserID string, msg Message) {
	msg.Channel = ChannelName(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for c := range rs {
			if c.UserID() == exceptUserID {
				continue
			}
			_ = c.Send(msg)
		}
	}
}

// SendToUser delivers msg only to the connections of one user in the room.
// Returns false when that user has no connection there.
func (h *Hub) SendToUser(roomID, userID string, msg Message) bool {
	msg.Channel = ChannelName(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := false
	if rs, ok := h.rooms[roomID]; ok {
		for c := range rs {
			if c.UserID() == userID {
				_ = c.Send(msg)
				sent = true
			}
		}
	}
	return sent
}
