package stream

import (
	"sync"

	"github.com/google/uuid"

	"taskboard-api/domain"
)

// sessionBuf bounds the per-session queue; a session that cannot keep up
// drops events rather than blocking the dispatcher. Dropped events are
// safe to lose because clients re-fetch on every event anyway.
const sessionBuf = 16

type session struct {
	userID uint
	ch     chan domain.Event
}

// Hub is the registry of live stream sessions, keyed by session id and
// indexed by user id so events can be targeted. It holds no transport
// state beyond the outbound channel; teardown happens on disconnect.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// NewHub creates an empty session registry.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*session)}
}

// Subscribe registers a session for the user and returns its id and
// event channel. The caller must Unsubscribe with the id when done.
func (h *Hub) Subscribe(userID uint) (string, <-chan domain.Event) {
	s := &session{userID: userID, ch: make(chan domain.Event, sessionBuf)}
	id := uuid.NewString()
	h.mu.Lock()
	h.sessions[id] = s
	h.mu.Unlock()
	return id, s.ch
}

// Unsubscribe removes the session and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()
	if ok {
		close(s.ch)
	}
}

// Dispatch delivers the event: to every session when untargeted, or only
// to the target user's sessions. Slow sessions are skipped.
func (h *Hub) Dispatch(ev domain.Event) {
	h.mu.Lock()
	for _, s := range h.sessions {
		if ev.UserID != 0 && s.userID != ev.UserID {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
