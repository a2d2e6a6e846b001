package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/core"
)

type SessionID string

type sessionEntry struct {
	RoomName   string
	MemberName string
	Handle     core.Handle
	Cancel     context.CancelFunc
}

// Registry binds transport session ids to participant handles and the room
// they are admitted to, so a dropped connection can be translated back into
// a RemoveClient on the right room.
type Registry struct {
	mu       sync.RWMutex
	sessions map[SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[SessionID]*sessionEntry)}
}

func (r *Registry) Bind(sid SessionID, h core.Handle, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Handle: h, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

func (r *Registry) Handle(sid SessionID) (core.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Handle, true
	}
	return nil, false
}

// SetRoom records the room and admitted member name for a session.
func (r *Registry) SetRoom(sid SessionID, roomName, memberName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomName = roomName
	e.MemberName = memberName
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", roomName).Str("name", memberName).Msg("updated room")
	return true
}

// RoomOf reports which room the session is admitted to, if any.
func (r *Registry) RoomOf(sid SessionID) (roomName, memberName string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomName == "" {
		return "", "", false
	}
	return e.RoomName, e.MemberName, true
}

func (r *Registry) ClearRoom(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.RoomName = ""
		e.MemberName = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
}

func (r *Registry) Unbind(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// FindByHandle reverse-maps a handle reported by a room fan-out back to its
// session id.
func (r *Registry) FindByHandle(h core.Handle) (SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sid, e := range r.sessions {
		if e.Handle == h {
			return sid, true
		}
	}
	return "", false
}

func (r *Registry) Cancel(sid SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
