package app

import (
	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/core"
)

// Orchestrator glues sessions to rooms: join/leave bookkeeping, disconnect
// cleanup and the delivery-failure policy. Room semantics stay in core; this
// layer only decides which room a session talks to.
type Orchestrator struct {
	Registry *Registry
	Rooms    *RoomManager
	Policy   Policy
}

// Room returns the named room with the drop policy wired in.
func (o *Orchestrator) Room(name string) *core.Room {
	room := o.Rooms.GetOrCreate(name)
	room.SetDropHandler(func(dropped []core.Handle) {
		o.handleDrops(room, dropped)
	})
	return room
}

// Join admits the session's handle into the room. When the session is already
// in a room it leaves first; a session is a member of at most one room.
func (o *Orchestrator) Join(sid SessionID, roomName, displayName string) (string, error) {
	if prev, _, ok := o.Registry.RoomOf(sid); ok {
		o.Leave(sid)
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", prev).Msg("left previous room")
	}
	h, ok := o.Registry.Handle(sid)
	if !ok {
		return "", core.ErrNotFound
	}
	room := o.Room(roomName)
	final, err := room.AddClient(displayName, h)
	if err != nil {
		return "", err
	}
	o.Registry.SetRoom(sid, roomName, final)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", roomName).Str("name", final).Msg("joined room")
	return final, nil
}

// RequestJoin queues the session's handle for manager approval instead of
// admitting it directly.
func (o *Orchestrator) RequestJoin(sid SessionID, roomName, displayName string) error {
	h, ok := o.Registry.Handle(sid)
	if !ok {
		return core.ErrNotFound
	}
	return o.Room(roomName).RequestAdmission(displayName, h)
}

// Leave removes the session's handle from its current room, if any.
func (o *Orchestrator) Leave(sid SessionID) {
	roomName, memberName, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	if room, found := o.Rooms.Get(roomName); found {
		if err := room.RemoveClient(memberName); err != nil {
			log.Debug().Err(err).Str("module", "app.orch").Str("sid", string(sid)).Str("room", roomName).Msg("leave cleanup")
		}
	}
	o.Registry.ClearRoom(sid)
}

// Disconnect tears a session down entirely: leave the room, drop the binding.
func (o *Orchestrator) Disconnect(sid SessionID) {
	o.Leave(sid)
	o.Registry.Unbind(sid)
}

func (o *Orchestrator) handleDrops(room *core.Room, dropped []core.Handle) {
	if o.Policy == nil {
		return
	}
	for _, h := range dropped {
		switch o.Policy.OnDeliveryDrop(room, h) {
		case KickParticipant:
			if sid, ok := o.Registry.FindByHandle(h); ok {
				log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Str("room", room.Name()).Msg("evicting unreachable participant")
				o.Leave(sid)
				o.Registry.Cancel(sid)
			}
		case NoAction:
		}
	}
}

// Approve promotes a pending request in the caller's room and, when the
// promoted participant has a live session, binds that session to the room so
// its disconnect is cleaned up like any other member's.
func (o *Orchestrator) Approve(callerSID SessionID, name string) error {
	roomName, _, ok := o.Registry.RoomOf(callerSID)
	if !ok {
		return core.ErrNotFound
	}
	caller, ok := o.Registry.Handle(callerSID)
	if !ok {
		return core.ErrNotFound
	}
	room, found := o.Rooms.Get(roomName)
	if !found {
		return core.ErrNotFound
	}
	if err := room.ApproveRequest(caller, name); err != nil {
		return err
	}
	if h, err := room.Client(name); err == nil {
		if sid, bound := o.Registry.FindByHandle(h); bound {
			o.Registry.SetRoom(sid, roomName, name)
		}
	}
	return nil
}
