package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/app"
	"github.com/avlasov/Boardroom/internal/core"
	"github.com/avlasov/Boardroom/internal/domain"
)

// handleJoin admits the participant directly into the named room. The name is
// optional; the room synthesizes one when it is omitted.
func (ctl *Controller) handleJoin(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name,omitempty"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := domain.ValidateRoomName(payload.Room); err != nil {
		ctl.sendError(c, "invalid_room")
		return
	}
	if payload.Name != "" {
		if err := domain.ValidateDisplayName(payload.Name); err != nil {
			ctl.sendError(c, "invalid_name")
			return
		}
		p.SetDisplayName(payload.Name)
	}

	final, err := ctl.Orch.Join(sid, payload.Room, payload.Name)
	if err != nil {
		if errors.Is(err, core.ErrNameConflict) {
			// the room already told the participant; mirror it on the wire
			ctl.sendError(c, "name taken")
			return
		}
		ctl.sendError(c, "join failed")
		return
	}

	room := ctl.Orch.Room(payload.Room)
	ctl.sendJSON(c, struct {
		Type    string   `json:"type"`
		Room    string   `json:"room"`
		Name    string   `json:"name"`
		ID      int      `json:"id"`
		Members []string `json:"members"`
		Count   int      `json:"count"`
	}{
		Type:    "room_state",
		Room:    payload.Room,
		Name:    final,
		ID:      p.ID(),
		Members: room.ClientNames(),
		Count:   room.ListSize(),
	})
	// late joiners need the board as it stands
	_ = p.PushShapeSet(room.Shapes())
}

// handleLeave exits the current room without dropping the connection.
func (ctl *Controller) handleLeave(sid app.SessionID, c *Conn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.Leave(sid)
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{"left"})
}

func (ctl *Controller) handleMembers(sid app.SessionID, c *Conn) {
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	ctl.sendJSON(c, struct {
		Type    string   `json:"type"`
		Room    string   `json:"room"`
		Members []string `json:"members"`
		Count   int      `json:"count"`
	}{"members", room.Name(), room.ClientNames(), room.ListSize()})
}

func (ctl *Controller) currentRoom(sid app.SessionID) (*core.Room, bool) {
	roomName, ok := ctl.roomOf(sid)
	if !ok {
		return nil, false
	}
	return ctl.Orch.Rooms.Get(roomName)
}
