package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/app"
	"github.com/avlasov/Boardroom/internal/domain"
)

// handleRequestJoin queues the participant for manager approval instead of
// joining directly. Outcomes arrive as notices pushed by the room.
func (ctl *Controller) handleRequestJoin(sid app.SessionID, c *Conn, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad request_join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := domain.ValidateRoomName(payload.Room); err != nil {
		ctl.sendError(c, "invalid_room")
		return
	}
	if err := domain.ValidateDisplayName(payload.Name); err != nil {
		ctl.sendError(c, "invalid_name")
		return
	}
	if h, ok := ctl.Orch.Registry.Handle(sid); ok {
		if p, isWs := h.(*Participant); isWs {
			p.SetDisplayName(payload.Name)
		}
	}
	if err := ctl.Orch.RequestJoin(sid, payload.Room, payload.Name); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("request_join rejected")
	}
}

// handleApprove promotes a pending request. The caller must be admitted to a
// room and recognized as its manager; the room enforces the latter.
func (ctl *Controller) handleApprove(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := ctl.Orch.Approve(sid, payload.Name); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("name", payload.Name).Msg("approve rejected")
	}
}

func (ctl *Controller) handleDeny(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		ctl.sendError(c, "bad_payload")
		return
	}
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	if err := room.RemoveRequest(p, payload.Name); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("name", payload.Name).Msg("deny rejected")
	}
}

func (ctl *Controller) handleClearRequests(sid app.SessionID, c *Conn, p *Participant) {
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	if err := room.ClearRequestList(p); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("clear_requests rejected")
	}
}

func (ctl *Controller) handleRequests(sid app.SessionID, c *Conn) {
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	ctl.sendJSON(c, struct {
		Type     string   `json:"type"`
		Room     string   `json:"room"`
		Requests []string `json:"requests"`
	}{"requests", room.Name(), room.RequestNames()})
}
