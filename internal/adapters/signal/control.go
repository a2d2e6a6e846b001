package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/app"
	"github.com/avlasov/Boardroom/internal/domain"
)

func (ctl *Controller) handlePing(c *Conn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{"pong"})
}

// handleHello records the client's self-reported display name and role claim.
// Claiming the manager role grants nothing until SetManager accepts it.
func (ctl *Controller) handleHello(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Name string `json:"name"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad hello payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if payload.Name != "" {
		if err := domain.ValidateDisplayName(payload.Name); err != nil {
			ctl.sendError(c, "invalid_name")
			return
		}
		p.SetDisplayName(payload.Name)
	}
	if payload.Role == "manager" {
		p.SetRole(domain.RoleManager)
	} else {
		p.SetRole(domain.RoleOrdinary)
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", payload.Name).Str("role", p.Role().String()).Msg("hello")
	ctl.handleWhoAmI(sid, c, p)
}

func (ctl *Controller) handleWhoAmI(sid app.SessionID, c *Conn, p *Participant) {
	resp := struct {
		Type string `json:"type"`
		Name string `json:"name"`
		Role string `json:"role"`
		ID   int    `json:"id"`
		Room string `json:"room,omitempty"`
	}{
		Type: "whoami",
		Name: p.DisplayName(),
		Role: p.Role().String(),
		ID:   p.ID(),
	}
	if roomName, ok := ctl.roomOf(sid); ok {
		resp.Room = roomName
	}
	ctl.sendJSON(c, resp)
}

// handleSetManager asks the named room to recognize this participant as its
// manager. Any client may try; the room checks the role claim.
func (ctl *Controller) handleSetManager(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad set_manager payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := domain.ValidateRoomName(payload.Room); err != nil {
		ctl.sendError(c, "invalid_room")
		return
	}
	granted := ctl.Orch.Room(payload.Room).SetManager(p)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", payload.Room).Bool("granted", granted).Msg("set_manager")
	ctl.sendJSON(c, struct {
		Type    string `json:"type"`
		Room    string `json:"room"`
		Granted bool   `json:"granted"`
	}{"manager_result", payload.Room, granted})
}
