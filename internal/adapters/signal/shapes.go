package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/avlasov/Boardroom/internal/app"
)

// handleAddShape stores a new item and fans it out. The geometry and colour
// payloads are opaque to the server.
func (ctl *Controller) handleAddShape(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type  string          `json:"type"`
		Shape json.RawMessage `json:"shape"`
		Color json.RawMessage `json:"color"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad add_shape payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	item := room.AddShape(p, payload.Shape, payload.Color)
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("item", item.ID).Msg("shape added")
}

// handleRemoveShape removes one item by its wire id.
func (ctl *Controller) handleRemoveShape(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var payload struct {
		Type string `json:"type"`
		Item string `json:"item"`
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
	item, err := room.Shape(payload.Item)
	if err != nil {
		_ = p.Notify("item remove failed")
		return
	}
	if err := room.RemoveItem(p, item); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("item", payload.Item).Msg("remove_shape")
	}
}

// handleClearMine wipes every item the participant owns and resyncs everyone.
func (ctl *Controller) handleClearMine(sid app.SessionID, c *Conn, p *Participant) {
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	removed := room.RemoveItemsByClient(p)
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Int("removed", removed).Msg("clear_mine")
}

func (ctl *Controller) handleClearAll(sid app.SessionID, c *Conn) {
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	room.RemoveAllItems()
}

// handleShapes snapshots the board for the caller only.
func (ctl *Controller) handleShapes(sid app.SessionID, c *Conn) {
	room, ok := ctl.currentRoom(sid)
	if !ok {
		ctl.sendError(c, "not in a room")
		return
	}
	items := room.Shapes()
	ctl.sendJSON(c, struct {
		Type  string `json:"type"`
		Items any    `json:"items"`
	}{"shape_sync", items})
}
