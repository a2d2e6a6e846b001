package signal

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/avlasov/Boardroom/internal/app"
	"github.com/avlasov/Boardroom/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller terminates board websockets: it upgrades the connection, binds a
// Participant into the session registry and dispatches inbound envelopes to
// the orchestrator and rooms.
type Controller struct {
	Orch *app.Orchestrator
	Cfg  *config.Config
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{Orch: orch, Cfg: cfg}
}

func (ctl *Controller) HandleBoard(ctx context.Context, c *gin.Context) {
	sid := app.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := NewConn(ws, ctl.Cfg.SignalBuffer)
	participant := NewParticipant(conn)

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, participant, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn, participant)
}

func (ctl *Controller) writePump(ctx context.Context, c *Conn) {
	ping := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid app.SessionID, c *Conn, p *Participant) {
	limiter := rate.NewLimiter(rate.Limit(ctl.Cfg.MessageRate), ctl.Cfg.MessageBurst)
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Disconnect(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			if !limiter.Allow() {
				ctl.sendError(c, "rate limited")
				continue
			}
			ctl.dispatch(sid, c, p, data)
		}
	}
}

func (ctl *Controller) dispatch(sid app.SessionID, c *Conn, p *Participant, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "hello":
		ctl.handleHello(sid, c, p, data)
	case "whoami":
		ctl.handleWhoAmI(sid, c, p)
	case "ping":
		ctl.handlePing(c)
	case "set_manager":
		ctl.handleSetManager(sid, c, p, data)
	case "join":
		ctl.handleJoin(sid, c, p, data)
	case "leave":
		ctl.handleLeave(sid, c)
	case "members":
		ctl.handleMembers(sid, c)
	case "request_join":
		ctl.handleRequestJoin(sid, c, data)
	case "approve":
		ctl.handleApprove(sid, c, p, data)
	case "deny":
		ctl.handleDeny(sid, c, p, data)
	case "clear_requests":
		ctl.handleClearRequests(sid, c, p)
	case "requests":
		ctl.handleRequests(sid, c)
	case "add_shape":
		ctl.handleAddShape(sid, c, p, data)
	case "remove_shape":
		ctl.handleRemoveShape(sid, c, p, data)
	case "clear_mine":
		ctl.handleClearMine(sid, c, p)
	case "clear_all":
		ctl.handleClearAll(sid, c)
	case "shapes":
		ctl.handleShapes(sid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, "unknown type")
	}
}

// roomOf resolves the room the session is currently admitted to.
func (ctl *Controller) roomOf(sid app.SessionID) (roomName string, ok bool) {
	roomName, _, ok = ctl.Orch.Registry.RoomOf(sid)
	return roomName, ok
}

func (ctl *Controller) sendJSON(c *Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *Conn, msg string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": msg,
	})
}
