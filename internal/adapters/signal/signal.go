// Package signal is the websocket transport adapter. It owns raw connections
// and the read/write pumps; every decoded frame is handed to the router,
// which owns all room and delivery semantics.
package signal

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/echoroom/relay/internal/domain"
	"github.com/echoroom/relay/internal/router"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Controller struct {
	Router     *router.Router
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(rt *router.Router, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{Router: rt, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

// wsSession adapts a wsConn to the router's Session contract.
type wsSession struct {
	id   domain.SessionID
	conn *wsConn
}

func (s *wsSession) ID() domain.SessionID { return s.id }
func (s *wsSession) IsOpen() bool         { return s.conn.IsOpen() }

func (s *wsSession) Send(text string) {
	if err := s.conn.TrySend([]byte(text)); err != nil {
		log.Debug().Err(err).Str("module", "adapters.signal").Str("sid", string(s.id)).Msg("outbound frame dropped")
	}
}

// HandleSignal upgrades the request and binds a fresh session to the router.
// Each connection gets its own session id; the sticky client token from the
// cookie middleware only travels in logs.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	client := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.signal").Msg("ws upgrade")
		return
	}

	sid := domain.SessionID(uuid.NewString())
	conn := newWSConn(ws)
	ctl.Router.Register(&wsSession{id: sid, conn: conn})
	log.Info().Str("module", "adapters.signal").Str("sid", string(sid)).Str("client", client).Msg("ws session opened")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "adapters.signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid domain.SessionID, c *wsConn) {
	defer func() {
		ctl.Router.HandleClose(sid)
		c.Close()
		log.Info().Str("module", "adapters.signal").Str("sid", string(sid)).Msg("ws session closed")
	}()

	if ctl.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.ReadLimit)
	}
	pongWait := ctl.PingPeriod + 6*time.Second
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("module", "adapters.signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.Router.HandleMessage(sid, string(data))
	}
}
