package signal

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoroom/relay/internal/ai"
	"github.com/echoroom/relay/internal/room"
	"github.com/echoroom/relay/internal/router"
)

type frame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := room.NewStore()
	rt := router.New(store, ai.NewMockResponder())
	ctl := NewController(rt, 32768, 54*time.Second)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(context.Background(), c)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": msgType, "payload": payload})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Type == msgType {
			return f
		}
	}
}

func TestJoinOverWebSocket(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	writeFrame(t, conn, "join_room", map[string]any{
		"roomId": "r-ws", "userId": "u-1", "displayName": "One",
	})

	snap := readUntil(t, conn, "room_snapshot")
	assert.Equal(t, "r-ws", snap.Payload["roomId"])
	assert.Equal(t, "u-1", snap.Payload["selfUserId"])
	participants := snap.Payload["participants"].([]any)
	require.Len(t, participants, 1)
}

func TestPeerSeesJoinAndLeave(t *testing.T) {
	srv := newTestServer(t)
	a := dial(t, srv)
	b := dial(t, srv)

	writeFrame(t, a, "join_room", map[string]any{"roomId": "r-ws", "userId": "u-a"})
	readUntil(t, a, "room_snapshot")

	writeFrame(t, b, "join_room", map[string]any{"roomId": "r-ws", "userId": "u-b"})
	readUntil(t, b, "room_snapshot")

	joined := readUntil(t, a, "user_joined")
	user := joined.Payload["user"].(map[string]any)
	assert.Equal(t, "u-b", user["userId"])
	assert.Equal(t, "Anonymous", user["displayName"])

	require.NoError(t, b.Close())

	left := readUntil(t, a, "user_left")
	assert.Equal(t, "u-b", left.Payload["userId"])
	assert.Equal(t, "r-ws", left.Payload["roomId"])
}

func TestErrorEnvelopeOverWebSocket(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{broken")))

	e := readUntil(t, conn, "error")
	assert.Equal(t, "INVALID_JSON", e.Payload["code"])
}
