package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/gravitywell/internal/auth"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *game.GameManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: testSecret, FrameRateHz: 200, SessionExpiryMinutes: 30, IdleForfeitSeconds: 60}
	gm := game.NewGameManager(nil, nil, cfg)
	gm.SetListener(NewBroadcaster())

	r := gin.New()
	r.GET("/match/:token/ws", HandleMatchWebSocket(gm, cfg))
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		gm.Shutdown()
		srv.Close()
	})
	return srv, gm
}

func jwtFor(t *testing.T, playerID int) string {
	t.Helper()
	tok, _, err := auth.IssueToken(testSecret, playerID, "tester", time.Hour)
	require.NoError(t, err)
	return tok
}

func wsURL(srv *httptest.Server, token, jwt, format string) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/match/" + token + "/ws?jwt=" + jwt
	if format != "" {
		u += "&format=" + format
	}
	return u
}

func dial(t *testing.T, srv *httptest.Server, token, jwt, format string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token, jwt, format), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return GameHub.RoomSize(token) > 0 }, time.Second, 5*time.Millisecond)
	return conn
}

// readUntil returns the first JSON message of type typ that satisfies match.
func readUntil(t *testing.T, conn *websocket.Conn, typ string, match func(data map[string]interface{}) bool) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", typ)

		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		if msg["type"] != typ {
			continue
		}
		data, _ := msg["data"].(map[string]interface{})
		if match == nil || match(data) {
			return data
		}
	}
}

func snapshotOf(data map[string]interface{}) map[string]interface{} {
	snap, _ := data["snapshot"].(map[string]interface{})
	return snap
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func TestWebSocketRejectsBeforeUpgrade(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)

	get := func(url string) int {
		resp, err := http.Get(url)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	httpURL := func(token, jwt string) string {
		return srv.URL + "/match/" + token + "/ws?jwt=" + jwt
	}

	assert.Equal(t, http.StatusUnauthorized, get(srv.URL+"/match/"+s.Token+"/ws"))
	assert.Equal(t, http.StatusUnauthorized, get(httpURL(s.Token, "garbage")))
	assert.Equal(t, http.StatusNotFound, get(httpURL("missing", jwtFor(t, 7))))
	assert.Equal(t, http.StatusForbidden, get(httpURL(s.Token, jwtFor(t, 8))))
}

func TestWebSocketPlaysMatch(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)
	conn := dial(t, srv, s.Token, jwtFor(t, 7), "")

	first := readUntil(t, conn, TypeFrame, nil)
	assert.Equal(t, "NOT_STARTED", snapshotOf(first)["status"])

	send(t, conn, TypeSetPaddle, map[string]float64{"x": 20})
	send(t, conn, TypeGetState, nil)
	state := readUntil(t, conn, TypeFrame, nil)
	assert.Equal(t, 20.0, snapshotOf(state)["player_paddle"])

	send(t, conn, TypeSetPaddle, map[string]string{})
	errData := readUntil(t, conn, TypeError, nil)
	assert.Equal(t, "Invalid paddle data", errData["message"])

	send(t, conn, TypeStart, nil)
	readUntil(t, conn, TypeFrame, func(d map[string]interface{}) bool {
		return snapshotOf(d)["status"] == "IN_PROGRESS"
	})

	send(t, conn, TypeStart, nil)
	errData = readUntil(t, conn, TypeError, nil)
	assert.Equal(t, "Match already in progress", errData["message"])

	send(t, conn, "dance", nil)
	errData = readUntil(t, conn, TypeError, nil)
	assert.Equal(t, "Unknown message type", errData["message"])
}

func TestWebSocketMsgpackFrames(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)
	conn := dial(t, srv, s.Token, jwtFor(t, 7), "msgpack")

	readBinary := func() map[string]interface{} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
		frameType, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, frameType)
		var msg map[string]interface{}
		require.NoError(t, msgpack.Unmarshal(raw, &msg))
		return msg
	}

	first := readBinary()
	assert.Equal(t, TypeFrame, first["type"])

	out, err := msgpack.Marshal(map[string]interface{}{"type": TypeSetPaddle, "data": map[string]interface{}{"x": 30.0}})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, out))
	out, err = msgpack.Marshal(map[string]interface{}{"type": TypeGetState})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, out))

	msg := readBinary()
	require.Equal(t, TypeFrame, msg["type"])
	data := msg["data"].(map[string]interface{})
	snap := data["snapshot"].(map[string]interface{})
	assert.Equal(t, 30.0, snap["player_paddle"])
}

func TestEndedSessionClosesSocket(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)
	conn := dial(t, srv, s.Token, jwtFor(t, 7), "")
	readUntil(t, conn, TypeFrame, nil)

	require.NoError(t, gm.EndSession(s.Token, game.EndReasonClosed))

	data := readUntil(t, conn, TypeSessionEnded, nil)
	assert.Equal(t, game.EndReasonClosed, data["reason"])

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Zero(t, GameHub.RoomSize(s.Token))
}

func TestHighScoreEventReachesPlayer(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.CreateSession(context.Background(), 77)
	require.NoError(t, err)
	conn := dial(t, srv, s.Token, jwtFor(t, 77), "")
	readUntil(t, conn, TypeFrame, nil)

	handleEvent(`{"type":"high_score","player_id":77,"score":5}`)

	data := readUntil(t, conn, TypeHighScore, nil)
	assert.Equal(t, 77.0, data["player_id"])
	assert.Equal(t, 5.0, data["score"])
}

func TestIdleEventClosesRoom(t *testing.T) {
	srv, gm := newTestServer(t)
	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)
	conn := dial(t, srv, s.Token, jwtFor(t, 7), "")
	readUntil(t, conn, TypeFrame, nil)

	handleEvent(`{"type":"session_idle","token":"` + s.Token + `","player_id":7,"final_score":{"player":1,"ai":2}}`)

	data := readUntil(t, conn, TypeSessionEnded, nil)
	assert.Equal(t, game.EndReasonIdle, data["reason"])
}
