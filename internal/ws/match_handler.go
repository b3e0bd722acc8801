package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/gravitywell/internal/auth"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/game"
	log "github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// HandleMatchWebSocket upgrades an authenticated player onto their session.
// The JWT travels in ?jwt= since browsers cannot set headers on upgrades;
// ?format=msgpack selects binary frames.
func HandleMatchWebSocket(gm *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		jwtToken := c.Query("jwt")
		if token == "" || jwtToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session token and jwt required"})
			return
		}

		playerID, err := auth.ParseToken(cfg.JWTSecret, jwtToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		s, err := gm.GetSessionByToken(token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if s.PlayerID != 0 && s.PlayerID != playerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:     conn,
			playerID: playerID,
			token:    token,
			binary:   c.Query("format") == "msgpack",
			send:     make(chan []byte, sendBuffer),
		}

		GameHub.register <- client
		client.sendMessage(frameMessage(s.Snapshot(), nil))

		go client.writePump()
		go client.readPump(gm)
	}
}

// readPump reads player commands until the connection drops.
func (c *Client) readPump(gm *game.GameManager) {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		frameType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] unexpected close for player %d: %v", c.playerID, err)
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		msgType, payload, err := decodeInbound(frameType, message)
		if err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(gm, msgType, payload)
	}
}

// inboundPayload decodes the data field regardless of wire format.
type inboundPayload func(v interface{}) error

func decodeInbound(frameType int, message []byte) (string, inboundPayload, error) {
	if frameType == websocket.BinaryMessage {
		var msg binaryMessage
		if err := msgpack.Unmarshal(message, &msg); err != nil {
			return "", nil, err
		}
		return msg.Type, func(v interface{}) error {
			if len(msg.Data) == 0 {
				return errors.New("missing data")
			}
			return msgpack.Unmarshal(msg.Data, v)
		}, nil
	}

	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return "", nil, err
	}
	return msg.Type, func(v interface{}) error {
		if len(msg.Data) == 0 {
			return errors.New("missing data")
		}
		return json.Unmarshal(msg.Data, v)
	}, nil
}

// handleMessage processes one player command.
func (c *Client) handleMessage(gm *game.GameManager, msgType string, payload inboundPayload) {
	switch msgType {
	case TypeStart, TypePlayAgain:
		if _, err := gm.StartMatch(c.token); err != nil {
			c.sendError(commandError(err))
		}

	case TypeSetPaddle:
		var data SetPaddleData
		if err := payload(&data); err != nil || data.X == nil {
			c.sendError("Invalid paddle data")
			return
		}
		if _, err := gm.SetPaddle(c.token, *data.X); err != nil {
			c.sendError(commandError(err))
		}

	case TypeGetState:
		s, err := gm.GetSessionByToken(c.token)
		if err != nil {
			c.sendError(commandError(err))
			return
		}
		gm.Touch(c.token)
		c.sendMessage(frameMessage(s.Snapshot(), nil))

	default:
		c.sendError("Unknown message type")
	}
}

func commandError(err error) string {
	switch {
	case errors.Is(err, game.ErrAlreadyInProgress):
		return "Match already in progress"
	case errors.Is(err, game.ErrSessionNotFound):
		return "Session not found"
	default:
		return err.Error()
	}
}

// Broadcaster renders session frames to the hub. It is the manager's FrameListener.
type Broadcaster struct{}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

func (Broadcaster) OnFrame(s *game.Session, snap game.Snapshot, res game.StepResult) {
	GameHub.BroadcastToSession(s.Token, frameMessage(snap, res.Events))
}

func (Broadcaster) OnFinished(s *game.Session, _ game.Snapshot, out game.Outcome) {
	GameHub.BroadcastToSession(s.Token, OutboundMessage{Type: TypeMatchFinished, Data: out})
	// with redis the high score arrives through the pubsub subscriber
	if out.NewHighScore && rdbClient == nil {
		GameHub.SendToPlayer(s.PlayerID, OutboundMessage{Type: TypeHighScore, Data: HighScoreData{PlayerID: s.PlayerID, Score: out.HighScore}})
	}
}

func (Broadcaster) OnEnded(s *game.Session, reason string) {
	GameHub.CloseSession(s.Token, OutboundMessage{Type: TypeSessionEnded, Data: SessionEndedData{Reason: reason}})
}
