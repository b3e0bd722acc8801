package ws

import (
	"encoding/json"

	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/vmihailenco/msgpack/v5"
)

// Inbound message types
const (
	TypeStart     = "start"
	TypePlayAgain = "play_again"
	TypeSetPaddle = "set_paddle"
	TypeGetState  = "get_state"
)

// Outbound message types
const (
	TypeFrame         = "frame"
	TypeMatchFinished = "match_finished"
	TypeHighScore     = "high_score"
	TypeSessionEnded  = "session_ended"
	TypeError         = "error"
)

// WSMessage is an inbound JSON message.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// binaryMessage is an inbound msgpack message.
type binaryMessage struct {
	Type string             `msgpack:"type"`
	Data msgpack.RawMessage `msgpack:"data"`
}

type SetPaddleData struct {
	X *float64 `json:"x" msgpack:"x"`
}

// OutboundMessage wraps every server message.
type OutboundMessage struct {
	Type string      `json:"type" msgpack:"type"`
	Data interface{} `json:"data,omitempty" msgpack:"data,omitempty"`
}

type FrameData struct {
	Snapshot game.Snapshot `json:"snapshot" msgpack:"snapshot"`
	Events   []game.Event  `json:"events,omitempty" msgpack:"events,omitempty"`
}

type HighScoreData struct {
	PlayerID int `json:"player_id" msgpack:"player_id"`
	Score    int `json:"score" msgpack:"score"`
}

type SessionEndedData struct {
	Reason string `json:"reason" msgpack:"reason"`
}

type ErrorData struct {
	Message string `json:"message" msgpack:"message"`
}

func frameMessage(snap game.Snapshot, events []game.Event) OutboundMessage {
	return OutboundMessage{Type: TypeFrame, Data: FrameData{Snapshot: snap, Events: events}}
}
