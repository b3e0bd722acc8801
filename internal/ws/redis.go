package ws

import (
	"context"
	"encoding/json"

	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/playmatatu/gravitywell/internal/highscore"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// eventPayload covers both channels; unused fields stay zero.
type eventPayload struct {
	Type     string `json:"type"`
	Token    string `json:"token"`
	PlayerID int    `json:"player_id"`
	Score    int    `json:"score"`
	Message  string `json:"message"`
}

// StartEventSubscriber forwards high score and session events from redis to
// connected clients.
func StartEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, highscore.EventsChannel, game.GameEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s/%s subscriber started", highscore.EventsChannel, game.GameEventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handleEvent(msg.Payload)
			}
		}
	}()
}

func handleEvent(raw string) {
	var payload eventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}

	switch payload.Type {
	case "high_score":
		n := GameHub.SendToPlayer(payload.PlayerID, OutboundMessage{
			Type: TypeHighScore,
			Data: HighScoreData{PlayerID: payload.PlayerID, Score: payload.Score},
		})
		log.Debugf("[WS] high score for player %d delivered to %d clients", payload.PlayerID, n)

	case "session_idle":
		// the ending instance already closed its own room
		if GameHub.RoomSize(payload.Token) == 0 {
			return
		}
		GameHub.CloseSession(payload.Token, OutboundMessage{
			Type: TypeSessionEnded,
			Data: SessionEndedData{Reason: game.EndReasonIdle},
		})

	default:
		log.Printf("[WS] unknown event type: %s", payload.Type)
	}
}
