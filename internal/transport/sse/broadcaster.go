package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Broadcaster publishes coordinator events to SSE spectators
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// PublishLobby sends event to lobby watchers
func (b *Broadcaster) PublishLobby(event model.Event) {
	b.publish(LobbyTopic, event)
}

// PublishRoom sends event to watchers of one room
func (b *Broadcaster) PublishRoom(room model.RoomID, event model.Event) {
	b.publish(RoomTopic(room), event)
}

func (b *Broadcaster) publish(topic Topic, event model.Event) {
	hub := b.hubManager.GetHub(topic)
	if hub == nil {
		return
	}
	data, err := json.Marshal(event.Payload)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("topic", string(topic)),
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(string(event.Type), string(data))
}
