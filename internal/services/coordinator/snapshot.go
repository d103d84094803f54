package coordinator

import (
	"context"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Stats is a point-in-time view of coordinator state
type Stats struct {
	Players          int `json:"players"`
	ConnectedPlayers int `json:"connectedPlayers"`
	Rooms            int `json:"rooms"`
	WaitingRooms     int `json:"waitingRooms"`
	PlayingRooms     int `json:"playingRooms"`
	FinishedRooms    int `json:"finishedRooms"`
	Seekers          int `json:"seekers"`
	PendingTasks     int `json:"pendingTasks"`
}

// WaitingRooms returns the lobby listing
func (c *Coordinator) WaitingRooms(ctx context.Context) ([]model.RoomSummary, error) {
	return query(ctx, c.dispatcher, c.rooms.Summaries)
}

// RoomSummary returns the summary of any live room, whatever its status
func (c *Coordinator) RoomSummary(ctx context.Context, id model.RoomID) (model.RoomSummary, error) {
	type lookup struct {
		summary model.RoomSummary
		ok      bool
	}
	res, err := query(ctx, c.dispatcher, func() lookup {
		r, ok := c.rooms.Get(id)
		if !ok {
			return lookup{}
		}
		return lookup{summary: r.Summary(), ok: true}
	})
	if err != nil {
		return model.RoomSummary{}, err
	}
	if !res.ok {
		return model.RoomSummary{}, model.ErrRoomNotFound
	}
	return res.summary, nil
}

// Stats returns current counters
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	return query(ctx, c.dispatcher, c.stats)
}

func (c *Coordinator) stats() Stats {
	return Stats{
		Players:          c.sessions.Count(),
		ConnectedPlayers: c.sessions.ConnectedCount(),
		Rooms:            c.rooms.Count(),
		WaitingRooms:     c.rooms.CountByStatus(model.RoomStatusWaiting),
		PlayingRooms:     c.rooms.CountByStatus(model.RoomStatusPlaying),
		FinishedRooms:    c.rooms.CountByStatus(model.RoomStatusFinished),
		Seekers:          len(c.seekers),
		PendingTasks:     len(c.timers),
	}
}
