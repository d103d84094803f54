package coordinator

import "github.com/mcoot/tictactoe-go/internal/model"

// playerCopy returns a copy of the player for conn
func (c *Coordinator) playerCopy(conn model.ConnectionID) (model.Player, bool) {
	p, ok := c.sessions.Get(conn)
	if !ok {
		return model.Player{}, false
	}
	return *p, true
}

// roomCopy returns a copy of the room with its own member slice
func (c *Coordinator) roomCopy(id model.RoomID) (model.Room, bool) {
	r, ok := c.rooms.Get(id)
	if !ok {
		return model.Room{}, false
	}
	cp := *r
	cp.Members = append([]model.ConnectionID(nil), r.Members...)
	return cp, true
}

func (c *Coordinator) pendingTasks() int {
	return len(c.timers)
}
