package coordinator

import (
	"time"

	"github.com/mcoot/tictactoe-go/internal/dependencies/clock"
	"github.com/mcoot/tictactoe-go/internal/model"
)

func finishKey(id model.RoomID) string {
	return "finish:" + string(id)
}

func graceKey(conn model.ConnectionID) string {
	return "grace:" + string(conn)
}

// schedule runs fn on the dispatcher after d. A later schedule with the
// same key replaces the earlier one.
func (c *Coordinator) schedule(key string, d time.Duration, fn func()) {
	c.stopTimer(key)

	var t clock.Timer
	t = c.clock.AfterFunc(d, func() {
		c.dispatcher.Post(func() {
			if c.timers[key] != t {
				return
			}
			delete(c.timers, key)
			fn()
		})
	})
	c.timers[key] = t
}

func (c *Coordinator) stopTimer(key string) {
	if t, ok := c.timers[key]; ok {
		t.Stop()
		delete(c.timers, key)
	}
}

// finishRetentionExpired deletes a finished room once its retention window ends
func (c *Coordinator) finishRetentionExpired(id model.RoomID, scheduled *model.Room) {
	r, ok := c.rooms.Get(id)
	if !ok || r != scheduled || r.Status != model.RoomStatusFinished {
		return
	}
	c.logger.Debug("finished room reaped", roomAttr(id))
	c.unseatAll(r)
}

// graceExpired drops a player that did not reconnect in time, along with
// its room
func (c *Coordinator) graceExpired(conn model.ConnectionID) {
	p, ok := c.sessions.Get(conn)
	if !ok || !p.IsDisconnected() {
		return
	}
	elapsed := c.clock.Now().Sub(*p.DisconnectedAt)

	r, ok := c.rooms.Get(p.RoomID)
	if !ok {
		c.sessions.Remove(conn)
		c.broadcastLobby()
		return
	}

	switch r.Status {
	case model.RoomStatusWaiting:
		if elapsed < c.config.WaitingGrace {
			c.schedule(graceKey(conn), c.config.WaitingGrace-elapsed, func() { c.graceExpired(conn) })
			return
		}
		c.logger.Info("abandoned waiting room removed", roomAttr(r.ID), connAttr(conn))
		c.deleteRoom(r.ID)
		c.sessions.Remove(conn)
		c.broadcastLobby()

	case model.RoomStatusPlaying:
		// Also reached when the room started playing after the host dropped
		if elapsed < c.config.PlayingGrace {
			c.schedule(graceKey(conn), c.config.PlayingGrace-elapsed, func() { c.graceExpired(conn) })
			return
		}
		c.logger.Info("abandoned game removed", roomAttr(r.ID), connAttr(conn))
		r.Status = model.RoomStatusFinished
		c.unseatAll(r)
		c.sessions.Remove(conn)
		c.broadcastLobby()

	default:
		c.vacate(r, conn)
		c.sessions.Remove(conn)
	}
}
