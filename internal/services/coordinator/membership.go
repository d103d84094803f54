package coordinator

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Player.RoomID and Room.Members are only changed through the functions in
// this file and the handlers that seat players, so both sides stay in step.

// release takes p out of whatever room it holds. Leaving a running game
// forfeits it to the remaining member.
func (c *Coordinator) release(p *model.Player) {
	if !p.IsSeated() {
		return
	}
	roomID := p.RoomID
	p.RoomID = ""

	r, ok := c.rooms.Get(roomID)
	if !ok {
		return
	}
	c.transport.LeaveGroup(p.ConnectionID, roomID)

	if r.Status == model.RoomStatusPlaying {
		players := c.playerInfos(r)
		r.RemoveMember(p.ConnectionID)
		winner := r.Opponent(p.ConnectionID)
		c.logger.Info("player left running game", roomAttr(r.ID), connAttr(p.ConnectionID))
		c.finishGame(r, winner, false, players)
		return
	}
	c.vacate(r, p.ConnectionID)
}

// vacate removes conn from r and deletes r once it is empty
func (c *Coordinator) vacate(r *model.Room, conn model.ConnectionID) {
	r.RemoveMember(conn)
	if len(r.Members) == 0 {
		c.deleteRoom(r.ID)
	}
}

// deleteRoom removes a room and cancels its retention task
func (c *Coordinator) deleteRoom(id model.RoomID) {
	if c.rooms.Delete(id) {
		c.stopTimer(finishKey(id))
		c.logger.Debug("room deleted", roomAttr(id))
	}
}

// unseatAll clears every member's link to r, then deletes it
func (c *Coordinator) unseatAll(r *model.Room) {
	for _, m := range r.Members {
		c.transport.LeaveGroup(m, r.ID)
		if p, ok := c.sessions.Get(m); ok && p.RoomID == r.ID {
			p.RoomID = ""
		}
	}
	c.deleteRoom(r.ID)
}

func (c *Coordinator) leaveQueue(conn model.ConnectionID) {
	c.seekers = slices.DeleteFunc(c.seekers, func(s model.ConnectionID) bool {
		return s == conn
	})
}

// playerInfos maps each member to its name and seat symbol
func (c *Coordinator) playerInfos(r *model.Room) map[model.ConnectionID]model.PlayerInfo {
	players := make(map[model.ConnectionID]model.PlayerInfo, len(r.Members))
	for i, m := range r.Members {
		players[m] = model.PlayerInfo{
			Username: c.displayName(m),
			Symbol:   model.SymbolForSeat(i),
		}
	}
	return players
}

// finishGame ends a game, announces it to the room, records it, and
// schedules the room for deletion
func (c *Coordinator) finishGame(r *model.Room, winner model.ConnectionID, isDraw bool, players map[model.ConnectionID]model.PlayerInfo) {
	r.Status = model.RoomStatusFinished

	payload := model.GameEndPayload{
		IsDraw:     isDraw,
		FinalState: r.Board,
		GameStatus: model.GameStatusFinished,
		Players:    players,
	}
	if winner != "" {
		w := winner
		symbol := players[winner].Symbol
		payload.Winner = &w
		payload.WinnerSymbol = &symbol
	}

	c.logger.Info("game finished", roomAttr(r.ID),
		slog.String("winner", string(winner)),
		slog.Bool("draw", isDraw),
	)
	c.transport.SendRoom(r.ID, model.NewEvent(model.EventGameEnd, payload))
	c.recordHistory(players, winner, isDraw)

	roomID := r.ID
	c.schedule(finishKey(roomID), c.config.FinishRetention, func() { c.finishRetentionExpired(roomID, r) })
}

func (c *Coordinator) recordHistory(players map[model.ConnectionID]model.PlayerInfo, winner model.ConnectionID, isDraw bool) {
	if c.history == nil {
		return
	}
	winnerField := model.WinnerDraw
	if !isDraw && winner != "" {
		winnerField = string(players[winner].Symbol)
	}
	now := c.clock.Now()

	for conn, info := range players {
		result := model.ResultLoss
		switch {
		case isDraw:
			result = model.ResultDraw
		case conn == winner:
			result = model.ResultWin
		}
		opponent := ""
		for other, otherInfo := range players {
			if other != conn {
				opponent = otherInfo.Username
			}
		}
		c.history.Record(model.HistoryRecord{
			Player:   info.Username,
			GameType: model.GameTypeOnline,
			Result:   result,
			Winner:   winnerField,
			Opponent: opponent,
			GameMode: model.GameModePvP,
			Date:     now,
		})
	}
}

// reconnect moves a disconnected player onto conn and replays its game.
// It returns false when the stale player has no live room to resume, in
// which case the stale record is dropped and registration proceeds normally.
func (c *Coordinator) reconnect(stale *model.Player, conn model.ConnectionID) bool {
	oldConn := stale.ConnectionID
	c.stopTimer(graceKey(oldConn))

	r, ok := c.rooms.Get(stale.RoomID)
	if !ok || r.Status == model.RoomStatusFinished {
		if ok {
			c.vacate(r, oldConn)
		}
		c.sessions.Remove(oldConn)
		return false
	}

	p, _ := c.sessions.Rekey(oldConn, conn)
	r.ReplaceConnection(oldConn, conn)
	c.transport.JoinGroup(conn, r.ID)

	c.logger.Info("player reconnected", roomAttr(r.ID),
		slog.String("old_conn_id", string(oldConn)),
		connAttr(conn),
	)
	c.replay(p, r)

	c.transport.Send(conn, model.NewEvent(model.EventRegistrationComplete, model.RegistrationCompletePayload{
		ID:       conn,
		Username: p.DisplayName,
	}))
	c.broadcastLobby()
	return true
}

// replay sends the current room state to a reconnected member
func (c *Coordinator) replay(p *model.Player, r *model.Room) {
	conn := p.ConnectionID
	if r.Status == model.RoomStatusWaiting {
		c.transport.Send(conn, model.NewEvent(model.EventGameStart, model.GameStartPayload{
			Room:       r.ID,
			Symbol:     model.SymbolX,
			Opponent:   nil,
			IsMyTurn:   false,
			GameStatus: model.GameStatusWaiting,
		}))
		return
	}

	opp := r.Opponent(conn)
	oppName := c.displayName(opp)
	c.transport.Send(conn, model.NewEvent(model.EventGameStart, model.GameStartPayload{
		Room:       r.ID,
		Symbol:     r.SymbolOf(conn),
		Opponent:   &oppName,
		IsMyTurn:   r.TurnHolder == conn,
		GameStatus: model.GameStatusPlaying,
	}))
	c.transport.Send(conn, model.NewEvent(model.EventMoveMade, model.MoveMadePayload{
		Position:   -1,
		Symbol:     model.SymbolNone,
		NextTurn:   r.TurnHolder,
		Board:      r.Board,
		GameStatus: model.GameStatusPlaying,
	}))
	if opp != "" {
		c.transport.Send(opp, model.NewEvent(model.EventOpponentReconnected, model.OpponentStatusPayload{
			Message:    fmt.Sprintf("%s has reconnected", p.DisplayName),
			GameStatus: model.GameStatusPlaying,
			Room:       r.ID,
		}))
	}
}
