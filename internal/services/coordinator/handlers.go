package coordinator

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/board"
)

// Register creates or updates the player for conn. A name that matches a
// disconnected player resumes that player's seat instead.
func (c *Coordinator) Register(conn model.ConnectionID, displayName string) error {
	c.leaveQueue(conn)

	existing, live := c.sessions.Get(conn)
	if displayName != "" && !live {
		if stale, ok := c.sessions.FindDisconnectedByName(displayName); ok {
			if c.reconnect(stale, conn) {
				return nil
			}
		}
	}

	if live {
		c.release(existing)
	}
	p := c.sessions.Register(conn, displayName)

	c.logger.Debug("player registered", connAttr(conn), slog.String("name", p.DisplayName))
	c.transport.Send(conn, model.NewEvent(model.EventRegistrationComplete, model.RegistrationCompletePayload{
		ID:       conn,
		Username: p.DisplayName,
	}))
	c.broadcastLobby()
	return nil
}

// CreateRoom opens a waiting room hosted by conn
func (c *Coordinator) CreateRoom(conn model.ConnectionID, name string) error {
	p, ok := c.sessions.Get(conn)
	if !ok {
		return model.ErrPlayerNotFound
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > c.config.MaxRoomNameLength {
		return model.ErrInvalidRoomName
	}

	r, err := c.rooms.Create(conn, p.DisplayName, name)
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}

	c.leaveQueue(conn)
	c.release(p)
	p.RoomID = r.ID
	c.transport.JoinGroup(conn, r.ID)

	c.logger.Info("room created", roomAttr(r.ID), connAttr(conn), slog.String("name", r.Name))
	c.transport.Send(conn, model.NewEvent(model.EventGameStart, model.GameStartPayload{
		Room:       r.ID,
		Symbol:     model.SymbolX,
		Opponent:   nil,
		IsMyTurn:   false,
		GameStatus: model.GameStatusWaiting,
	}))
	c.broadcastLobby()
	return nil
}

// JoinRoom seats conn opposite the host of a waiting room and starts the game
func (c *Coordinator) JoinRoom(conn model.ConnectionID, roomID model.RoomID) error {
	p, ok := c.sessions.Get(conn)
	if !ok {
		return model.ErrPlayerNotFound
	}
	r, ok := c.rooms.Get(roomID)
	if !ok {
		return model.ErrRoomNotFound
	}
	if r.Host == conn {
		return model.ErrOwnRoom
	}
	if r.IsFull() {
		return model.ErrRoomFull
	}
	if r.Status != model.RoomStatusWaiting {
		return model.ErrGameAlreadyStarted
	}
	host, ok := c.sessions.Get(r.Host)
	if !ok {
		return model.ErrHostNotFound
	}

	c.leaveQueue(conn)
	c.release(p)

	r.Members = append(r.Members, conn)
	r.Status = model.RoomStatusPlaying
	r.TurnHolder = r.Members[0]
	r.Board = model.Board{}
	p.RoomID = r.ID
	host.RoomID = r.ID
	c.transport.JoinGroup(conn, r.ID)

	c.logger.Info("game started", roomAttr(r.ID),
		slog.String("host", string(host.ConnectionID)),
		slog.String("joiner", string(conn)),
	)
	c.sendGameStart(r, host, p)

	// The host may be inside its waiting grace period; its timer is
	// re-evaluated against the playing grace when it fires.
	if host.IsDisconnected() {
		c.transport.Send(conn, model.NewEvent(model.EventOpponentDisconnected, model.OpponentStatusPayload{
			Message:    fmt.Sprintf("%s has disconnected", host.DisplayName),
			GameStatus: model.GameStatusPaused,
			Room:       r.ID,
		}))
	}
	c.broadcastLobby()
	return nil
}

// sendGameStart tells both members of a newly playing room their seats
func (c *Coordinator) sendGameStart(r *model.Room, x, o *model.Player) {
	oName, xName := o.DisplayName, x.DisplayName
	c.transport.Send(x.ConnectionID, model.NewEvent(model.EventGameStart, model.GameStartPayload{
		Room:       r.ID,
		Symbol:     model.SymbolX,
		Opponent:   &oName,
		IsMyTurn:   r.TurnHolder == x.ConnectionID,
		GameStatus: model.GameStatusPlaying,
	}))
	c.transport.Send(o.ConnectionID, model.NewEvent(model.EventGameStart, model.GameStartPayload{
		Room:       r.ID,
		Symbol:     model.SymbolO,
		Opponent:   &xName,
		IsMyTurn:   r.TurnHolder == o.ConnectionID,
		GameStatus: model.GameStatusPlaying,
	}))
}

// MakeMove places the mover's symbol. Nothing is mutated unless every check passes.
func (c *Coordinator) MakeMove(conn model.ConnectionID, roomID model.RoomID, position int) error {
	if _, ok := c.sessions.Get(conn); !ok {
		return model.ErrPlayerNotFound
	}
	r, ok := c.rooms.Get(roomID)
	if !ok {
		return model.ErrGameRoomNotFound
	}
	if !r.IsMember(conn) {
		return model.ErrNotInGame
	}
	if r.Status != model.RoomStatusPlaying {
		return model.ErrGameNotInProgress
	}
	if r.TurnHolder != conn {
		return model.ErrNotYourTurn
	}

	symbol := r.SymbolOf(conn)
	result, err := c.board.Place(&r.Board, position, symbol)
	if err != nil {
		return err
	}

	if result.IsTerminal() {
		winner := model.ConnectionID("")
		if result.Outcome == board.Won {
			winner = conn
		}
		c.finishGame(r, winner, result.Outcome == board.Draw, c.playerInfos(r))
		return nil
	}

	r.TurnHolder = r.Opponent(conn)
	c.transport.SendRoom(r.ID, model.NewEvent(model.EventMoveMade, model.MoveMadePayload{
		Position:   position,
		Symbol:     symbol,
		NextTurn:   r.TurnHolder,
		Board:      r.Board,
		GameStatus: model.GameStatusPlaying,
	}))
	return nil
}

// ListRooms sends the lobby to conn, then to everyone
func (c *Coordinator) ListRooms(conn model.ConnectionID) error {
	summaries := c.rooms.Summaries()
	c.transport.Send(conn, model.NewEvent(model.EventRoomsUpdate, summaries))
	c.broadcastLobby()
	return nil
}

// FindGame pairs conn with the longest waiting seeker, or queues it.
// The seeker that completes a pair plays X and moves first.
func (c *Coordinator) FindGame(conn model.ConnectionID) error {
	p, ok := c.sessions.Get(conn)
	if !ok {
		return model.ErrPlayerNotFound
	}

	c.leaveQueue(conn)
	wasSeated := p.IsSeated()
	c.release(p)
	if wasSeated {
		c.broadcastLobby()
	}

	for len(c.seekers) > 0 {
		oppConn := c.seekers[0]
		c.seekers = c.seekers[1:]
		opp, ok := c.sessions.Get(oppConn)
		if !ok || opp.IsDisconnected() || opp.IsSeated() {
			continue
		}
		if err := c.startMatch(p, opp); err != nil {
			c.seekers = append([]model.ConnectionID{oppConn}, c.seekers...)
			return err
		}
		return nil
	}

	c.seekers = append(c.seekers, conn)
	c.logger.Debug("waiting for opponent", connAttr(conn), slog.Int("queue_length", len(c.seekers)))
	c.transport.Send(conn, model.NewEvent(model.EventWaitingForOpponent, model.WaitingForOpponentPayload{
		Message: "Waiting for an opponent",
	}))
	return nil
}

func (c *Coordinator) startMatch(x, o *model.Player) error {
	name := fmt.Sprintf("Game between %s and %s", x.DisplayName, o.DisplayName)
	r, err := c.rooms.Create(x.ConnectionID, x.DisplayName, name)
	if err != nil {
		return fmt.Errorf("creating match room: %w", err)
	}

	r.Members = append(r.Members, o.ConnectionID)
	r.Status = model.RoomStatusPlaying
	r.TurnHolder = x.ConnectionID
	x.RoomID = r.ID
	o.RoomID = r.ID
	c.transport.JoinGroup(x.ConnectionID, r.ID)
	c.transport.JoinGroup(o.ConnectionID, r.ID)

	c.logger.Info("match started", roomAttr(r.ID),
		slog.String("x", string(x.ConnectionID)),
		slog.String("o", string(o.ConnectionID)),
	)
	c.sendGameStart(r, x, o)
	return nil
}

// Disconnect handles the transport closing conn
func (c *Coordinator) Disconnect(conn model.ConnectionID) {
	c.leaveQueue(conn)

	p, ok := c.sessions.Get(conn)
	if !ok {
		return
	}
	r, ok := c.rooms.Get(p.RoomID)
	if !ok {
		c.sessions.Remove(conn)
		c.broadcastLobby()
		return
	}
	c.transport.LeaveGroup(conn, r.ID)

	switch r.Status {
	case model.RoomStatusWaiting:
		c.sessions.MarkDisconnected(conn, c.clock.Now())
		c.logger.Info("host disconnected from waiting room", roomAttr(r.ID), connAttr(conn))
		c.schedule(graceKey(conn), c.config.WaitingGrace, func() { c.graceExpired(conn) })

	case model.RoomStatusPlaying:
		c.sessions.MarkDisconnected(conn, c.clock.Now())
		c.logger.Info("player disconnected from game", roomAttr(r.ID), connAttr(conn))
		if opp := r.Opponent(conn); opp != "" {
			c.transport.Send(opp, model.NewEvent(model.EventOpponentDisconnected, model.OpponentStatusPayload{
				Message:    fmt.Sprintf("%s has disconnected", p.DisplayName),
				GameStatus: model.GameStatusPaused,
				Room:       r.ID,
			}))
		}
		c.schedule(graceKey(conn), c.config.PlayingGrace, func() { c.graceExpired(conn) })
		c.broadcastLobby()

	default:
		c.vacate(r, conn)
		c.sessions.Remove(conn)
		c.broadcastLobby()
	}
}
