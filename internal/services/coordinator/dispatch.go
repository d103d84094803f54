package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// failureMessages are sent when a handler fails for a reason the client
// should not see
var failureMessages = map[model.EventType]string{
	model.EventRegisterPlayer: "Failed to register player",
	model.EventCreateRoom:     "Failed to create room",
	model.EventJoinRoom:       "Failed to join room",
	model.EventMakeMove:       "Failed to make move",
	model.EventGetRooms:       "Failed to get rooms list",
	model.EventFindGame:       "Failed to find game",
}

func failureMessage(event model.EventType) string {
	if msg, ok := failureMessages[event]; ok {
		return msg
	}
	return "Request failed"
}

// Dispatch queues an inbound message from conn for the loop
func (c *Coordinator) Dispatch(conn model.ConnectionID, env model.Envelope) {
	c.dispatcher.Post(func() { c.HandleMessage(conn, env) })
}

// Disconnected queues the transport-level close of conn for the loop
func (c *Coordinator) Disconnected(conn model.ConnectionID) {
	c.dispatcher.Post(func() { c.Disconnect(conn) })
}

// HandleMessage routes one inbound message. Failures are reported to conn
// only; a panic is logged and reported as a generic failure.
func (c *Coordinator) HandleMessage(conn model.ConnectionID, env model.Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("panic handling message",
				connAttr(conn),
				slog.String("event", string(env.Event)),
				slog.Any("error", rec),
				slog.String("stack", string(debug.Stack())),
			)
			c.transport.Send(conn, model.ErrorEvent(failureMessage(env.Event)))
		}
	}()

	if err := c.route(conn, env); err != nil {
		c.reportError(conn, env.Event, err)
	}
}

func (c *Coordinator) route(conn model.ConnectionID, env model.Envelope) error {
	switch env.Event {
	case model.EventRegisterPlayer:
		var name string
		if err := decodeOptional(env.Data, &name); err != nil {
			return err
		}
		return c.Register(conn, name)

	case model.EventCreateRoom:
		var payload model.CreateRoomPayload
		if err := decodeOptional(env.Data, &payload); err != nil {
			return err
		}
		return c.CreateRoom(conn, payload.Name)

	case model.EventJoinRoom:
		var roomID model.RoomID
		if err := decodeRequired(env.Data, &roomID); err != nil {
			return err
		}
		return c.JoinRoom(conn, roomID)

	case model.EventMakeMove:
		var payload struct {
			Position *int         `json:"position"`
			RoomID   model.RoomID `json:"roomId"`
		}
		if err := decodeRequired(env.Data, &payload); err != nil {
			return err
		}
		if payload.Position == nil {
			return model.ErrInvalidMove
		}
		return c.MakeMove(conn, payload.RoomID, *payload.Position)

	case model.EventGetRooms:
		return c.ListRooms(conn)

	case model.EventFindGame:
		return c.FindGame(conn)

	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownEvent, env.Event)
	}
}

func (c *Coordinator) reportError(conn model.ConnectionID, event model.EventType, err error) {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		c.logger.Debug("request rejected",
			connAttr(conn),
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
		c.transport.Send(conn, model.ErrorEvent(domainErr.Message))
		return
	}

	c.logger.Error("request failed",
		connAttr(conn),
		slog.String("event", string(event)),
		slog.String("error", err.Error()),
	)
	c.transport.Send(conn, model.ErrorEvent(failureMessage(event)))
}

func isAbsent(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// decodeOptional leaves v untouched when data is absent
func decodeOptional(data json.RawMessage, v any) error {
	if isAbsent(data) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	return nil
}

func decodeRequired(data json.RawMessage, v any) error {
	if isAbsent(data) {
		return model.ErrMalformedMessage
	}
	return decodeOptional(data, v)
}

// query runs fn on the loop and waits for its result
func query[T any](ctx context.Context, d Dispatcher, fn func() T) (T, error) {
	var zero T
	result := make(chan T, 1)
	if err := d.PostContext(ctx, func() { result <- fn() }); err != nil {
		return zero, err
	}
	select {
	case v := <-result:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
