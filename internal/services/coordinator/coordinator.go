package coordinator

import (
	"log/slog"

	"github.com/mcoot/tictactoe-go/internal/dependencies/clock"
	"github.com/mcoot/tictactoe-go/internal/dependencies/ids"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/board"
	"github.com/mcoot/tictactoe-go/internal/services/room"
	"github.com/mcoot/tictactoe-go/internal/services/session"
)

// Coordinator owns the session and room registries and implements the
// room lifecycle: waiting, playing, finished, deleted.
//
// Every exported handler must run on the dispatcher's goroutine. Dispatch,
// Disconnected, WaitingRooms and Stats are safe to call from anywhere.
type Coordinator struct {
	sessions   *session.Registry
	rooms      *room.Registry
	board      board.ServiceInterface
	transport  Transport
	history    HistoryRecorder
	clock      clock.Clock
	dispatcher Dispatcher
	config     Config
	logger     *slog.Logger

	timers  map[string]clock.Timer
	seekers []model.ConnectionID
}

// New creates a Coordinator
func New(
	transport Transport,
	history HistoryRecorder,
	clk clock.Clock,
	gen ids.Generator,
	dispatcher Dispatcher,
	config Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		sessions:   session.New(),
		rooms:      room.New(clk, gen),
		board:      board.New(),
		transport:  transport,
		history:    history,
		clock:      clk,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger.With(slog.String("component", "coordinator")),
		timers:     make(map[string]clock.Timer),
	}
}

func (c *Coordinator) broadcastLobby() {
	c.transport.Broadcast(model.NewEvent(model.EventRoomsUpdate, c.rooms.Summaries()))
}

func (c *Coordinator) displayName(conn model.ConnectionID) string {
	if p, ok := c.sessions.Get(conn); ok {
		return p.DisplayName
	}
	return "Unknown"
}

func connAttr(conn model.ConnectionID) slog.Attr {
	return slog.String("conn_id", string(conn))
}

func roomAttr(id model.RoomID) slog.Attr {
	return slog.String("room_id", string(id))
}
