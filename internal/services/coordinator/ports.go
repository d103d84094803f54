package coordinator

import (
	"github.com/mcoot/tictactoe-go/internal/model"
)

// Transport delivers events to connections and tracks room groups.
// Implementations must not block the caller.
type Transport interface {
	Send(conn model.ConnectionID, event model.Event)
	SendRoom(room model.RoomID, event model.Event)
	Broadcast(event model.Event)
	JoinGroup(conn model.ConnectionID, room model.RoomID)
	LeaveGroup(conn model.ConnectionID, room model.RoomID)
}

// HistoryRecorder accepts finished game records. Record must not block.
type HistoryRecorder interface {
	Record(rec model.HistoryRecord)
}
