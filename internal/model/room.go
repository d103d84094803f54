package model

import "time"

// RoomID uniquely identifies a room
type RoomID string

// RoomStatus represents the lifecycle phase of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Host seated, waiting for an opponent
	RoomStatusPlaying  RoomStatus = "playing"  // Two players, moves accepted
	RoomStatusFinished RoomStatus = "finished" // Terminal, awaiting cleanup
)

// MaxMembers is the number of seats in a room
const MaxMembers = 2

// Room pairs up to two connections around one board
type Room struct {
	ID         RoomID
	Name       string
	Members    []ConnectionID // Members[0] plays X, Members[1] plays O
	Host       ConnectionID
	HostName   string
	TurnHolder ConnectionID
	Board      Board
	Status     RoomStatus
	CreatedAt  time.Time
}

// Seat returns the member index of conn, or -1 if conn is not a member
func (r *Room) Seat(conn ConnectionID) int {
	for i, m := range r.Members {
		if m == conn {
			return i
		}
	}
	return -1
}

// IsMember returns true if conn occupies a seat in the room
func (r *Room) IsMember(conn ConnectionID) bool {
	return r.Seat(conn) >= 0
}

// SymbolOf returns the symbol for conn's seat, or SymbolNone if not a member
func (r *Room) SymbolOf(conn ConnectionID) Symbol {
	seat := r.Seat(conn)
	if seat < 0 {
		return SymbolNone
	}
	return SymbolForSeat(seat)
}

// Opponent returns the other member, or "" if there is none
func (r *Room) Opponent(conn ConnectionID) ConnectionID {
	for _, m := range r.Members {
		if m != conn {
			return m
		}
	}
	return ""
}

// IsFull returns true if both seats are taken
func (r *Room) IsFull() bool {
	return len(r.Members) >= MaxMembers
}

// RemoveMember drops conn from the member list, returning true if it was present
func (r *Room) RemoveMember(conn ConnectionID) bool {
	seat := r.Seat(conn)
	if seat < 0 {
		return false
	}
	r.Members = append(r.Members[:seat:seat], r.Members[seat+1:]...)
	return true
}

// ReplaceConnection rewrites every reference to oldConn with newConn.
// The seat (and therefore the symbol) is preserved.
func (r *Room) ReplaceConnection(oldConn, newConn ConnectionID) {
	if seat := r.Seat(oldConn); seat >= 0 {
		r.Members[seat] = newConn
	}
	if r.Host == oldConn {
		r.Host = newConn
	}
	if r.TurnHolder == oldConn {
		r.TurnHolder = newConn
	}
}

// Summary returns the lobby listing entry for the room
func (r *Room) Summary() RoomSummary {
	players := make([]ConnectionID, len(r.Members))
	copy(players, r.Members)
	return RoomSummary{
		ID:           r.ID,
		Name:         r.Name,
		Host:         r.Host,
		HostUsername: r.HostName,
		Status:       r.Status,
		Players:      players,
	}
}

// RoomSummary is the lobby view of a room
type RoomSummary struct {
	ID           RoomID         `json:"id"`
	Name         string         `json:"name"`
	Host         ConnectionID   `json:"host"`
	HostUsername string         `json:"hostUsername"`
	Status       RoomStatus     `json:"status"`
	Players      []ConnectionID `json:"players"`
}
