package model

import "encoding/json"

// EventType names a message on the realtime channel
type EventType string

// Inbound events
const (
	EventRegisterPlayer EventType = "register_player"
	EventCreateRoom     EventType = "create_room"
	EventJoinRoom       EventType = "join_room"
	EventMakeMove       EventType = "make_move"
	EventGetRooms       EventType = "get_rooms"
	EventFindGame       EventType = "find_game"
)

// Outbound events
const (
	EventRegistrationComplete EventType = "registration_complete"
	EventGameStart            EventType = "game_start"
	EventMoveMade             EventType = "move_made"
	EventGameEnd              EventType = "game_end"
	EventOpponentDisconnected EventType = "opponent_disconnected"
	EventOpponentReconnected  EventType = "opponent_reconnected"
	EventWaitingForOpponent   EventType = "waiting_for_opponent"
	EventRoomsUpdate          EventType = "rooms_update"
	EventError                EventType = "error"
)

// GameStatus is the room status as reported to clients. It adds "paused"
// for a playing room whose opponent is inside a grace period.
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"
	GameStatusPlaying  GameStatus = "playing"
	GameStatusPaused   GameStatus = "paused"
	GameStatusFinished GameStatus = "finished"
)

// Event is an outbound message
type Event struct {
	Type    EventType `json:"event"`
	Payload any       `json:"data,omitempty"`
}

// Envelope is an inbound message with its payload left undecoded
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an outbound event
func NewEvent(t EventType, payload any) Event {
	return Event{Type: t, Payload: payload}
}

// ErrorEvent builds the error message sent back to a single connection
func ErrorEvent(message string) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Message: message}}
}

// CreateRoomPayload is the data for create_room
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// MakeMovePayload is the data for make_move
type MakeMovePayload struct {
	Position int    `json:"position"`
	RoomID   RoomID `json:"roomId"`
}

// RegistrationCompletePayload acknowledges register_player
type RegistrationCompletePayload struct {
	ID       ConnectionID `json:"id"`
	Username string       `json:"username"`
}

// GameStartPayload tells a member its seat in a room
type GameStartPayload struct {
	Room       RoomID     `json:"room"`
	Symbol     Symbol     `json:"symbol"`
	Opponent   *string    `json:"opponent"`
	IsMyTurn   bool       `json:"isMyTurn"`
	GameStatus GameStatus `json:"gameStatus"`
}

// MoveMadePayload is room-cast after every non-terminal move.
// Position is -1 when replaying state to a reconnected player.
type MoveMadePayload struct {
	Position   int          `json:"position"`
	Symbol     Symbol       `json:"symbol"`
	NextTurn   ConnectionID `json:"nextTurn"`
	Board      Board        `json:"board"`
	GameStatus GameStatus   `json:"gameStatus"`
}

// PlayerInfo describes a member in game_end
type PlayerInfo struct {
	Username string `json:"username"`
	Symbol   Symbol `json:"symbol"`
}

// GameEndPayload is room-cast when a game reaches a terminal board
type GameEndPayload struct {
	Winner       *ConnectionID               `json:"winner"`
	IsDraw       bool                        `json:"isDraw"`
	FinalState   Board                       `json:"finalState"`
	GameStatus   GameStatus                  `json:"gameStatus"`
	WinnerSymbol *Symbol                     `json:"winnerSymbol"`
	Players      map[ConnectionID]PlayerInfo `json:"players"`
}

// OpponentStatusPayload is sent to the remaining member when the other
// member disconnects or reconnects
type OpponentStatusPayload struct {
	Message    string     `json:"message"`
	GameStatus GameStatus `json:"gameStatus"`
	Room       RoomID     `json:"room"`
}

// WaitingForOpponentPayload acknowledges find_game while queued
type WaitingForOpponentPayload struct {
	Message string `json:"message"`
}

// ErrorPayload carries a per-request failure
type ErrorPayload struct {
	Message string `json:"message"`
}
