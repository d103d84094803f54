package model

import "errors"

// Error kinds. Every domain error wraps exactly one of these so callers can
// classify failures with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a domain error carrying the message shown to the client
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Coordinator errors, worded as they reach the client
var (
	ErrPlayerNotFound     = newError(ErrNotFound, "Player not found")
	ErrGameRoomNotFound   = newError(ErrNotFound, "Game room not found")
	ErrRoomNotFound       = newError(ErrNotFound, "Room not found")
	ErrHostNotFound       = newError(ErrNotFound, "Host player not found")
	ErrNotInGame          = newError(ErrForbidden, "You are not in this game")
	ErrNotYourTurn        = newError(ErrForbidden, "Not your turn")
	ErrOwnRoom            = newError(ErrForbidden, "You cannot join your own room")
	ErrGameNotInProgress  = newError(ErrInvalidState, "Game is not in progress")
	ErrRoomFull           = newError(ErrForbidden, "Room is full")
	ErrGameAlreadyStarted = newError(ErrInvalidState, "Game already in progress")
	ErrInvalidMove        = newError(ErrInvalidInput, "Invalid move")
	ErrInvalidRoomName    = newError(ErrInvalidInput, "Invalid room name")
	ErrMalformedMessage   = newError(ErrInvalidInput, "Malformed message")
	ErrUnknownEvent       = newError(ErrInvalidInput, "Unknown event")
)

// Account errors
var (
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrUsernameTaken      = newError(ErrConflict, "username already taken")
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid username or password")
	ErrInvalidToken       = newError(ErrUnauthorized, "invalid or expired token")
	ErrInvalidUsername    = newError(ErrInvalidInput, "username must be 3-32 characters")
	ErrInvalidPassword    = newError(ErrInvalidInput, "password must be at least 6 characters")
	ErrInvalidHistory     = newError(ErrInvalidInput, "invalid history record")
)

// Storage errors
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
)
