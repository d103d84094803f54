package model

import "time"

// ConnectionID identifies a live realtime connection
type ConnectionID string

// Player is a connection that has registered a display name
type Player struct {
	ConnectionID   ConnectionID
	DisplayName    string
	RoomID         RoomID     // empty when not seated
	DisconnectedAt *time.Time // set only while a disconnect grace period is pending
}

// IsSeated returns true if the player currently occupies a room
func (p *Player) IsSeated() bool {
	return p.RoomID != ""
}

// IsDisconnected returns true if the player is inside a disconnect grace period
func (p *Player) IsDisconnected() bool {
	return p.DisconnectedAt != nil
}

// UserID identifies a registered account
type UserID string

// User is an account held by the identity provider
type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
