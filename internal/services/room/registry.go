package room

import (
	"fmt"
	"slices"

	"github.com/mcoot/tictactoe-go/internal/dependencies/clock"
	"github.com/mcoot/tictactoe-go/internal/dependencies/ids"
	"github.com/mcoot/tictactoe-go/internal/model"
)

// maxIDAttempts bounds id generation retries on collision
const maxIDAttempts = 8

// Registry holds live rooms in creation order.
// It is not safe for concurrent use; the coordinator loop owns it.
type Registry struct {
	clock clock.Clock
	ids   ids.Generator
	rooms map[model.RoomID]*model.Room
	order []model.RoomID
}

// New creates an empty Registry
func New(clk clock.Clock, gen ids.Generator) *Registry {
	return &Registry{
		clock: clk,
		ids:   gen,
		rooms: make(map[model.RoomID]*model.Room),
	}
}

// DefaultName returns the room name used when the host gives none
func DefaultName(hostName string) string {
	return fmt.Sprintf("%s's Room", hostName)
}

// Create allocates a waiting room with owner as its only member and turn holder
func (r *Registry) Create(owner model.ConnectionID, ownerName, name string) (*model.Room, error) {
	id, err := r.newID()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = DefaultName(ownerName)
	}

	room := &model.Room{
		ID:         id,
		Name:       name,
		Members:    []model.ConnectionID{owner},
		Host:       owner,
		HostName:   ownerName,
		TurnHolder: owner,
		Status:     model.RoomStatusWaiting,
		CreatedAt:  r.clock.Now(),
	}
	r.rooms[id] = room
	r.order = append(r.order, id)
	return room, nil
}

func (r *Registry) newID() (model.RoomID, error) {
	for range maxIDAttempts {
		id := r.ids.RoomID()
		if _, taken := r.rooms[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("allocating room id: %d collisions", maxIDAttempts)
}

// Get returns the room with the given id
func (r *Registry) Get(id model.RoomID) (*model.Room, bool) {
	room, ok := r.rooms[id]
	return room, ok
}

// Delete removes the room, returning false if it did not exist
func (r *Registry) Delete(id model.RoomID) bool {
	if _, ok := r.rooms[id]; !ok {
		return false
	}
	delete(r.rooms, id)
	r.order = slices.DeleteFunc(r.order, func(existing model.RoomID) bool {
		return existing == id
	})
	return true
}

// ListWaiting returns rooms in the waiting state, oldest first
func (r *Registry) ListWaiting() []*model.Room {
	waiting := make([]*model.Room, 0, len(r.order))
	for _, id := range r.order {
		if room := r.rooms[id]; room.Status == model.RoomStatusWaiting {
			waiting = append(waiting, room)
		}
	}
	return waiting
}

// Summaries returns lobby entries for every waiting room
func (r *Registry) Summaries() []model.RoomSummary {
	waiting := r.ListWaiting()
	summaries := make([]model.RoomSummary, 0, len(waiting))
	for _, room := range waiting {
		summaries = append(summaries, room.Summary())
	}
	return summaries
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	return len(r.rooms)
}

// CountByStatus returns the number of rooms in the given state
func (r *Registry) CountByStatus(status model.RoomStatus) int {
	n := 0
	for _, room := range r.rooms {
		if room.Status == status {
			n++
		}
	}
	return n
}
