package redis

import (
	"fmt"

	"github.com/mcoot/tictactoe-go/internal/model"
)

// Key prefix for all tic-tac-toe data
const keyPrefix = "ttt"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// historyKey returns the Redis key for a player's history LIST, newest at the head
func historyKey(player string) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, player)
}
