package redis

import (
	"fmt"

	"github.com/Nakonechnik/SeaBattle/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "seabattle"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playerNameIndexKey returns the Redis key for the name -> player_id index
func playerNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomsIndexKey returns the Redis key for the SET of all room ids
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// sessionKey returns the Redis key for a Session
func sessionKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, roomID)
}
