package model

import "time"

// PlayerID uniquely identifies a player across the system. It is stable
// across reconnects, unlike the transport connection id.
type PlayerID string

// ConnectionID identifies a single TCP connection. A player's connection id
// changes when they reconnect and is empty while they are offline but still
// eligible to resume an in-progress game.
type ConnectionID string

// PlayerStatus represents what a player is currently doing
type PlayerStatus string

const (
	PlayerStatusOffline PlayerStatus = "offline"
	PlayerStatusOnline  PlayerStatus = "online"
	PlayerStatusInRoom  PlayerStatus = "in_room"
	PlayerStatusInGame  PlayerStatus = "in_game"
)

// Player represents a connected (or reconnectable) game participant
type Player struct {
	ID           PlayerID
	ConnectionID ConnectionID // empty while disconnected-but-reconnectable
	Name         string
	Status       PlayerStatus
	ConnectedAt  time.Time
	LastSeen     time.Time
}

// IsOffline reports whether the player currently has no live connection
func (p *Player) IsOffline() bool {
	return p.ConnectionID == ""
}
