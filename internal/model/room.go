package model

import "time"

// RoomID uniquely identifies a game room
type RoomID string

// RoomStatus represents the lobby-level state of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting" // One occupant, open to join
	RoomStatusFull     RoomStatus = "full"    // Two occupants, game not started
	RoomStatusInGame   RoomStatus = "in_game" // Game running
	RoomStatusFinished RoomStatus = "finished"
)

// Room is a lobby-level pairing slot for at most two players. The creator
// owns the first slot; the second slot is optional.
type Room struct {
	ID            RoomID
	Name          string
	CreatorID     PlayerID
	CreatorName   string
	SecondID      PlayerID // empty while waiting
	SecondName    string
	Status        RoomStatus
	CreatedAt     time.Time
	GameStartedAt time.Time // zero until the game starts
}

// IsFull reports whether both player slots are occupied
func (r *Room) IsFull() bool {
	return r.CreatorID != "" && r.SecondID != ""
}

// IsEmpty reports whether no player occupies the room
func (r *Room) IsEmpty() bool {
	return r.CreatorID == "" && r.SecondID == ""
}

// ContainsPlayer reports whether the given player occupies either slot
func (r *Room) ContainsPlayer(id PlayerID) bool {
	return id != "" && (r.CreatorID == id || r.SecondID == id)
}

// OpponentOf returns the id of the other occupant, or "" if there is none
func (r *Room) OpponentOf(id PlayerID) PlayerID {
	switch id {
	case r.CreatorID:
		return r.SecondID
	case r.SecondID:
		return r.CreatorID
	default:
		return ""
	}
}

// OpponentNameOf returns the display name of the other occupant
func (r *Room) OpponentNameOf(id PlayerID) string {
	switch id {
	case r.CreatorID:
		return r.SecondName
	case r.SecondID:
		return r.CreatorName
	default:
		return ""
	}
}

// RemovePlayer vacates the slot held by the given player. When the creator
// leaves and a second player remains, ownership transfers to them and the
// room reopens for joining.
func (r *Room) RemovePlayer(id PlayerID) {
	switch id {
	case r.CreatorID:
		r.CreatorID = r.SecondID
		r.CreatorName = r.SecondName
		r.SecondID = ""
		r.SecondName = ""
		if r.CreatorID != "" {
			r.Status = RoomStatusWaiting
		}
	case r.SecondID:
		r.SecondID = ""
		r.SecondName = ""
		if r.Status == RoomStatusFull {
			r.Status = RoomStatusWaiting
		}
	}
}
