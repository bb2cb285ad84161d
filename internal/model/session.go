package model

// SessionStatus represents the phase of an active game
type SessionStatus string

const (
	SessionStatusPlacingShips SessionStatus = "placing_ships"
	SessionStatusInProgress   SessionStatus = "in_progress"
	SessionStatusFinished     SessionStatus = "finished"
)

// Session is the in-progress game state bound to a room once both room slots
// fill. One session exists per room with status >= PlacingShips.
type Session struct {
	RoomID        RoomID
	Player1       PlayerID // the room creator at session start
	Player2       PlayerID
	Player1Board  *Board
	Player2Board  *Board
	Player1Ready  bool
	Player2Ready  bool
	Status        SessionStatus
	CurrentTurnID PlayerID // empty until InProgress
}

// SetPlayerReady records the given player's board and marks them ready.
// It is a no-op for ids that are not session participants.
func (s *Session) SetPlayerReady(id PlayerID, board *Board) {
	switch id {
	case s.Player1:
		s.Player1Board = board
		s.Player1Ready = true
	case s.Player2:
		s.Player2Board = board
		s.Player2Ready = true
	}
}

// BothReady reports whether both players have submitted boards
func (s *Session) BothReady() bool {
	return s.Player1Ready && s.Player2Ready
}

// BoardOf returns the board owned by the given player, or nil
func (s *Session) BoardOf(id PlayerID) *Board {
	switch id {
	case s.Player1:
		return s.Player1Board
	case s.Player2:
		return s.Player2Board
	default:
		return nil
	}
}

// OpponentOf returns the other participant's id, or "" for non-participants
func (s *Session) OpponentOf(id PlayerID) PlayerID {
	switch id {
	case s.Player1:
		return s.Player2
	case s.Player2:
		return s.Player1
	default:
		return ""
	}
}
