package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrNotConnected    = errors.New("player has not connected yet")
	ErrEmptyPlayerName = errors.New("player name must not be empty")

	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("player is already in a room")
	ErrNotInRoom     = errors.New("player is not in a room")
	ErrNotCreator    = errors.New("only the room creator can start the game")
	ErrRoomNotFull   = errors.New("waiting for a second player")
	ErrOwnRoom       = errors.New("cannot join your own room")

	// Session errors
	ErrSessionNotFound   = errors.New("no game session for this room")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrNoOpponent        = errors.New("opponent not found")
	ErrBoardMissing      = errors.New("opponent board not found")
	ErrBoardNotReady     = errors.New("board is not fully placed")

	// Board errors
	ErrOutOfBounds      = errors.New("coordinates out of bounds")
	ErrCellResolved     = errors.New("cell was already attacked")
	ErrInvalidPlacement = errors.New("invalid ship placement")
)
