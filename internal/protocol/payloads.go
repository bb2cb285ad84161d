package protocol

import (
	"time"

	"github.com/Nakonechnik/SeaBattle/internal/model"
)

// ConnectData is the payload of a Connect request
type ConnectData struct {
	PlayerName string `json:"playerName"`
}

// ConnectResponseData answers a Connect. PendingReconnectRoomID is set when
// the name matched an offline occupant of an in-game room; the client should
// follow up with ReconnectToGame for that room.
type ConnectResponseData struct {
	PlayerID               string `json:"playerId"`
	Message                string `json:"message"`
	Success                bool   `json:"success"`
	PendingReconnectRoomID string `json:"pendingReconnectRoomId,omitempty"`
}

// ErrorData carries a human-readable failure reason
type ErrorData struct {
	Message string `json:"message"`
}

// CreateRoomData is the payload of a CreateRoom request
type CreateRoomData struct {
	RoomName string `json:"roomName"`
}

// RoomCreatedData confirms room creation to the creator
type RoomCreatedData struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
	Message  string `json:"message"`
}

// JoinRoomData identifies the room for JoinRoom, StartGame and
// ReconnectToGame requests
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// JoinedRoomData confirms a join or a leave to the requesting player
type JoinedRoomData struct {
	RoomID                 string `json:"roomId,omitempty"`
	RoomName               string `json:"roomName,omitempty"`
	Message                string `json:"message"`
	PendingReconnectRoomID string `json:"pendingReconnectRoomId,omitempty"`
}

// RoomInfo is one lobby listing entry, annotated per requesting player
type RoomInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatorName string    `json:"creatorName"`
	PlayerCount int       `json:"playerCount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	IsMyRoom    bool      `json:"isMyRoom"`
}

// RoomsListData is the payload of a RoomsList push
type RoomsListData struct {
	Rooms []RoomInfo `json:"rooms"`
	Count int        `json:"count"`
}

// RoomEventData notifies a room occupant that a player joined or left
type RoomEventData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	RoomID     string `json:"roomId"`
	Message    string `json:"message"`
}

// PlayerInfo is a lightweight player descriptor
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// GameStartData is pushed to both players when a room transitions to InGame
type GameStartData struct {
	RoomID       string     `json:"roomId"`
	Player1      PlayerInfo `json:"player1"`
	Player2      PlayerInfo `json:"player2"`
	YourPlayerID string     `json:"yourPlayerId"`
}

// GameReadyData carries a player's completed board placement
type GameReadyData struct {
	Board *model.Board `json:"board"`
}

// ReadyNotificationData tells a player their opponent has submitted a board
type ReadyNotificationData struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// GameStateData is the full (player-filtered) game state. EnemyBoard is
// always a redacted projection; it never carries unattacked ship cells.
type GameStateData struct {
	RoomID              string       `json:"roomId"`
	MyBoard             *model.Board `json:"myBoard"`
	EnemyBoard          *model.Board `json:"enemyBoard"`
	CurrentTurnPlayerID string       `json:"currentTurnPlayerId"`
	MyPlayerID          string       `json:"myPlayerId"`
	EnemyPlayerID       string       `json:"enemyPlayerId"`
	EnemyPlayerName     string       `json:"enemyPlayerName"`
	Phase               string       `json:"phase"`
	TimeLeft            int          `json:"timeLeft"`
}

// AttackData is the payload of an Attack request
type AttackData struct {
	RoomID string `json:"roomId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// TurnChangeData announces the turn passing to the other player
type TurnChangeData struct {
	NextPlayerID     string `json:"nextPlayerId"`
	PreviousPlayerID string `json:"previousPlayerId"`
	TimeLeft         int    `json:"timeLeft"`
}

// GameOverData names winner and loser and how the game ended
type GameOverData struct {
	WinnerID    string `json:"winnerId"`
	WinnerName  string `json:"winnerName"`
	LoserID     string `json:"loserId"`
	LoserName   string `json:"loserName"`
	IsSurrender bool   `json:"isSurrender"`
	IsTimeout   bool   `json:"isTimeout"`
}

// OpponentPresenceData accompanies OpponentDisconnected / OpponentReconnected
type OpponentPresenceData struct {
	PlayerName string `json:"playerName"`
}

// ChatMessageData is a chat line relayed to the room opponent
type ChatMessageData struct {
	Message    string `json:"message"`
	SenderName string `json:"senderName"`
}
