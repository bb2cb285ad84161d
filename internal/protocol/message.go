package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ServerSender is the sender id carried by server-originated messages
const ServerSender = "SERVER"

// MessageType identifies a wire message. The numbering is part of the wire
// contract: system 1-6, lobby 100-109, game 110-119, chat 300.
type MessageType int

const (
	// System
	TypeConnect         MessageType = 1
	TypeConnectResponse MessageType = 2
	TypeDisconnect      MessageType = 3
	TypePing            MessageType = 4
	TypePong            MessageType = 5
	TypeError           MessageType = 6

	// Lobby
	TypeCreateRoom       MessageType = 100
	TypeRoomCreated      MessageType = 101
	TypeJoinRoom         MessageType = 102
	TypeJoinedRoom       MessageType = 103
	TypeGetRooms         MessageType = 104
	TypeRoomsList        MessageType = 105
	TypeLeaveRoom        MessageType = 106
	TypePlayerJoinedRoom MessageType = 107
	TypePlayerLeftRoom   MessageType = 108
	TypeStartGame        MessageType = 109

	// Game
	TypeGameReady            MessageType = 110
	TypeGameState            MessageType = 111
	TypeAttack               MessageType = 112
	TypeAttackResult         MessageType = 113
	TypeGameOver             MessageType = 114
	TypeTurnChanged          MessageType = 115
	TypeReconnectToGame      MessageType = 117
	TypeOpponentDisconnected MessageType = 118
	TypeOpponentReconnected  MessageType = 119

	// Chat
	TypeChatMessage MessageType = 300
)

var typeNames = map[MessageType]string{
	TypeConnect:              "Connect",
	TypeConnectResponse:      "ConnectResponse",
	TypeDisconnect:           "Disconnect",
	TypePing:                 "Ping",
	TypePong:                 "Pong",
	TypeError:                "Error",
	TypeCreateRoom:           "CreateRoom",
	TypeRoomCreated:          "RoomCreated",
	TypeJoinRoom:             "JoinRoom",
	TypeJoinedRoom:           "JoinedRoom",
	TypeGetRooms:             "GetRooms",
	TypeRoomsList:            "RoomsList",
	TypeLeaveRoom:            "LeaveRoom",
	TypePlayerJoinedRoom:     "PlayerJoinedRoom",
	TypePlayerLeftRoom:       "PlayerLeftRoom",
	TypeStartGame:            "StartGame",
	TypeGameReady:            "GameReady",
	TypeGameState:            "GameState",
	TypeAttack:               "Attack",
	TypeAttackResult:         "AttackResult",
	TypeGameOver:             "GameOver",
	TypeTurnChanged:          "TurnChanged",
	TypeReconnectToGame:      "ReconnectToGame",
	TypeOpponentDisconnected: "OpponentDisconnected",
	TypeOpponentReconnected:  "OpponentReconnected",
	TypeChatMessage:          "ChatMessage",
}

// String returns a readable name for logging
func (t MessageType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}

// Known reports whether the type is part of the protocol
func (t MessageType) Known() bool {
	_, ok := typeNames[t]
	return ok
}

// Message is the wire envelope. The payload stays raw until the dispatcher
// knows the concrete type to decode it into.
type Message struct {
	MessageID string          `json:"messageId"`
	Type      MessageType     `json:"type"`
	SenderID  string          `json:"senderId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds an envelope around the given payload. A nil payload
// produces a message without a data field.
func NewMessage(t MessageType, senderID string, payload any) (*Message, error) {
	msg := &Message{
		MessageID: uuid.NewString(),
		Type:      t,
		SenderID:  senderID,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		msg.Data = data
	}
	return msg, nil
}

// MustMessage is NewMessage for payloads that cannot fail to marshal
func MustMessage(t MessageType, senderID string, payload any) *Message {
	msg, err := NewMessage(t, senderID, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// DecodePayload unmarshals the message data into v
func (m *Message) DecodePayload(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%s message has no payload", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Type, err)
	}
	return nil
}
