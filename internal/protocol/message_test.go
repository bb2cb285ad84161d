package protocol

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MessageSuite struct {
	suite.Suite
}

func TestMessageSuite(t *testing.T) {
	suite.Run(t, new(MessageSuite))
}

func (s *MessageSuite) TestNewMessageFillsEnvelope() {
	msg, err := NewMessage(TypeChatMessage, "p1", ChatMessageData{Message: "hi", SenderName: "Alice"})
	s.Require().NoError(err)

	s.NotEmpty(msg.MessageID)
	s.Equal(TypeChatMessage, msg.Type)
	s.Equal("p1", msg.SenderID)
	s.False(msg.Timestamp.IsZero())
	s.NotEmpty(msg.Data)
}

func (s *MessageSuite) TestNewMessageNilPayload() {
	msg, err := NewMessage(TypePing, "", nil)
	s.Require().NoError(err)
	s.Empty(msg.Data)
}

func (s *MessageSuite) TestDecodePayload() {
	msg := MustMessage(TypeAttack, "p1", AttackData{RoomID: "r1", X: 3, Y: 7})

	var payload AttackData
	s.Require().NoError(msg.DecodePayload(&payload))
	s.Equal("r1", payload.RoomID)
	s.Equal(3, payload.X)
	s.Equal(7, payload.Y)
}

func (s *MessageSuite) TestTypeNames() {
	s.Equal("Connect", TypeConnect.String())
	s.Equal("AttackResult", TypeAttackResult.String())
	s.True(TypeReconnectToGame.Known())
	s.False(MessageType(999).Known())
}
