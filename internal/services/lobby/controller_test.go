package lobby

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/mocks"
	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/services/game"
	"github.com/Nakonechnik/SeaBattle/internal/services/timer"
	"github.com/Nakonechnik/SeaBattle/internal/storage/memory"
	"github.com/Nakonechnik/SeaBattle/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	timers     *timer.Service
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.timers = timer.New(time.Minute, s.clock, testutil.NopLogger())
	gameController := game.NewController(s.storage, s.timers, s.clock, s.random, testutil.NopLogger())
	s.controller = NewController(s.storage, gameController, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) TearDownTest() {
	s.timers.Stop()
}

func (s *ControllerSuite) seedPlayer(id model.PlayerID, name string) *model.Player {
	player := &model.Player{
		ID:           id,
		ConnectionID: model.ConnectionID("conn-" + string(id)),
		Name:         name,
		Status:       model.PlayerStatusOnline,
		ConnectedAt:  s.clock.Now(),
	}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, player))
	return player
}

// CreateRoom tests

func (s *ControllerSuite) TestCreateRoom() {
	s.seedPlayer("player-1", "Alice")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "my room")
	s.Require().NoError(err)

	s.NotEmpty(room.ID)
	s.Equal("my room", room.Name)
	s.Equal(model.PlayerID("player-1"), room.CreatorID)
	s.Equal("Alice", room.CreatorName)
	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Equal(s.clock.Now(), room.CreatedAt)

	player, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerStatusInRoom, player.Status)
}

func (s *ControllerSuite) TestCreateRoomDefaultName() {
	s.seedPlayer("player-1", "Alice")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "  ")
	s.Require().NoError(err)
	s.Equal("Alice's room", room.Name)
}

func (s *ControllerSuite) TestCreateRoomUnknownPlayer() {
	_, err := s.controller.CreateRoom(s.ctx, "nonexistent", "room")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestCreateRoomIsIdempotentPerPlayer() {
	s.seedPlayer("player-1", "Alice")

	first, err := s.controller.CreateRoom(s.ctx, "player-1", "first")
	s.Require().NoError(err)

	second, err := s.controller.CreateRoom(s.ctx, "player-1", "second")
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)
	s.Equal("first", second.Name)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 1)
}

// JoinRoom tests

func (s *ControllerSuite) TestJoinRoomFillsRoom() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	joined, err := s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)

	s.Equal(model.PlayerID("player-2"), joined.SecondID)
	s.Equal("Bob", joined.SecondName)
	s.Equal(model.RoomStatusFull, joined.Status)

	// The game does not start until the creator asks for it
	_, err = s.storage.GetSession(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestJoinRoomNotFound() {
	s.seedPlayer("player-1", "Alice")

	_, err := s.controller.JoinRoom(s.ctx, "nonexistent", "player-1")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestJoinOwnRoom() {
	s.seedPlayer("player-1", "Alice")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-1")
	s.ErrorIs(err, model.ErrOwnRoom)
}

func (s *ControllerSuite) TestJoinFullRoom() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")
	s.seedPlayer("player-3", "Carol")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-3")
	s.ErrorIs(err, model.ErrRoomFull)
}

func (s *ControllerSuite) TestJoinWhileInAnotherRoom() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.CreateRoom(s.ctx, "player-2", "other")
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.ErrorIs(err, model.ErrAlreadyInRoom)
}

// StartGame tests

func (s *ControllerSuite) TestStartGame() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)

	outcome, err := s.controller.StartGame(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)

	s.False(outcome.AlreadyRunning)
	s.Equal(model.RoomStatusInGame, outcome.Room.Status)
	s.Require().NotNil(outcome.Session)
	s.Equal(model.SessionStatusPlacingShips, outcome.Session.Status)
	s.Equal(model.PlayerID("player-1"), outcome.Session.Player1)
	s.Equal(model.PlayerID("player-2"), outcome.Session.Player2)
}

func (s *ControllerSuite) TestStartGameOnlyCreator() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)

	_, err = s.controller.StartGame(s.ctx, room.ID, "player-2")
	s.ErrorIs(err, model.ErrNotCreator)
}

func (s *ControllerSuite) TestStartGameRequiresFullRoom() {
	s.seedPlayer("player-1", "Alice")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	_, err = s.controller.StartGame(s.ctx, room.ID, "player-1")
	s.ErrorIs(err, model.ErrRoomNotFull)
}

func (s *ControllerSuite) TestStartGameIdempotentWhenRunning() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)

	first, err := s.controller.StartGame(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)

	again, err := s.controller.StartGame(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)
	s.True(again.AlreadyRunning)
	s.Equal(first.Session.RoomID, again.Session.RoomID)
}

// LeaveRoom tests

func (s *ControllerSuite) TestLeaveRoomDeletesEmptyRoom() {
	s.seedPlayer("player-1", "Alice")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	outcome, err := s.controller.LeaveRoom(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)
	s.True(outcome.RoomDeleted)

	_, err = s.storage.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	player, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(model.PlayerStatusOnline, player.Status)
}

func (s *ControllerSuite) TestLeaveRoomPromotesRemainingPlayer() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)

	// The creator walks out of a full room; the occupant inherits it
	outcome, err := s.controller.LeaveRoom(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)
	s.False(outcome.RoomDeleted)
	s.Equal(model.PlayerID("player-2"), outcome.Room.CreatorID)
	s.Equal("Bob", outcome.Room.CreatorName)
	s.Empty(outcome.Room.SecondID)
	s.Equal(model.RoomStatusWaiting, outcome.Room.Status)

	// The promotion is persisted, not just reported
	saved, err := s.storage.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-2"), saved.CreatorID)
	s.Equal(model.RoomStatusWaiting, saved.Status)
}

func (s *ControllerSuite) TestLeaveRoomNotAMember() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	_, err = s.controller.LeaveRoom(s.ctx, room.ID, "player-2")
	s.ErrorIs(err, model.ErrNotInRoom)
}

// RoomOf tests

func (s *ControllerSuite) TestRoomOf() {
	s.seedPlayer("player-1", "Alice")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	found, err := s.controller.RoomOf(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(room.ID, found.ID)

	none, err := s.controller.RoomOf(s.ctx, "player-9")
	s.Require().NoError(err)
	s.Nil(none)
}

// Reconnect lookup tests

func (s *ControllerSuite) TestFindReconnectableRoom() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)
	_, err = s.controller.StartGame(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)

	// Bob drops mid-game
	bob, err := s.storage.GetPlayer(s.ctx, "player-2")
	s.Require().NoError(err)
	bob.ConnectionID = ""
	bob.Status = model.PlayerStatusOffline
	s.Require().NoError(s.storage.SavePlayer(s.ctx, bob))

	foundRoom, foundPlayer, err := s.controller.FindReconnectableRoom(s.ctx, "Bob")
	s.Require().NoError(err)
	s.Require().NotNil(foundRoom)
	s.Equal(room.ID, foundRoom.ID)
	s.Equal(model.PlayerID("player-2"), foundPlayer.ID)
}

func (s *ControllerSuite) TestFindReconnectableRoomIgnoresConnectedPlayers() {
	s.seedPlayer("player-1", "Alice")
	s.seedPlayer("player-2", "Bob")

	room, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, room.ID, "player-2")
	s.Require().NoError(err)
	_, err = s.controller.StartGame(s.ctx, room.ID, "player-1")
	s.Require().NoError(err)

	foundRoom, foundPlayer, err := s.controller.FindReconnectableRoom(s.ctx, "Bob")
	s.Require().NoError(err)
	s.Nil(foundRoom)
	s.Nil(foundPlayer)
}

func (s *ControllerSuite) TestFindReconnectableRoomIgnoresWaitingRooms() {
	s.seedPlayer("player-1", "Alice")

	_, err := s.controller.CreateRoom(s.ctx, "player-1", "room")
	s.Require().NoError(err)

	alice, err := s.storage.GetPlayer(s.ctx, "player-1")
	s.Require().NoError(err)
	alice.ConnectionID = ""
	s.Require().NoError(s.storage.SavePlayer(s.ctx, alice))

	foundRoom, _, err := s.controller.FindReconnectableRoom(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Nil(foundRoom)
}
