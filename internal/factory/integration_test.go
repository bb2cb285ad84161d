package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Nakonechnik/SeaBattle/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.TurnTimers.Stop()
}

func (s *IntegrationSuite) seedPlayer(id model.PlayerID, name string) *model.Player {
	player := &model.Player{
		ID: id,
		// A live connection; players without one count as offline and
		// are dropped on game teardown
		ConnectionID: model.ConnectionID("conn-" + string(id)),
		Name:         name,
		Status:       model.PlayerStatusOnline,
		ConnectedAt:  s.app.MockClock.Now(),
		LastSeen:     s.app.MockClock.Now(),
	}
	s.Require().NoError(s.app.Storage.SavePlayer(s.ctx, player))
	return player
}

// placedBoard builds a legal all-horizontal layout for the standard fleet
func placedBoard() *model.Board {
	spots := [][2]int{
		{0, 0}, {5, 0}, {0, 2}, {4, 2}, {7, 2}, {0, 4}, {3, 4}, {5, 4}, {7, 4}, {0, 6},
	}
	board := model.NewBoard()
	for i, ship := range board.Ships {
		board.Place(ship, spots[i][0], spots[i][1], true)
	}
	return board
}

// Test: complete game flow from lobby creation to a sunk fleet
func (s *IntegrationSuite) TestCompleteGameFlow() {
	alice := s.seedPlayer("p1", "alice")
	bob := s.seedPlayer("p2", "bob")

	// Step 1: Alice opens a room, Bob joins
	room, err := s.app.LobbyController.CreateRoom(s.ctx, alice.ID, "duel")
	s.Require().NoError(err)
	s.Equal(model.RoomStatusWaiting, room.Status)

	room, err = s.app.LobbyController.JoinRoom(s.ctx, room.ID, bob.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomStatusFull, room.Status)

	// Step 2: Alice starts the game
	start, err := s.app.LobbyController.StartGame(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)
	s.False(start.AlreadyRunning)
	s.Equal(model.SessionStatusPlacingShips, start.Session.Status)

	// Step 3: both boards in; Alice draws the first turn
	s.app.MockRandom.QueueIntn(0)
	_, err = s.app.GameController.Ready(s.ctx, room.ID, alice.ID, placedBoard())
	s.Require().NoError(err)
	ready, err := s.app.GameController.Ready(s.ctx, room.ID, bob.ID, placedBoard())
	s.Require().NoError(err)
	s.True(ready.Started)
	s.Equal(alice.ID, ready.Session.CurrentTurnID)

	// Step 4: hits keep the turn, so Alice can run Bob's fleet down
	var over *model.AttackResult
	for _, ship := range placedBoard().Ships {
		for _, cell := range ship.Cells {
			outcome, err := s.app.GameController.Attack(s.ctx, room.ID, alice.ID, cell.X, cell.Y)
			s.Require().NoError(err)
			s.Require().True(outcome.Result.IsHit)
			over = outcome.Result
		}
	}
	s.True(over.IsGameOver)
	s.Equal(string(alice.ID), over.WinnerID)

	// Step 5: the room and session are cleaned up
	_, err = s.app.Storage.GetSession(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.app.Storage.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	// Step 6: both players are back in the lobby
	aliceAfter, err := s.app.Storage.GetPlayer(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerStatusOnline, aliceAfter.Status)
}

// Test: surrender ends the game in the opponent's favour
func (s *IntegrationSuite) TestSurrenderEndsGame() {
	alice := s.seedPlayer("p1", "alice")
	bob := s.seedPlayer("p2", "bob")

	room, _ := s.app.LobbyController.CreateRoom(s.ctx, alice.ID, "duel")
	_, _ = s.app.LobbyController.JoinRoom(s.ctx, room.ID, bob.ID)
	_, err := s.app.LobbyController.StartGame(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)

	s.app.MockRandom.QueueIntn(0)
	_, _ = s.app.GameController.Ready(s.ctx, room.ID, alice.ID, placedBoard())
	_, _ = s.app.GameController.Ready(s.ctx, room.ID, bob.ID, placedBoard())

	outcome, err := s.app.GameController.Surrender(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)
	s.True(outcome.IsSurrender)
	s.Equal(bob.ID, outcome.WinnerID)
	s.Equal(alice.ID, outcome.LoserID)
}

// Test: a timed-out turn forfeits the game for the player on the clock
func (s *IntegrationSuite) TestTurnTimeoutForfeits() {
	alice := s.seedPlayer("p1", "alice")
	bob := s.seedPlayer("p2", "bob")

	room, _ := s.app.LobbyController.CreateRoom(s.ctx, alice.ID, "duel")
	_, _ = s.app.LobbyController.JoinRoom(s.ctx, room.ID, bob.ID)
	_, _ = s.app.LobbyController.StartGame(s.ctx, room.ID, alice.ID)

	s.app.MockRandom.QueueIntn(0)
	_, _ = s.app.GameController.Ready(s.ctx, room.ID, alice.ID, placedBoard())
	_, _ = s.app.GameController.Ready(s.ctx, room.ID, bob.ID, placedBoard())

	outcome, err := s.app.GameController.HandleTurnTimeout(s.ctx, room.ID)
	s.Require().NoError(err)
	s.True(outcome.IsTimeout)
	s.Equal(alice.ID, outcome.LoserID)
	s.Equal(bob.ID, outcome.WinnerID)

	// A second expiry for the same room is stale
	_, err = s.app.GameController.HandleTurnTimeout(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Test: an offline in-game player can be found again by name
func (s *IntegrationSuite) TestReconnectableRoomLookup() {
	alice := s.seedPlayer("p1", "alice")
	bob := s.seedPlayer("p2", "bob")

	room, _ := s.app.LobbyController.CreateRoom(s.ctx, alice.ID, "duel")
	_, _ = s.app.LobbyController.JoinRoom(s.ctx, room.ID, bob.ID)
	_, _ = s.app.LobbyController.StartGame(s.ctx, room.ID, alice.ID)

	bob.Status = model.PlayerStatusOffline
	bob.ConnectionID = ""
	s.Require().NoError(s.app.Storage.SavePlayer(s.ctx, bob))

	found, player, err := s.app.LobbyController.FindReconnectableRoom(s.ctx, "bob")
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(room.ID, found.ID)
	s.Equal(bob.ID, player.ID)

	// The game is still readable for the returning player
	view, err := s.app.GameController.State(s.ctx, room.ID, bob.ID)
	s.Require().NoError(err)
	s.Equal(alice.ID, view.OpponentID)
}

// Test: leaving a waiting room removes it entirely
func (s *IntegrationSuite) TestLeaveDeletesEmptyRoom() {
	alice := s.seedPlayer("p1", "alice")

	room, _ := s.app.LobbyController.CreateRoom(s.ctx, alice.ID, "duel")
	outcome, err := s.app.LobbyController.LeaveRoom(s.ctx, room.ID, alice.ID)
	s.Require().NoError(err)
	s.True(outcome.RoomDeleted)

	rooms, err := s.app.LobbyController.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}
