package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/clock"
	"github.com/Nakonechnik/SeaBattle/internal/dependencies/random"
	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/services/timer"
	"github.com/Nakonechnik/SeaBattle/internal/storage"
)

// Controller manages game sessions and turn flow. All operations on the
// same room are serialized on a per-room lock so shots, timeouts and
// surrenders cannot interleave.
type Controller struct {
	storage storage.Storage
	timers  *timer.Service
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.RoomID]*sync.Mutex
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	timers *timer.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		timers:  timers,
		clock:   clock,
		random:  random,
		logger:  logger,
		locks:   make(map[model.RoomID]*sync.Mutex),
	}
}

// ReadyOutcome reports the result of a board submission
type ReadyOutcome struct {
	Session *model.Session
	Board   *model.Board // the accepted board, generated if none was sent
	Started bool         // both boards in, battle begun
}

// AttackOutcome reports the result of a resolved (or rejected) shot
type AttackOutcome struct {
	Result      *model.AttackResult
	DefenderID  model.PlayerID
	NextTurnID  model.PlayerID
	TurnChanged bool
	TimeLeft    time.Duration
	GameOver    *GameOverOutcome // nil unless this shot ended the game
}

// GameOverOutcome reports a finished game however it ended
type GameOverOutcome struct {
	RoomID      model.RoomID
	WinnerID    model.PlayerID
	WinnerName  string
	LoserID     model.PlayerID
	LoserName   string
	IsSurrender bool
	IsTimeout   bool
}

// StateView is a single player's view of an in-progress game
type StateView struct {
	Session      *model.Session
	Room         *model.Room
	MyBoard      *model.Board
	EnemyBoard   *model.Board // redacted projection
	OpponentID   model.PlayerID
	OpponentName string
	TimeLeft     time.Duration
}

// roomLock returns the serialization lock for a room, creating it on
// first use. Locks are never removed; a finished room's lock is tiny
// and uncontended.
func (c *Controller) roomLock(roomID model.RoomID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[roomID] = l
	}
	return l
}

// StartSession creates the game session for a freshly filled room and
// moves the room and both players into the in-game state.
func (c *Controller) StartSession(ctx context.Context, room *model.Room) (*model.Session, error) {
	lock := c.roomLock(room.ID)
	lock.Lock()
	defer lock.Unlock()

	if !room.IsFull() {
		return nil, model.ErrRoomNotFull
	}

	session := &model.Session{
		RoomID:  room.ID,
		Player1: room.CreatorID,
		Player2: room.SecondID,
		Status:  model.SessionStatusPlacingShips,
	}
	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	room.Status = model.RoomStatusInGame
	room.GameStartedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	for _, playerID := range []model.PlayerID{room.CreatorID, room.SecondID} {
		player, err := c.storage.GetPlayer(ctx, playerID)
		if err != nil {
			return nil, err
		}
		player.Status = model.PlayerStatusInGame
		if err := c.storage.SavePlayer(ctx, player); err != nil {
			return nil, err
		}
	}

	c.logger.Info("game session started",
		slog.String("room_id", string(room.ID)),
		slog.String("player1", string(room.CreatorID)),
		slog.String("player2", string(room.SecondID)),
	)

	return session, nil
}

// GetSession retrieves the session for a room
func (c *Controller) GetSession(ctx context.Context, roomID model.RoomID) (*model.Session, error) {
	return c.storage.GetSession(ctx, roomID)
}

// Ready accepts a player's board for the placement phase. A nil board
// requests server-side random placement. When the second board lands the
// battle starts: a random player gets the first turn and their clock is
// armed.
func (c *Controller) Ready(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, board *model.Board) (*ReadyOutcome, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusPlacingShips {
		return nil, model.ErrGameNotInProgress
	}
	if session.OpponentOf(playerID) == "" {
		return nil, model.ErrPlayerNotFound
	}

	if board == nil {
		board = model.NewBoard()
		board.RandomPlacement(c.random)
	}
	if err := board.Validate(); err != nil {
		return nil, err
	}

	session.SetPlayerReady(playerID, board)

	outcome := &ReadyOutcome{Session: session, Board: board}

	if session.BothReady() {
		session.Status = model.SessionStatusInProgress
		first := session.Player1
		if c.random.Intn(2) == 1 {
			first = session.Player2
		}
		session.CurrentTurnID = first
		outcome.Started = true

		c.logger.Info("battle started",
			slog.String("room_id", string(roomID)),
			slog.String("first_turn", string(first)),
		)
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if outcome.Started {
		c.timers.Start(roomID)
	}

	return outcome, nil
}

// Attack resolves a shot from the attacker at the opponent's board.
// A miss passes the turn; a hit retains it. Either way the turn clock
// restarts. Invalid shots (out of range, already resolved) change
// nothing and leave the clock running.
func (c *Controller) Attack(ctx context.Context, roomID model.RoomID, attackerID model.PlayerID, x, y int) (*AttackOutcome, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, model.ErrGameNotInProgress
	}
	if session.CurrentTurnID != attackerID {
		return nil, model.ErrNotYourTurn
	}

	defenderID := session.OpponentOf(attackerID)
	board := session.BoardOf(defenderID)
	if board == nil {
		return nil, model.ErrBoardMissing
	}

	result := board.Attack(x, y)
	result.AttackerID = string(attackerID)

	outcome := &AttackOutcome{
		Result:     result,
		DefenderID: defenderID,
		NextTurnID: attackerID,
		TimeLeft:   c.timers.TimeLeft(roomID),
	}
	if !result.IsValid {
		return outcome, nil
	}

	if board.HasNoShipCellsLeft() {
		result.IsGameOver = true
		result.WinnerID = string(attackerID)

		over, err := c.finish(ctx, session, attackerID, defenderID, false, false)
		if err != nil {
			return nil, err
		}
		outcome.GameOver = over
		outcome.TimeLeft = 0
		return outcome, nil
	}

	if !result.IsHit {
		session.CurrentTurnID = defenderID
		outcome.NextTurnID = defenderID
		outcome.TurnChanged = true
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	c.timers.Start(roomID)
	outcome.TimeLeft = c.timers.Budget()
	return outcome, nil
}

// Surrender ends the game with the surrendering player as the loser
func (c *Controller) Surrender(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*GameOverOutcome, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusFinished {
		return nil, model.ErrGameNotInProgress
	}

	winnerID := session.OpponentOf(playerID)
	if winnerID == "" {
		return nil, model.ErrPlayerNotFound
	}

	return c.finish(ctx, session, winnerID, playerID, true, false)
}

// HandleTurnTimeout forfeits the game for the player whose clock ran
// out. It is the timer expiry callback; by the time it runs the turn
// may already have been resolved, so the session state is re-checked
// under the room lock and stale expiries report ErrGameNotInProgress.
func (c *Controller) HandleTurnTimeout(ctx context.Context, roomID model.RoomID) (*GameOverOutcome, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, model.ErrGameNotInProgress
	}

	loserID := session.CurrentTurnID
	winnerID := session.OpponentOf(loserID)

	c.logger.Info("turn timed out",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(loserID)),
	)

	return c.finish(ctx, session, winnerID, loserID, false, true)
}

// State builds the given player's view of the game for reconnects and
// state refreshes. The opponent's board comes back redacted.
func (c *Controller) State(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*StateView, error) {
	lock := c.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	session, err := c.storage.GetSession(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	opponentID := session.OpponentOf(playerID)
	if opponentID == "" {
		return nil, model.ErrPlayerNotFound
	}

	view := &StateView{
		Session:      session,
		Room:         room,
		MyBoard:      session.BoardOf(playerID),
		OpponentID:   opponentID,
		OpponentName: room.OpponentNameOf(playerID),
		TimeLeft:     c.timers.TimeLeft(roomID),
	}
	if enemy := session.BoardOf(opponentID); enemy != nil {
		view.EnemyBoard = enemy.Redacted()
	}
	return view, nil
}

// finish ends the session, releases the room, and settles both player
// records. Callers hold the room lock.
func (c *Controller) finish(ctx context.Context, session *model.Session, winnerID, loserID model.PlayerID, surrender, timeout bool) (*GameOverOutcome, error) {
	c.timers.Cancel(session.RoomID)

	session.Status = model.SessionStatusFinished
	session.CurrentTurnID = ""

	room, err := c.storage.GetRoom(ctx, session.RoomID)
	if err != nil {
		return nil, err
	}

	outcome := &GameOverOutcome{
		RoomID:      session.RoomID,
		WinnerID:    winnerID,
		WinnerName:  nameInRoom(room, winnerID),
		LoserID:     loserID,
		LoserName:   nameInRoom(room, loserID),
		IsSurrender: surrender,
		IsTimeout:   timeout,
	}

	// The room and session are done; drop them so the lobby list stays
	// clean. Offline participants lose their reconnect target and go too.
	if err := c.storage.DeleteSession(ctx, session.RoomID); err != nil {
		return nil, err
	}
	if err := c.storage.DeleteRoom(ctx, session.RoomID); err != nil {
		return nil, err
	}

	for _, playerID := range []model.PlayerID{session.Player1, session.Player2} {
		player, err := c.storage.GetPlayer(ctx, playerID)
		if err != nil {
			continue
		}
		if player.IsOffline() {
			_ = c.storage.DeletePlayer(ctx, playerID)
			continue
		}
		player.Status = model.PlayerStatusOnline
		_ = c.storage.SavePlayer(ctx, player)
	}

	c.logger.Info("game over",
		slog.String("room_id", string(session.RoomID)),
		slog.String("winner", string(winnerID)),
		slog.Bool("surrender", surrender),
		slog.Bool("timeout", timeout),
	)

	return outcome, nil
}

func nameInRoom(room *model.Room, playerID model.PlayerID) string {
	switch playerID {
	case room.CreatorID:
		return room.CreatorName
	case room.SecondID:
		return room.SecondName
	default:
		return ""
	}
}

// Interface for dependency injection
type ControllerInterface interface {
	StartSession(ctx context.Context, room *model.Room) (*model.Session, error)
	GetSession(ctx context.Context, roomID model.RoomID) (*model.Session, error)
	Ready(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, board *model.Board) (*ReadyOutcome, error)
	Attack(ctx context.Context, roomID model.RoomID, attackerID model.PlayerID, x, y int) (*AttackOutcome, error)
	Surrender(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*GameOverOutcome, error)
	HandleTurnTimeout(ctx context.Context, roomID model.RoomID) (*GameOverOutcome, error)
	State(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*StateView, error)
}

var _ ControllerInterface = (*Controller)(nil)
