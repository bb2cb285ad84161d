package lobby

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/clock"
	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/services/game"
	"github.com/Nakonechnik/SeaBattle/internal/storage"
)

// Controller manages room lifecycle and player membership
type Controller struct {
	storage        storage.Storage
	gameController *game.Controller
	clock          clock.Clock
	logger         *slog.Logger
}

// NewController creates a new LobbyController
func NewController(
	storage storage.Storage,
	gameController *game.Controller,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:        storage,
		gameController: gameController,
		clock:          clock,
		logger:         logger,
	}
}

// StartOutcome reports a game start request. AlreadyRunning is set when
// the room's game was started earlier and the session is simply replayed.
type StartOutcome struct {
	Room           *model.Room
	Session        *model.Session
	AlreadyRunning bool
}

// LeaveOutcome reports the result of leaving a room
type LeaveOutcome struct {
	Room        *model.Room
	RoomDeleted bool
}

// CreateRoom opens a new waiting room owned by the given player. The
// operation is idempotent per player: a creator who already occupies a
// room gets that room back instead of a second one.
func (c *Controller) CreateRoom(ctx context.Context, playerID model.PlayerID, name string) (*model.Room, error) {
	player, err := c.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if current, err := c.RoomOf(ctx, playerID); err != nil {
		return nil, err
	} else if current != nil {
		return current, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("%s's room", player.Name)
	}

	room := &model.Room{
		ID:          model.RoomID(uuid.NewString()),
		Name:        name,
		CreatorID:   player.ID,
		CreatorName: player.Name,
		Status:      model.RoomStatusWaiting,
		CreatedAt:   c.clock.Now(),
	}
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	player.Status = model.PlayerStatusInRoom
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("room_name", room.Name),
		slog.String("creator", string(player.ID)),
	)

	return room, nil
}

// GetRoom retrieves a room by id
func (c *Controller) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	return c.storage.GetRoom(ctx, roomID)
}

// ListRooms returns every room, oldest first
func (c *Controller) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return c.storage.ListRooms(ctx)
}

// RoomOf returns the room the player currently occupies, or nil
func (c *Controller) RoomOf(ctx context.Context, playerID model.PlayerID) (*model.Room, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if room.ContainsPlayer(playerID) {
			return room, nil
		}
	}
	return nil, nil
}

// JoinRoom puts the player into the room's second slot, flipping the
// room to Full. The game itself waits for the creator's start request.
func (c *Controller) JoinRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Room, error) {
	player, err := c.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID == playerID {
		return nil, model.ErrOwnRoom
	}
	if room.Status != model.RoomStatusWaiting || room.IsFull() {
		return nil, model.ErrRoomFull
	}

	if current, err := c.RoomOf(ctx, playerID); err != nil {
		return nil, err
	} else if current != nil {
		return nil, model.ErrAlreadyInRoom
	}

	room.SecondID = player.ID
	room.SecondName = player.Name
	room.Status = model.RoomStatusFull
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	player.Status = model.PlayerStatusInRoom
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	c.logger.Info("player joined room",
		slog.String("room_id", string(room.ID)),
		slog.String("player_id", string(player.ID)),
	)

	return room, nil
}

// StartGame creates the game session for a full room. Only the creator
// may start; repeating the request on a running game replays the
// existing session.
func (c *Controller) StartGame(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*StartOutcome, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.CreatorID != playerID {
		return nil, model.ErrNotCreator
	}

	if room.Status == model.RoomStatusInGame {
		session, err := c.gameController.GetSession(ctx, roomID)
		if err != nil {
			return nil, err
		}
		return &StartOutcome{Room: room, Session: session, AlreadyRunning: true}, nil
	}

	if room.Status != model.RoomStatusFull || !room.IsFull() {
		return nil, model.ErrRoomNotFull
	}

	session, err := c.gameController.StartSession(ctx, room)
	if err != nil {
		return nil, err
	}

	return &StartOutcome{Room: room, Session: session}, nil
}

// LeaveRoom vacates the player's slot. The last player out deletes the
// room; a departing creator hands the room to the remaining player.
func (c *Controller) LeaveRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*LeaveOutcome, error) {
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.ContainsPlayer(playerID) {
		return nil, model.ErrNotInRoom
	}

	room.RemovePlayer(playerID)

	outcome := &LeaveOutcome{Room: room}
	if room.IsEmpty() {
		if err := c.storage.DeleteRoom(ctx, roomID); err != nil {
			return nil, err
		}
		outcome.RoomDeleted = true
	} else {
		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
	}

	if player, err := c.storage.GetPlayer(ctx, playerID); err == nil {
		player.Status = model.PlayerStatusOnline
		_ = c.storage.SavePlayer(ctx, player)
	}

	c.logger.Info("player left room",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(playerID)),
		slog.Bool("room_deleted", outcome.RoomDeleted),
	)

	return outcome, nil
}

// FindReconnectableRoom looks for an in-game room holding an offline
// occupant with the given name. Matching by name is how a fresh
// connection claims an interrupted game.
func (c *Controller) FindReconnectableRoom(ctx context.Context, name string) (*model.Room, *model.Player, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, nil, err
	}

	for _, room := range rooms {
		if room.Status != model.RoomStatusInGame {
			continue
		}
		for _, occupantID := range []model.PlayerID{room.CreatorID, room.SecondID} {
			if occupantID == "" {
				continue
			}
			occupant, err := c.storage.GetPlayer(ctx, occupantID)
			if err != nil {
				continue
			}
			if occupant.Name == name && occupant.IsOffline() {
				return room, occupant, nil
			}
		}
	}
	return nil, nil, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, playerID model.PlayerID, name string) (*model.Room, error)
	GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	RoomOf(ctx context.Context, playerID model.PlayerID) (*model.Room, error)
	JoinRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Room, error)
	StartGame(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*StartOutcome, error)
	LeaveRoom(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*LeaveOutcome, error)
	FindReconnectableRoom(ctx context.Context, name string) (*model.Room, *model.Player, error)
}

var _ ControllerInterface = (*Controller)(nil)
