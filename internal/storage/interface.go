package storage

import (
	"context"

	"github.com/Nakonechnik/SeaBattle/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error

	// Session operations, keyed by the room the game runs in
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, roomID model.RoomID) (*model.Session, error)
	DeleteSession(ctx context.Context, roomID model.RoomID) error
}
