package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
	"github.com/Nakonechnik/SeaBattle/internal/services/game"
)

func (s *Server) sendError(conn *Conn, message string) {
	_ = conn.Send(protocol.MustMessage(protocol.TypeError, protocol.ServerSender, protocol.ErrorData{
		Message: message,
	}))
}

func (s *Server) sendConnectResponse(conn *Conn, data *protocol.ConnectResponseData) {
	_ = conn.Send(protocol.MustMessage(protocol.TypeConnectResponse, protocol.ServerSender, data))
}

// sendRoomsList sends the current lobby listing to one connection. The
// listing is personalized, IsMyRoom marks rooms the viewer occupies.
func (s *Server) sendRoomsList(ctx context.Context, conn *Conn, viewerID model.PlayerID) error {
	rooms, err := s.lobby.ListRooms(ctx)
	if err != nil {
		return err
	}
	return conn.Send(protocol.MustMessage(protocol.TypeRoomsList, protocol.ServerSender, roomsListData(rooms, viewerID)))
}

// broadcastRoomsList pushes the lobby listing to every bound player.
// Each recipient gets their own view; write failures are the read
// loop's problem, not the broadcaster's.
func (s *Server) broadcastRoomsList(ctx context.Context) {
	rooms, err := s.lobby.ListRooms(ctx)
	if err != nil {
		s.logger.Error("listing rooms for broadcast failed", slog.String("error", err.Error()))
		return
	}

	for _, playerID := range s.registry.Players() {
		s.registry.SendTo(playerID, protocol.MustMessage(
			protocol.TypeRoomsList,
			protocol.ServerSender,
			roomsListData(rooms, playerID),
		))
	}
}

func roomsListData(rooms []*model.Room, viewerID model.PlayerID) protocol.RoomsListData {
	infos := make([]protocol.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		count := 0
		if room.CreatorID != "" {
			count++
		}
		if room.SecondID != "" {
			count++
		}
		infos = append(infos, protocol.RoomInfo{
			ID:          string(room.ID),
			Name:        room.Name,
			CreatorName: room.CreatorName,
			PlayerCount: count,
			Status:      string(room.Status),
			CreatedAt:   room.CreatedAt,
			IsMyRoom:    room.ContainsPlayer(viewerID),
		})
	}
	return protocol.RoomsListData{Rooms: infos, Count: len(infos)}
}

// sendGameState pushes a full personalized snapshot to one player,
// used after both boards are placed and on reconnect.
func (s *Server) sendGameState(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) {
	view, err := s.game.State(ctx, roomID, playerID)
	if err != nil {
		s.logger.Warn("building game state failed",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return
	}

	s.registry.SendTo(playerID, protocol.MustMessage(protocol.TypeGameState, protocol.ServerSender, gameStateData(view, playerID)))
}

func gameStateData(view *game.StateView, playerID model.PlayerID) protocol.GameStateData {
	return protocol.GameStateData{
		RoomID:              string(view.Room.ID),
		MyBoard:             view.MyBoard,
		EnemyBoard:          view.EnemyBoard,
		CurrentTurnPlayerID: string(view.Session.CurrentTurnID),
		MyPlayerID:          string(playerID),
		EnemyPlayerID:       string(view.OpponentID),
		EnemyPlayerName:     view.OpponentName,
		Phase:               string(view.Session.Status),
		TimeLeft:            int(view.TimeLeft / time.Second),
	}
}

// notifyGameOver tells both participants how the game ended. By the time
// this runs the session and room are already gone, so all the facts come
// from the outcome itself.
func (s *Server) notifyGameOver(outcome *game.GameOverOutcome) {
	msg := protocol.MustMessage(protocol.TypeGameOver, protocol.ServerSender, protocol.GameOverData{
		WinnerID:    string(outcome.WinnerID),
		WinnerName:  outcome.WinnerName,
		LoserID:     string(outcome.LoserID),
		LoserName:   outcome.LoserName,
		IsSurrender: outcome.IsSurrender,
		IsTimeout:   outcome.IsTimeout,
	})

	s.registry.SendTo(outcome.WinnerID, msg)
	s.registry.SendTo(outcome.LoserID, msg)

	s.logger.Info("game over",
		slog.String("room_id", string(outcome.RoomID)),
		slog.String("winner_id", string(outcome.WinnerID)),
		slog.Bool("surrender", outcome.IsSurrender),
		slog.Bool("timeout", outcome.IsTimeout),
	)
}
