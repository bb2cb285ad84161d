package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

func (s *Server) handleConnect(ctx context.Context, conn *Conn, msg *protocol.Message) {
	var data protocol.ConnectData
	if err := msg.DecodePayload(&data); err != nil {
		s.sendError(conn, "malformed connect payload")
		return
	}

	name := strings.TrimSpace(data.PlayerName)
	if name == "" {
		s.sendConnectResponse(conn, &protocol.ConnectResponseData{
			Message: model.ErrEmptyPlayerName.Error(),
		})
		return
	}

	// A repeated Connect on a bound connection just re-acknowledges
	if existing := conn.PlayerID(); existing != "" {
		s.sendConnectResponse(conn, &protocol.ConnectResponseData{
			PlayerID: string(existing),
			Message:  "already connected",
			Success:  true,
		})
		return
	}

	// A name matching an offline occupant of an in-game room claims
	// that player record instead of minting a new identity.
	room, offline, err := s.lobby.FindReconnectableRoom(ctx, name)
	if err != nil {
		s.sendError(conn, "connect failed")
		return
	}
	if room != nil {
		s.reconnectPlayer(ctx, conn, room, offline)
		return
	}

	player := &model.Player{
		ID:           model.PlayerID(uuid.NewString()),
		ConnectionID: conn.ID(),
		Name:         name,
		Status:       model.PlayerStatusOnline,
		ConnectedAt:  s.clock.Now(),
		LastSeen:     s.clock.Now(),
	}
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		s.sendError(conn, "connect failed")
		return
	}

	conn.BindPlayer(player.ID)
	s.registry.Bind(player.ID, conn)

	s.logger.Info("player connected",
		slog.String("player_id", string(player.ID)),
		slog.String("name", name),
	)

	s.sendConnectResponse(conn, &protocol.ConnectResponseData{
		PlayerID: string(player.ID),
		Message:  fmt.Sprintf("welcome, %s", name),
		Success:  true,
	})
	_ = s.sendRoomsList(ctx, conn, player.ID)
}

// reconnectPlayer re-binds an interrupted player identity to a fresh
// transport and points the client at its pending game.
func (s *Server) reconnectPlayer(ctx context.Context, conn *Conn, room *model.Room, player *model.Player) {
	player.ConnectionID = conn.ID()
	player.Status = model.PlayerStatusInGame
	player.LastSeen = s.clock.Now()
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		s.sendError(conn, "connect failed")
		return
	}

	conn.BindPlayer(player.ID)
	s.registry.Bind(player.ID, conn)

	s.logger.Info("player reconnected",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name),
		slog.String("room_id", string(room.ID)),
	)

	s.sendConnectResponse(conn, &protocol.ConnectResponseData{
		PlayerID:               string(player.ID),
		Message:                "reconnected to interrupted game",
		Success:                true,
		PendingReconnectRoomID: string(room.ID),
	})

	opponentID := room.OpponentOf(player.ID)
	s.registry.SendTo(opponentID, protocol.MustMessage(
		protocol.TypeOpponentReconnected,
		protocol.ServerSender,
		protocol.OpponentPresenceData{PlayerName: player.Name},
	))
}

func (s *Server) handlePing(conn *Conn) {
	_ = conn.Send(protocol.MustMessage(protocol.TypePong, protocol.ServerSender, nil))
}

func (s *Server) handleCreateRoom(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	// A missing payload just means an unnamed room
	var data protocol.CreateRoomData
	_ = msg.DecodePayload(&data)

	room, err := s.lobby.CreateRoom(ctx, playerID, data.RoomName)
	if err != nil {
		return err
	}

	if err := conn.Send(protocol.MustMessage(protocol.TypeRoomCreated, protocol.ServerSender, protocol.RoomCreatedData{
		RoomID:   string(room.ID),
		RoomName: room.Name,
		Message:  fmt.Sprintf("room %q created", room.Name),
	})); err != nil {
		return nil
	}

	s.broadcastRoomsList(ctx)
	return nil
}

func (s *Server) handleJoinRoom(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	var data protocol.JoinRoomData
	if err := msg.DecodePayload(&data); err != nil {
		return fmt.Errorf("malformed %s payload", msg.Type)
	}

	room, err := s.lobby.JoinRoom(ctx, model.RoomID(data.RoomID), playerID)
	if err != nil {
		return err
	}

	_ = conn.Send(protocol.MustMessage(protocol.TypeJoinedRoom, protocol.ServerSender, protocol.JoinedRoomData{
		RoomID:   string(room.ID),
		RoomName: room.Name,
		Message:  fmt.Sprintf("joined %q", room.Name),
	}))

	s.registry.SendTo(room.CreatorID, protocol.MustMessage(
		protocol.TypePlayerJoinedRoom,
		protocol.ServerSender,
		protocol.RoomEventData{
			PlayerID:   string(playerID),
			PlayerName: room.SecondName,
			RoomID:     string(room.ID),
			Message:    fmt.Sprintf("%s joined the room", room.SecondName),
		},
	))

	s.broadcastRoomsList(ctx)
	return nil
}

func (s *Server) handleGetRooms(ctx context.Context, conn *Conn, playerID model.PlayerID) error {
	return s.sendRoomsList(ctx, conn, playerID)
}

func (s *Server) handleLeaveRoom(ctx context.Context, conn *Conn, playerID model.PlayerID) error {
	room, err := s.lobby.RoomOf(ctx, playerID)
	if err != nil {
		return err
	}
	if room == nil {
		return model.ErrNotInRoom
	}

	// Leaving a running game is a reconnectable disconnect, not a
	// forfeit: the seat stays occupied until the opponent's clock or a
	// reconnect settles it.
	if room.Status == model.RoomStatusInGame {
		s.markInGameOffline(ctx, conn, playerID, room)
		_ = conn.Send(protocol.MustMessage(protocol.TypePlayerLeftRoom, protocol.ServerSender, protocol.RoomEventData{
			PlayerID: string(playerID),
			RoomID:   string(room.ID),
			Message:  "left a running game; reconnect under the same name to resume",
		}))
		return nil
	}

	outcome, err := s.lobby.LeaveRoom(ctx, room.ID, playerID)
	if err != nil {
		return err
	}

	_ = conn.Send(protocol.MustMessage(protocol.TypePlayerLeftRoom, protocol.ServerSender, protocol.RoomEventData{
		PlayerID: string(playerID),
		RoomID:   string(room.ID),
		Message:  "left the room",
	}))

	if !outcome.RoomDeleted {
		s.registry.SendTo(outcome.Room.CreatorID, protocol.MustMessage(
			protocol.TypePlayerLeftRoom,
			protocol.ServerSender,
			protocol.RoomEventData{
				PlayerID: string(playerID),
				RoomID:   string(room.ID),
				Message:  "the other player left the room",
			},
		))
	}

	s.broadcastRoomsList(ctx)
	return nil
}

func (s *Server) handleStartGame(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	// The room id is optional; default to whichever room holds the player
	var data protocol.JoinRoomData
	_ = msg.DecodePayload(&data)

	roomID := model.RoomID(data.RoomID)
	if roomID == "" {
		room, err := s.lobby.RoomOf(ctx, playerID)
		if err != nil {
			return err
		}
		if room == nil {
			return model.ErrNotInRoom
		}
		roomID = room.ID
	}

	outcome, err := s.lobby.StartGame(ctx, roomID, playerID)
	if err != nil {
		return err
	}

	room := outcome.Room
	p1 := protocol.PlayerInfo{ID: string(room.CreatorID), Name: room.CreatorName, Status: string(model.PlayerStatusInGame)}
	p2 := protocol.PlayerInfo{ID: string(room.SecondID), Name: room.SecondName, Status: string(model.PlayerStatusInGame)}

	for _, recipient := range []model.PlayerID{room.CreatorID, room.SecondID} {
		s.registry.SendTo(recipient, protocol.MustMessage(
			protocol.TypeStartGame,
			protocol.ServerSender,
			protocol.GameStartData{
				RoomID:       string(room.ID),
				Player1:      p1,
				Player2:      p2,
				YourPlayerID: string(recipient),
			},
		))
	}

	if !outcome.AlreadyRunning {
		s.broadcastRoomsList(ctx)
	}
	return nil
}

func (s *Server) handleGameReady(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	// A missing or empty board asks for server-side random placement
	var data protocol.GameReadyData
	_ = msg.DecodePayload(&data)

	room, err := s.lobby.RoomOf(ctx, playerID)
	if err != nil {
		return err
	}
	if room == nil {
		return model.ErrNotInRoom
	}

	outcome, err := s.game.Ready(ctx, room.ID, playerID, data.Board)
	if err != nil {
		return err
	}

	// Echo the accepted board back; with server-side placement this is
	// the first time the client sees its own fleet.
	_ = conn.Send(protocol.MustMessage(protocol.TypeGameReady, protocol.ServerSender, protocol.GameReadyData{
		Board: outcome.Board,
	}))

	player, err := s.storage.GetPlayer(ctx, playerID)
	if err == nil {
		s.registry.SendTo(room.OpponentOf(playerID), protocol.MustMessage(
			protocol.TypeGameReady,
			protocol.ServerSender,
			protocol.ReadyNotificationData{
				PlayerID:   string(playerID),
				PlayerName: player.Name,
			},
		))
	}

	if outcome.Started {
		for _, participant := range []model.PlayerID{outcome.Session.Player1, outcome.Session.Player2} {
			s.sendGameState(ctx, room.ID, participant)
		}
	}
	return nil
}

func (s *Server) handleAttack(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	var data protocol.AttackData
	if err := msg.DecodePayload(&data); err != nil {
		return fmt.Errorf("malformed %s payload", msg.Type)
	}

	outcome, err := s.game.Attack(ctx, model.RoomID(data.RoomID), playerID, data.X, data.Y)
	if err != nil {
		return err
	}

	resultMsg := protocol.MustMessage(protocol.TypeAttackResult, protocol.ServerSender, outcome.Result)
	_ = conn.Send(resultMsg)
	if outcome.Result.IsValid {
		s.registry.SendTo(outcome.DefenderID, resultMsg)
	}

	if outcome.GameOver != nil {
		s.notifyGameOver(outcome.GameOver)
		s.broadcastRoomsList(ctx)
		return nil
	}

	if outcome.TurnChanged {
		turnMsg := protocol.MustMessage(protocol.TypeTurnChanged, protocol.ServerSender, protocol.TurnChangeData{
			NextPlayerID:     string(outcome.NextTurnID),
			PreviousPlayerID: string(playerID),
			TimeLeft:         int(outcome.TimeLeft.Seconds()),
		})
		_ = conn.Send(turnMsg)
		s.registry.SendTo(outcome.DefenderID, turnMsg)
	}
	return nil
}

func (s *Server) handleSurrender(ctx context.Context, conn *Conn, playerID model.PlayerID) error {
	room, err := s.lobby.RoomOf(ctx, playerID)
	if err != nil {
		return err
	}
	if room == nil {
		return model.ErrNotInRoom
	}

	outcome, err := s.game.Surrender(ctx, room.ID, playerID)
	if err != nil {
		return err
	}

	s.notifyGameOver(outcome)
	s.broadcastRoomsList(ctx)
	return nil
}

func (s *Server) handleReconnectToGame(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	var data protocol.JoinRoomData
	_ = msg.DecodePayload(&data)

	roomID := model.RoomID(data.RoomID)
	if roomID == "" {
		room, err := s.lobby.RoomOf(ctx, playerID)
		if err != nil {
			return err
		}
		if room == nil {
			return model.ErrNotInRoom
		}
		roomID = room.ID
	}

	view, err := s.game.State(ctx, roomID, playerID)
	if err != nil {
		return err
	}
	return conn.Send(protocol.MustMessage(protocol.TypeGameState, protocol.ServerSender, gameStateData(view, playerID)))
}

func (s *Server) handleChatMessage(ctx context.Context, conn *Conn, playerID model.PlayerID, msg *protocol.Message) error {
	var data protocol.ChatMessageData
	if err := msg.DecodePayload(&data); err != nil {
		return nil // chat is best-effort, drop it
	}

	room, err := s.lobby.RoomOf(ctx, playerID)
	if err != nil || room == nil {
		return nil
	}
	opponentID := room.OpponentOf(playerID)
	if opponentID == "" {
		return nil
	}

	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return nil
	}

	s.registry.SendTo(opponentID, protocol.MustMessage(
		protocol.TypeChatMessage,
		string(playerID),
		protocol.ChatMessageData{
			Message:    data.Message,
			SenderName: player.Name,
		},
	))
	return nil
}

// onConnClosed runs the disconnect path after a read loop ends, however
// it ended. In-game players keep their seat for a reconnect; everyone
// else is removed outright.
func (s *Server) onConnClosed(ctx context.Context, conn *Conn, logger *slog.Logger) {
	playerID := conn.PlayerID()
	if playerID == "" {
		return
	}
	logger.Debug("running disconnect path", slog.String("player_id", string(playerID)))

	s.registry.Unbind(playerID, conn)

	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return
	}
	// A reconnect may already own this identity on a newer transport
	if player.ConnectionID != conn.ID() {
		return
	}

	room, err := s.lobby.RoomOf(ctx, playerID)
	if err == nil && room != nil && room.Status == model.RoomStatusInGame {
		s.markInGameOffline(ctx, conn, playerID, room)
		return
	}

	if room != nil {
		if _, err := s.lobby.LeaveRoom(ctx, room.ID, playerID); err == nil {
			if !room.IsEmpty() {
				s.registry.SendTo(room.CreatorID, protocol.MustMessage(
					protocol.TypePlayerLeftRoom,
					protocol.ServerSender,
					protocol.RoomEventData{
						PlayerID: string(playerID),
						RoomID:   string(room.ID),
						Message:  "the other player disconnected",
					},
				))
			}
		}
	}

	_ = s.storage.DeletePlayer(ctx, playerID)
	s.broadcastRoomsList(ctx)
}

// markInGameOffline clears the player's transport binding while keeping
// their seat, opening the reconnection window, and tells the opponent.
func (s *Server) markInGameOffline(ctx context.Context, conn *Conn, playerID model.PlayerID, room *model.Room) {
	s.registry.Unbind(playerID, conn)

	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return
	}
	player.ConnectionID = ""
	player.Status = model.PlayerStatusOffline
	player.LastSeen = s.clock.Now()
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return
	}

	s.logger.Info("player offline in game",
		slog.String("player_id", string(playerID)),
		slog.String("room_id", string(room.ID)),
	)

	s.registry.SendTo(room.OpponentOf(playerID), protocol.MustMessage(
		protocol.TypeOpponentDisconnected,
		protocol.ServerSender,
		protocol.OpponentPresenceData{PlayerName: player.Name},
	))
}
