package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/clock"
	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
	"github.com/Nakonechnik/SeaBattle/internal/services/game"
	"github.com/Nakonechnik/SeaBattle/internal/services/lobby"
	"github.com/Nakonechnik/SeaBattle/internal/services/timer"
	"github.com/Nakonechnik/SeaBattle/internal/storage"
)

// Config holds configuration for the TCP server
type Config struct {
	Host string
	Port int
}

// DefaultConfig returns sensible defaults for server configuration
func DefaultConfig() Config {
	return Config{
		Host: "",
		Port: 9000,
	}
}

// Server accepts client connections and runs one read loop per
// connection, dispatching decoded messages to the handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger

	storage  storage.Storage
	lobby    *lobby.Controller
	game     *game.Controller
	timers   *timer.Service
	clock    clock.Clock
	registry *Registry

	mu       sync.Mutex
	listener net.Listener
	conns    map[model.ConnectionID]*Conn
	closed   bool

	wg sync.WaitGroup
}

// NewServer wires the server and installs the turn-timeout callback
func NewServer(
	cfg Config,
	store storage.Storage,
	lobbyController *lobby.Controller,
	gameController *game.Controller,
	timers *timer.Service,
	clk clock.Clock,
	logger *slog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "server")),
		storage:  store,
		lobby:    lobbyController,
		game:     gameController,
		timers:   timers,
		clock:    clk,
		registry: NewRegistry(),
		conns:    make(map[model.ConnectionID]*Conn),
	}
	timers.SetOnExpire(s.onTurnTimeout)
	return s
}

// Start binds the listener and serves until Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = listener.Close()
		return nil
	}
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("listening", slog.String("addr", listener.Addr().String()))

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		conn := newConn(model.ConnectionID(uuid.NewString()), netConn)
		s.mu.Lock()
		if s.closed {
			// Shutdown raced the accept; this connection is not served
			s.mu.Unlock()
			_ = netConn.Close()
			continue
		}
		s.conns[conn.ID()] = conn
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// Addr reports the bound listener address, for tests using port 0
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting, closes the listener and every live client
// connection, then waits for the connection loops to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	listener := s.listener
	conns := make([]*Conn, 0, len(s.conns))
	for _, conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}
	// Closing the transport unblocks the per-connection read loops
	for _, conn := range conns {
		_ = conn.Close()
	}
	s.timers.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serveConn runs the per-connection read loop. Recoverable protocol
// errors (bad frame lengths, invalid JSON) are answered with an Error
// message and the loop continues; transport errors end the connection
// and trigger the disconnect path.
func (s *Server) serveConn(conn *Conn) {
	logger := s.logger.With(
		slog.String("conn_id", string(conn.ID())),
		slog.String("remote", conn.RemoteAddr()),
	)
	logger.Info("connection accepted")

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn.ID())
		s.mu.Unlock()
		s.onConnClosed(context.Background(), conn, logger)
		logger.Info("connection closed")
	}()

	for {
		msg, err := protocol.ReadMessage(conn.netConn)
		if err != nil {
			if errors.Is(err, protocol.ErrBadFrame) {
				logger.Warn("bad frame", slog.String("error", err.Error()))
				s.sendError(conn, "malformed message")
				continue
			}
			if !errors.Is(err, io.EOF) {
				logger.Warn("read failed", slog.String("error", err.Error()))
			}
			return
		}

		if stop := s.dispatchRecover(context.Background(), conn, msg, logger); stop {
			return
		}
	}
}

// dispatchRecover runs dispatch under panic recovery so a request that
// trips a handler bug answers with an Error message instead of taking
// the process down.
func (s *Server) dispatchRecover(ctx context.Context, conn *Conn, msg *protocol.Message, logger *slog.Logger) (stop bool) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("panic recovered",
				slog.Any("error", err),
				slog.String("type", msg.Type.String()),
				slog.String("stack", string(debug.Stack())),
			)
			s.sendError(conn, "internal server error")
		}
	}()

	return s.dispatch(ctx, conn, msg, logger)
}

// dispatch routes one decoded message. It returns true when the
// connection should close (an explicit Disconnect).
func (s *Server) dispatch(ctx context.Context, conn *Conn, msg *protocol.Message, logger *slog.Logger) bool {
	if !msg.Type.Known() {
		logger.Warn("unknown message type", slog.Int("type", int(msg.Type)))
		s.sendError(conn, "unknown message type")
		return false
	}

	logger.Debug("message received",
		slog.String("type", msg.Type.String()),
		slog.String("message_id", msg.MessageID),
	)

	// Everything except Connect and Ping needs a bound player
	switch msg.Type {
	case protocol.TypeConnect:
		s.handleConnect(ctx, conn, msg)
		return false
	case protocol.TypePing:
		s.handlePing(conn)
		return false
	case protocol.TypeDisconnect:
		return true
	}

	playerID := conn.PlayerID()
	if playerID == "" {
		s.sendError(conn, model.ErrNotConnected.Error())
		return false
	}

	var err error
	switch msg.Type {
	case protocol.TypeCreateRoom:
		err = s.handleCreateRoom(ctx, conn, playerID, msg)
	case protocol.TypeJoinRoom:
		err = s.handleJoinRoom(ctx, conn, playerID, msg)
	case protocol.TypeGetRooms:
		err = s.handleGetRooms(ctx, conn, playerID)
	case protocol.TypeLeaveRoom:
		err = s.handleLeaveRoom(ctx, conn, playerID)
	case protocol.TypeStartGame:
		err = s.handleStartGame(ctx, conn, playerID, msg)
	case protocol.TypeGameReady:
		err = s.handleGameReady(ctx, conn, playerID, msg)
	case protocol.TypeAttack:
		err = s.handleAttack(ctx, conn, playerID, msg)
	case protocol.TypeGameOver:
		err = s.handleSurrender(ctx, conn, playerID)
	case protocol.TypeReconnectToGame:
		err = s.handleReconnectToGame(ctx, conn, playerID, msg)
	case protocol.TypeChatMessage:
		err = s.handleChatMessage(ctx, conn, playerID, msg)
	default:
		s.sendError(conn, "unsupported request")
		return false
	}

	if err != nil {
		logger.Warn("request failed",
			slog.String("type", msg.Type.String()),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		s.sendError(conn, err.Error())
	}
	return false
}

// onTurnTimeout is the timer expiry callback. The controller re-checks
// the session under the room lock, so a turn that advanced in the race
// window surfaces here as a stale-expiry error and is dropped.
func (s *Server) onTurnTimeout(roomID model.RoomID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	outcome, err := s.game.HandleTurnTimeout(ctx, roomID)
	if err != nil {
		if !errors.Is(err, model.ErrSessionNotFound) && !errors.Is(err, model.ErrGameNotInProgress) {
			s.logger.Error("turn timeout handling failed",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	s.notifyGameOver(outcome)
	s.broadcastRoomsList(ctx)
}
