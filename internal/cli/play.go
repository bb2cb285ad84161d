package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Run an interactive game session",
		Long: `play connects to the server under your name and reads commands from
stdin while printing game events as they arrive. Type "help" inside the
session for the command list.`,
		RunE: runPlay,
	}
}

// session tracks the room the interactive client currently acts in.
// The reader goroutine updates it from server events.
type session struct {
	mu     sync.Mutex
	roomID string
}

func (s *session) set(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
}

func (s *session) get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

func runPlay(cmd *cobra.Command, args []string) error {
	if cfg.PlayerName == "" {
		return errors.New("a player name is required (--name or SEABATTLE_NAME)")
	}

	client, err := Dial(cfg.ServerAddr)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := NewOutput(cfg.Output)

	resp, err := client.Connect(cfg.PlayerName)
	if err != nil {
		return err
	}
	out.PrintMessage(fmt.Sprintf("connected as %s (%s)", cfg.PlayerName, resp.PlayerID))

	sess := &session{}
	if resp.PendingReconnectRoomID != "" {
		sess.set(resp.PendingReconnectRoomID)
		out.PrintMessage("rejoining your interrupted game")
		if err := client.Send(protocol.TypeReconnectToGame, protocol.JoinRoomData{RoomID: resp.PendingReconnectRoomID}); err != nil {
			return err
		}
	}

	// Server events print as they arrive; commands run in the main loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			msg, err := client.Recv(0)
			if err != nil {
				out.PrintMessage("connection closed")
				return
			}
			printEvent(out, client, sess, msg)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(`type "help" for commands`)
	for {
		select {
		case <-done:
			return nil
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := runCommand(client, sess, line); err != nil {
			out.PrintError(err)
		}
	}
}

func runCommand(client *Client, sess *session, line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
		return nil
	case "rooms":
		return client.Send(protocol.TypeGetRooms, nil)
	case "create":
		return client.Send(protocol.TypeCreateRoom, protocol.CreateRoomData{RoomName: strings.Join(args, " ")})
	case "join":
		if len(args) != 1 {
			return errors.New("usage: join <room-id>")
		}
		return client.Send(protocol.TypeJoinRoom, protocol.JoinRoomData{RoomID: args[0]})
	case "start":
		return client.Send(protocol.TypeStartGame, protocol.JoinRoomData{RoomID: sess.get()})
	case "ready":
		// No board means the server places the fleet for us
		return client.Send(protocol.TypeGameReady, protocol.GameReadyData{})
	case "attack":
		if len(args) != 2 {
			return errors.New("usage: attack <x> <y>")
		}
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil {
			return errors.New("coordinates must be numbers")
		}
		return client.Send(protocol.TypeAttack, protocol.AttackData{RoomID: sess.get(), X: x, Y: y})
	case "state":
		return client.Send(protocol.TypeReconnectToGame, protocol.JoinRoomData{RoomID: sess.get()})
	case "chat":
		if len(args) == 0 {
			return errors.New("usage: chat <message>")
		}
		return client.Send(protocol.TypeChatMessage, protocol.ChatMessageData{Message: strings.Join(args, " ")})
	case "surrender":
		return client.Send(protocol.TypeGameOver, nil)
	case "leave":
		return client.Send(protocol.TypeLeaveRoom, nil)
	default:
		return fmt.Errorf("unknown command %q, try \"help\"", cmd)
	}
}

func printHelp() {
	fmt.Println(`commands:
  rooms             list open rooms
  create [name]     create a room
  join <room-id>    join a room
  start             start the game (room creator only)
  ready             submit a randomly placed fleet
  attack <x> <y>    fire at the opponent
  state             show the current game state
  chat <message>    message the opponent
  surrender         give up the game
  leave             leave the current room
  quit              disconnect and exit`)
}

// printEvent renders one server push and keeps the session's room id
// in sync with what the server tells us.
func printEvent(out *Output, client *Client, sess *session, msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeRoomsList:
		var rooms protocol.RoomsListData
		if msg.DecodePayload(&rooms) == nil {
			out.PrintRoomsList(rooms)
		}
	case protocol.TypeRoomCreated:
		var created protocol.RoomCreatedData
		if msg.DecodePayload(&created) == nil {
			sess.set(created.RoomID)
			out.PrintMessage(fmt.Sprintf("room %q created (%s), waiting for an opponent", created.RoomName, created.RoomID))
		}
	case protocol.TypeJoinedRoom:
		var joined protocol.JoinedRoomData
		if msg.DecodePayload(&joined) == nil {
			sess.set(joined.RoomID)
			out.PrintMessage(fmt.Sprintf("joined %q, waiting for the creator to start", joined.RoomName))
		}
	case protocol.TypePlayerJoinedRoom:
		var event protocol.RoomEventData
		if msg.DecodePayload(&event) == nil {
			out.PrintMessage(fmt.Sprintf("%s joined your room, type \"start\" to begin", event.PlayerName))
		}
	case protocol.TypePlayerLeftRoom:
		var event protocol.RoomEventData
		if msg.DecodePayload(&event) == nil {
			out.PrintMessage(event.Message)
		}
	case protocol.TypeStartGame:
		var start protocol.GameStartData
		if msg.DecodePayload(&start) == nil {
			sess.set(start.RoomID)
			out.PrintMessage(fmt.Sprintf("game on: %s vs %s, type \"ready\" to place your fleet",
				start.Player1.Name, start.Player2.Name))
		}
	case protocol.TypeGameReady:
		var ready protocol.GameReadyData
		if msg.DecodePayload(&ready) == nil && ready.Board != nil {
			out.PrintMessage("your fleet:")
			out.PrintBoard(ready.Board)
			out.PrintMessage("waiting for the opponent")
		} else {
			out.PrintMessage("opponent is ready")
		}
	case protocol.TypeGameState:
		var state protocol.GameStateData
		if msg.DecodePayload(&state) == nil {
			out.PrintGameState(state)
		}
	case protocol.TypeAttackResult:
		var result model.AttackResult
		if msg.DecodePayload(&result) == nil {
			out.PrintAttackResult(result, client.PlayerID())
		}
	case protocol.TypeTurnChanged:
		var turn protocol.TurnChangeData
		if msg.DecodePayload(&turn) == nil {
			if turn.NextPlayerID == client.PlayerID() {
				out.PrintMessage(fmt.Sprintf("your turn, %ds on the clock", turn.TimeLeft))
			} else {
				out.PrintMessage("opponent's turn")
			}
		}
	case protocol.TypeGameOver:
		var over protocol.GameOverData
		if msg.DecodePayload(&over) == nil {
			verdict := fmt.Sprintf("%s wins", over.WinnerName)
			if over.WinnerID == client.PlayerID() {
				verdict = "you win"
			}
			switch {
			case over.IsSurrender:
				verdict += " by surrender"
			case over.IsTimeout:
				verdict += " on time"
			}
			out.PrintMessage("game over: " + verdict)
			sess.set("")
		}
	case protocol.TypeOpponentDisconnected:
		var presence protocol.OpponentPresenceData
		if msg.DecodePayload(&presence) == nil {
			out.PrintMessage(fmt.Sprintf("%s disconnected, they may reconnect", presence.PlayerName))
		}
	case protocol.TypeOpponentReconnected:
		var presence protocol.OpponentPresenceData
		if msg.DecodePayload(&presence) == nil {
			out.PrintMessage(fmt.Sprintf("%s is back", presence.PlayerName))
		}
	case protocol.TypeChatMessage:
		var chat protocol.ChatMessageData
		if msg.DecodePayload(&chat) == nil {
			out.PrintMessage(fmt.Sprintf("[%s] %s", chat.SenderName, chat.Message))
		}
	case protocol.TypeError:
		var errData protocol.ErrorData
		if msg.DecodePayload(&errData) == nil {
			out.PrintError(errors.New(errData.Message))
		}
	}
}
