package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Nakonechnik/SeaBattle/internal/model"
	"github.com/Nakonechnik/SeaBattle/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintRoomsList outputs the lobby listing
func (o *Output) PrintRoomsList(rooms protocol.RoomsListData) {
	if o.format == "json" {
		o.printJSON(rooms)
		return
	}

	if rooms.Count == 0 {
		fmt.Println("No open rooms")
		return
	}
	fmt.Printf("Rooms (%d):\n", rooms.Count)
	for _, room := range rooms.Rooms {
		marker := ""
		if room.IsMyRoom {
			marker = " [mine]"
		}
		fmt.Printf("  %s  %q by %s  %d/2  %s%s\n",
			room.ID, room.Name, room.CreatorName, room.PlayerCount, room.Status, marker)
	}
}

// PrintGameState outputs a full game snapshot with both boards
func (o *Output) PrintGameState(state protocol.GameStateData) {
	if o.format == "json" {
		o.printJSON(state)
		return
	}

	fmt.Printf("Room %s, phase %s\n", state.RoomID, state.Phase)
	if state.CurrentTurnPlayerID == state.MyPlayerID {
		fmt.Printf("Your turn, %ds left\n", state.TimeLeft)
	} else {
		fmt.Printf("%s's turn, %ds left\n", state.EnemyPlayerName, state.TimeLeft)
	}
	if state.MyBoard != nil {
		fmt.Println("\nYour board:")
		o.PrintBoard(state.MyBoard)
	}
	if state.EnemyBoard != nil {
		fmt.Printf("\n%s's board:\n", state.EnemyPlayerName)
		o.PrintBoard(state.EnemyBoard)
	}
}

// PrintBoard renders a 10x10 grid, one row per y coordinate
func (o *Output) PrintBoard(board *model.Board) {
	fmt.Print("   ")
	for x := 0; x < model.BoardSize; x++ {
		fmt.Printf(" %d", x)
	}
	fmt.Println()

	for y := 0; y < model.BoardSize; y++ {
		fmt.Printf(" %d ", y)
		for x := 0; x < model.BoardSize; x++ {
			fmt.Printf(" %c", cellRune(board.Cells[x][y]))
		}
		fmt.Println()
	}
}

// PrintAttackResult outputs the outcome of one shot
func (o *Output) PrintAttackResult(result model.AttackResult, myID string) {
	if o.format == "json" {
		o.printJSON(result)
		return
	}

	who := "Opponent fired"
	if result.AttackerID == myID {
		who = "You fired"
	}
	switch {
	case !result.IsValid:
		fmt.Printf("%s at (%d, %d): invalid (%s)\n", who, result.X, result.Y, result.Message)
	case result.IsDestroyed:
		fmt.Printf("%s at (%d, %d): ship of size %d destroyed!\n", who, result.X, result.Y, result.ShipSize)
	case result.IsHit:
		fmt.Printf("%s at (%d, %d): hit!\n", who, result.X, result.Y)
	default:
		fmt.Printf("%s at (%d, %d): miss\n", who, result.X, result.Y)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func cellRune(state model.CellState) rune {
	switch state {
	case model.CellShip:
		return 'O'
	case model.CellHit:
		return 'X'
	case model.CellMiss:
		return '*'
	case model.CellDestroyed:
		return '#'
	default:
		return '.'
	}
}
