package model

import (
	"fmt"
	"sort"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/random"
)

// BoardSize is the grid dimension of every board
const BoardSize = 10

// maxPlacementRetries bounds RandomPlacement's whole-board attempts
const maxPlacementRetries = 50

// CellState is the resolved state of a single board cell
type CellState int

const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
	CellDestroyed
)

// Grid is a fixed-size cell grid, indexed [x][y]
type Grid [BoardSize][BoardSize]CellState

// VisibilityGrid tracks which cells the opponent has resolved
type VisibilityGrid [BoardSize][BoardSize]bool

// Board is one player's 10x10 grid together with its fleet and the set of
// cells visible to the opponent. The opponent never receives the raw grid;
// use Redacted for anything that crosses the wire to the other side.
type Board struct {
	Cells   Grid           `json:"cells"`
	Ships   []*Ship        `json:"ships"`
	Visible VisibilityGrid `json:"visibleCells"`
}

// AttackResult describes everything a single attack changed. It doubles as
// the wire payload for AttackResult messages; the orchestration layer fills
// in AttackerID, IsGameOver and WinnerID.
type AttackResult struct {
	AttackerID   string      `json:"attackerId"`
	IsValid      bool        `json:"isValid"`
	IsHit        bool        `json:"isHit"`
	IsDestroyed  bool        `json:"isDestroyed"`
	ShipSize     int         `json:"shipSize"`
	Message      string      `json:"message,omitempty"`
	X            int         `json:"x"`
	Y            int         `json:"y"`
	IsGameOver   bool        `json:"isGameOver"`
	WinnerID     string      `json:"winnerId,omitempty"`
	ShipCells    []*ShipCell `json:"shipCells,omitempty"`
	ChangedCells []*ShipCell `json:"changedCells"`
}

// NewBoard creates an empty board with the standard unplaced fleet
func NewBoard() *Board {
	b := &Board{}
	for _, size := range FleetSizes {
		b.Ships = append(b.Ships, NewShip(size))
	}
	return b
}

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

// CanPlace reports whether a ship of the given size fits at (x, y) with the
// given orientation. Every cell of the ship and its full 8-neighbourhood must
// be in bounds (for the ship cells) and free of other ships: ships may not
// touch, not even diagonally.
func (b *Board) CanPlace(x, y, size int, horizontal bool) bool {
	if size <= 0 || size > BoardSize || x < 0 || y < 0 {
		return false
	}
	if horizontal && (x+size > BoardSize || y >= BoardSize) {
		return false
	}
	if !horizontal && (y+size > BoardSize || x >= BoardSize) {
		return false
	}

	for i := 0; i < size; i++ {
		cx, cy := x, y
		if horizontal {
			cx += i
		} else {
			cy += i
		}
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				nx, ny := cx+dx, cy+dy
				if inBounds(nx, ny) && b.Cells[nx][ny] == CellShip {
					return false
				}
			}
		}
	}
	return true
}

// Place puts the ship on the board at (x, y). The placement must satisfy
// CanPlace; otherwise the ship is left unplaced and the board unchanged.
func (b *Board) Place(ship *Ship, x, y int, horizontal bool) {
	if ship == nil || ship.Size <= 0 || !b.CanPlace(x, y, ship.Size, horizontal) {
		return
	}

	ship.Cells = ship.Cells[:0]
	ship.IsPlaced = true

	for i := 0; i < ship.Size; i++ {
		cx, cy := x, y
		if horizontal {
			cx += i
		} else {
			cy += i
		}
		b.Cells[cx][cy] = CellShip
		ship.Cells = append(ship.Cells, &ShipCell{X: cx, Y: cy})
	}
}

// Clear resets the grid, visibility and every ship's placement
func (b *Board) Clear() {
	b.Cells = Grid{}
	b.Visible = VisibilityGrid{}
	for _, ship := range b.Ships {
		ship.IsPlaced = false
		ship.Cells = ship.Cells[:0]
	}
}

// RandomPlacement clears the board and attempts to legally place the whole
// fleet, retrying the full layout a bounded number of times. If no legal
// layout is found the board is left cleared with nothing placed.
func (b *Board) RandomPlacement(rnd random.Random) {
	type position struct {
		x, y       int
		horizontal bool
	}

	for retry := 0; retry < maxPlacementRetries; retry++ {
		b.Clear()
		allPlaced := true

		for _, ship := range b.Ships {
			var valid []position
			for _, horizontal := range []bool{false, true} {
				maxX, maxY := BoardSize, BoardSize-ship.Size+1
				if horizontal {
					maxX, maxY = BoardSize-ship.Size+1, BoardSize
				}
				for x := 0; x < maxX; x++ {
					for y := 0; y < maxY; y++ {
						if b.CanPlace(x, y, ship.Size, horizontal) {
							valid = append(valid, position{x, y, horizontal})
						}
					}
				}
			}

			if len(valid) == 0 {
				allPlaced = false
				break
			}
			pos := valid[rnd.Intn(len(valid))]
			b.Place(ship, pos.x, pos.y, pos.horizontal)
		}

		if allPlaced {
			return
		}
	}
	b.Clear()
}

// IsReady reports whether every ship in the fleet has been placed
func (b *Board) IsReady() bool {
	for _, ship := range b.Ships {
		if !ship.IsPlaced {
			return false
		}
	}
	return true
}

// HasNoShipCellsLeft scans the grid for any remaining Ship cell. This, not a
// ship-by-ship destroyed tally, is the authoritative game-over test: it stays
// correct even if a ship's cell list is inconsistent with the grid.
func (b *Board) HasNoShipCellsLeft() bool {
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b.Cells[x][y] == CellShip {
				return false
			}
		}
	}
	return true
}

// Attack resolves a shot at (x, y). Invalid shots (out of range, or at a cell
// already resolved) change nothing and come back with IsValid false. A valid
// shot marks the cell visible; a hit that destroys a ship additionally marks
// the whole ship Destroyed and every still-empty perimeter cell Miss, and
// reports all of those cells in ChangedCells so callers can push an
// incremental update instead of the whole board.
func (b *Board) Attack(x, y int) *AttackResult {
	result := &AttackResult{X: x, Y: y, ChangedCells: []*ShipCell{}}

	if !inBounds(x, y) {
		result.Message = ErrOutOfBounds.Error()
		return result
	}
	if b.Cells[x][y] == CellHit || b.Cells[x][y] == CellMiss || b.Cells[x][y] == CellDestroyed {
		result.Message = ErrCellResolved.Error()
		return result
	}

	b.Visible[x][y] = true
	result.IsValid = true
	result.ChangedCells = append(result.ChangedCells, &ShipCell{X: x, Y: y})

	if b.Cells[x][y] != CellShip {
		b.Cells[x][y] = CellMiss
		return result
	}

	b.Cells[x][y] = CellHit
	result.IsHit = true

	ship := b.shipAt(x, y)
	if ship == nil {
		// Grid says ship but no fleet entry claims the cell; treat as a
		// plain hit so the game-over scan stays authoritative.
		return result
	}

	for _, c := range ship.Cells {
		if c.X == x && c.Y == y {
			c.IsHit = true
			break
		}
	}

	if !ship.IsDestroyed() {
		return result
	}

	result.IsDestroyed = true
	result.ShipSize = ship.Size
	result.ShipCells = ship.Cells
	for _, c := range ship.Cells {
		b.Cells[c.X][c.Y] = CellDestroyed
		if c.X != x || c.Y != y {
			result.ChangedCells = append(result.ChangedCells, &ShipCell{X: c.X, Y: c.Y})
		}
	}
	result.ChangedCells = append(result.ChangedCells, b.markPerimeter(ship)...)
	return result
}

// markPerimeter marks every still-empty cell in the ship's 8-neighbourhood as
// Miss and visible, returning the cells changed (the "halo" rule).
func (b *Board) markPerimeter(ship *Ship) []*ShipCell {
	var changed []*ShipCell
	for _, cell := range ship.Cells {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				x, y := cell.X+dx, cell.Y+dy
				if inBounds(x, y) && b.Cells[x][y] == CellEmpty {
					b.Cells[x][y] = CellMiss
					b.Visible[x][y] = true
					changed = append(changed, &ShipCell{X: x, Y: y})
				}
			}
		}
	}
	return changed
}

func (b *Board) shipAt(x, y int) *Ship {
	for _, s := range b.Ships {
		if s.HasCell(x, y) {
			return s
		}
	}
	return nil
}

// Redacted returns the projection of this board an opponent is allowed to
// see: only cells already marked visible keep their state, everything else
// reads Empty, and the fleet list carries destroyed ships only. The
// authoritative board is never mutated.
func (b *Board) Redacted() *Board {
	out := &Board{Visible: b.Visible}
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b.Visible[x][y] {
				out.Cells[x][y] = b.Cells[x][y]
			}
		}
	}
	for _, ship := range b.Ships {
		if ship.IsDestroyed() {
			copied := cloneShip(ship)
			out.Ships = append(out.Ships, copied)
		}
	}
	if out.Ships == nil {
		out.Ships = []*Ship{}
	}
	return out
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	out := &Board{Cells: b.Cells, Visible: b.Visible}
	for _, ship := range b.Ships {
		out.Ships = append(out.Ships, cloneShip(ship))
	}
	return out
}

func cloneShip(s *Ship) *Ship {
	out := &Ship{ID: s.ID, Size: s.Size, IsPlaced: s.IsPlaced}
	for _, c := range s.Cells {
		cc := *c
		out.Cells = append(out.Cells, &cc)
	}
	if out.Cells == nil {
		out.Cells = []*ShipCell{}
	}
	return out
}

// Validate checks a client-submitted board against the standard fleet:
// every ship placed, the size roster correct, cells in bounds, contiguous,
// consistent with the grid, and no two ships touching.
func (b *Board) Validate() error {
	if len(b.Ships) != len(FleetSizes) {
		return fmt.Errorf("%w: expected %d ships, got %d", ErrBoardNotReady, len(FleetSizes), len(b.Ships))
	}

	wanted := map[int]int{}
	for _, size := range FleetSizes {
		wanted[size]++
	}

	type owner struct{ ship int }
	occupied := map[[2]int]owner{}

	for i, ship := range b.Ships {
		// Decoded JSON may carry null entries; reject before dereferencing
		if ship == nil {
			return fmt.Errorf("%w: missing ship entry", ErrInvalidPlacement)
		}
		if !ship.IsPlaced || len(ship.Cells) != ship.Size {
			return ErrBoardNotReady
		}
		if wanted[ship.Size] == 0 {
			return fmt.Errorf("%w: unexpected ship of size %d", ErrInvalidPlacement, ship.Size)
		}
		wanted[ship.Size]--

		for _, c := range ship.Cells {
			if c == nil {
				return fmt.Errorf("%w: missing ship cell", ErrInvalidPlacement)
			}
		}

		if err := checkContiguous(ship); err != nil {
			return err
		}

		for _, c := range ship.Cells {
			if !inBounds(c.X, c.Y) {
				return fmt.Errorf("%w: cell (%d, %d) out of bounds", ErrInvalidPlacement, c.X, c.Y)
			}
			if b.Cells[c.X][c.Y] != CellShip {
				return fmt.Errorf("%w: grid does not mark (%d, %d) as ship", ErrInvalidPlacement, c.X, c.Y)
			}
			key := [2]int{c.X, c.Y}
			if _, taken := occupied[key]; taken {
				return fmt.Errorf("%w: overlapping ships at (%d, %d)", ErrInvalidPlacement, c.X, c.Y)
			}
			occupied[key] = owner{ship: i}
		}
	}

	// No-touch rule between distinct ships
	for key, own := range occupied {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				neighbour := [2]int{key[0] + dx, key[1] + dy}
				if other, ok := occupied[neighbour]; ok && other.ship != own.ship {
					return fmt.Errorf("%w: ships touching near (%d, %d)", ErrInvalidPlacement, key[0], key[1])
				}
			}
		}
	}

	// Grid must not carry ship cells the fleet does not claim
	shipCells := 0
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if b.Cells[x][y] == CellShip {
				shipCells++
			}
		}
	}
	if shipCells != len(occupied) {
		return fmt.Errorf("%w: grid has %d ship cells, fleet claims %d", ErrInvalidPlacement, shipCells, len(occupied))
	}

	return nil
}

func checkContiguous(ship *Ship) error {
	if ship.Size == 1 {
		return nil
	}
	xs := make([]int, 0, len(ship.Cells))
	ys := make([]int, 0, len(ship.Cells))
	for _, c := range ship.Cells {
		xs = append(xs, c.X)
		ys = append(ys, c.Y)
	}
	sort.Ints(xs)
	sort.Ints(ys)

	sameRow := ys[0] == ys[len(ys)-1]
	sameCol := xs[0] == xs[len(xs)-1]
	switch {
	case sameRow:
		for i := 1; i < len(xs); i++ {
			if xs[i] != xs[i-1]+1 {
				return fmt.Errorf("%w: ship cells not contiguous", ErrInvalidPlacement)
			}
		}
	case sameCol:
		for i := 1; i < len(ys); i++ {
			if ys[i] != ys[i-1]+1 {
				return fmt.Errorf("%w: ship cells not contiguous", ErrInvalidPlacement)
			}
		}
	default:
		return fmt.Errorf("%w: ship cells not in a line", ErrInvalidPlacement)
	}
	return nil
}
