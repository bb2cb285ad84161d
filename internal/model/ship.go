package model

import "github.com/google/uuid"

// FleetSizes is the standard ship roster: one four-decker, two three-deckers,
// three two-deckers and four single-cell ships, 20 cells in total.
var FleetSizes = [10]int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

// ShipCell is a single cell occupied by a ship, with its hit flag
type ShipCell struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	IsHit bool `json:"isHit"`
}

// Ship is one vessel on a board
type Ship struct {
	ID       string      `json:"id"`
	Size     int         `json:"size"`
	Cells    []*ShipCell `json:"cells"`
	IsPlaced bool        `json:"isPlaced"`
}

// NewShip creates an unplaced ship of the given size
func NewShip(size int) *Ship {
	return &Ship{
		ID:    uuid.NewString(),
		Size:  size,
		Cells: []*ShipCell{},
	}
}

// IsDestroyed reports whether every occupied cell has been hit.
// An unplaced ship (no cells) is not destroyed.
func (s *Ship) IsDestroyed() bool {
	if len(s.Cells) == 0 {
		return false
	}
	for _, c := range s.Cells {
		if !c.IsHit {
			return false
		}
	}
	return true
}

// HasCell reports whether the ship occupies the given coordinates
func (s *Ship) HasCell(x, y int) bool {
	for _, c := range s.Cells {
		if c.X == x && c.Y == y {
			return true
		}
	}
	return false
}
