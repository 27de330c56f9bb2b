// Package game implements the Take It Easy board kernel: tiles, the plateau,
// the deck, legal-move generation and scoring. It is pure and deterministic:
// no I/O, no randomness beyond what callers supply explicitly.
package game

import "fmt"

// Tile is an ordered triple of band values, one per hex axis: V1 is the
// "column" band (one of 1, 5, 9), V2 is one diagonal band (2, 6, 7) and V3 is
// the other diagonal band (3, 4, 8). The zero value is the empty tile.
type Tile struct {
	V1 int8 `json:"v1"`
	V2 int8 `json:"v2"`
	V3 int8 `json:"v3"`
}

// EmptyTile is the absent-tile sentinel used for unfilled Plateau slots.
var EmptyTile = Tile{}

// IsEmpty reports whether t is the absent-tile sentinel.
func (t Tile) IsEmpty() bool {
	return t == EmptyTile
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	if t.IsEmpty() {
		return "(-,-,-)"
	}
	return fmt.Sprintf("(%d,%d,%d)", t.V1, t.V2, t.V3)
}

// V1Values, V2Values, V3Values enumerate the legal band values per axis.
var (
	V1Values = [3]int8{1, 5, 9}
	V2Values = [3]int8{2, 6, 7}
	V3Values = [3]int8{3, 4, 8}
)

// FullDeck returns the 27 canonical tiles (the Cartesian product of the three
// axis value sets), in a stable, deterministic order.
func FullDeck() []Tile {
	tiles := make([]Tile, 0, len(V1Values)*len(V2Values)*len(V3Values))
	for _, v1 := range V1Values {
		for _, v2 := range V2Values {
			for _, v3 := range V3Values {
				tiles = append(tiles, Tile{v1, v2, v3})
			}
		}
	}
	return tiles
}
