package evaluator

import "takeiteasy/internal/game"

// grid maps each of the 19 board positions to a (row, col) cell in the 5x5
// bounding grid used by the feature tensor. Rows have widths 3,4,5,4,3;
// shorter rows are centered so that the hexagonal layout is visually
// preserved inside the square grid, with unused cells left zeroed.
var grid = buildGrid()

type cell struct{ row, col int }

func buildGrid() [game.NumPositions]cell {
	var g [game.NumPositions]cell
	pos := 0
	rowWidths := [5]int{3, 4, 5, 4, 3}
	for row, width := range rowWidths {
		offset := (5 - width) / 2
		for col := 0; col < width; col++ {
			g[pos] = cell{row: row, col: offset + col}
			pos++
		}
	}
	return g
}

// Encode builds the 8x5x5 feature tensor for a board position. The channel
// layout is:
//
//	0: v1 band value / 9         4: announced tile's v1 broadcast / 9
//	1: v2 band value / 9         5: announced tile's v2 broadcast / 9
//	2: v3 band value / 9         6: announced tile's v3 broadcast / 9
//	3: occupied mask             7: turn index / 19 broadcast
//
// announced must be the tile being placed this turn; turnIndex is the
// current 0-based turn number (0..19).
func Encode(p *game.Plateau, announced game.Tile, turnIndex int) Features {
	var f Features
	for pos, t := range p {
		c := grid[pos]
		if !t.IsEmpty() {
			f[0][c.row][c.col] = float32(t.V1) / 9
			f[1][c.row][c.col] = float32(t.V2) / 9
			f[2][c.row][c.col] = float32(t.V3) / 9
			f[3][c.row][c.col] = 1
		}
	}
	turnBroadcast := float32(turnIndex) / float32(game.NumPositions)
	for pos := range p {
		c := grid[pos]
		f[4][c.row][c.col] = float32(announced.V1) / 9
		f[5][c.row][c.col] = float32(announced.V2) / 9
		f[6][c.row][c.col] = float32(announced.V3) / 9
		f[7][c.row][c.col] = turnBroadcast
	}
	return f
}
