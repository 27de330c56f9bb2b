package game

// Axis identifies which of the three hex directions a Line runs along.
type Axis int

const (
	AxisV1 Axis = iota // "columns"
	AxisV2             // one diagonal
	AxisV3             // the other diagonal
	numAxes
)

// Line is a maximal run of collinear positions along one Axis.
type Line struct {
	Axis      Axis
	Positions []int
}

// Lines enumerates all 15 lines of the board (5 per axis): v1-lines, then
// v2-lines, then v3-lines.
var Lines = buildLines()

func buildLines() []Line {
	var lines []Line
	for axis, groups := range [numAxes][][]int{
		AxisV1: {{0, 1, 2}, {3, 4, 5, 6}, {7, 8, 9, 10, 11}, {12, 13, 14, 15}, {16, 17, 18}},
		AxisV2: {{7, 12, 16}, {3, 8, 13, 17}, {0, 4, 9, 14, 18}, {1, 5, 10, 15}, {2, 6, 11}},
		AxisV3: {{0, 3, 7}, {1, 4, 8, 12}, {2, 5, 9, 13, 16}, {6, 10, 14, 17}, {11, 15, 18}},
	} {
		for _, positions := range groups {
			lines = append(lines, Line{Axis: Axis(axis), Positions: positions})
		}
	}
	return lines
}

// bandValue returns the band value of t along the line's axis.
func bandValue(t Tile, axis Axis) int8 {
	switch axis {
	case AxisV1:
		return t.V1
	case AxisV2:
		return t.V2
	default:
		return t.V3
	}
}

// Score sums, over all 15 lines, value*length for every line whose positions
// are all filled and share the same band value on that line's axis; lines
// that are unfilled or mismatched contribute 0. An empty or partially-filled
// plateau therefore scores strictly from whatever lines happen to already be
// complete and matching — by construction that is always 0 before the last
// tile of a line is placed.
func Score(p *Plateau) int {
	total := 0
	for _, line := range Lines {
		total += lineScore(p, line)
	}
	return total
}

// PartialScore is identical to Score: an incomplete board's unfilled lines
// contribute 0 under the same rule Score already applies, so the two
// functions are interchangeable. Kept as a distinct name for mid-game
// scoring; the session code itself scores with Score.
func PartialScore(p *Plateau) int {
	return Score(p)
}

func lineScore(p *Plateau, line Line) int {
	first := p[line.Positions[0]]
	if first.IsEmpty() {
		return 0
	}
	want := bandValue(first, line.Axis)
	for _, pos := range line.Positions[1:] {
		t := p[pos]
		if t.IsEmpty() || bandValue(t, line.Axis) != want {
			return 0
		}
	}
	return int(want) * len(line.Positions)
}
