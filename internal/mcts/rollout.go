package mcts

import (
	"math/rand"

	"takeiteasy/internal/game"
)

// rollout plays plateau to completion by repeatedly drawing a uniformly
// random tile and placing it at the position the pattern heuristic likes
// best, then returns the normalized final score. It never backtracks and
// never consults the evaluator: it is the fast, evaluator-free half of leaf
// evaluation, blended with the value network's estimate by Searcher.
func rollout(rng *rand.Rand, plateau game.Plateau, deck game.Deck, penaltyScale float32) float32 {
	for {
		moves := game.LegalMoves(&plateau)
		if len(moves) == 0 {
			break
		}
		var tile game.Tile
		tile, deck = deck.Draw(rng)
		pos := bestHeuristicPosition(&plateau, moves, tile, penaltyScale)
		plateau, _ = game.Place(plateau, pos, tile)
	}
	return normalizeScore(game.Score(&plateau))
}

// bestHeuristicPosition scores every legal position for tile as the
// immediate score increase placing it there would cause, plus a
// completion-potential bonus: +value for every incident line left
// consistent (not yet complete) by the placement, and -penaltyScale*length
// for every incident line the placement breaks. Ties resolve to the lowest
// position index.
func bestHeuristicPosition(plateau *game.Plateau, legal []int, tile game.Tile, penaltyScale float32) int {
	before := game.Score(plateau)
	best := legal[0]
	bestScore := float32(-1 << 30)
	for _, pos := range legal {
		after, _ := game.Place(*plateau, pos, tile)
		score := float32(game.Score(&after)-before) + completionBonus(plateau, &after, pos, penaltyScale)
		if score > bestScore {
			bestScore = score
			best = pos
		}
	}
	return best
}

func completionBonus(before, after *game.Plateau, pos int, penaltyScale float32) float32 {
	var bonus float32
	for _, line := range incidentLines(pos) {
		beforeOK, _ := lineConsistent(before, line)
		afterOK, afterVal := lineConsistent(after, line)
		complete := lineFilled(after, line)
		switch {
		case afterOK && !complete:
			bonus += float32(afterVal)
		case beforeOK && !afterOK:
			bonus -= penaltyScale * float32(len(line.Positions))
		}
	}
	return bonus
}

func incidentLines(pos int) []game.Line {
	var lines []game.Line
	for _, line := range game.Lines {
		for _, p := range line.Positions {
			if p == pos {
				lines = append(lines, line)
				break
			}
		}
	}
	return lines
}

// lineConsistent reports whether every filled position of line shares the
// same band value along line's axis (an empty line trivially qualifies).
func lineConsistent(p *game.Plateau, line game.Line) (bool, int8) {
	var value int8
	seen := false
	for _, pos := range line.Positions {
		t := p[pos]
		if t.IsEmpty() {
			continue
		}
		v := bandValueForAxis(t, line.Axis)
		if !seen {
			value, seen = v, true
		} else if v != value {
			return false, 0
		}
	}
	return true, value
}

func lineFilled(p *game.Plateau, line game.Line) bool {
	for _, pos := range line.Positions {
		if p[pos].IsEmpty() {
			return false
		}
	}
	return true
}

func bandValueForAxis(t game.Tile, axis game.Axis) int8 {
	switch axis {
	case game.AxisV1:
		return t.V1
	case game.AxisV2:
		return t.V2
	default:
		return t.V3
	}
}

// normalizeScore maps a raw score to [-1, 1] by clamping its ratio to a
// fixed ceiling of 200 points (the value every evaluator and rollout call in
// this package agrees on) and rescaling that [0, 1] ratio to [-1, 1].
func normalizeScore(score int) float32 {
	const ceiling = 200
	ratio := float32(score) / ceiling
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return ratio*2 - 1
}
