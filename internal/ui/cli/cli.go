// Package cli implements a colored terminal renderer for a Plateau, for
// interactive/debug use by cmd/bench: centered terminal-width printing with
// ansi-aware width calculation, one colored triple per filled cell.
package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"takeiteasy/internal/game"
)

// rowWidths is the hex board's row shape: 3,4,5,4,3 positions per row,
// 19 positions total.
var rowWidths = [5]int{3, 4, 5, 4, 3}

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the
// length of what remains.
func displayWidth(s string) int {
	return len(ansiFilter.ReplaceAllString(s, ""))
}

// printCentered prints a multi-line block centered on the current terminal
// width, falling back to left-aligned if the terminal size can't be read.
func printCentered(block string) {
	lines := strings.Split(block, "\n")
	terminalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	blockWidth := 0
	for _, line := range lines {
		if w := displayWidth(line); w > blockWidth {
			blockWidth = w
		}
	}
	indent := (terminalWidth - blockWidth) / 2
	if indent < 0 {
		indent = 0
	}
	for _, line := range lines {
		if line == "" {
			fmt.Println()
			continue
		}
		fmt.Printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}

// UI renders Plateau values to the terminal.
type UI struct {
	color bool
}

// New returns a UI. color enables ansi styling; pass false when piping
// output to a file.
func New(color bool) *UI {
	return &UI{color: color}
}

// PrintPlateau renders p as 5 hex rows, one tile per cell. With color on,
// the block is centered on the terminal width; otherwise it is printed
// left-aligned. Rows are not centered relative to each other.
func (ui *UI) PrintPlateau(p *game.Plateau) {
	var rows []string
	pos := 0
	for _, width := range rowWidths {
		cells := make([]string, width)
		for i := 0; i < width; i++ {
			cells[i] = ui.renderTile(p[pos])
			pos++
		}
		rows = append(rows, strings.Join(cells, "  "))
	}
	block := strings.Join(rows, "\n")
	if ui.color {
		printCentered(block)
		return
	}
	fmt.Println(block)
}

// PrintScore prints a labelled score line, e.g. for per-player totals.
func (ui *UI) PrintScore(label string, score int) {
	fmt.Printf("%s: %d\n", label, score)
}

func (ui *UI) renderTile(t game.Tile) string {
	if t.IsEmpty() {
		text := " . "
		if !ui.color {
			return text
		}
		return lipgloss.NewStyle().Faint(true).Render(text)
	}
	text := fmt.Sprintf("%d%d%d", t.V1, t.V2, t.V3)
	if !ui.color {
		return text
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorForV1(t.V1))).
		Bold(true).
		Render(text)
}

// colorForV1 picks an ansi color keyed off the v1 band, so lines that share
// a v1 value visually pop even before they're complete.
func colorForV1(v1 int8) string {
	switch v1 {
	case 1:
		return "4" // blue
	case 5:
		return "2" // green
	case 9:
		return "1" // red
	default:
		return "7" // grey, shouldn't happen for a non-empty tile
	}
}
