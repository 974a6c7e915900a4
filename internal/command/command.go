// Package command parses the line protocol spoken over the game websocket and
// by the terminal client. One command per line:
//
//	g              get the current state
//	o x y          open the square at x:y (chords an open square)
//	f x y          toggle the flag at x:y
//	n              start over, keeping the high score
//	r              forfeit
//	w x0 y0 x1 y1  move the view window
//	q              quit (terminal client only)
package command

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/endless-mines/internal/mines"
)

type Kind string

const (
	Get     Kind = "g"
	Open    Kind = "o"
	Flag    Kind = "f"
	Reset   Kind = "n"
	Forfeit Kind = "r"
	View    Kind = "w"
	Quit    Kind = "q"
)

// Maps known commands to number of arguments
var nargs = map[Kind]int{
	Get:     0,
	Open:    2,
	Flag:    2,
	Reset:   0,
	Forfeit: 0,
	View:    4,
	Quit:    0,
}

var (
	ErrUnknown = errors.New("unknown command")
	ErrArgs    = errors.New("invalid number of arguments")
	ErrEmpty   = errors.New("empty command")
)

type Command struct {
	Kind  Kind
	Point mines.Point // Open, Flag
	Lo    mines.Point // View
	Hi    mines.Point // View
}

func parseInts(args []string) ([]int, error) {
	ints := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d must be an int", i+1)
		}
		ints[i] = n
	}
	return ints, nil
}

func Parse(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrEmpty
	}
	kind := Kind(parts[0])
	n, ok := nargs[kind]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknown, parts[0])
	}
	if n != len(parts)-1 {
		return Command{}, fmt.Errorf("%w: %q takes %d", ErrArgs, parts[0], n)
	}
	args, err := parseInts(parts[1:])
	if err != nil {
		return Command{}, err
	}

	c := Command{Kind: kind}
	switch kind {
	case Open, Flag:
		c.Point = mines.Point{X: args[0], Y: args[1]}
	case View:
		c.Lo = mines.Point{X: args[0], Y: args[1]}
		c.Hi = mines.Point{X: args[2], Y: args[3]}
	}
	return c, nil
}

// Lines yields the non-blank lines of text with their 0-based line numbers.
func Lines(text string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		var (
			line  string
			found = true
		)
		for i := 0; found; i++ {
			line, text, found = strings.Cut(text, "\n")
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			if !yield(i, line) {
				return
			}
		}
	}
}

// Mutates reports whether the command changes the game.
func (c Command) Mutates() bool {
	switch c.Kind {
	case Open, Flag, Reset, Forfeit:
		return true
	}
	return false
}

// Move names the command for logs and metrics.
func (c Command) Move() string {
	switch c.Kind {
	case Open:
		return "open"
	case Flag:
		return "flag"
	case Reset:
		return "reset"
	case Forfeit:
		return "forfeit"
	case View:
		return "view"
	case Quit:
		return "quit"
	default:
		return "get"
	}
}

// Apply runs the command against g. Commands that do not mutate return g.
func (c Command) Apply(g *mines.GameState, oracle mines.Oracle) *mines.GameState {
	switch c.Kind {
	case Open:
		return g.Reveal(c.Point, oracle)
	case Flag:
		return g.ToggleFlag(c.Point, oracle)
	case Reset:
		return g.Reset()
	case Forfeit:
		return g.Forfeit()
	}
	return g
}
