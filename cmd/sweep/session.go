package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/command"
	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/snapshot"
)

// maximum side of the drawn window, in squares
const maxViewSide = 128

var errViewTooLarge = fmt.Errorf("window sides are limited to %d squares", maxViewSide)

type session struct {
	log   *logrus.Logger
	store *snapshot.Store
	slot  string
	seed  uint64
	seeds func() uint64
	game  *mines.GameState
	lo    mines.Point
	hi    mines.Point
}

func (s *session) oracle() mines.Oracle {
	return s.game.Params().Oracle(s.seed)
}

func (s *session) draw(out io.Writer) {
	fmt.Fprintf(out, "score %d  lives %d  best %d  next life at %d\n",
		s.game.Score(), s.game.Lives(), s.game.HighScore(), s.game.NextLifeAt())
	fmt.Fprintf(out, "view %v to %v\n", s.lo, s.hi)
	fmt.Fprint(out, s.game.Render(s.lo, s.hi))
	if s.game.GameOver() {
		fmt.Fprintln(out, "game over, n starts again")
	}
}

func (s *session) setView(lo, hi mines.Point) error {
	if lo.X > hi.X || lo.Y > hi.Y {
		return errors.New("window corners out of order")
	}
	if uint64(hi.X)-uint64(lo.X) >= maxViewSide || uint64(hi.Y)-uint64(lo.Y) >= maxViewSide {
		return errViewTooLarge
	}
	s.lo, s.hi = lo, hi
	return nil
}

// run reads commands from in until q or end of input. The game is saved after
// every move that changes it, and a reset draws a new seed.
func (s *session) run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.draw(out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		c, err := command.Parse(scanner.Text())
		if errors.Is(err, command.ErrEmpty) {
			continue
		}
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}

		switch c.Kind {
		case command.Quit:
			return nil
		case command.View:
			if err := s.setView(c.Lo, c.Hi); err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
		default:
			next := c.Apply(s.game, s.oracle())
			if c.Kind == command.Reset {
				s.seed = s.seeds()
			}
			if next != s.game {
				s.game = next
				if err := s.store.SaveGame(ctx, s.slot, s.seed, s.game); err != nil {
					return fmt.Errorf("unable to save game: %w", err)
				}
				s.log.WithFields(logrus.Fields{
					"move":  c.Move(),
					"score": s.game.Score(),
					"lives": s.game.Lives(),
				}).Debug("saved")
			}
		}
		s.draw(out)
	}
	return scanner.Err()
}
