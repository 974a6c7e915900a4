// Command sweep plays an endless game in the terminal, reading commands from
// stdin and keeping the game in a local sqlite file between runs.
package main

import (
	"context"
	"errors"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/config"
	"github.com/vancomm/endless-mines/internal/mines"
	"github.com/vancomm/endless-mines/internal/snapshot"
)

var (
	dbPath     string
	slot       string
	seed       uint64
	newGame    bool
	radius     int
	list       bool
	deleteSlot bool
)

func init() {
	flag.StringVar(&dbPath, "db", "sweep.db", "path to the sqlite save file")
	flag.StringVar(&slot, "slot", "default", "save slot to play")
	flag.Uint64Var(&seed, "seed", 0, "seed for a new game (0 picks one at random)")
	flag.BoolVar(&newGame, "new", false, "start a new game even if the slot holds one")
	flag.IntVar(&radius, "radius", 8, "initial view radius around the origin")
	flag.BoolVar(&list, "list", false, "list the save slots and exit")
	flag.BoolVar(&deleteSlot, "delete", false, "delete the save slot and exit")
}

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if err := config.Load(); err != nil {
		log.Fatal("unable to load env file: ", err)
	}
	if logging, err := config.NewLogging(); err != nil {
		log.Fatal("unable to read logging config: ", err)
	} else if err := logging.Apply(log); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}
	mines.Log = log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := snapshot.Open(ctx, dbPath, "saves")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	switch {
	case list:
		if err := listSlots(ctx, store, os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	case deleteSlot:
		if err := removeSlot(ctx, log, store, slot); err != nil {
			log.Fatal(err)
		}
		return
	}

	s, err := load(ctx, log, store)
	if err != nil {
		log.Fatal(err)
	}
	if err := s.setView(mines.Point{X: -radius, Y: -radius}, mines.Point{X: radius, Y: radius}); err != nil {
		log.Fatal(err)
	}
	if err := s.run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func load(ctx context.Context, log *logrus.Logger, store *snapshot.Store) (*session, error) {
	s := &session{log: log, store: store, slot: slot, seeds: rand.Uint64}

	if !newGame {
		save, err := store.LoadGame(ctx, slot)
		switch {
		case err == nil:
			log.WithFields(logrus.Fields{
				"slot":     slot,
				"saved_at": save.SavedAt,
			}).Info("resuming saved game")
			s.seed, s.game = save.Seed, save.Game
			return s, nil
		case !errors.Is(err, snapshot.ErrNotFound):
			return nil, err
		}
	}

	params, err := config.NewGame()
	if err != nil {
		return nil, err
	}
	s.seed = seed
	if s.seed == 0 {
		s.seed = rand.Uint64()
	}
	s.game = mines.NewGame(params)
	log.WithField("slot", slot).Info("new game")
	return s, store.SaveGame(ctx, slot, s.seed, s.game)
}
