package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/endless-mines/internal/mines"
)

var ErrNoGame = errors.New("save holds no game")

// Save is one saved game. The seed is kept next to the state so that squares
// materialized after loading agree with the ones before saving.
type Save struct {
	Seed    uint64
	Game    *mines.GameState
	SavedAt time.Time
}

func (s *Store) SaveGame(ctx context.Context, slot string, seed uint64, game *mines.GameState) error {
	return s.Set(ctx, slot, Save{Seed: seed, Game: game, SavedAt: time.Now().UTC()})
}

func (s *Store) LoadGame(ctx context.Context, slot string) (*Save, error) {
	var save Save
	if err := s.Get(ctx, slot, &save); err != nil {
		return nil, err
	}
	if save.Game == nil {
		return nil, ErrNoGame
	}
	return &save, nil
}
