package mines

import (
	"errors"
	"fmt"
)

const DefaultFloodCap = 20_000

// Params holds the constants a game is played with. They are fixed for the
// lifetime of a [GameState] and carried over by [GameState.Reset].
type Params struct {
	MineProbability float64
	StartingLives   int
	LifeBonus       int // score step between extra lives
	FloodCap        int // max cells opened by a single chain reveal
	SafeRadius      int // mine-free square around the origin; negative disables it
}

func DefaultParams() Params {
	return Params{
		MineProbability: 0.17,
		StartingLives:   3,
		LifeBonus:       500,
		FloodCap:        DefaultFloodCap,
		SafeRadius:      1,
	}
}

var ErrBadParams = errors.New("invalid game params")

func (p Params) Validate() error {
	var errs []error
	if p.MineProbability < 0 || p.MineProbability > 1 {
		errs = append(errs, fmt.Errorf("mine probability %v is outside [0, 1]", p.MineProbability))
	}
	if p.StartingLives <= 0 {
		errs = append(errs, fmt.Errorf("starting lives must be positive, got %d", p.StartingLives))
	}
	if p.LifeBonus <= 0 {
		errs = append(errs, fmt.Errorf("life bonus must be positive, got %d", p.LifeBonus))
	}
	if p.FloodCap <= 0 {
		errs = append(errs, fmt.Errorf("flood cap must be positive, got %d", p.FloodCap))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrBadParams, errors.Join(errs...))
	}
	return nil
}
