package config

import (
	"github.com/vancomm/endless-mines/internal/mines"
)

// NewGame reads the game constants from MINES_* variables. Anything unset
// keeps its value from [mines.DefaultParams].
func NewGame() (mines.Params, error) {
	params := mines.DefaultParams()

	var err error
	if params.MineProbability, err = envFloat("MINES_PROBABILITY", params.MineProbability); err != nil {
		return params, err
	}
	if params.StartingLives, err = envInt("MINES_STARTING_LIVES", params.StartingLives); err != nil {
		return params, err
	}
	if params.LifeBonus, err = envInt("MINES_LIFE_BONUS", params.LifeBonus); err != nil {
		return params, err
	}
	if params.FloodCap, err = envInt("MINES_FLOOD_CAP", params.FloodCap); err != nil {
		return params, err
	}
	if params.SafeRadius, err = envInt("MINES_SAFE_RADIUS", params.SafeRadius); err != nil {
		return params, err
	}

	return params, params.Validate()
}
