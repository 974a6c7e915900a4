package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededOracleIsDeterministic(t *testing.T) {
	a := SeededOracle(42, 0.3)
	b := SeededOracle(42, 0.3)
	other := SeededOracle(43, 0.3)

	differs := false
	for x := -20; x <= 20; x++ {
		for y := -20; y <= 20; y++ {
			p := Point{x, y}
			assert.Equal(t, a(p), b(p), "seed 42 disagrees with itself at %v", p)
			if a(p) != other(p) {
				differs = true
			}
		}
	}
	assert.True(t, differs, "different seeds produced the same field")
}

func TestSeededOracleDensity(t *testing.T) {
	tests := []struct {
		probability float64
		lo, hi      float64
	}{
		{0, 0, 0},
		{0.17, 0.13, 0.21},
		{0.5, 0.45, 0.55},
		{1, 1, 1},
	}
	for _, test := range tests {
		oracle := SeededOracle(7, test.probability)
		mines, total := 0, 0
		for x := -50; x < 50; x++ {
			for y := -50; y < 50; y++ {
				total++
				if oracle(Point{x, y}) {
					mines++
				}
			}
		}
		density := float64(mines) / float64(total)
		assert.GreaterOrEqual(t, density, test.lo, "p=%v", test.probability)
		assert.LessOrEqual(t, density, test.hi, "p=%v", test.probability)
	}
}

func TestSafeZone(t *testing.T) {
	oracle := SafeZone(1, Always)
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			p := Point{x, y}
			safe := max(absDiff(x, 0), absDiff(y, 0)) <= 1
			assert.Equal(t, !safe, oracle(p), "at %v", p)
		}
	}

	disabled := SafeZone(-1, Always)
	assert.True(t, disabled(Point{0, 0}))
}

func TestParamsOracleFirstClickIsBlank(t *testing.T) {
	params := DefaultParams()
	params.MineProbability = 1
	params.FloodCap = 100
	game := NewGame(params).Reveal(Point{0, 0}, params.Oracle(99))

	c, _ := game.Cell(Point{0, 0})
	assert.True(t, c.Revealed)
	assert.Equal(t, 0, c.Adjacent)
	// the blank origin opens its whole numbered ring
	assert.Equal(t, 9, game.Score())
	assert.False(t, game.GameOver())
}

func TestMinesAt(t *testing.T) {
	oracle := MinesAt(Point{1, 2}, Point{-3, 0})
	assert.True(t, oracle(Point{1, 2}))
	assert.True(t, oracle(Point{-3, 0}))
	assert.False(t, oracle(Point{2, 1}))
	assert.False(t, Never(Point{1, 2}))
	assert.True(t, Always(Point{0, 0}))
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative probability", func(p *Params) { p.MineProbability = -0.1 }},
		{"probability above one", func(p *Params) { p.MineProbability = 1.5 }},
		{"no lives", func(p *Params) { p.StartingLives = 0 }},
		{"no life bonus", func(p *Params) { p.LifeBonus = 0 }},
		{"no flood", func(p *Params) { p.FloodCap = -1 }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			params := DefaultParams()
			test.mutate(&params)
			assert.ErrorIs(t, params.Validate(), ErrBadParams)
		})
	}
}
