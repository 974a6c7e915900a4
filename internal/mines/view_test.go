package mines

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGame(t *testing.T) *GameState {
	t.Helper()
	params := testParams()
	params.FloodCap = 60
	oracle := MinesAt(Point{1, 1}, Point{4, 0})
	game := NewGame(params).
		Reveal(Point{0, 0}, oracle).
		ToggleFlag(Point{1, 1}, oracle).
		Reveal(Point{4, 0}, oracle).
		Reveal(Point{-2, -2}, oracle)
	require.Equal(t, 2, game.Lives())
	return game
}

func TestWindow(t *testing.T) {
	game := sampleGame(t)

	small := game.Window(Point{-1, -1}, Point{1, 1})
	require.Len(t, small, 9)
	assert.Equal(t, Point{-1, -1}, small[0].Point)
	assert.Equal(t, Point{1, 1}, small[8].Point)
	assert.Equal(t, Flagged, small[8].Cell.State())

	// a huge window takes the store walk and must agree with the full listing
	all := game.Window(Point{math.MinInt, math.MinInt}, Point{math.MaxInt, math.MaxInt})
	assert.Equal(t, game.Sorted(), all)

	assert.Nil(t, game.Window(Point{1, 0}, Point{0, 0}))
	assert.Empty(t, game.Window(Point{1000, 1000}, Point{1001, 1001}))
}

func TestWindowAtIntLimits(t *testing.T) {
	params := testParams()
	params.FloodCap = 80
	edge := Point{math.MaxInt, 0}
	game := NewGame(params).Reveal(edge, Never)
	require.Greater(t, game.Materialized(), 66)

	got := game.Window(Point{math.MaxInt - 1, 0}, Point{math.MaxInt, 0})
	require.Len(t, got, 2)
	assert.Equal(t, Point{math.MaxInt - 1, 0}, got[0].Point)
	assert.Equal(t, edge, got[1].Point)

	got = game.Window(Point{math.MaxInt - 1, math.MaxInt - 1}, Point{math.MaxInt, math.MaxInt})
	assert.Empty(t, got)

	assert.Equal(t, "  \n", game.Render(Point{math.MaxInt - 1, 0}, Point{math.MaxInt, 0}))
	assert.Equal(t, "..\n..\n", game.Render(
		Point{math.MaxInt - 1, math.MaxInt - 1}, Point{math.MaxInt, math.MaxInt},
	))
}

func TestStats(t *testing.T) {
	game := sampleGame(t)
	st := game.Stats()

	assert.Equal(t, game.Materialized(), st.Materialized)
	assert.Equal(t, 1, st.Flagged)
	assert.Equal(t, 1, st.ExplodedMines)
	assert.Equal(t, game.Score()+st.ExplodedMines, st.Revealed)
}

func TestRender(t *testing.T) {
	params := testParams()
	game := NewGame(params).
		Reveal(Point{0, 0}, MinesAt(Point{1, 1})).
		ToggleFlag(Point{1, 1}, Never)

	assert.Equal(t, "...\n.1.\n..F\n", game.Render(Point{-1, -1}, Point{1, 1}))
}

func TestCellStateString(t *testing.T) {
	tests := []struct {
		state CellState
		want  string
	}{
		{Unknown, "."},
		{Flagged, "F"},
		{ExplodedMine, "*"},
		{0, " "},
		{3, "3"},
		{8, "8"},
		{9, "!"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, test.state.String())
	}
}

func TestCodecRoundTrip(t *testing.T) {
	game := sampleGame(t)

	buf, err := game.Bytes()
	require.NoError(t, err)
	back, err := DecodeGameState(buf)
	require.NoError(t, err)

	assert.Equal(t, game.Sorted(), back.Sorted())
	assert.Equal(t, game.Score(), back.Score())
	assert.Equal(t, game.Lives(), back.Lives())
	assert.Equal(t, game.HighScore(), back.HighScore())
	assert.Equal(t, game.NextLifeAt(), back.NextLifeAt())
	assert.Equal(t, game.GameOver(), back.GameOver())
	assert.Equal(t, game.Params(), back.Params())

	// equal states encode to equal bytes
	again, err := back.Bytes()
	require.NoError(t, err)
	assert.Equal(t, buf, again)

	// a decoded state keeps playing
	next := back.Reveal(Point{30, 30}, Never)
	assert.Greater(t, next.Score(), back.Score())
}

func TestCodecInsideStruct(t *testing.T) {
	type envelope struct {
		ID   int
		Game *GameState
	}
	game := sampleGame(t)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(envelope{ID: 3, Game: game}))
	var back envelope
	require.NoError(t, gob.NewDecoder(&buf).Decode(&back))

	assert.Equal(t, 3, back.ID)
	assert.Equal(t, game.Sorted(), back.Game.Sorted())
}

func TestDecodeGameStateGarbage(t *testing.T) {
	_, err := DecodeGameState([]byte("not a game"))
	assert.Error(t, err)
}
