package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/endless-mines/internal/mines"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr error
	}{
		{"g", Command{Kind: Get}, nil},
		{"o 3 -4", Command{Kind: Open, Point: mines.Point{X: 3, Y: -4}}, nil},
		{"  f   0 7 ", Command{Kind: Flag, Point: mines.Point{X: 0, Y: 7}}, nil},
		{"n", Command{Kind: Reset}, nil},
		{"r", Command{Kind: Forfeit}, nil},
		{"w -5 -5 5 5", Command{Kind: View, Lo: mines.Point{X: -5, Y: -5}, Hi: mines.Point{X: 5, Y: 5}}, nil},
		{"q", Command{Kind: Quit}, nil},
		{"", Command{}, ErrEmpty},
		{"x 1 2", Command{}, ErrUnknown},
		{"o 1", Command{}, ErrArgs},
		{"g 1", Command{}, ErrArgs},
	}
	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			got, err := Parse(test.line)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestParseBadInt(t *testing.T) {
	_, err := Parse("o 1 two")
	assert.EqualError(t, err, "argument 2 must be an int")
}

func TestLines(t *testing.T) {
	type numbered struct {
		n    int
		line string
	}
	var got []numbered
	for n, line := range Lines("o 1 2\n\n  f 3 4  \r\ng") {
		got = append(got, numbered{n, line})
	}
	assert.Equal(t, []numbered{{0, "o 1 2"}, {2, "f 3 4"}, {3, "g"}}, got)

	for range Lines("g\ng\ng") {
		break
	}
}

func TestApply(t *testing.T) {
	params := mines.DefaultParams()
	params.FloodCap = 10
	game := mines.NewGame(params)

	for _, line := range []string{"g", "w 0 0 1 1", "q"} {
		c, err := Parse(line)
		require.NoError(t, err)
		assert.False(t, c.Mutates(), line)
		assert.Same(t, game, c.Apply(game, mines.Never), line)
	}

	open, _ := Parse("o 0 0")
	assert.True(t, open.Mutates())
	assert.Equal(t, "open", open.Move())
	played := open.Apply(game, mines.Never)
	assert.Equal(t, 10, played.Score())

	flag, _ := Parse("f 50 50")
	flagged := flag.Apply(played, mines.Never)
	c, _ := flagged.Cell(mines.Point{X: 50, Y: 50})
	assert.True(t, c.Flagged)

	forfeit, _ := Parse("r")
	assert.True(t, forfeit.Apply(flagged, mines.Never).GameOver())

	reset, _ := Parse("n")
	fresh := reset.Apply(forfeit.Apply(flagged, mines.Never), mines.Never)
	assert.False(t, fresh.GameOver())
	assert.Equal(t, 10, fresh.HighScore())
}
