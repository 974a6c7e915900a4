package snapshot

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/endless-mines/internal/mines"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "saves.db"), "teststore")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreBadName(t *testing.T) {
	for _, name := range []string{"", "saves; DROP TABLE x", "slot1"} {
		_, err := Open(context.Background(), filepath.Join(t.TempDir(), "x.db"), name)
		assert.ErrorIs(t, err, ErrBadName, name)
	}
}

func TestStoreReadEmpty(t *testing.T) {
	s := setupTestStore(t)
	var nothing struct{}
	assert.ErrorIs(t, s.Get(context.Background(), "some key", &nothing), ErrNotFound)
}

func TestStoreWriteAndReadStruct(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	type Box struct {
		Name  string
		Array []int64
		Inner *Box
	}
	val := Box{Name: "some name", Array: []int64{1, 2, 3}, Inner: &Box{Name: "other"}}
	require.NoError(t, s.Set(ctx, "key", val))

	var got Box
	require.NoError(t, s.Get(ctx, "key", &got))
	assert.Equal(t, val, got)

	assert.NoError(t, s.Get(ctx, "key", nil))
}

func TestStoreUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	r := rand.New(rand.NewPCG(1, 2))

	require.NoError(t, s.Set(ctx, "key", r.Int32()))
	val := r.Int32()
	require.NoError(t, s.Set(ctx, "key", val))

	var got int32
	require.NoError(t, s.Get(ctx, "key", &got))
	assert.Equal(t, val, got)
}

func TestStoreDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "missing"))

	require.NoError(t, s.Set(ctx, "key", 1337))
	require.NoError(t, s.Delete(ctx, "key"))
	var got int
	assert.ErrorIs(t, s.Get(ctx, "key", &got), ErrNotFound)
}

func TestStoreCountAndKeys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i, key := range []string{"d", "b", "a", "c"} {
		require.NoError(t, s.Set(ctx, key, i))
	}
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, s.Delete(ctx, "a"))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, keys)
}

func TestSaveAndLoadGame(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	params := mines.DefaultParams()
	params.FloodCap = 100
	const seed = 99
	game := mines.NewGame(params)
	game = game.Reveal(mines.Point{}, params.Oracle(seed))
	game = game.ToggleFlag(mines.Point{X: 40, Y: -40}, params.Oracle(seed))

	require.NoError(t, s.SaveGame(ctx, "slot", seed, game))

	save, err := s.LoadGame(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, uint64(seed), save.Seed)
	assert.Equal(t, game.Sorted(), save.Game.Sorted())
	assert.Equal(t, game.Score(), save.Game.Score())
	assert.Equal(t, game.Lives(), save.Game.Lives())
	assert.False(t, save.SavedAt.IsZero())

	// the loaded game keeps materializing the same squares
	p := mines.Point{X: 1000, Y: 1000}
	want := game.Reveal(p, params.Oracle(seed))
	got := save.Game.Reveal(p, save.Game.Params().Oracle(save.Seed))
	assert.Equal(t, want.Sorted(), got.Sorted())

	_, err = s.LoadGame(ctx, "other")
	assert.ErrorIs(t, err, ErrNotFound)
}
