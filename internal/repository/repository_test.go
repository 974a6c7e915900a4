package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/endless-mines/internal/database"
	"github.com/vancomm/endless-mines/internal/mines"
)

// setupQueries runs against TEST_DATABASE_URL and skips when it is unset.
// Every test works inside a transaction that is rolled back afterwards.
func setupQueries(t *testing.T) *Queries {
	t.Helper()
	url, ok := os.LookupEnv("TEST_DATABASE_URL")
	if !ok {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	_, _, err := database.Migrate(url)
	require.NoError(t, err)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback(ctx) })

	return New(tx)
}

func TestPlayers(t *testing.T) {
	q := setupQueries(t)
	ctx := context.Background()
	name := fmt.Sprintf("player-%d", time.Now().UnixNano())

	created, err := q.CreatePlayer(ctx, CreatePlayerParams{
		Username: name, PasswordHash: []byte("hash"),
	})
	require.NoError(t, err)
	assert.Equal(t, name, created.Username)

	fetched, err := q.FetchPlayer(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, created.PlayerID, fetched.PlayerID)
	assert.Equal(t, []byte("hash"), fetched.PasswordHash)

	_, err = q.FetchPlayer(ctx, name+"-missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestDuplicatePlayer(t *testing.T) {
	q := setupQueries(t)
	ctx := context.Background()
	params := CreatePlayerParams{Username: "twin", PasswordHash: []byte("x")}

	_, err := q.CreatePlayer(ctx, params)
	require.NoError(t, err)
	_, err = q.CreatePlayer(ctx, params)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, pgerrcode.UniqueViolation, pgErr.Code)
}

func TestGameSessionLifecycle(t *testing.T) {
	q := setupQueries(t)
	ctx := context.Background()

	params := mines.DefaultParams()
	params.FloodCap = 50
	seed := uint64(1) << 63
	game := mines.NewGame(params)

	session, err := q.CreateGameSession(ctx, CreateGameSessionParams{
		Seed: seed, State: game,
	})
	require.NoError(t, err)
	assert.Nil(t, session.PlayerID)
	assert.Equal(t, seed, uint64(session.Seed))
	assert.Equal(t, params.StartingLives, session.Lives)
	assert.Nil(t, session.EndedAt)

	fetched, err := q.FetchGameSession(ctx, session.GameSessionID)
	require.NoError(t, err)
	game, err = fetched.Game()
	require.NoError(t, err)

	game = game.Reveal(mines.Point{}, fetched.Oracle(game))
	updated, err := q.UpdateGameSession(ctx, session.GameSessionID, seed, game)
	require.NoError(t, err)
	assert.Equal(t, game.Score(), updated.Score)
	assert.Equal(t, game.HighScore(), updated.HighScore)
	assert.Nil(t, updated.EndedAt)

	over, err := q.UpdateGameSession(ctx, session.GameSessionID, seed, game.Forfeit())
	require.NoError(t, err)
	assert.True(t, over.GameOver)
	require.NotNil(t, over.EndedAt)

	again, err := q.UpdateGameSession(ctx, session.GameSessionID, seed, game.Forfeit())
	require.NoError(t, err)
	assert.Equal(t, *over.EndedAt, *again.EndedAt, "ended_at must be stamped once")

	reset, err := q.UpdateGameSession(ctx, session.GameSessionID, 7, game.Reset())
	require.NoError(t, err)
	assert.Equal(t, int64(7), reset.Seed)
	assert.False(t, reset.GameOver)
	assert.Nil(t, reset.EndedAt)
	assert.Equal(t, game.HighScore(), reset.HighScore)

	highscores, err := q.GetHighscores(ctx, 1000)
	require.NoError(t, err)
	found := false
	for _, h := range highscores {
		if h.GameSessionID == session.GameSessionID {
			found = true
			assert.Equal(t, game.HighScore(), h.HighScore)
			assert.Nil(t, h.Username)
		}
	}
	assert.True(t, found)

	_, err = q.FetchGameSession(ctx, -1)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
