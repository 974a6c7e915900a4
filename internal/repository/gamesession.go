package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/endless-mines/internal/mines"
)

type GameSession struct {
	GameSessionID int64      `db:"game_session_id"`
	PlayerID      *int64     `db:"player_id"`
	Seed          int64      `db:"seed"`
	Score         int        `db:"score"`
	Lives         int        `db:"lives"`
	HighScore     int        `db:"high_score"`
	GameOver      bool       `db:"game_over"`
	State         []byte     `db:"state"`
	StartedAt     time.Time  `db:"started_at"`
	EndedAt       *time.Time `db:"ended_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Game decodes the stored snapshot.
func (s *GameSession) Game() (*mines.GameState, error) {
	return mines.DecodeGameState(s.State)
}

// Oracle returns the mine oracle the stored game is played with.
func (s *GameSession) Oracle(game *mines.GameState) mines.Oracle {
	return game.Params().Oracle(uint64(s.Seed))
}

type CreateGameSessionParams struct {
	PlayerID *int64
	Seed     uint64
	State    *mines.GameState
}

func stateArgs(state *mines.GameState) (pgx.NamedArgs, error) {
	buf, err := state.Bytes()
	if err != nil {
		return nil, err
	}
	args := pgx.NamedArgs{
		"score":      state.Score(),
		"lives":      state.Lives(),
		"high_score": state.HighScore(),
		"game_over":  state.GameOver(),
		"state":      buf,
	}
	return args, nil
}

func (q *Queries) CreateGameSession(
	ctx context.Context, params CreateGameSessionParams,
) (*GameSession, error) {
	args, err := stateArgs(params.State)
	if err != nil {
		return nil, err
	}
	args["player_id"] = params.PlayerID
	args["seed"] = int64(params.Seed)

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, seed, score, lives, high_score, game_over, state
		)
		VALUES (
			@player_id, @seed, @score, @lives, @high_score, @game_over, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionID int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1;",
		gameSessionID,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

// UpdateGameSession stores state together with the seed it is played with,
// which changes when the session is reset. ended_at is stamped the first time
// the game is over and cleared again on reset.
func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionID int64, seed uint64, state *mines.GameState,
) (*GameSession, error) {
	args, err := stateArgs(state)
	if err != nil {
		return nil, err
	}
	args["game_session_id"] = gameSessionID
	args["seed"] = int64(seed)

	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_session
		SET seed = @seed
			, score = @score
			, lives = @lives
			, high_score = @high_score
			, game_over = @game_over
			, state = @state
			, ended_at = CASE
				WHEN @game_over THEN coalesce(ended_at, now())
				ELSE NULL
			END
			, updated_at = now()
		WHERE game_session_id = @game_session_id
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
