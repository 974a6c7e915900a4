package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Highscore struct {
	GameSessionID int64   `db:"game_session_id" json:"game_session_id,string"`
	Username      *string `db:"username" json:"username"`
	HighScore     int     `db:"high_score" json:"high_score"`
}

func (q *Queries) GetHighscores(ctx context.Context, limit int) ([]Highscore, error) {
	rows, err := q.db.Query(
		ctx,
		`SELECT game_session_id, username, high_score
		FROM game_session
			LEFT OUTER JOIN player USING (player_id)
		WHERE high_score > 0
		ORDER BY high_score DESC, game_session.updated_at
		LIMIT @limit;`,
		pgx.NamedArgs{"limit": limit},
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
