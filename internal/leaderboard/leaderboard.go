package leaderboard

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/endless-mines/internal/repository"
)

var Log = logrus.New()

type Entry = repository.Highscore

type Board interface {
	// Submit records a session's high score. Lower scores than the one
	// already recorded are ignored.
	Submit(ctx context.Context, entry Entry) error
	// Top returns up to limit entries, best first.
	Top(ctx context.Context, limit int) ([]Entry, error)
}

type HighscoreSource interface {
	GetHighscores(ctx context.Context, limit int) ([]repository.Highscore, error)
}

// Postgres reads the board straight from the session table, which already
// holds every high score.
type Postgres struct {
	source HighscoreSource
}

func NewPostgres(source HighscoreSource) *Postgres {
	return &Postgres{source: source}
}

func (p *Postgres) Submit(context.Context, Entry) error {
	return nil
}

func (p *Postgres) Top(ctx context.Context, limit int) ([]Entry, error) {
	return p.source.GetHighscores(ctx, limit)
}

// Warm copies the best limit scores from src into dst. A board kept outside
// the database starts empty after a flush or on a fresh instance.
func Warm(ctx context.Context, dst Board, src HighscoreSource, limit int) (int, error) {
	entries, err := src.GetHighscores(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if err := dst.Submit(ctx, entry); err != nil {
			return 0, err
		}
	}
	Log.WithField("entries", len(entries)).Debug("leaderboard warmed")
	return len(entries), nil
}
