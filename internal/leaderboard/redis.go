package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "mines:leaderboard"

// Redis keeps the board in a sorted set keyed by session id, with player names
// in a hash alongside it.
type Redis struct {
	client redis.UniversalClient
	key    string
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client, key: defaultKey}
}

func (r *Redis) namesKey() string {
	return r.key + ":names"
}

func (r *Redis) Submit(ctx context.Context, entry Entry) error {
	if entry.HighScore <= 0 {
		return nil
	}
	member := strconv.FormatInt(entry.GameSessionID, 10)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddArgs(ctx, r.key, redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: float64(entry.HighScore), Member: member}},
		})
		if entry.Username != nil {
			pipe.HSet(ctx, r.namesKey(), member, *entry.Username)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to submit high score: %w", err)
	}
	return nil
}

func (r *Redis) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}
	zs, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to read leaderboard: %w", err)
	}
	if len(zs) == 0 {
		return []Entry{}, nil
	}

	members := make([]string, len(zs))
	for i, z := range zs {
		members[i] = fmt.Sprint(z.Member)
	}
	names, err := r.client.HMGet(ctx, r.namesKey(), members...).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to read leaderboard names: %w", err)
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		id, err := strconv.ParseInt(members[i], 10, 64)
		if err != nil {
			Log.WithField("member", members[i]).Warn("skipping malformed leaderboard member")
			continue
		}
		entry := Entry{GameSessionID: id, HighScore: int(z.Score)}
		if name, ok := names[i].(string); ok {
			entry.Username = &name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
