package config

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns client options parsed from REDIS_URL, or nil when Redis is
// not configured.
func NewRedis() (*redis.Options, error) {
	redisURL, ok := os.LookupEnv("REDIS_URL")
	if !ok || redisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse REDIS_URL: %w", err)
	}
	return opts, nil
}
