package database

import (
	"github.com/redis/go-redis/v9"
)

// NewRedis creates the client backing the realtime event fan-out.
func NewRedis(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}
