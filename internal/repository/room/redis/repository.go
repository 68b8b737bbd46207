package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomIDCounterKey    = "room:id"
	messageIDCounterKey = "message:id"
)

type repo struct {
	rc               *redis.Client
	logger           *slog.Logger
	expireDuration   time.Duration
	createRoomScript *redis.Script
	updateRoomScript *redis.Script
}

func NewRepo(rc *redis.Client, logger *slog.Logger, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		logger:         logger,
		expireDuration: expireDuration,
		createRoomScript: redis.NewScript(`
			if redis.call('EXISTS', KEYS[1]) == 1 then
				return 0
			end
			redis.call('HSET', KEYS[1], unpack(ARGV, 2))
			redis.call('EXPIRE', KEYS[1], ARGV[1])
			return 1
		`),
		updateRoomScript: redis.NewScript(`
			if redis.call('EXISTS', KEYS[1]) == 0 then
				return 0
			end
			if #ARGV > 1 then
				redis.call('HSET', KEYS[1], unpack(ARGV, 2))
			end
			redis.call('EXPIRE', KEYS[1], ARGV[1])
			return 1
		`),
	}
}
