package database

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "auth:session:"

// ErrTokenNotFound is returned for token ids that were never registered or have expired.
var ErrTokenNotFound = errors.New("token not found")

type RedisClient struct {
	client *redis.Client
}

func GetRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return &RedisClient{client: client}, nil
}

// SetSession registers a token id for userID until ttl elapses.
func (r *RedisClient) SetSession(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+tokenID, strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (r *RedisClient) GetSession(ctx context.Context, tokenID string) (uint, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+tokenID).Result()
	if err == redis.Nil {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "corrupt session value for %s", tokenID)
	}
	return uint(userID), nil
}

func (r *RedisClient) DeleteSession(ctx context.Context, tokenID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+tokenID).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
