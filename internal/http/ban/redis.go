package ban

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	strikeKeyPrefix = "login:strikes:"
	banKeyPrefix    = "login:banned:"
	banLogKey       = "login:banlog:daily"
)

// BanLogEntry is appended to the ban log list for every ban issued.
type BanLogEntry struct {
	Target  string    `json:"target"`
	Route   string    `json:"route"`
	Strikes int       `json:"strikes"`
	Time    time.Time `json:"time"`
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Strike(ctx context.Context, target string, window time.Duration) (int, error) {
	key := strikeKeyPrefix + target
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Ban(ctx context.Context, target, route string, strikes int, d time.Duration) error {
	if err := s.rdb.Set(ctx, banKeyPrefix+target, strikes, d).Err(); err != nil {
		return err
	}
	data, err := json.Marshal(BanLogEntry{Target: target, Route: route, Strikes: strikes, Time: time.Now()})
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, banLogKey, data).Err()
}

func (s *RedisStore) IsBanned(ctx context.Context, target string) (bool, error) {
	err := s.rdb.Get(ctx, banKeyPrefix+target).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) Reset(ctx context.Context, target string) error {
	return s.rdb.Del(ctx, strikeKeyPrefix+target).Err()
}
