package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAPI is the part of *redis.Client the store uses.
type RedisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// writeScript applies Write's ops in one server-side step. ARGV holds an
// (action, value) pair per key.
const writeScript = `
for i, key in ipairs(KEYS) do
  if ARGV[2*i-1] == "del" then
    redis.call("DEL", key)
  else
    redis.call("SET", key, ARGV[2*i])
  end
end
return #KEYS`

// Redis stores values as plain strings under prefix+key. Write relies on a
// Lua script, so on a cluster every key of one Write must share a slot.
type Redis struct {
	client RedisAPI
	prefix string
}

// NewRedis stores every key under prefix.
func NewRedis(client RedisAPI, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Write(ctx context.Context, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ops))
	args := make([]interface{}, 0, 2*len(ops))
	for _, op := range ops {
		keys = append(keys, r.prefix+op.Key)
		if op.Delete {
			args = append(args, "del", "")
		} else {
			args = append(args, "set", op.Value)
		}
	}
	if err := r.client.Eval(ctx, writeScript, keys, args...).Err(); err != nil {
		return fmt.Errorf("redis write: %w", err)
	}
	return nil
}
