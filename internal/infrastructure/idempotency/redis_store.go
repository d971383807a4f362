package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/logistica-api/internal/application/ports"
)

const (
	keyPrefix    = "idem:"
	pendingValue = "pending"
)

var _ ports.IdempotencyStore = (*RedisStore)(nil)

// acquireScript SET NX + GET atómico: 1 si la llave se tomó, si no el valor guardado.
var acquireScript = redis.NewScript(`
local ok = redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2])
if ok then
	return 1
end
return redis.call('GET', KEYS[1])
`)

// RedisStore llaves de idempotencia compartidas entre réplicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore construye el adaptador sobre un cliente ya conectado.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (*ports.IdempotencyRecord, bool, error) {
	res, err := acquireScript.Run(ctx, s.client, []string{keyPrefix + key}, pendingValue, ttl.Milliseconds()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// la llave expiró entre SET y GET
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("idempotency acquire: %w", err)
	}
	switch v := res.(type) {
	case int64:
		return nil, v == 1, nil
	case string:
		if v == pendingValue {
			return nil, false, nil
		}
		var rec ports.IdempotencyRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, false, fmt.Errorf("idempotency decode: %w", err)
		}
		return &rec, false, nil
	default:
		return nil, false, fmt.Errorf("idempotency: respuesta inesperada %T", res)
	}
}

func (s *RedisStore) Complete(ctx context.Context, key string, rec ports.IdempotencyRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+key, raw, ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}
