package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/rueidis"
)

var releaseScript = rueidis.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a Lease shared by every process using the same redis key.
type RedisLease struct {
	client rueidis.Client
	key    string

	mu    sync.Mutex
	token string
}

func NewRedisLease(client rueidis.Client, key string) *RedisLease {
	return &RedisLease{
		client: client,
		key:    key,
	}
}

func (r *RedisLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	token := uuid.NewString()

	cmd := r.client.B().Set().Key(r.key).Value(token).Nx().PxMilliseconds(ttl.Milliseconds()).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}

	r.mu.Lock()
	r.token = token
	r.mu.Unlock()

	return true, nil
}

// Release deletes the key only while it still carries this holder's token,
// so an expired lease taken over by another process is left alone.
func (r *RedisLease) Release(ctx context.Context) error {
	r.mu.Lock()
	token := r.token
	r.token = ""
	r.mu.Unlock()

	if token == "" {
		return nil
	}

	return releaseScript.Exec(ctx, r.client, []string{r.key}, []string{token}).Error()
}
