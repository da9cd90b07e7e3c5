package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/formlens/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
)

const redisKeyPrefix = "formlens:session:"

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessions.redis.get")
	defer func() {
		if errors.Is(err, ErrSessionNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	raw, err := s.rdb.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Save stores the session and (re)starts its ttl. The write only goes
// through when the stored version is still the one the session was loaded
// with; otherwise another instance saved it in between and
// ErrSessionConflict is returned.
func (s *RedisStore) Save(ctx context.Context, session *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessions.redis.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", session.ID))
	span.SetAttributes(attribute.Int64("session.version", session.Version))

	key := redisKey(session.ID)
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		// a missing key means a new or expired session, nothing to race with
		if stored >= 0 && stored != session.Version {
			return ErrSessionConflict
		}

		next := *session
		next.Version = session.Version + 1
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.ttl)
			return nil
		}); err != nil {
			return err
		}
		session.Version = next.Version
		return nil
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSessionConflict), errors.Is(err, redis.TxFailedErr):
		return ErrSessionConflict
	default:
		return fmt.Errorf("redis save: %w", err)
	}
}

// storedVersion returns the version of the stored session, or -1 when there
// is none.
func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}

	var stored struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return -1, fmt.Errorf("unmarshal stored session: %w", err)
	}
	return stored.Version, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessions.redis.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", id))

	deleted, err := s.rdb.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}
	return nil
}
