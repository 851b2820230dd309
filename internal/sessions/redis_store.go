package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore keeps records as JSON values whose TTL follows the record expiry.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	tracer trace.Tracer
}

// NewRedisStore wraps a redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("sessions: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		prefix: "portal:session:",
		tracer: otel.Tracer("clinicportal.internal.sessions.redis"),
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "sessions.redis.get")
	defer span.End()

	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("sessions: load record: %w", err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	ctx, span := s.tracer.Start(ctx, "sessions.redis.save")
	defer span.End()

	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, rec.ID)
	}
	if err := s.redis.Set(ctx, s.key(rec.ID), data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: persist record: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "sessions.redis.delete")
	defer span.End()

	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("sessions: delete record: %w", err)
	}
	return nil
}
