package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	fieldData   = "data"
	fieldExpire = "expire"
)

// RedisStore persists session documents as Redis hashes, one hash per
// document, keyed "<collection>:<session key>". A record with an expire field
// also gets a matching key TTL (EXPIREAT), so Redis reaps stale documents on
// its own even if no request ever observes them as expired. Records without
// an expire field carry no TTL and live until deleted.
type RedisStore struct {
	redis      redis.UniversalClient
	collection string
}

// NewRedisStore creates a [RedisStore] over the given client. collection
// defaults to [DefaultCollection] when empty. A nil client is rejected here,
// at construction, rather than surfacing on first use.
func NewRedisStore(client redis.UniversalClient, collection string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: expected redis.UniversalClient", ErrNilClient)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &RedisStore{redis: client, collection: collection}, nil
}

// Collection returns the collection name this store is bound to.
func (s *RedisStore) Collection() string {
	return s.collection
}

func (s *RedisStore) key(docKey string) string {
	return s.collection + ":" + docKey
}

// Get fetches the document stored under key.
//
//	Performance: 1 Redis HGETALL.
func (s *RedisStore) Get(ctx context.Context, docKey string) (Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(docKey)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// HGETALL returns an empty map for a missing key.
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}

	return Record{
		Data:   fields[fieldData],
		Expire: fields[fieldExpire],
	}, nil
}

// Set replaces the document under key with rec. The old hash is dropped
// first so stale fields never survive a rewrite, and the key TTL is aligned
// to rec.Expire in the same transaction.
//
//	Performance: 2–3 Redis commands in one MULTI/EXEC.
func (s *RedisStore) Set(ctx context.Context, docKey string, rec Record) error {
	key := s.key(docKey)

	var (
		expireAt, parsed = ParseTime(rec.Expire)
		hasTTL           = rec.Expire != "" && parsed
	)

	fields := map[string]any{fieldData: rec.Data}
	if rec.Expire != "" {
		fields[fieldExpire] = rec.Expire
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if hasTTL {
			pipe.ExpireAt(ctx, key, expireAt)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

// Delete removes the document under key. Missing documents are a no-op.
//
//	Performance: 1 Redis DEL.
func (s *RedisStore) Delete(ctx context.Context, docKey string) error {
	if err := s.redis.Del(ctx, s.key(docKey)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
