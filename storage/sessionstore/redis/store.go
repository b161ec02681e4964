// Package redisstore persists session records in Redis with a TTL matching
// the credential expiry, so stale records age out even if never read again.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
)

const keyPrefix = "session:"

type Store struct {
	client redis.UniversalClient
}

var _ session.Store = (*Store)(nil)

func New(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Open connects to the configured Redis and pings it.
func Open(conf *core.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func (s *Store) Save(ctx context.Context, rec session.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshalling session record")
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("refusing to save an expired session record")
	}
	if err := s.client.Set(ctx, keyPrefix+rec.SID, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "writing session record")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sid string) (session.Record, error) {
	data, err := s.client.Get(ctx, keyPrefix+sid).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Record{}, session.ErrRecordNotFound
		}
		return session.Record{}, errors.Wrap(err, "reading session record")
	}

	var rec session.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return session.Record{}, errors.Wrap(err, "unmarshalling session record")
	}

	// the TTL should have reaped this already; double-check anyway
	if time.Now().After(rec.ExpiresAt) {
		if err := s.Delete(ctx, sid); err != nil {
			return session.Record{}, err
		}
		return session.Record{}, session.ErrRecordNotFound
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, keyPrefix+sid).Err(); err != nil {
		return errors.Wrap(err, "deleting session record")
	}
	return nil
}
