package tokencache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "active_tokens:"

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(uri string) (Store, error) {
	var options, err = redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	return &redisStore{client: redis.NewClient(options)}, nil
}

// Entries carry no redis TTL: the sweeper must still see an entry after
// its expiry has passed, otherwise the matching registry entry would
// never be removed.
func (s *redisStore) Put(fingerprint string, expiresAt, registeredAt time.Time) error {
	return s.client.HSet(context.Background(), keyPrefix+fingerprint,
		"exp", expiresAt.Unix(),
		"reg", registeredAt.Unix(),
	).Err()
}

func (s *redisStore) Lookup(fingerprint string) (*Entry, error) {
	var fields, err = s.client.HGetAll(context.Background(), keyPrefix+fingerprint).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return entryFromFields(fingerprint, fields)
}

func (s *redisStore) Evict(fingerprint string) error {
	return s.client.Del(context.Background(), keyPrefix+fingerprint).Err()
}

func (s *redisStore) ExpiredBefore(now time.Time) ([]Entry, error) {
	var ctx = context.Background()
	var expired []Entry
	var iter = s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		var key = iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		entry, err := entryFromFields(key[len(keyPrefix):], fields)
		if err != nil {
			return nil, err
		}
		if !entry.ExpiresAt.After(now) {
			expired = append(expired, *entry)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return expired, nil
}

func (s *redisStore) Len() (int, error) {
	var ctx = context.Background()
	var count int
	var iter = s.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *redisStore) Ping() error {
	return s.client.Ping(context.Background()).Err()
}

func entryFromFields(fingerprint string, fields map[string]string) (*Entry, error) {
	expiresAt, err := strconv.ParseInt(fields["exp"], 10, 64)
	if err != nil {
		return nil, err
	}
	registeredAt, err := strconv.ParseInt(fields["reg"], 10, 64)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Fingerprint:  fingerprint,
		ExpiresAt:    time.Unix(expiresAt, 0),
		RegisteredAt: time.Unix(registeredAt, 0),
	}, nil
}
