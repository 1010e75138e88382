// Package rediscache shares cached users between BFF instances through Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OlmosJT/studio-tarjimon-io/identity"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/session"
)

const keyPrefix = "studio:user:"

// Cache is a session.UserCache stored in Redis
type Cache struct {
	rdb *redis.Client
}

var _ session.UserCache = (*Cache)(nil)

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Dial parses a redis:// URL, connects and pings before returning.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing redis URL")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis")
	}
	return client, nil
}

func key(accessToken string) string {
	return keyPrefix + session.CacheKey(accessToken)
}

func (c *Cache) Get(ctx context.Context, accessToken string) (*identity.User, error) {
	data, err := c.rdb.Get(ctx, key(accessToken)).Bytes()
	if err == redis.Nil {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading user from redis")
	}

	var user identity.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.Wrapf(err, "unmarshaling cached user")
	}
	return &user, nil
}

func (c *Cache) Set(ctx context.Context, accessToken string, user identity.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrapf(err, "marshaling user")
	}
	if err := c.rdb.Set(ctx, key(accessToken), data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "storing user in redis")
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, accessToken string) error {
	if err := c.rdb.Del(ctx, key(accessToken)).Err(); err != nil {
		return errors.Wrapf(err, "deleting user from redis")
	}
	return nil
}
