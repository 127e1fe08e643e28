package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/whosonfirst/go-nearby-places"
)

const REDIS_PREFIX string = "places:details:"

// RedisCache implements the `Cache` interface for details stored, as JSON, in a Redis database.
type RedisCache struct {
	Cache
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func init() {

	ctx := context.Background()
	err := RegisterCache(ctx, "redis", NewRedisCache)

	if err != nil {
		panic(err)
	}
}

// NewRedisCache returns a new RedisCache configured by 'uri' in the form of:
//
//	redis://{HOST}:{PORT}/{DB}?{PARAMETERS}
//
// Where {PARAMETERS} may be:
// * `ttl` How long entries are kept. Default is 24h.
// * `prefix` The prefix for cache keys. Default is "places:details:".
// * `password` The Redis password, if required.
func NewRedisCache(ctx context.Context, uri string) (Cache, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	q := u.Query()

	ttl, err := parseTTL(q, 24*time.Hour)

	if err != nil {
		return nil, err
	}

	db := 0
	str_db := strings.Trim(u.Path, "/")

	if str_db != "" {

		v, err := strconv.Atoi(str_db)

		if err != nil {
			return nil, fmt.Errorf("Invalid Redis database '%s', %w", str_db, err)
		}

		db = v
	}

	addr := u.Host

	if addr == "" {
		addr = "localhost:6379"
	}

	prefix := REDIS_PREFIX

	if q.Has("prefix") {
		prefix = q.Get("prefix")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: q.Get("password"),
		DB:       db,
	})

	err = client.Ping(ctx).Err()

	if err != nil {
		client.Close()
		return nil, fmt.Errorf("Failed to connect to Redis at %s, %w", addr, err)
	}

	c := &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}

	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, id string) (*places.Details, bool, error) {

	body, err := c.client.Get(ctx, c.key(id)).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("Failed to get %s, %w", id, err)
	}

	var details *places.Details
	err = json.Unmarshal(body, &details)

	if err != nil {
		return nil, false, fmt.Errorf("Failed to decode cached details for %s, %w", id, err)
	}

	return details, true, nil
}

func (c *RedisCache) Set(ctx context.Context, id string, details *places.Details) error {

	body, err := json.Marshal(details)

	if err != nil {
		return fmt.Errorf("Failed to encode details for %s, %w", id, err)
	}

	err = c.client.Set(ctx, c.key(id), body, c.ttl).Err()

	if err != nil {
		return fmt.Errorf("Failed to set %s, %w", id, err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(id string) string {
	return c.prefix + id
}
