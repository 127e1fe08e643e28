package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/whosonfirst/go-nearby-places"
)

// MemoryCache implements the `Cache` interface for details kept in process memory.
type MemoryCache struct {
	Cache
	cache *gocache.Cache
}

func init() {

	ctx := context.Background()
	err := RegisterCache(ctx, "memory", NewMemoryCache)

	if err != nil {
		panic(err)
	}
}

// NewMemoryCache returns a new MemoryCache configured by 'uri' in the form of:
//
//	memory://?ttl={DURATION}
//
// Where `ttl` is how long entries are kept. Default is 1h.
func NewMemoryCache(ctx context.Context, uri string) (Cache, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	ttl, err := parseTTL(u.Query(), time.Hour)

	if err != nil {
		return nil, err
	}

	c := &MemoryCache{
		cache: gocache.New(ttl, ttl*2),
	}

	return c, nil
}

func (c *MemoryCache) Get(ctx context.Context, id string) (*places.Details, bool, error) {

	v, ok := c.cache.Get(id)

	if !ok {
		return nil, false, nil
	}

	details := v.(places.Details)
	return &details, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, id string, details *places.Details) error {

	if details == nil {
		return fmt.Errorf("Can not cache nil details for %s", id)
	}

	c.cache.Set(id, *details, gocache.DefaultExpiration)
	return nil
}

func (c *MemoryCache) Close() error {
	c.cache.Flush()
	return nil
}

func parseTTL(q url.Values, default_ttl time.Duration) (time.Duration, error) {

	if !q.Has("ttl") {
		return default_ttl, nil
	}

	ttl, err := time.ParseDuration(q.Get("ttl"))

	if err != nil {
		return 0, fmt.Errorf("Invalid ?ttl= parameter, %w", err)
	}

	if ttl <= 0 {
		return 0, fmt.Errorf("Invalid ?ttl= parameter, must be greater than zero")
	}

	return ttl, nil
}
