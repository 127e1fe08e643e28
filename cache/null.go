package cache

import (
	"context"

	"github.com/whosonfirst/go-nearby-places"
)

// NullCache implements the `Cache` interface but never stores anything.
type NullCache struct {
	Cache
}

func init() {

	ctx := context.Background()
	err := RegisterCache(ctx, "null", NewNullCache)

	if err != nil {
		panic(err)
	}
}

func NewNullCache(ctx context.Context, uri string) (Cache, error) {
	c := &NullCache{}
	return c, nil
}

func (c *NullCache) Get(ctx context.Context, id string) (*places.Details, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(ctx context.Context, id string, details *places.Details) error {
	return nil
}

func (c *NullCache) Close() error {
	return nil
}
