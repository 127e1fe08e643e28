package cache

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
	"github.com/whosonfirst/go-nearby-places"
)

// Cache stores venue details between runs so that repeated lookups for the same venue don't need
// to call the provider.
type Cache interface {
	places.DetailsCache
	Close() error
}

var cache_roster roster.Roster

// CacheInitializationFunc is a function defined by individual cache package and used to create
// an instance of that cache
type CacheInitializationFunc func(ctx context.Context, uri string) (Cache, error)

// RegisterCache registers 'scheme' as a key pointing to 'init_func' in an internal lookup table
// used to create new `Cache` instances by the `NewCache` method.
func RegisterCache(ctx context.Context, scheme string, init_func CacheInitializationFunc) error {

	err := ensureCacheRoster()

	if err != nil {
		return err
	}

	return cache_roster.Register(ctx, scheme, init_func)
}

func ensureCacheRoster() error {

	if cache_roster == nil {

		r, err := roster.NewDefaultRoster()

		if err != nil {
			return err
		}

		cache_roster = r
	}

	return nil
}

// NewCache returns a new `Cache` instance configured by 'uri'. The value of 'uri' is parsed
// as a `url.URL` and its scheme is used as the key for a corresponding `CacheInitializationFunc`
// function used to instantiate the new `Cache`. It is assumed that the scheme (and initialization
// function) have been registered by the `RegisterCache` method.
func NewCache(ctx context.Context, uri string) (Cache, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse cache URI, %w", err)
	}

	scheme := u.Scheme

	err = ensureCacheRoster()

	if err != nil {
		return nil, err
	}

	i, err := cache_roster.Driver(ctx, scheme)

	if err != nil {
		return nil, fmt.Errorf("Unsupported cache scheme '%s', %w", scheme, err)
	}

	init_func := i.(CacheInitializationFunc)
	return init_func(ctx, uri)
}

// CacheSchemes returns the list of schemes that have been registered.
func CacheSchemes() []string {

	ctx := context.Background()
	schemes := []string{}

	err := ensureCacheRoster()

	if err != nil {
		return schemes
	}

	for _, dr := range cache_roster.Drivers(ctx) {
		scheme := fmt.Sprintf("%s://", strings.ToLower(dr))
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)
	return schemes
}
