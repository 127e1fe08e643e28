package writer

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/aaronland/go-roster"
	"github.com/whosonfirst/go-nearby-places"
)

// Writer persists the results of a run.
type Writer interface {
	Write(context.Context, *places.Results) error
	Close() error
}

var writer_roster roster.Roster

// WriterInitializationFunc is a function defined by individual writer package and used to create
// an instance of that writer
type WriterInitializationFunc func(ctx context.Context, uri string) (Writer, error)

// RegisterWriter registers 'scheme' as a key pointing to 'init_func' in an internal lookup table
// used to create new `Writer` instances by the `NewWriter` method.
func RegisterWriter(ctx context.Context, scheme string, init_func WriterInitializationFunc) error {

	err := ensureWriterRoster()

	if err != nil {
		return err
	}

	return writer_roster.Register(ctx, scheme, init_func)
}

func ensureWriterRoster() error {

	if writer_roster == nil {

		r, err := roster.NewDefaultRoster()

		if err != nil {
			return err
		}

		writer_roster = r
	}

	return nil
}

// NewWriter returns a new `Writer` instance configured by 'uri'. The value of 'uri' is parsed
// as a `url.URL` and its scheme is used as the key for a corresponding `WriterInitializationFunc`
// function used to instantiate the new `Writer`. It is assumed that the scheme (and initialization
// function) have been registered by the `RegisterWriter` method.
func NewWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse writer URI, %w", err)
	}

	scheme := u.Scheme

	err = ensureWriterRoster()

	if err != nil {
		return nil, err
	}

	i, err := writer_roster.Driver(ctx, scheme)

	if err != nil {
		return nil, fmt.Errorf("Unsupported writer scheme '%s', %w", scheme, err)
	}

	init_func := i.(WriterInitializationFunc)
	return init_func(ctx, uri)
}

// WriterSchemes returns the list of schemes that have been registered.
func WriterSchemes() []string {

	ctx := context.Background()
	schemes := []string{}

	err := ensureWriterRoster()

	if err != nil {
		return schemes
	}

	for _, dr := range writer_roster.Drivers(ctx) {
		scheme := fmt.Sprintf("%s://", strings.ToLower(dr))
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)
	return schemes
}
