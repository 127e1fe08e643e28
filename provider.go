package places

import (
	"context"
)

// Geocoder resolves an address to a Location.
type Geocoder interface {
	Geocode(context.Context, string) (Location, error)
}

// AreaSearcher returns the venues of a given category inside a search circle. Implementations
// return at most MaxResults() stubs per call, following any pagination themselves.
type AreaSearcher interface {
	SearchArea(context.Context, SearchPoint, string) ([]*Stub, error)
	MaxResults() int
}

// DetailsFetcher returns the metadata for a venue.
type DetailsFetcher interface {
	FetchDetails(context.Context, string) (*Details, error)
}

// Provider is everything the Finder needs from a places service.
type Provider interface {
	Geocoder
	AreaSearcher
	DetailsFetcher
}

// DetailsCache stores Details records keyed by venue Id between runs.
type DetailsCache interface {
	Get(context.Context, string) (*Details, bool, error)
	Set(context.Context, string, *Details) error
}
