package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FindRequest describes a single run of the Finder.
type FindRequest struct {
	// Address is geocoded to derive the search origin, unless Origin is set.
	Address string
	// Origin, if not nil, is used as the search origin and Address is not geocoded.
	Origin *Location
	// Radius is the search radius in meters. If zero DefaultRadius is used.
	Radius float64
	// Categories are the venue categories to search for. If empty DefaultCategories are used.
	Categories []string
	// Exclude are venue Ids to omit from the results.
	Exclude ExclusionSet
}

// Stats are the tallies for a single run.
type Stats struct {
	GeocodeCalls   int `json:"geocode_calls"`
	SearchCalls    int `json:"search_calls"`
	DetailCalls    int `json:"detail_calls"`
	CacheHits      int `json:"cache_hits"`
	DetailFailures int `json:"detail_failures"`
	Saturated      int `json:"saturated"`
	MaxDepth       int `json:"max_depth"`
	Excluded       int `json:"excluded"`
	OutOfRange     int `json:"out_of_range"`
}

// Results is the final product of a run: venues sorted nearest first.
type Results struct {
	Id         string                  `json:"id"`
	Address    string                  `json:"address"`
	Origin     Location                `json:"origin"`
	Radius     float64                 `json:"radius"`
	Categories []string                `json:"categories"`
	CreatedAt  time.Time               `json:"created"`
	Stats      Stats                   `json:"stats"`
	Searches   map[string]*SearchStats `json:"searches"`
	Venues     []*Venue                `json:"venues"`
}

// Finder runs the complete pipeline: geocode, area search per category, aggregate, enrich and sort.
type Finder struct {
	provider Provider
	engine   *Engine
	enricher *Enricher
	logger   *slog.Logger
}

// NewFinder returns a new Finder backed by 'provider'. 'cache' may be nil.
func NewFinder(provider Provider, cache DetailsCache, opts Options, logger *slog.Logger) (*Finder, error) {

	if logger == nil {
		logger = slog.Default()
	}

	engine, err := NewEngine(provider, opts, logger)

	if err != nil {
		return nil, fmt.Errorf("Failed to create search engine, %w", err)
	}

	enricher := NewEnricher(provider, cache, opts, logger)

	f := &Finder{
		provider: provider,
		engine:   engine,
		enricher: enricher,
		logger:   logger,
	}

	return f, nil
}

// Find runs the pipeline for 'req'. A *GeocodeError or *AreaSearchError aborts the run; failed
// details lookups do not.
func (f *Finder) Find(ctx context.Context, req *FindRequest) (*Results, error) {

	radius := req.Radius

	if radius == 0 {
		radius = DefaultRadius
	}

	if !(radius > 0) {
		return nil, fmt.Errorf("Invalid radius %f, must be greater than zero", radius)
	}

	categories := normalizeCategories(req.Categories)

	if len(categories) == 0 {
		categories = slices.Clone(DefaultCategories)
	}

	stats := Stats{}

	var origin Location

	if req.Origin != nil {
		origin = *req.Origin
	} else {

		if strings.TrimSpace(req.Address) == "" {
			return nil, &GeocodeError{Address: req.Address, Err: fmt.Errorf("Missing address")}
		}

		stats.GeocodeCalls += 1

		loc, err := f.provider.Geocode(ctx, req.Address)

		if err != nil {

			var geocode_err *GeocodeError

			if errors.As(err, &geocode_err) {
				return nil, err
			}

			return nil, &GeocodeError{Address: req.Address, Err: err}
		}

		origin = loc
	}

	f.logger.Info("Search origin", "address", req.Address, "origin", origin.String(), "radius", radius, "categories", categories)

	searches := make(map[string]*SearchStats)
	lists := make([][]*Stub, 0, len(categories))

	for _, c := range categories {

		stubs, search_stats, err := f.engine.Search(ctx, origin, radius, c)

		if search_stats != nil {
			stats.SearchCalls += search_stats.Calls
		}

		if err != nil {
			return nil, err
		}

		stats.Saturated += search_stats.Saturated
		stats.MaxDepth = max(stats.MaxDepth, search_stats.MaxDepth)

		searches[c] = search_stats
		lists = append(lists, stubs)

		f.logger.Info("Searched category", "category", c, "calls", search_stats.Calls, "depth", search_stats.MaxDepth, "stubs", len(stubs))
	}

	agg := AggregateStubs(lists, origin, radius, req.Exclude)

	stats.Excluded = agg.Excluded
	stats.OutOfRange = agg.OutOfRange

	f.logger.Info("Aggregated venues", "count", agg.Len(), "excluded", agg.Excluded, "out_of_range", agg.OutOfRange)

	venues, enrich_stats, err := f.enricher.Enrich(ctx, origin, agg.Stubs())

	if enrich_stats != nil {
		stats.DetailCalls = enrich_stats.DetailCalls
		stats.CacheHits = enrich_stats.CacheHits
		stats.DetailFailures = enrich_stats.Failures
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to enrich venues, %w", err)
	}

	SortByDistance(venues)

	r := &Results{
		Id:         uuid.New().String(),
		Address:    req.Address,
		Origin:     origin,
		Radius:     radius,
		Categories: categories,
		CreatedAt:  time.Now().UTC(),
		Stats:      stats,
		Searches:   searches,
		Venues:     venues,
	}

	return r, nil
}

func normalizeCategories(categories []string) []string {

	seen := make(map[string]bool)
	normalized := make([]string, 0, len(categories))

	for _, c := range categories {

		c = strings.ToLower(strings.TrimSpace(c))

		if c == "" || seen[c] {
			continue
		}

		seen[c] = true
		normalized = append(normalized, c)
	}

	return normalized
}
