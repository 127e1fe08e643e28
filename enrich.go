package places

import (
	"context"
	"log/slog"
	"time"
)

// EnrichStats describes the work done by a single Enricher.Enrich call.
type EnrichStats struct {
	DetailCalls int `json:"detail_calls"`
	CacheHits   int `json:"cache_hits"`
	Failures    int `json:"failures"`
}

// SleepFunc pauses for a duration or until the context is done.
type SleepFunc func(context.Context, time.Duration) error

// Enricher promotes stubs to venues, one details lookup at a time.
type Enricher struct {
	fetcher DetailsFetcher
	cache   DetailsCache
	delay   time.Duration
	sleep   SleepFunc
	logger  *slog.Logger
}

// NewEnricher returns a new Enricher. 'cache' may be nil.
func NewEnricher(fetcher DetailsFetcher, cache DetailsCache, opts Options, logger *slog.Logger) *Enricher {

	if logger == nil {
		logger = slog.Default()
	}

	return &Enricher{
		fetcher: fetcher,
		cache:   cache,
		delay:   opts.DetailsDelay,
		sleep:   Sleep,
		logger:  logger,
	}
}

// Enrich fetches the details for each of 'stubs', in order, and returns them as venues with their
// distance from 'origin'. Failed lookups are logged as a *DetailFetchError and the venue is kept
// with default values. An error is only returned if 'ctx' is done.
func (e *Enricher) Enrich(ctx context.Context, origin Location, stubs []*Stub) ([]*Venue, *EnrichStats, error) {

	stats := &EnrichStats{}
	venues := make([]*Venue, 0, len(stubs))

	for _, s := range stubs {

		details, ok := e.cached(ctx, s.Id)

		if ok {
			stats.CacheHits += 1
			venues = append(venues, NewVenue(s, details, origin))
			continue
		}

		if stats.DetailCalls > 0 && e.delay > 0 {

			err := e.sleep(ctx, e.delay)

			if err != nil {
				return nil, stats, err
			}
		}

		stats.DetailCalls += 1

		details, err := e.fetcher.FetchDetails(ctx, s.Id)

		if err != nil {

			stats.Failures += 1

			fetch_err := &DetailFetchError{Id: s.Id, Err: err}
			e.logger.Warn("Failed to fetch details, using defaults", "id", s.Id, "name", s.Name, "error", fetch_err)

			venues = append(venues, NewVenue(s, nil, origin))
			continue
		}

		if details != nil && e.cache != nil {

			err := e.cache.Set(ctx, s.Id, details)

			if err != nil {
				e.logger.Warn("Failed to cache details", "id", s.Id, "error", err)
			}
		}

		venues = append(venues, NewVenue(s, details, origin))
	}

	return venues, stats, nil
}

func (e *Enricher) cached(ctx context.Context, id string) (*Details, bool) {

	if e.cache == nil {
		return nil, false
	}

	details, ok, err := e.cache.Get(ctx, id)

	if err != nil {
		e.logger.Warn("Failed to read details cache", "id", id, "error", err)
		return nil, false
	}

	return details, ok
}

// Sleep pauses for 'd' or until 'ctx' is done, in which case the context's error is returned.
func Sleep(ctx context.Context, d time.Duration) error {

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
