package places

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	records map[string]*Details
	sets    int
}

func (c *mapCache) Get(ctx context.Context, id string) (*Details, bool, error) {
	d, ok := c.records[id]
	return d, ok, nil
}

func (c *mapCache) Set(ctx context.Context, id string, d *Details) error {
	c.sets += 1
	c.records[id] = d
	return nil
}

func newTestEnricher(p DetailsFetcher, cache DetailsCache) (*Enricher, *[]time.Duration) {

	opts := DefaultOptions()
	e := NewEnricher(p, cache, opts, nil)

	sleeps := make([]time.Duration, 0)

	e.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	return e, &sleeps
}

func TestEnricherEnrich(t *testing.T) {
	ctx := context.Background()

	stubs := []*Stub{
		{Id: "a", Name: "A", Categories: []string{"cafe"}, Location: berlin.Offset(100, 0)},
		{Id: "b", Name: "B", Categories: []string{"bar"}, Location: berlin.Offset(0, 200)},
		{Id: "c", Name: "C", Categories: []string{"bakery"}, Location: berlin.Offset(-300, 0)},
	}

	t.Run("Copies details and computes distances", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		p.details["a"] = &Details{
			Rating:       ptr(4.5),
			ReviewCount:  ptr(120),
			PriceLevel:   ptr(2),
			OpeningHours: []string{"Monday: 8:00 AM – 6:00 PM", "Closed all week"},
			Address:      ptr("Unter den Linden 1"),
			URL:          ptr("https://maps.example/a"),
		}

		e, _ := newTestEnricher(p, nil)

		venues, stats, err := e.Enrich(ctx, berlin, stubs)
		require.NoError(t, err)
		require.Len(t, venues, 3)

		a := venues[0]
		require.NotNil(t, a.Rating)
		assert.Equal(t, 4.5, *a.Rating)
		assert.Equal(t, 120, a.ReviewCount)
		require.NotNil(t, a.PriceLevel)
		assert.Equal(t, 2, *a.PriceLevel)
		assert.Equal(t, map[string]string{"monday": "8:00 AM – 6:00 PM"}, a.OpeningHours)
		assert.Equal(t, "Unter den Linden 1", a.Address)
		assert.Equal(t, "https://maps.example/a", a.URL)
		assert.Equal(t, DistanceMeters(berlin, stubs[0].Location), a.DistanceMeters)

		assert.Equal(t, 3, stats.DetailCalls)
		assert.Equal(t, []string{"a", "b", "c"}, p.detail_ids, "Expected lookups in input order")
	})

	t.Run("Missing fields use defaults", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		e, _ := newTestEnricher(p, nil)

		venues, _, err := e.Enrich(ctx, berlin, stubs[1:2])
		require.NoError(t, err)

		b := venues[0]
		assert.Nil(t, b.Rating, "Expected rating to be absent, not zero")
		assert.Equal(t, 0, b.ReviewCount)
		assert.Nil(t, b.PriceLevel)
		assert.Nil(t, b.OpeningHours)
		assert.Equal(t, "", b.Address)
		assert.Equal(t, "", b.URL)
	})

	t.Run("Out of range price levels are dropped", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		p.details["b"] = &Details{PriceLevel: ptr(7)}

		e, _ := newTestEnricher(p, nil)

		venues, _, err := e.Enrich(ctx, berlin, stubs[1:2])
		require.NoError(t, err)
		assert.Nil(t, venues[0].PriceLevel)
	})

	t.Run("A failed lookup does not abort the run", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		p.details_err["b"] = errors.New("HTTP 500")
		p.details["c"] = &Details{Rating: ptr(3.9)}

		e, _ := newTestEnricher(p, nil)

		venues, stats, err := e.Enrich(ctx, berlin, stubs)
		require.NoError(t, err)
		require.Len(t, venues, 3, "Expected the failed venue to be kept")

		assert.Nil(t, venues[1].Rating)
		assert.Equal(t, 0, venues[1].ReviewCount)
		require.NotNil(t, venues[2].Rating)
		assert.Equal(t, 3.9, *venues[2].Rating)
		assert.Equal(t, 1, stats.Failures)
	})

	t.Run("Pauses between consecutive lookups", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		e, sleeps := newTestEnricher(p, nil)

		_, _, err := e.Enrich(ctx, berlin, stubs)
		require.NoError(t, err)

		assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, *sleeps)
	})

	t.Run("Cached details skip the provider", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		p.details["c"] = &Details{Rating: ptr(4.0)}

		cache := &mapCache{
			records: map[string]*Details{
				"a": {Rating: ptr(4.8)},
			},
		}

		e, _ := newTestEnricher(p, cache)

		venues, stats, err := e.Enrich(ctx, berlin, stubs)
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "c"}, p.detail_ids)
		assert.Equal(t, 1, stats.CacheHits)
		assert.Equal(t, 2, stats.DetailCalls)
		assert.Equal(t, 4.8, *venues[0].Rating)
		assert.Equal(t, 2, cache.sets, "Expected fetched details to be cached")

		_, stats, err = e.Enrich(ctx, berlin, stubs)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.CacheHits, "Expected everything to come from the cache the second time")
		assert.Equal(t, 0, stats.DetailCalls)
	})

	t.Run("Stops when the context is done", func(t *testing.T) {
		p := newSyntheticProvider(nil, 20)
		e := NewEnricher(p, nil, DefaultOptions(), nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := e.Enrich(cancelled, berlin, stubs)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, p.detail_ids, 1, "Expected only the first lookup before the pause")
	})
}

func TestSleep(t *testing.T) {
	t.Run("Returns after the duration", func(t *testing.T) {
		err := Sleep(context.Background(), time.Millisecond)
		assert.NoError(t, err)
	})

	t.Run("Returns early when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := Sleep(ctx, time.Hour)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
