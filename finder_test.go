package places

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.DetailsDelay = 0
	return opts
}

func TestFinderFind(t *testing.T) {
	ctx := context.Background()

	venues := []*Stub{
		{Id: "cafe-1", Name: "Cafe One", Categories: []string{"cafe"}, Location: berlin.Offset(300, 0)},
		{Id: "both", Name: "Cafe Bakery", Categories: []string{"cafe", "bakery"}, Location: berlin.Offset(0, 100)},
		{Id: "bar-1", Name: "Bar One", Categories: []string{"bar"}, Location: berlin.Offset(-600, 0)},
		{Id: "banned", Name: "Banned", Categories: []string{"bar"}, Location: berlin.Offset(10, 10)},
		{Id: "far", Name: "Far Away", Categories: []string{"cafe"}, Location: berlin.Offset(5000, 0)},
	}

	t.Run("Runs the full pipeline", func(t *testing.T) {
		p := newSyntheticProvider(venues, 20)
		p.geocodes["Alexanderplatz, Berlin"] = berlin
		p.details["both"] = &Details{Rating: ptr(4.2)}

		f, err := NewFinder(p, nil, testOptions(), nil)
		require.NoError(t, err)

		req := &FindRequest{
			Address:    "Alexanderplatz, Berlin",
			Radius:     1000,
			Categories: []string{"cafe", "bakery", "bar", "Cafe"},
			Exclude:    NewExclusionSet("banned"),
		}

		results, err := f.Find(ctx, req)
		require.NoError(t, err)

		_, err = uuid.Parse(results.Id)
		assert.NoError(t, err, "Expected the run id to be a UUID")

		assert.Equal(t, berlin, results.Origin)
		assert.Equal(t, []string{"cafe", "bakery", "bar"}, results.Categories, "Expected categories to be normalized")

		ids := make([]string, len(results.Venues))

		for i, v := range results.Venues {
			ids[i] = v.Id
		}

		assert.Equal(t, []string{"both", "cafe-1", "bar-1"}, ids, "Expected venues nearest first")
		assert.Equal(t, []string{"bakery", "cafe"}, results.Venues[0].Categories)
		assert.Equal(t, 4.2, *results.Venues[0].Rating)

		assert.Equal(t, 1, results.Stats.GeocodeCalls)
		assert.Equal(t, 3, results.Stats.SearchCalls)
		assert.Equal(t, 3, results.Stats.DetailCalls)
		assert.Equal(t, 1, results.Stats.Excluded)
		assert.Equal(t, 0, results.Stats.OutOfRange, "Expected the far venue never to be returned by the provider")
		assert.Len(t, results.Searches, 3)
	})

	t.Run("Uses an explicit origin without geocoding", func(t *testing.T) {
		p := newSyntheticProvider(venues, 20)

		f, err := NewFinder(p, nil, testOptions(), nil)
		require.NoError(t, err)

		origin := berlin

		results, err := f.Find(ctx, &FindRequest{Origin: &origin, Categories: []string{"bar"}})
		require.NoError(t, err)

		assert.Equal(t, 0, results.Stats.GeocodeCalls)
		assert.Equal(t, DefaultRadius, results.Radius)
		assert.Len(t, results.Venues, 2)
	})

	t.Run("Default categories", func(t *testing.T) {
		p := newSyntheticProvider(venues, 20)

		f, err := NewFinder(p, nil, testOptions(), nil)
		require.NoError(t, err)

		origin := berlin

		results, err := f.Find(ctx, &FindRequest{Origin: &origin})
		require.NoError(t, err)
		assert.Equal(t, DefaultCategories, results.Categories)
		assert.Equal(t, len(DefaultCategories), results.Stats.SearchCalls)
	})

	t.Run("Geocoding failures are fatal", func(t *testing.T) {
		p := newSyntheticProvider(venues, 20)

		f, err := NewFinder(p, nil, testOptions(), nil)
		require.NoError(t, err)

		_, err = f.Find(ctx, &FindRequest{Address: "Nowhere"})
		require.Error(t, err)

		var geocode_err *GeocodeError
		assert.True(t, errors.As(err, &geocode_err))
		assert.Equal(t, "Nowhere", geocode_err.Address)
		assert.Empty(t, p.calls, "Expected no searches without an origin")

		_, err = f.Find(ctx, &FindRequest{Address: " "})
		assert.True(t, errors.As(err, &geocode_err), "Expected a missing address to be a GeocodeError")
	})

	t.Run("Search failures are fatal", func(t *testing.T) {
		p := newSyntheticProvider(venues, 20)

		p.search = func(pt SearchPoint, category string) ([]*Stub, error) {
			return nil, errors.New("REQUEST_DENIED")
		}

		f, err := NewFinder(p, nil, testOptions(), nil)
		require.NoError(t, err)

		origin := berlin

		_, err = f.Find(ctx, &FindRequest{Origin: &origin})
		require.Error(t, err)

		var search_err *AreaSearchError
		assert.True(t, errors.As(err, &search_err))
		assert.Empty(t, p.detail_ids, "Expected no details lookups after a failed search")
	})

	t.Run("Results serialize absent fields as null", func(t *testing.T) {
		p := newSyntheticProvider(venues, 20)

		f, err := NewFinder(p, nil, testOptions(), nil)
		require.NoError(t, err)

		origin := berlin

		results, err := f.Find(ctx, &FindRequest{Origin: &origin, Categories: []string{"bar"}, Exclude: NewExclusionSet("banned")})
		require.NoError(t, err)

		body, err := json.Marshal(results.Venues[0])
		require.NoError(t, err)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(body, &raw))

		for _, k := range []string{"rating", "price_level", "opening_hours"} {
			v, ok := raw[k]
			assert.True(t, ok, "Expected %s to be present", k)
			assert.Nil(t, v, "Expected %s to be null", k)
		}

		assert.Equal(t, float64(0), raw["review_count"])
	})
}
