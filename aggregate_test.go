package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateStubs(t *testing.T) {
	t.Run("Same stub twice yields one entry with the union of categories", func(t *testing.T) {
		a := &Stub{Id: "abc", Name: "Café Einstein", Categories: []string{"cafe"}, Location: berlin}
		b := &Stub{Id: "abc", Name: "Café Einstein", Categories: []string{"bakery", "cafe"}, Location: berlin}

		agg := AggregateStubs([][]*Stub{{a}, {b}}, berlin, 1000, nil)

		require.Equal(t, 1, agg.Len(), "Expected a single stub")

		s, ok := agg.Get("abc")
		require.True(t, ok)
		assert.Equal(t, []string{"bakery", "cafe"}, s.Categories)
	})

	t.Run("Merging is order insensitive", func(t *testing.T) {
		a := &Stub{Id: "abc", Categories: []string{"bar"}, Location: berlin}
		b := &Stub{Id: "abc", Categories: []string{"restaurant"}, Location: berlin}

		ab := AggregateStubs([][]*Stub{{a, b}}, berlin, 1000, nil)
		ba := AggregateStubs([][]*Stub{{b}, {a}}, berlin, 1000, nil)

		s1, _ := ab.Get("abc")
		s2, _ := ba.Get("abc")

		assert.Equal(t, s1.Categories, s2.Categories)
	})

	t.Run("Input stubs are not modified", func(t *testing.T) {
		a := &Stub{Id: "abc", Categories: []string{"bar"}, Location: berlin}
		b := &Stub{Id: "abc", Categories: []string{"restaurant"}, Location: berlin}

		AggregateStubs([][]*Stub{{a, b}}, berlin, 1000, nil)

		assert.Equal(t, []string{"bar"}, a.Categories)
		assert.Equal(t, []string{"restaurant"}, b.Categories)
	})

	t.Run("Keeps first-seen order", func(t *testing.T) {
		list := []*Stub{
			{Id: "c", Location: berlin},
			{Id: "a", Location: berlin},
			{Id: "c", Location: berlin},
			{Id: "b", Location: berlin},
		}

		agg := AggregateStubs([][]*Stub{list}, berlin, 1000, nil)
		assert.Equal(t, []string{"c", "a", "b"}, stubIds(agg.Stubs()))
	})

	t.Run("Filters by great-circle distance from the origin", func(t *testing.T) {
		venues := randomVenues(11, berlin, 1500, 300, "bar")
		agg := AggregateStubs([][]*Stub{venues}, berlin, 1000, nil)

		retained := 0

		for _, v := range venues {

			d := GreatCircle(berlin, v.Location)
			_, ok := agg.Get(v.Id)

			if ok {
				retained += 1
				assert.LessOrEqual(t, d, 1000.0, "Expected retained %s to be within the radius", v.Id)
			} else {
				assert.Greater(t, d, 1000.0, "Expected discarded %s to be outside the radius", v.Id)
			}
		}

		assert.Equal(t, retained, agg.Len())
		assert.Equal(t, len(venues)-retained, agg.OutOfRange)
		assert.Positive(t, retained)
		assert.Positive(t, agg.OutOfRange)
	})

	t.Run("Stubs found by offset circles are still filtered", func(t *testing.T) {
		// Inside a NE child circle but outside the parent radius
		far := &Stub{Id: "far", Location: berlin.Offset(900, 900)}
		near := &Stub{Id: "near", Location: berlin.Offset(100, 100)}

		agg := AggregateStubs([][]*Stub{{far, near}}, berlin, 1000, nil)

		assert.Equal(t, []string{"near"}, stubIds(agg.Stubs()))
	})

	t.Run("Drops excluded ids", func(t *testing.T) {
		list := []*Stub{
			{Id: "a", Location: berlin},
			{Id: "b", Location: berlin},
		}

		agg := AggregateStubs([][]*Stub{list}, berlin, 1000, NewExclusionSet("b"))

		assert.Equal(t, []string{"a"}, stubIds(agg.Stubs()))
		assert.Equal(t, 1, agg.Excluded)
	})

	t.Run("Ignores nil stubs and empty ids", func(t *testing.T) {
		list := []*Stub{
			nil,
			{Id: "", Location: berlin},
			{Id: "a", Location: berlin},
		}

		agg := AggregateStubs([][]*Stub{list}, berlin, 1000, nil)
		assert.Equal(t, 1, agg.Len())
	})
}

func TestUnionCategories(t *testing.T) {
	t.Run("Sorted and de-duplicated", func(t *testing.T) {
		assert.Equal(t, []string{"bar", "cafe"}, UnionCategories([]string{"cafe", "bar"}, []string{"bar", " ", ""}))
	})

	t.Run("Empty inputs", func(t *testing.T) {
		assert.Empty(t, UnionCategories(nil, nil))
	})
}
