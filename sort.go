package places

import (
	"cmp"
	"slices"
)

// SortByDistance sorts 'venues' nearest first. Venues at the same distance keep their relative order.
func SortByDistance(venues []*Venue) {

	slices.SortStableFunc(venues, func(a, b *Venue) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})
}
