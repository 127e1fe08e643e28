package places

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// syntheticProvider knows about a fixed set of venues and reports, per call, the ones inside the
// queried circle, nearest first, capped at max.
type syntheticProvider struct {
	venues      []*Stub
	max         int
	calls       []SearchPoint
	search      func(SearchPoint, string) ([]*Stub, error)
	details     map[string]*Details
	details_err map[string]error
	detail_ids  []string
	geocodes    map[string]Location
}

func newSyntheticProvider(venues []*Stub, max int) *syntheticProvider {
	return &syntheticProvider{
		venues:      venues,
		max:         max,
		calls:       make([]SearchPoint, 0),
		details:     make(map[string]*Details),
		details_err: make(map[string]error),
		detail_ids:  make([]string, 0),
		geocodes:    make(map[string]Location),
	}
}

func (p *syntheticProvider) Geocode(ctx context.Context, address string) (Location, error) {

	loc, ok := p.geocodes[address]

	if !ok {
		return Location{}, fmt.Errorf("ZERO_RESULTS")
	}

	return loc, nil
}

func (p *syntheticProvider) SearchArea(ctx context.Context, pt SearchPoint, category string) ([]*Stub, error) {

	p.calls = append(p.calls, pt)

	if p.search != nil {
		return p.search(pt, category)
	}

	return p.searchWithoutRecording(pt, category)
}

func (p *syntheticProvider) searchWithoutRecording(pt SearchPoint, category string) ([]*Stub, error) {

	found := make([]*Stub, 0)

	for _, v := range p.venues {

		if !slices.Contains(v.Categories, category) {
			continue
		}

		if pt.Contains(v.Location) {
			found = append(found, &Stub{
				Id:         v.Id,
				Name:       v.Name,
				Categories: []string{category},
				Location:   v.Location,
			})
		}
	}

	slices.SortStableFunc(found, func(a, b *Stub) int {
		da := GreatCircle(pt.Center, a.Location)
		db := GreatCircle(pt.Center, b.Location)
		return cmp.Compare(da, db)
	})

	if len(found) > p.max {
		found = found[:p.max]
	}

	return found, nil
}

func (p *syntheticProvider) MaxResults() int {
	return p.max
}

func (p *syntheticProvider) FetchDetails(ctx context.Context, id string) (*Details, error) {

	p.detail_ids = append(p.detail_ids, id)

	err, ok := p.details_err[id]

	if ok {
		return nil, err
	}

	d, ok := p.details[id]

	if !ok {
		return &Details{}, nil
	}

	return d, nil
}

// randomVenues returns 'count' venues scattered uniformly inside the circle of 'radius' meters
// around 'origin'.
func randomVenues(seed int64, origin Location, radius float64, count int, category string) []*Stub {

	r := rand.New(rand.NewSource(seed))
	venues := make([]*Stub, 0, count)

	for len(venues) < count {

		north := (r.Float64()*2 - 1) * radius
		east := (r.Float64()*2 - 1) * radius

		loc := origin.Offset(north, east)

		if GreatCircle(origin, loc) > radius*0.98 {
			continue
		}

		i := len(venues)

		venues = append(venues, &Stub{
			Id:         fmt.Sprintf("venue-%04d", i),
			Name:       fmt.Sprintf("Venue %d", i),
			Categories: []string{category},
			Location:   loc,
		})
	}

	return venues
}

func stubIds(stubs []*Stub) []string {

	ids := make([]string, len(stubs))

	for i, s := range stubs {
		ids[i] = s.Id
	}

	return ids
}

func ptr[T any](v T) *T {
	return &v
}

var berlin = Location{Latitude: 52.520008, Longitude: 13.404954}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180.0)
}
