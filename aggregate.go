package places

// Aggregate is the de-duplicated set of stubs collected across area searches. Iteration order is
// the order in which each Id was first seen.
type Aggregate struct {
	stubs map[string]*Stub
	order []string
	// OutOfRange is the number of distinct stubs dropped for being further than the search radius.
	OutOfRange int
	// Excluded is the number of distinct stubs dropped because they are in the exclusion set.
	Excluded int
}

// Len returns the number of stubs retained.
func (a *Aggregate) Len() int {
	return len(a.order)
}

// Get returns the stub for 'id', if retained.
func (a *Aggregate) Get(id string) (*Stub, bool) {
	s, ok := a.stubs[id]
	return s, ok
}

// Stubs returns the retained stubs in first-seen order.
func (a *Aggregate) Stubs() []*Stub {

	stubs := make([]*Stub, len(a.order))

	for i, id := range a.order {
		stubs[i] = a.stubs[id]
	}

	return stubs
}

// AggregateStubs merges 'lists' by stub Id, unioning the categories of stubs that share an Id, and
// then keeps only those stubs whose great-circle distance from 'origin' is at most 'radius'
// meters and whose Id is not in 'exclude'. Input stubs are not modified.
func AggregateStubs(lists [][]*Stub, origin Location, radius float64, exclude ExclusionSet) *Aggregate {

	merged := make(map[string]*Stub)
	seen := make([]string, 0)

	for _, list := range lists {

		for _, s := range list {

			if s == nil || s.Id == "" {
				continue
			}

			existing, ok := merged[s.Id]

			if ok {
				existing.Merge(s)
				continue
			}

			merged[s.Id] = &Stub{
				Id:         s.Id,
				Name:       s.Name,
				Categories: UnionCategories(s.Categories, nil),
				Location:   s.Location,
			}

			seen = append(seen, s.Id)
		}
	}

	a := &Aggregate{
		stubs: make(map[string]*Stub),
		order: make([]string, 0, len(seen)),
	}

	for _, id := range seen {

		s := merged[id]

		if exclude.Contains(id) {
			a.Excluded += 1
			continue
		}

		if GreatCircle(origin, s.Location) > radius {
			a.OutOfRange += 1
			continue
		}

		a.stubs[id] = s
		a.order = append(a.order, id)
	}

	return a
}
