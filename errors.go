package places

import (
	"fmt"
)

// GeocodeError is returned when an address can not be resolved to a Location. It is fatal.
type GeocodeError struct {
	Address string
	Err     error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("Failed to geocode '%s', %v", e.Address, e.Err)
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

// AreaSearchError is returned when any single area-search call fails. It aborts the entire search.
type AreaSearchError struct {
	Category string
	Point    SearchPoint
	Depth    int
	Err      error
}

func (e *AreaSearchError) Error() string {
	return fmt.Sprintf("Failed to search for '%s' at %s (depth %d), %v", e.Category, e.Point, e.Depth, e.Err)
}

func (e *AreaSearchError) Unwrap() error {
	return e.Err
}

// DetailFetchError records a failed details lookup. It is logged and the venue is kept with
// default values.
type DetailFetchError struct {
	Id  string
	Err error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("Failed to fetch details for '%s', %v", e.Id, e.Err)
}

func (e *DetailFetchError) Unwrap() error {
	return e.Err
}

// ExclusionListError records an exclusion list that could not be read. It is logged and an empty
// ExclusionSet is used instead.
type ExclusionListError struct {
	Path string
	Err  error
}

func (e *ExclusionListError) Error() string {
	return fmt.Sprintf("Failed to read exclusion list '%s', %v", e.Path, e.Err)
}

func (e *ExclusionListError) Unwrap() error {
	return e.Err
}
