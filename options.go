package places

import (
	"fmt"
	"time"
)

// DefaultCap is the number of results a single area-search call returns when a provider doesn't
// say otherwise.
const DefaultCap = 20

// DefaultMinRadius is the radius, in meters, below which search circles are not subdivided.
const DefaultMinRadius = 500.0

// DefaultChildRadiusRatio is the ratio of a child search circle's radius to its parent's. With
// child centers offset by half the parent radius on each axis this yields four overlapping
// quadrant circles.
const DefaultChildRadiusRatio = 0.5

// CoveringChildRadiusRatio is a child radius ratio large enough for the four children to cover
// every point of the parent circle (anything above 1/√2), with some slack for the flat-Earth
// offsets.
const CoveringChildRadiusRatio = 0.75

// DefaultRadius is the default search radius, in meters.
const DefaultRadius = 1000.0

// DefaultDetailsDelay is the pause between consecutive details lookups.
const DefaultDetailsDelay = 100 * time.Millisecond

// DefaultCategories are the venue categories searched for when none are specified.
var DefaultCategories = []string{
	"restaurant",
	"bar",
	"cafe",
	"bakery",
}

// Options configures a Finder and the components it drives.
type Options struct {
	// Cap is the per-call result count at which a search circle is subdivided. If zero the
	// provider's MaxResults value is used.
	Cap int `json:"cap,omitempty"`
	// MinRadius is the radius floor, in meters, at which subdivision stops.
	MinRadius float64 `json:"min_radius"`
	// ChildRadiusRatio is the ratio of a child circle's radius to its parent's, in (0, 1).
	ChildRadiusRatio float64 `json:"child_radius_ratio"`
	// DetailsDelay is the pause between consecutive details lookups.
	DetailsDelay time.Duration `json:"details_delay"`
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Cap:              0,
		MinRadius:        DefaultMinRadius,
		ChildRadiusRatio: DefaultChildRadiusRatio,
		DetailsDelay:     DefaultDetailsDelay,
	}
}

func (opts Options) Validate() error {

	if opts.Cap < 0 {
		return fmt.Errorf("Invalid cap %d, must not be negative", opts.Cap)
	}

	if !(opts.MinRadius > 0) {
		return fmt.Errorf("Invalid minimum radius %f, must be greater than zero", opts.MinRadius)
	}

	if !(opts.ChildRadiusRatio > 0 && opts.ChildRadiusRatio < 1) {
		return fmt.Errorf("Invalid child radius ratio %f, must be between 0 and 1 (exclusive)", opts.ChildRadiusRatio)
	}

	if opts.DetailsDelay < 0 {
		return fmt.Errorf("Invalid details delay %v, must not be negative", opts.DetailsDelay)
	}

	return nil
}
