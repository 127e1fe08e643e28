package places

import (
	"context"
	"fmt"
	"log/slog"
)

// SearchStats describes the work done by a single Engine.Search call.
type SearchStats struct {
	// Calls is the number of area-search calls issued.
	Calls int `json:"calls"`
	// MaxDepth is the deepest subdivision level reached. The initial circle is depth 0.
	MaxDepth int `json:"max_depth"`
	// Saturated is the number of circles at the radius floor that still returned a full cap of
	// results. Their results are kept but may be incomplete.
	Saturated int `json:"saturated"`
	// Points are the search circles queried, in the order they were queried.
	Points []SearchPoint `json:"points"`
}

// Engine finds every venue of a category inside a circle, subdividing in to quadrants wherever a
// provider call returns a full cap of results.
type Engine struct {
	searcher   AreaSearcher
	cap        int
	min_radius float64
	ratio      float64
	logger     *slog.Logger
}

type searchTask struct {
	point SearchPoint
	depth int
}

// NewEngine returns a new Engine issuing calls to 'searcher'. If 'logger' is nil slog.Default() is used.
func NewEngine(searcher AreaSearcher, opts Options, logger *slog.Logger) (*Engine, error) {

	err := opts.Validate()

	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	page_cap := opts.Cap

	if page_cap == 0 {
		page_cap = searcher.MaxResults()
	}

	if page_cap <= 0 {
		page_cap = DefaultCap
	}

	e := &Engine{
		searcher:   searcher,
		cap:        page_cap,
		min_radius: opts.MinRadius,
		ratio:      opts.ChildRadiusRatio,
		logger:     logger,
	}

	return e, nil
}

// Cap returns the result count that triggers subdivision.
func (e *Engine) Cap() int {
	return e.cap
}

// Search returns the stubs of 'category' found within 'radius' meters of 'center'. Circles are
// processed depth-first, children in NW, NE, SW, SE order, and the results of subdivided circles
// are replaced by the concatenation of their children's results. Stubs may repeat across
// children; de-duplication is left to Aggregate. Any provider error aborts the search and is
// returned as an *AreaSearchError.
func (e *Engine) Search(ctx context.Context, center Location, radius float64, category string) ([]*Stub, *SearchStats, error) {

	root := SearchPoint{
		Center: center,
		Radius: radius,
	}

	err := root.Validate()

	if err != nil {
		return nil, nil, err
	}

	stats := &SearchStats{
		Points: make([]SearchPoint, 0),
	}

	results := make([]*Stub, 0)

	stack := []searchTask{
		{point: root, depth: 0},
	}

	for len(stack) > 0 {

		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		stubs, err := e.searcher.SearchArea(ctx, t.point, category)

		stats.Calls += 1
		stats.Points = append(stats.Points, t.point)

		if t.depth > stats.MaxDepth {
			stats.MaxDepth = t.depth
		}

		if err != nil {
			return nil, stats, &AreaSearchError{
				Category: category,
				Point:    t.point,
				Depth:    t.depth,
				Err:      err,
			}
		}

		e.logger.Debug("Search area", "category", category, "point", t.point.String(), "depth", t.depth, "count", len(stubs))

		if len(stubs) < e.cap {
			results = append(results, stubs...)
			continue
		}

		if t.point.Radius <= e.min_radius {

			stats.Saturated += 1
			e.logger.Warn("Search area returned a full page at the minimum radius, results may be incomplete", "category", category, "point", t.point.String(), "count", len(stubs))

			results = append(results, stubs...)
			continue
		}

		children := Subdivide(t.point, e.ratio)

		// Push in reverse so that children are popped NW, NE, SW, SE
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, searchTask{point: children[i], depth: t.depth + 1})
		}
	}

	return results, stats, nil
}

// Subdivide returns the four child circles (NW, NE, SW, SE) of 'pt'. Each child center is offset
// by half the parent radius on both axes and has a radius of 'ratio' times the parent radius.
func Subdivide(pt SearchPoint, ratio float64) []SearchPoint {

	offset := pt.Radius / 2
	radius := pt.Radius * ratio

	return []SearchPoint{
		{Center: pt.Center.Offset(offset, -offset), Radius: radius},
		{Center: pt.Center.Offset(offset, offset), Radius: radius},
		{Center: pt.Center.Offset(-offset, -offset), Radius: radius},
		{Center: pt.Center.Offset(-offset, offset), Radius: radius},
	}
}

// MaxSearchCalls returns the upper bound on the number of calls Engine.Search will issue for a
// circle of 'radius' meters: every circle subdivided until the radius floor is reached.
func MaxSearchCalls(radius float64, min_radius float64, ratio float64) (int, error) {

	if !(radius > 0 && min_radius > 0) {
		return 0, fmt.Errorf("Radius and minimum radius must be greater than zero")
	}

	if !(ratio > 0 && ratio < 1) {
		return 0, fmt.Errorf("Invalid child radius ratio %f", ratio)
	}

	total := 1
	level := 1

	for r := radius; r > min_radius; r = r * ratio {
		level = level * 4
		total += level
	}

	return total, nil
}
