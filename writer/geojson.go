package writer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/whosonfirst/go-nearby-places"
)

// CIRCLE_SEGMENTS is the number of sides of the polygons used to draw search circles.
const CIRCLE_SEGMENTS int = 64

// GeoJSONWriter implements the `Writer` interface for results encoded as a GeoJSON FeatureCollection.
type GeoJSONWriter struct {
	Writer
	path          string
	search_points bool
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "geojson", NewGeoJSONWriter)

	if err != nil {
		panic(err)
	}
}

// NewGeoJSONWriter returns a new GeoJSONWriter configured by 'uri' in the form of:
//
//	geojson:///path/to/venues.geojson?{PARAMETERS}
//
// Where {PARAMETERS} may be:
// * `search-points` Include the circles queried for each category as polygons. Default is false.
//
// If the path is empty results are written to STDOUT.
func NewGeoJSONWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	q := u.Query()

	wr := &GeoJSONWriter{
		path: u.Path,
	}

	if q.Has("search-points") {

		v, err := strconv.ParseBool(q.Get("search-points"))

		if err != nil {
			return nil, fmt.Errorf("Invalid ?search-points= parameter, %w", err)
		}

		wr.search_points = v
	}

	return wr, nil
}

func (wr *GeoJSONWriter) Write(ctx context.Context, results *places.Results) error {

	fc := ResultsFeatureCollection(results, wr.search_points)

	write_fc := func(w io.Writer) error {

		body, err := fc.MarshalJSON()

		if err != nil {
			return fmt.Errorf("Failed to marshal feature collection, %w", err)
		}

		_, err = w.Write(body)
		return err
	}

	if wr.path == "" {
		return write_fc(os.Stdout)
	}

	return writeFile(wr.path, write_fc)
}

func (wr *GeoJSONWriter) Close() error {
	return nil
}

// ResultsFeatureCollection returns a point feature for each venue in 'results', nearest first. If
// 'search_points' is true it also returns a polygon feature for each circle that was queried.
func ResultsFeatureCollection(results *places.Results, search_points bool) *geojson.FeatureCollection {

	fc := geojson.NewFeatureCollection()

	for _, v := range results.Venues {
		fc.Append(VenueFeature(v))
	}

	if !search_points {
		return fc
	}

	categories := make([]string, 0, len(results.Searches))

	for c := range results.Searches {
		categories = append(categories, c)
	}

	slices.Sort(categories)

	for _, c := range categories {

		for i, pt := range results.Searches[c].Points {

			f := SearchPointFeature(pt)
			f.Properties["category"] = c
			f.Properties["sequence"] = i

			fc.Append(f)
		}
	}

	return fc
}

// VenueFeature returns 'v' as a GeoJSON point feature.
func VenueFeature(v *places.Venue) *geojson.Feature {

	f := geojson.NewFeature(v.Location.Point())
	f.ID = v.Id

	f.Properties["id"] = v.Id
	f.Properties["name"] = v.Name
	f.Properties["categories"] = v.Categories
	f.Properties["distance_meters"] = v.DistanceMeters
	f.Properties["review_count"] = v.ReviewCount

	if v.Rating != nil {
		f.Properties["rating"] = *v.Rating
	}

	if v.PriceLevel != nil {
		f.Properties["price_level"] = *v.PriceLevel
	}

	if len(v.OpeningHours) > 0 {
		f.Properties["opening_hours"] = v.OpeningHours
	}

	if v.Address != "" {
		f.Properties["address"] = v.Address
	}

	if v.URL != "" {
		f.Properties["url"] = v.URL
	}

	return f
}

// SearchPointFeature returns the circle described by 'pt' as a GeoJSON polygon feature.
func SearchPointFeature(pt places.SearchPoint) *geojson.Feature {

	f := geojson.NewFeature(Circle(pt.Center.Point(), pt.Radius, CIRCLE_SEGMENTS))

	f.Properties["latitude"] = pt.Center.Latitude
	f.Properties["longitude"] = pt.Center.Longitude
	f.Properties["radius"] = pt.Radius

	return f
}

// Circle returns a closed polygon with 'segments' sides approximating the circle of 'radius' meters
// around 'center'.
func Circle(center orb.Point, radius float64, segments int) orb.Polygon {

	if segments < 3 {
		segments = 3
	}

	ring := make(orb.Ring, 0, segments+1)

	// Counter-clockwise, per RFC 7946

	for i := 0; i < segments; i++ {
		bearing := 360.0 - float64(i)*360.0/float64(segments)
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}

	ring = append(ring, ring[0])

	return orb.Polygon{ring}
}
