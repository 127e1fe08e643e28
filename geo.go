package places

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// EarthRadius is the mean radius of the Earth, in meters, used for great-circle distances.
const EarthRadius = 6371000.0

// MetersPerDegree is the (approximate) number of meters in one degree of latitude.
const MetersPerDegree = 111320.0

// Location is a WGS-84 coordinate expressed in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns 'l' as an orb.Point, which is ordered (longitude, latitude).
func (l Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}

// Offset returns a new Location displaced from 'l' by 'north' and 'east' meters using a flat-Earth
// approximation, which is good enough at the scale of a neighbourhood search.
func (l Location) Offset(north float64, east float64) Location {

	lat_rad := l.Latitude * math.Pi / 180.0

	d_lat := north / MetersPerDegree
	d_lng := east / (MetersPerDegree * math.Cos(lat_rad))

	return Location{
		Latitude:  l.Latitude + d_lat,
		Longitude: l.Longitude + d_lng,
	}
}

// ParseLocation parses a "latitude,longitude" string.
func ParseLocation(str_loc string) (Location, error) {

	parts := strings.Split(str_loc, ",")

	if len(parts) != 2 {
		return Location{}, fmt.Errorf("Invalid location '%s', expected 'latitude,longitude'", str_loc)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)

	if err != nil {
		return Location{}, fmt.Errorf("Invalid latitude in '%s', %w", str_loc, err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)

	if err != nil {
		return Location{}, fmt.Errorf("Invalid longitude in '%s', %w", str_loc, err)
	}

	if lat < -90.0 || lat > 90.0 {
		return Location{}, fmt.Errorf("Latitude out of range in '%s'", str_loc)
	}

	if lon < -180.0 || lon > 180.0 {
		return Location{}, fmt.Errorf("Longitude out of range in '%s'", str_loc)
	}

	return Location{Latitude: lat, Longitude: lon}, nil
}

// SearchPoint describes a single area-search call: a circle of Radius meters around Center.
type SearchPoint struct {
	Center Location `json:"center"`
	Radius float64  `json:"radius"`
}

func (pt SearchPoint) Validate() error {

	if !(pt.Radius > 0) {
		return fmt.Errorf("Invalid search radius %f, must be greater than zero", pt.Radius)
	}

	return nil
}

func (pt SearchPoint) String() string {
	return fmt.Sprintf("%s r=%.0fm", pt.Center, pt.Radius)
}

// Contains reports whether 'loc' is within (or on the edge of) the search circle.
func (pt SearchPoint) Contains(loc Location) bool {
	return GreatCircle(pt.Center, loc) <= pt.Radius
}

// GreatCircle returns the haversine distance, in meters, between 'a' and 'b'.
func GreatCircle(a Location, b Location) float64 {

	lat1 := a.Latitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0

	d_lat := (b.Latitude - a.Latitude) * math.Pi / 180.0
	d_lng := (b.Longitude - a.Longitude) * math.Pi / 180.0

	h := math.Sin(d_lat/2)*math.Sin(d_lat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(d_lng/2)*math.Sin(d_lng/2)

	return EarthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMeters returns the great-circle distance between 'a' and 'b' rounded to the nearest meter.
func DistanceMeters(a Location, b Location) int {
	return int(math.Round(GreatCircle(a, b)))
}
