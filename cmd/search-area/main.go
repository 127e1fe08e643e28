package main

/*

./bin/search-area \
    -provider-uri 'foursquare:///usr/local/data/4sq/places-berlin.csv.bz2' \
    -origin 52.520008,13.404954 \
    -category cafe \
    -min-radius 250 \
    > cafe-plan.geojson

*/

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/whosonfirst/go-nearby-places"
	"github.com/whosonfirst/go-nearby-places/logging"
	"github.com/whosonfirst/go-nearby-places/provider"
	"github.com/whosonfirst/go-nearby-places/writer"
)

func main() {

	var provider_uri string
	var address string
	var str_origin string
	var radius float64
	var category string

	var min_radius float64
	var page_cap int
	var child_radius_ratio float64

	var verbose bool

	err := godotenv.Load()

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env file, %v", err)
	}

	fs := flagset.NewFlagSet("search-area")

	fs.StringVar(&provider_uri, "provider-uri", "google://", fmt.Sprintf("A registered provider.Provider URI. Valid schemes are: %v", provider.ProviderSchemes()))
	fs.StringVar(&address, "address", "", "The address to search around.")
	fs.StringVar(&str_origin, "origin", "", "An optional 'latitude,longitude' search origin. If present -address is not geocoded.")
	fs.Float64Var(&radius, "radius", places.DefaultRadius, "The search radius in meters.")
	fs.StringVar(&category, "category", "restaurant", "The venue category to search for.")

	fs.Float64Var(&min_radius, "min-radius", places.DefaultMinRadius, "The radius in meters below which search circles are not subdivided.")
	fs.IntVar(&page_cap, "cap", 0, "The number of results at which a search circle is subdivided. If 0 the provider's maximum results per call is used.")
	fs.Float64Var(&child_radius_ratio, "child-radius-ratio", places.DefaultChildRadiusRatio, "The ratio of a child search circle's radius to its parent's.")

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	flagset.Parse(fs)

	err = flagset.SetFlagsFromEnvVars(fs, "NEARBY")

	if err != nil {
		log.Fatalf("Failed to assign flags from environment variables, %v", err)
	}

	logger := logging.SetupLogger(verbose)

	ctx := context.Background()

	p, err := provider.NewProvider(ctx, provider_uri)

	if err != nil {
		log.Fatalf("Failed to create provider, %v", err)
	}

	defer p.Close()

	var origin places.Location

	switch {
	case str_origin != "":

		origin, err = places.ParseLocation(str_origin)

		if err != nil {
			log.Fatalf("Invalid -origin flag, %v", err)
		}

	case address != "":

		origin, err = p.Geocode(ctx, address)

		if err != nil {
			log.Fatalf("Failed to geocode address, %v", err)
		}

	default:
		log.Fatal("Missing -origin or -address flag")
	}

	opts := places.DefaultOptions()
	opts.Cap = page_cap
	opts.MinRadius = min_radius
	opts.ChildRadiusRatio = child_radius_ratio

	max_calls, err := places.MaxSearchCalls(radius, opts.MinRadius, opts.ChildRadiusRatio)

	if err != nil {
		log.Fatalf("Invalid search parameters, %v", err)
	}

	logger.Info("Search plan", "origin", origin.String(), "radius", radius, "category", category, "max_calls", max_calls)

	engine, err := places.NewEngine(p, opts, logger)

	if err != nil {
		log.Fatalf("Failed to create search engine, %v", err)
	}

	stubs, stats, err := engine.Search(ctx, origin, radius, category)

	if err != nil {
		log.Fatalf("Failed to search area, %v", err)
	}

	fc := geojson.NewFeatureCollection()

	for i, pt := range stats.Points {

		f := writer.SearchPointFeature(pt)
		f.Properties["category"] = category
		f.Properties["sequence"] = i

		fc.Append(f)
	}

	for _, s := range stubs {

		f := geojson.NewFeature(s.Location.Point())
		f.ID = s.Id

		f.Properties["id"] = s.Id
		f.Properties["name"] = s.Name
		f.Properties["categories"] = s.Categories
		f.Properties["distance_meters"] = places.DistanceMeters(origin, s.Location)

		fc.Append(f)
	}

	body, err := fc.MarshalJSON()

	if err != nil {
		log.Fatalf("Failed to marshal feature collection, %v", err)
	}

	_, err = os.Stdout.Write(body)

	if err != nil {
		log.Fatalf("Failed to write feature collection, %v", err)
	}

	logger.Info("Complete", "calls", stats.Calls, "max_depth", stats.MaxDepth, "saturated", stats.Saturated, "stubs", len(stubs))
}
