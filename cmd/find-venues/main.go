package main

/*

./bin/find-venues \
    -provider-uri 'google://?paginate=true' \
    -address 'Alexanderplatz, Berlin' \
    -radius 1500 \
    -category cafe -category bakery \
    -writer-uri json:///usr/local/data/venues/venues.json \
    -writer-uri html:///usr/local/data/venues/www

*/

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/sfomuseum/go-flags/flagset"
	"github.com/sfomuseum/go-flags/multi"
	"github.com/whosonfirst/go-nearby-places"
	"github.com/whosonfirst/go-nearby-places/cache"
	"github.com/whosonfirst/go-nearby-places/logging"
	"github.com/whosonfirst/go-nearby-places/provider"
	"github.com/whosonfirst/go-nearby-places/writer"
)

func main() {

	var address string
	var str_origin string
	var radius float64
	var categories multi.MultiString

	var provider_uri string
	var writer_uris multi.MultiString
	var cache_uri string
	var exclusions_path string

	var min_radius float64
	var page_cap int
	var child_radius_ratio float64

	var verbose bool

	// Values in a .env file are exposed as NEARBY_ environment variables below
	err := godotenv.Load()

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env file, %v", err)
	}

	fs := flagset.NewFlagSet("find-venues")

	fs.StringVar(&address, "address", "", "The address to search around.")
	fs.StringVar(&str_origin, "origin", "", "An optional 'latitude,longitude' search origin. If present -address is not geocoded.")
	fs.Float64Var(&radius, "radius", places.DefaultRadius, "The search radius in meters.")
	fs.Var(&categories, "category", "One or more venue categories to search for. Default is restaurant, bar, cafe and bakery.")

	fs.StringVar(&provider_uri, "provider-uri", "google://", fmt.Sprintf("A registered provider.Provider URI. Valid schemes are: %v", provider.ProviderSchemes()))
	fs.Var(&writer_uris, "writer-uri", fmt.Sprintf("One or more registered writer.Writer URIs. Valid schemes are: %v. Default is json:// (STDOUT).", writer.WriterSchemes()))
	fs.StringVar(&cache_uri, "cache-uri", "null://", fmt.Sprintf("A registered cache.Cache URI used to store venue details. Valid schemes are: %v", cache.CacheSchemes()))
	fs.StringVar(&exclusions_path, "exclusions", "", "The path to a JSON file containing a list of venue IDs to exclude.")

	fs.Float64Var(&min_radius, "min-radius", places.DefaultMinRadius, "The radius in meters below which search circles are not subdivided.")
	fs.IntVar(&page_cap, "cap", 0, "The number of results at which a search circle is subdivided. If 0 the provider's maximum results per call is used.")
	fs.Float64Var(&child_radius_ratio, "child-radius-ratio", places.DefaultChildRadiusRatio, fmt.Sprintf("The ratio of a child search circle's radius to its parent's. Use %.2f for circles that cover their parent completely.", places.CoveringChildRadiusRatio))

	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	flagset.Parse(fs)

	err = flagset.SetFlagsFromEnvVars(fs, "NEARBY")

	if err != nil {
		log.Fatalf("Failed to assign flags from environment variables, %v", err)
	}

	logger := logging.SetupLogger(verbose)

	ctx := context.Background()

	req := &places.FindRequest{
		Address:    address,
		Radius:     radius,
		Categories: categories,
	}

	if str_origin != "" {

		origin, err := places.ParseLocation(str_origin)

		if err != nil {
			log.Fatalf("Invalid -origin flag, %v", err)
		}

		req.Origin = &origin
	}

	if exclusions_path != "" {

		exclude, err := places.LoadExclusions(exclusions_path)

		if err != nil {
			logger.Warn("Failed to load exclusions, continuing without them", "path", exclusions_path, "error", err)
		}

		req.Exclude = exclude
	}

	p, err := provider.NewProvider(ctx, provider_uri)

	if err != nil {
		log.Fatalf("Failed to create provider, %v", err)
	}

	defer p.Close()

	c, err := cache.NewCache(ctx, cache_uri)

	if err != nil {
		log.Fatalf("Failed to create cache, %v", err)
	}

	defer c.Close()

	if len(writer_uris) == 0 {
		writer_uris = multi.MultiString{"json://"}
	}

	wr, err := writer.NewMultiWriterFromURIs(ctx, writer_uris...)

	if err != nil {
		log.Fatalf("Failed to create writers, %v", err)
	}

	defer wr.Close()

	opts := places.DefaultOptions()
	opts.Cap = page_cap
	opts.MinRadius = min_radius
	opts.ChildRadiusRatio = child_radius_ratio

	f, err := places.NewFinder(p, c, opts, logger)

	if err != nil {
		log.Fatalf("Failed to create finder, %v", err)
	}

	results, err := f.Find(ctx, req)

	if err != nil {
		log.Fatalf("Failed to find venues, %v", err)
	}

	err = wr.Write(ctx, results)

	if err != nil {
		log.Fatalf("Failed to write results, %v", err)
	}

	slog.Info("Complete", "run", results.Id, "venues", len(results.Venues), "search_calls", results.Stats.SearchCalls, "detail_calls", results.Stats.DetailCalls, "cache_hits", results.Stats.CacheHits)

	if results.Stats.Saturated > 0 {
		slog.Warn("Some search circles at the minimum radius returned a full page of results, so some venues may be missing", "count", results.Stats.Saturated)
	}
}
