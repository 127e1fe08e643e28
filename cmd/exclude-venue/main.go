package main

/*

./bin/exclude-venue -exclusions exclusions.json ChIJN1t_tDeuEmsRUsoyG83frY4
./bin/exclude-venue -exclusions exclusions.json -remove ChIJN1t_tDeuEmsRUsoyG83frY4

*/

import (
	"log"
	"log/slog"

	"github.com/sfomuseum/go-flags/flagset"
	"github.com/whosonfirst/go-nearby-places"
	"github.com/whosonfirst/go-nearby-places/logging"
)

func main() {

	var exclusions_path string
	var remove bool
	var verbose bool

	fs := flagset.NewFlagSet("exclude-venue")

	fs.StringVar(&exclusions_path, "exclusions", "exclusions.json", "The path to a JSON file containing a list of venue IDs to exclude.")
	fs.BoolVar(&remove, "remove", false, "Remove the venue IDs from the exclusion list rather than adding them.")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose (debug) logging.")

	flagset.Parse(fs)

	err := flagset.SetFlagsFromEnvVars(fs, "NEARBY")

	if err != nil {
		log.Fatalf("Failed to assign flags from environment variables, %v", err)
	}

	logging.SetupLogger(verbose)

	ids := fs.Args()

	if len(ids) == 0 {
		log.Fatal("Missing venue IDs")
	}

	set, err := places.LoadExclusions(exclusions_path)

	if err != nil {
		log.Fatalf("Failed to load exclusions, %v", err)
	}

	for _, id := range ids {

		if remove {
			delete(set, id)
			slog.Debug("Remove venue", "id", id)
			continue
		}

		set[id] = true
		slog.Debug("Exclude venue", "id", id)
	}

	err = places.WriteExclusions(exclusions_path, set)

	if err != nil {
		log.Fatalf("Failed to write exclusions, %v", err)
	}

	slog.Info("Updated exclusions", "path", exclusions_path, "count", len(set))
}
