package writer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sfomuseum/go-csvdict/v2"
	"github.com/whosonfirst/go-nearby-places"
)

// CSVWriter implements the `Writer` interface for results written as one CSV row per venue.
type CSVWriter struct {
	Writer
	path string
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "csv", NewCSVWriter)

	if err != nil {
		panic(err)
	}
}

// NewCSVWriter returns a new CSVWriter configured by 'uri' in the form of:
//
//	csv:///path/to/venues.csv
//
// If the path is empty rows are written to STDOUT.
func NewCSVWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	wr := &CSVWriter{
		path: u.Path,
	}

	return wr, nil
}

func (wr *CSVWriter) Write(ctx context.Context, results *places.Results) error {

	if len(results.Venues) == 0 {
		return nil
	}

	if wr.path == "" {
		return writeCSV(os.Stdout, results)
	}

	return writeFile(wr.path, func(w io.Writer) error {
		return writeCSV(w, results)
	})
}

func (wr *CSVWriter) Close() error {
	return nil
}

func writeCSV(w io.Writer, results *places.Results) error {

	csv_wr, err := csvdict.NewWriter(w)

	if err != nil {
		return fmt.Errorf("Failed to create CSV writer, %w", err)
	}

	for _, v := range results.Venues {
		csv_wr.WriteRow(VenueRow(results.Id, v))
	}

	csv_wr.Flush()
	return nil
}

// VenueRow flattens 'v' in to a dictionary of strings. Absent values are empty strings.
func VenueRow(run_id string, v *places.Venue) map[string]string {

	row := map[string]string{
		"run_id":          run_id,
		"id":              v.Id,
		"name":            v.Name,
		"categories":      strings.Join(v.Categories, ";"),
		"latitude":        strconv.FormatFloat(v.Location.Latitude, 'f', -1, 64),
		"longitude":       strconv.FormatFloat(v.Location.Longitude, 'f', -1, 64),
		"distance_meters": strconv.Itoa(v.DistanceMeters),
		"rating":          "",
		"review_count":    strconv.Itoa(v.ReviewCount),
		"price_level":     "",
		"opening_hours":   FormatOpeningHours(v.OpeningHours),
		"address":         v.Address,
		"url":             v.URL,
	}

	if v.Rating != nil {
		row["rating"] = strconv.FormatFloat(*v.Rating, 'f', -1, 64)
	}

	if v.PriceLevel != nil {
		row["price_level"] = strconv.Itoa(*v.PriceLevel)
	}

	return row
}

// FormatOpeningHours renders 'hours' as "Day: hours" pairs, Monday first, separated by "; ".
func FormatOpeningHours(hours map[string]string) string {

	if len(hours) == 0 {
		return ""
	}

	parts := make([]string, 0, len(hours))

	for _, day := range places.Weekdays {

		h, ok := hours[day]

		if !ok {
			continue
		}

		parts = append(parts, fmt.Sprintf("%s: %s", dayLabel(day), h))
	}

	return strings.Join(parts, "; ")
}

func dayLabel(day string) string {

	if day == "" {
		return day
	}

	return strings.ToUpper(day[:1]) + day[1:]
}
