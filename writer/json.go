package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/whosonfirst/go-nearby-places"
)

// JSONWriter implements the `Writer` interface for results encoded as a JSON document.
type JSONWriter struct {
	Writer
	path string
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "json", NewJSONWriter)

	if err != nil {
		panic(err)
	}
}

// NewJSONWriter returns a new JSONWriter configured by 'uri' in the form of:
//
//	json:///path/to/venues.json
//
// If the path is empty results are written to STDOUT.
func NewJSONWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	wr := &JSONWriter{
		path: u.Path,
	}

	return wr, nil
}

func (wr *JSONWriter) Write(ctx context.Context, results *places.Results) error {

	if wr.path == "" {
		return encodeJSON(os.Stdout, results)
	}

	return writeFile(wr.path, func(w io.Writer) error {
		return encodeJSON(w, results)
	})
}

func (wr *JSONWriter) Close() error {
	return nil
}

func encodeJSON(w io.Writer, v any) error {

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)

	if err != nil {
		return fmt.Errorf("Failed to encode JSON, %w", err)
	}

	return nil
}
