package writer

import (
	"context"
	"errors"
	"fmt"

	"github.com/whosonfirst/go-nearby-places"
)

// MultiWriter hands results to each of its writers in turn.
type MultiWriter struct {
	Writer
	writers []Writer
}

// NewMultiWriter returns a MultiWriter for 'writers'.
func NewMultiWriter(writers ...Writer) *MultiWriter {

	wr := &MultiWriter{
		writers: writers,
	}

	return wr
}

// NewMultiWriterFromURIs returns a MultiWriter with a Writer for each of 'uris'.
func NewMultiWriterFromURIs(ctx context.Context, uris ...string) (*MultiWriter, error) {

	writers := make([]Writer, 0, len(uris))

	for _, uri := range uris {

		wr, err := NewWriter(ctx, uri)

		if err != nil {

			for _, w := range writers {
				w.Close()
			}

			return nil, fmt.Errorf("Failed to create writer for %s, %w", uri, err)
		}

		writers = append(writers, wr)
	}

	return NewMultiWriter(writers...), nil
}

// Write stops at the first writer that fails.
func (mw *MultiWriter) Write(ctx context.Context, results *places.Results) error {

	for _, wr := range mw.writers {

		err := wr.Write(ctx, results)

		if err != nil {
			return err
		}
	}

	return nil
}

// Close closes every writer and returns all the errors encountered.
func (mw *MultiWriter) Close() error {

	errs := make([]error, 0)

	for _, wr := range mw.writers {

		err := wr.Close()

		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
