package places

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// ExclusionSet is a set of venue Ids to omit from results.
type ExclusionSet map[string]bool

// NewExclusionSet returns an ExclusionSet containing 'ids'.
func NewExclusionSet(ids ...string) ExclusionSet {

	set := make(ExclusionSet)

	for _, id := range ids {

		if id != "" {
			set[id] = true
		}
	}

	return set
}

// Contains reports whether 'id' is excluded. It is safe to call on a nil set.
func (set ExclusionSet) Contains(id string) bool {
	return set[id]
}

// Ids returns the excluded Ids, sorted.
func (set ExclusionSet) Ids() []string {

	ids := make([]string, 0, len(set))

	for id := range set {
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids
}

// ReadExclusions reads a JSON list of venue Ids from 'r'.
func ReadExclusions(r io.Reader) (ExclusionSet, error) {

	var ids []string

	dec := json.NewDecoder(r)
	err := dec.Decode(&ids)

	if err != nil {
		return NewExclusionSet(), fmt.Errorf("Failed to decode exclusion list, %w", err)
	}

	return NewExclusionSet(ids...), nil
}

// LoadExclusions reads the exclusion list at 'path'. A missing file yields an empty set and no
// error. An unreadable or malformed file yields an empty set and an *ExclusionListError, which
// callers are expected to log and otherwise ignore.
func LoadExclusions(path string) (ExclusionSet, error) {

	r, err := os.Open(path)

	if err != nil {

		if errors.Is(err, fs.ErrNotExist) {
			return NewExclusionSet(), nil
		}

		return NewExclusionSet(), &ExclusionListError{Path: path, Err: err}
	}

	defer r.Close()

	set, err := ReadExclusions(r)

	if err != nil {
		return NewExclusionSet(), &ExclusionListError{Path: path, Err: err}
	}

	return set, nil
}

// WriteExclusions writes 'set' to 'path' as a sorted JSON list, creating parent directories as needed.
func WriteExclusions(path string, set ExclusionSet) error {

	err := os.MkdirAll(filepath.Dir(path), 0755)

	if err != nil {
		return fmt.Errorf("Failed to create directory for %s, %w", path, err)
	}

	body, err := json.MarshalIndent(set.Ids(), "", "  ")

	if err != nil {
		return fmt.Errorf("Failed to marshal exclusion list, %w", err)
	}

	tmp_path := path + ".tmp"

	err = os.WriteFile(tmp_path, append(body, '\n'), 0644)

	if err != nil {
		return fmt.Errorf("Failed to write %s, %w", tmp_path, err)
	}

	return os.Rename(tmp_path, path)
}
