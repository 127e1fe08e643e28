package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// writeFile writes to a temporary file alongside 'path' and then moves it in to place.
func writeFile(path string, write_func func(io.Writer) error) error {

	root := filepath.Dir(path)

	err := os.MkdirAll(root, 0755)

	if err != nil {
		return fmt.Errorf("Failed to create %s, %w", root, err)
	}

	fh, err := os.CreateTemp(root, "."+filepath.Base(path)+".*")

	if err != nil {
		return fmt.Errorf("Failed to create temporary file for %s, %w", path, err)
	}

	tmp_path := fh.Name()

	defer os.Remove(tmp_path)

	err = fh.Chmod(0644)

	if err != nil {
		fh.Close()
		return fmt.Errorf("Failed to set permissions for %s, %w", tmp_path, err)
	}

	err = write_func(fh)

	if err != nil {
		fh.Close()
		return err
	}

	err = fh.Close()

	if err != nil {
		return fmt.Errorf("Failed to close %s, %w", tmp_path, err)
	}

	err = os.Rename(tmp_path, path)

	if err != nil {
		return fmt.Errorf("Failed to move %s to %s, %w", tmp_path, path, err)
	}

	return nil
}
