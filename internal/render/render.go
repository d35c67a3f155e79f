package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write encodes the figure in the given format.
func Write(f *Figure, w io.Writer, format Format) error {
	if format == FormatHTML {
		return writeHTML(f, w)
	}
	return writeStatic(f, w, format)
}

// Save writes the figure to path and returns the files written. The format
// comes from the path's suffix; a path without a suffix writes every format.
// The suffix is checked before anything is drawn.
func Save(f *Figure, path string) ([]string, error) {
	targets, err := Targets(path)
	if err != nil {
		return nil, err
	}
	written := make([]string, 0, len(targets))
	for _, t := range targets {
		if err := saveOne(f, t); err != nil {
			return written, err
		}
		written = append(written, t.Path)
	}
	return written, nil
}

func saveOne(f *Figure, t Target) (err error) {
	if dir := filepath.Dir(t.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	file, err := os.Create(t.Path)
	if err != nil {
		return fmt.Errorf("create %s: %w", t.Path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", t.Path, cerr)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := Write(f, bw, t.Format); err != nil {
		return fmt.Errorf("write %s: %w", t.Path, err)
	}
	return bw.Flush()
}
