package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArashLab/caplot/internal/errs"
)

// Load reads a chart file, choosing the decoder by suffix: .yaml and .yml
// are YAML; .cue and .json are CUE.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data, path)
	case ".cue", ".json":
		return ParseCUE(data, path)
	default:
		return nil, errs.New(errs.CodeUnsupportedSource, "unsupported chart file suffix %q", ext).
			With("file", path)
	}
}
