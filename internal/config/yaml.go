package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ArashLab/caplot/internal/errs"
)

// ParseYAML decodes a YAML chart file. Unknown keys are rejected.
func ParseYAML(data []byte, path string) (*File, error) {
	f := newFile(path)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalidFile(path, "chart file is empty")
		}
		return nil, errs.Wrap(errs.CodeInvalidOption, err, "failed to parse YAML").With("file", path)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid chart file: %w", err)
	}
	return f, nil
}
