package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/ArashLab/caplot/internal/errs"
)

//go:embed schema.cue
var schemaSource string

// Schema returns the CUE schema chart files are validated against.
func Schema() string {
	return schemaSource
}

var (
	cueOnce   sync.Once
	cueCtx    *cue.Context
	chartDef  cue.Value
	schemaErr error
)

// chartSchema compiles the embedded schema once.
func chartSchema() (*cue.Context, cue.Value, error) {
	cueOnce.Do(func() {
		cueCtx = cuecontext.New()
		schema := cueCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := schema.Err(); err != nil {
			schemaErr = fmt.Errorf("compile chart schema: %w", err)
			return
		}
		chartDef = schema.LookupPath(cue.ParsePath("#Chart"))
		if err := chartDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Chart: %w", err)
		}
	})
	return cueCtx, chartDef, schemaErr
}

// ParseCUE compiles a CUE (or JSON) chart file, unifies it with the chart
// schema and decodes the concrete result.
func ParseCUE(data []byte, path string) (*File, error) {
	ctx, def, err := chartSchema()
	if err != nil {
		return nil, err
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeInvalidOption, err, "failed to compile CUE").With("file", path)
	}
	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errs.Wrap(errs.CodeInvalidOption, err, "chart file does not match schema").With("file", path)
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidOption, err, "failed to export CUE").With("file", path)
	}
	f := newFile(path)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, errs.Wrap(errs.CodeInvalidOption, err, "failed to decode chart").With("file", path)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid chart file: %w", err)
	}
	return f, nil
}
