// Package compiler turns form configuration sources (CUE, JSON, or YAML)
// into form.FormConfiguration values and statically validates them.
//
// Compilation and validation are separate steps: Compile* functions only
// decode, Validate reports every schema problem it can find without
// failing fast. Callers that want a ready-to-run config use Load, which
// does both.
package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/formweave/formweave/internal/form"
)

// CompileError reports a configuration source that failed to decode,
// carrying the source position when the format supplies one.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileCUE evaluates CUE source into a form configuration. The source
// must evaluate to a concrete struct with the configuration at the top
// level.
func CompileCUE(filename string, src []byte) (*form.FormConfiguration, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &form.FormConfiguration{}
	if err := v.Decode(cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return cfg, nil
}

// CompileJSON decodes a JSON form configuration. Unknown keys are
// rejected so typos surface at compile time instead of silently dropping
// configuration.
func CompileJSON(src []byte) (*form.FormConfiguration, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.DisallowUnknownFields()

	cfg := &form.FormConfiguration{}
	if err := dec.Decode(cfg); err != nil {
		return nil, &CompileError{Field: "json", Message: err.Error()}
	}
	return cfg, nil
}

// CompileYAML decodes a YAML form configuration.
func CompileYAML(src []byte) (*form.FormConfiguration, error) {
	cfg := &form.FormConfiguration{}
	if err := yaml.Unmarshal(src, cfg); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	return cfg, nil
}

// Compile dispatches on the filename extension: .cue, .json, .yaml/.yml.
func Compile(filename string, src []byte) (*form.FormConfiguration, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".cue":
		return CompileCUE(filename, src)
	case ".json":
		return CompileJSON(src)
	case ".yaml", ".yml":
		return CompileYAML(src)
	default:
		return nil, &CompileError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported config format %q (want .cue, .json, or .yaml)", filepath.Ext(filename)),
		}
	}
}

// Load reads, compiles, and validates a form configuration file. The
// first validation error is returned; callers that want the full list
// call Validate themselves.
func Load(path string) (*form.FormConfiguration, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Compile(path, src)
	if err != nil {
		return nil, err
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return cfg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
