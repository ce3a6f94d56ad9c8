package modeldef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Error codes reported by LoadError.
const (
	ErrCodeRead        = "M001" // file could not be read
	ErrCodeFormat      = "M002" // unsupported file extension
	ErrCodeParse       = "M003" // YAML/CUE syntax or decode failure
	ErrCodeBuild       = "M004" // CUE evaluation failure
	ErrCodeRequired    = "M101" // required field missing
	ErrCodeDuplicate   = "M102" // duplicate name
	ErrCodeReference   = "M103" // unknown referenced name
	ErrCodeInvalid     = "M104" // value out of range or malformed
	ErrCodeWeekPattern = "M105" // week pattern does not cover seven days
)

// LoadError is a fatal problem with a model file.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Path    string    // model file, when loading from disk
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	var b strings.Builder
	switch {
	case e.Pos.IsValid():
		fmt.Fprintf(&b, "%s:%d:%d: ", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
	case e.Path != "":
		fmt.Fprintf(&b, "%s: ", e.Path)
	}
	b.WriteString(e.Code)
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// IsLoadError reports whether err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Load reads a model file, choosing the decoder by extension
// (.yaml/.yml or .cue), and validates its structure.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: fmt.Sprintf("reading model file: %v", err)}
	}

	var def *Definition
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		def, err = LoadYAML(bytes.NewReader(data))
	case ".cue":
		def, err = LoadCUE(data, path)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Path: path, Message: fmt.Sprintf("unsupported model file extension %q", ext)}
	}
	if err == nil {
		err = Validate(def)
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	return def, nil
}

// LoadYAML decodes a model definition, rejecting unknown fields.
func LoadYAML(r io.Reader) (*Definition, error) {
	var def Definition
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // typos like "activites:" fail the load
	if err := decoder.Decode(&def); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	return &def, nil
}

// LoadCUE evaluates a single CUE file and decodes the result. The file
// must evaluate to concrete values.
func LoadCUE(data []byte, filename string) (*Definition, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("compiling CUE: %v", err)}
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeBuild, Message: fmt.Sprintf("evaluating CUE: %v", err), Pos: value.Pos()}
	}

	var def Definition
	if err := value.Decode(&def); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("decoding CUE: %v", err), Pos: value.Pos()}
	}
	return &def, nil
}
