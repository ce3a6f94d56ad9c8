package cli

import (
	"errors"
	"os"

	"github.com/roach88/agentsim/internal/modeldef"
)

// overrides are command-line replacements for model file settings.
type overrides struct {
	seed    *uint64
	horizon float64 // hours; zero keeps the file's value
}

func (o overrides) apply(def *modeldef.Definition) {
	if o.seed != nil {
		def.Seed = *o.seed
	}
	if o.horizon > 0 {
		def.HorizonHours = o.horizon
	}
}

// loadModel reads, overrides and builds a model file. Failures are
// reported through f and returned as ExitErrors.
func loadModel(f *OutputFormatter, path string, ov overrides) (*modeldef.Definition, *modeldef.Model, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeNotFound, "model file not found: "+path, nil)
	}

	f.VerboseLog("Loading model %s", path)
	def, err := modeldef.Load(path)
	if err != nil {
		var le *modeldef.LoadError
		if errors.As(err, &le) && isSyntaxCode(le.Code) {
			return nil, nil, f.Fail(ExitFailure, ErrCodeLoad, "failed to load model", err)
		}
		return nil, nil, f.Fail(ExitFailure, ErrCodeInvalid, "invalid model", err)
	}
	ov.apply(def)

	m, err := modeldef.Build(def)
	if err != nil {
		return nil, nil, f.Fail(ExitFailure, ErrCodeInvalid, "failed to build model", err)
	}
	f.VerboseLog("Built model %s: %d location(s), %d person(s)", m.Name, len(m.LocationNames), m.Population.Size())
	return def, m, nil
}

func isSyntaxCode(code string) bool {
	switch code {
	case modeldef.ErrCodeRead, modeldef.ErrCodeFormat, modeldef.ErrCodeParse, modeldef.ErrCodeBuild:
		return true
	}
	return false
}
