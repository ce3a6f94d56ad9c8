package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/agentsim/internal/store"
)

var (
	townYAML = filepath.Join("..", "modeldef", "testdata", "town.yaml")
	townCUE  = filepath.Join("..", "modeldef", "testdata", "town.cue")
)

// runTown runs the town model for 30 hours into db. ids names the runs
// the database will receive across calls.
func runTown(t *testing.T, db string, ids store.RunIDGenerator, format string, mutate func(*RunOptions)) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := &RootOptions{Format: format}
	opts := &RunOptions{RootOptions: root, Database: db, Hours: 30, RunIDs: ids}
	if mutate != nil {
		mutate(opts)
	}
	cmd := NewRunCommand(root)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return buf, runModel(opts, townYAML, cmd)
}

// writeModel writes a YAML model file into a temp dir.
func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

const smallModel = `
name: small
horizon_hours: 24
report_every_hours: 6
location_types: [home]
locations:
  - { name: flat, type: home }
activities:
  - { name: sleep, at: { property: home }, hours: 8 }
day_patterns:
  - { name: lazy, activities: [sleep] }
week_patterns:
  - { name: lazy, every: lazy }
population:
  - { home: flat, week_pattern: lazy, count: 3 }
`
