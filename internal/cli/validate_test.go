package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeValidate(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateTown(t *testing.T) {
	buf, err := executeValidate(t, "text", townYAML)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Model town is valid")
	assert.Contains(t, output, "Locations:     4 (3 type(s))")
	assert.Contains(t, output, "Phases:        4")
	assert.Contains(t, output, "4 person(s) from 3 of 5 record(s)")
	assert.Contains(t, output, "Skipped 2 record(s)")
	assert.Contains(t, output, "population[3]:")
	assert.Contains(t, output, "population[4]:")
}

func TestValidateTownCUE(t *testing.T) {
	buf, err := executeValidate(t, "text", townCUE)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ Model town is valid")
}

func TestValidateTownJSON(t *testing.T) {
	buf, err := executeValidate(t, "json", townYAML)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "town", resp.Data.Model)
	assert.Equal(t, 4, resp.Data.Locations)
	assert.Equal(t, 6, resp.Data.Activities)
	assert.Equal(t, 2, resp.Data.DayPatterns)
	assert.Equal(t, 2, resp.Data.WeekPatterns)
	assert.Equal(t, 5, resp.Data.Records)
	assert.Equal(t, 3, resp.Data.Accepted)
	assert.Equal(t, 2, resp.Data.Skipped)
	assert.Equal(t, 4, resp.Data.Persons)
	assert.Len(t, resp.Data.Problems, 2)
}

func TestValidateStrictFailsOnSkippedRecords(t *testing.T) {
	buf, err := executeValidate(t, "text", "--strict", townYAML)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, buf.String(), "Error [E003]")
	assert.Contains(t, buf.String(), "2 population record(s) skipped")
}

func TestValidateStrictPassesCleanModel(t *testing.T) {
	path := writeModel(t, smallModel)
	buf, err := executeValidate(t, "text", "--strict", path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 person(s) from 1 of 1 record(s)")
	assert.NotContains(t, buf.String(), "Skipped")
}

func TestValidateNonExistentFile(t *testing.T) {
	buf, err := executeValidate(t, "text", "/nonexistent/model.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateParseError(t *testing.T) {
	path := writeModel(t, "name: bad\nactivites: []\n")

	buf, err := executeValidate(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "E002")
	assert.Contains(t, buf.String(), "activites")
}

func TestValidateStructuralError(t *testing.T) {
	path := writeModel(t, `
name: broken
horizon_hours: 24
location_types: [home]
locations:
  - { name: flat, type: home }
activities:
  - { name: sleep, at: { property: home }, hours: 8 }
day_patterns:
  - { name: lazy, activities: [sleep, nap] }
week_patterns:
  - { name: lazy, every: lazy }
`)

	buf, err := executeValidate(t, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "nap")
	assert.Contains(t, resp.Error.Message, "M103")
}
