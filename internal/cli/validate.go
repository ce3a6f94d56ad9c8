package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions

	// Strict fails validation when any population record was skipped.
	Strict bool
}

// ValidationResult summarizes a model that loaded and built.
type ValidationResult struct {
	Valid         bool     `json:"valid"`
	Model         string   `json:"model"`
	LocationTypes int      `json:"location_types"`
	Locations     int      `json:"locations"`
	Activities    int      `json:"activities"`
	DayPatterns   int      `json:"day_patterns"`
	WeekPatterns  int      `json:"week_patterns"`
	Phases        int      `json:"phases"`
	Records       int      `json:"records"`
	Accepted      int      `json:"accepted"`
	Skipped       int      `json:"skipped"`
	Persons       int      `json:"persons"`
	Problems      []string `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <model-file>",
		Short: "Validate a model file without running it",
		Long: `Load a YAML or CUE model file, check its structure and build the
population, reporting population records that were skipped.

Structural problems (unknown references, week patterns without seven
days, duplicate names) fail validation. Skipped population records are
warnings unless --strict is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when any population record is skipped")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	def, m, err := loadModel(formatter, path, overrides{})
	if err != nil {
		return err
	}

	rep := m.Report
	result := ValidationResult{
		Valid:         !(opts.Strict && rep.Skipped > 0),
		Model:         m.Name,
		LocationTypes: len(def.LocationTypes),
		Locations:     len(def.Locations),
		Activities:    len(def.Activities),
		DayPatterns:   len(def.DayPatterns),
		WeekPatterns:  len(def.WeekPatterns),
		Records:       rep.Records,
		Accepted:      rep.Accepted,
		Skipped:       rep.Skipped,
		Persons:       rep.Persons,
		Problems:      rep.Problems,
	}
	if def.Disease != nil {
		result.Phases = len(def.Disease.Phases)
	}

	if !result.Valid {
		if err := formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d population record(s) skipped", rep.Skipped), rep.Problems); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed: %d population record(s) skipped", rep.Skipped))
	}

	return formatter.Success(result, func(w io.Writer) { printValidation(w, result) })
}

func printValidation(w io.Writer, r ValidationResult) {
	fmt.Fprintf(w, "✓ Model %s is valid\n", r.Model)
	fmt.Fprintf(w, "  Locations:     %d (%d type(s))\n", r.Locations, r.LocationTypes)
	fmt.Fprintf(w, "  Activities:    %d\n", r.Activities)
	fmt.Fprintf(w, "  Day patterns:  %d\n", r.DayPatterns)
	fmt.Fprintf(w, "  Week patterns: %d\n", r.WeekPatterns)
	if r.Phases > 0 {
		fmt.Fprintf(w, "  Phases:        %d\n", r.Phases)
	}
	fmt.Fprintf(w, "  Population:    %s person(s) from %d of %d record(s)\n",
		humanize.Comma(int64(r.Persons)), r.Accepted, r.Records)

	if r.Skipped == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped %d record(s):\n", r.Skipped)
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}
}
