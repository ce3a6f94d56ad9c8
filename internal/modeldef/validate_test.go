package modeldef

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal returns a small valid definition for tests to break.
func minimal() *Definition {
	return &Definition{
		Name:          "mini",
		HorizonHours:  24,
		LocationTypes: []string{"home", "office"},
		Locations: []LocationDef{
			{Name: "house", Type: "home"},
			{Name: "office", Type: "office"},
		},
		Activities: []ActivityDef{
			{Name: "sleep", At: LocatorDef{Property: "home"}, Hours: 8},
			{Name: "work", At: LocatorDef{Location: "office"}, Hours: 8},
		},
		DayPatterns: []DayPatternDef{
			{Name: "day", Activities: []string{"sleep", "work"}},
		},
		WeekPatterns: []WeekPatternDef{
			{Name: "every", Every: "day"},
		},
		Population: []PersonDef{
			{Home: "house", WeekPattern: "every"},
		},
	}
}

func TestValidate_Minimal(t *testing.T) {
	require.NoError(t, Validate(minimal()))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
		code   string
		field  string
	}{
		{"missing name", func(d *Definition) { d.Name = "  " }, ErrCodeRequired, "name"},
		{"zero horizon", func(d *Definition) { d.HorizonHours = 0 }, ErrCodeInvalid, "horizon_hours"},
		{"infinite horizon", func(d *Definition) { d.HorizonHours = math.Inf(1) }, ErrCodeInvalid, "horizon_hours"},
		{"negative start", func(d *Definition) { d.StartHour = -1 }, ErrCodeInvalid, "start_hour"},
		{"negative report interval", func(d *Definition) { d.ReportEveryHours = -1 }, ErrCodeInvalid, "report_every_hours"},
		{"duplicate type", func(d *Definition) { d.LocationTypes = append(d.LocationTypes, "home") }, ErrCodeDuplicate, "location_types[2]"},
		{"duplicate location", func(d *Definition) {
			d.Locations = append(d.Locations, LocationDef{Name: "house", Type: "home"})
		}, ErrCodeDuplicate, "locations[2]"},
		{"unknown location type", func(d *Definition) { d.Locations[1].Type = "factory" }, ErrCodeReference, "locations[1].type"},
		{"negative capacity", func(d *Definition) { d.Locations[0].Capacity = -2 }, ErrCodeInvalid, "locations[0].capacity"},
		{"unknown kind", func(d *Definition) { d.Activities[0].Kind = "teleport" }, ErrCodeInvalid, "activities[0].kind"},
		{"from on stay", func(d *Definition) { d.Activities[0].From = &LocatorDef{Current: true} }, ErrCodeInvalid, "activities[0]"},
		{"two locator rules", func(d *Definition) { d.Activities[0].At.Current = true }, ErrCodeInvalid, "activities[0].at"},
		{"no locator rule", func(d *Definition) { d.Activities[0].At = LocatorDef{} }, ErrCodeInvalid, "activities[0].at"},
		{"unknown fixed location", func(d *Definition) { d.Activities[1].At.Location = "mall" }, ErrCodeReference, "activities[1].at.location"},
		{"reserved property", func(d *Definition) { d.Activities[0].At.Property = "cursor" }, ErrCodeInvalid, "activities[0].at.property"},
		{"bad travel end", func(d *Definition) {
			d.Activities[1].Kind = KindTravel
			d.Activities[1].To = &LocatorDef{Location: "mall"}
		}, ErrCodeReference, "activities[1].to.location"},
		{"negative hours", func(d *Definition) { d.Activities[0].Hours = -1 }, ErrCodeInvalid, "activities[0].hours"},
		{"unknown activity in day", func(d *Definition) {
			d.DayPatterns[0].Activities = append(d.DayPatterns[0].Activities, "lunch")
		}, ErrCodeReference, "day_patterns[0].activities[2]"},
		{"no week patterns", func(d *Definition) { d.WeekPatterns = nil }, ErrCodeRequired, "week_patterns"},
		{"six days", func(d *Definition) {
			d.WeekPatterns[0] = WeekPatternDef{Name: "short", Days: []string{"day", "day", "day", "day", "day", "day"}}
		}, ErrCodeWeekPattern, "week_patterns[0].days"},
		{"days and every", func(d *Definition) {
			d.WeekPatterns[0].Days = []string{"day", "day", "day", "day", "day", "day", "day"}
		}, ErrCodeWeekPattern, "week_patterns[0]"},
		{"unknown day pattern", func(d *Definition) { d.WeekPatterns[0].Every = "holiday" }, ErrCodeReference, "week_patterns[0].every"},
		{"unknown next phase", func(d *Definition) {
			d.Disease = &DiseaseDef{Name: "flu", Phases: []PhaseDef{{Name: "S", DwellHours: 1, Next: "Z"}}}
		}, ErrCodeReference, "disease.phases[0].next"},
		{"jitter above one", func(d *Definition) {
			d.Disease = &DiseaseDef{Name: "flu", Phases: []PhaseDef{{Name: "S", Jitter: 1.5}}}
		}, ErrCodeInvalid, "disease.phases[0].jitter"},
		{"duplicate phase", func(d *Definition) {
			d.Disease = &DiseaseDef{Name: "flu", Phases: []PhaseDef{{Name: "S"}, {Name: "S"}}}
		}, ErrCodeDuplicate, "disease.phases[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := minimal()
			tt.mutate(def)

			err := Validate(def)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code, le.Error())
			assert.Equal(t, tt.field, le.Field)
		})
	}
}

func TestValidate_DayPatternLimit(t *testing.T) {
	def := minimal()
	acts := make([]string, 4097)
	for i := range acts {
		acts[i] = "sleep"
	}
	def.DayPatterns[0].Activities = acts

	err := Validate(def)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeInvalid, le.Code)
	assert.Contains(t, le.Message, "4097")

	def.DayPatterns[0].Activities = acts[:4096]
	assert.NoError(t, Validate(def))
}

func TestValidate_CanonicalizesNames(t *testing.T) {
	def := minimal()
	def.Locations[0].Name = "Caf\u00e9"
	def.Population[0].Home = " Cafe\u0301"
	def.Activities[1].At.Location = "Cafe\u0301 "
	def.WeekPatterns[0].Name = "  every  "

	require.NoError(t, Validate(def))
	assert.Equal(t, "Caf\u00e9", def.Population[0].Home)
	assert.Equal(t, "Caf\u00e9", def.Activities[1].At.Location)
	assert.Equal(t, "every", def.WeekPatterns[0].Name)
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeReference, Field: "day_patterns[0]", Message: fmt.Sprintf("unknown activity %q", "x")}
	assert.Equal(t, `M103 day_patterns[0]: unknown activity "x"`, err.Error())

	err.Path = "town.yaml"
	assert.Equal(t, `town.yaml: M103 day_patterns[0]: unknown activity "x"`, err.Error())
}
