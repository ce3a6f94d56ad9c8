package testutil

import (
	"testing"

	"github.com/roach88/agentsim/internal/modeldef"
)

// TinyTown returns a two-person model small enough to trace by hand.
//
// Person 0 commutes from house to office on weekdays and starts Exposed.
// Person 1 rests at home for ten hours a day and starts Recovered.
// The horizon is 30 hours with a snapshot every 12.
func TinyTown() *modeldef.Definition {
	home := modeldef.LocatorDef{Property: "home"}
	work := modeldef.LocatorDef{Property: "work"}
	bus := modeldef.LocatorDef{Location: "bus"}

	return &modeldef.Definition{
		Name:             "tiny-town",
		Seed:             7,
		StartHour:        0,
		HorizonHours:     30,
		ReportEveryHours: 12,
		LocationTypes:    []string{"home", "office", "bus"},
		Locations: []modeldef.LocationDef{
			{Name: "house", Type: "home", Capacity: 4},
			{Name: "office", Type: "office", Capacity: 10},
			{Name: "bus", Type: "bus"},
		},
		Activities: []modeldef.ActivityDef{
			{Name: "sleep", At: home, Hours: 8},
			{Name: "commute", Kind: modeldef.KindTravel, At: bus, From: &home, To: &work, Hours: 1},
			{Name: "work", At: work, Hours: 8},
			{Name: "back", Kind: modeldef.KindTravel, At: bus, From: &work, To: &home, Hours: 1},
			{Name: "evening", At: home, Hours: 4},
			{Name: "rest", At: home, Hours: 10},
		},
		DayPatterns: []modeldef.DayPatternDef{
			{Name: "workday", Activities: []string{"sleep", "commute", "work", "back", "evening"}},
			{Name: "homeday", Activities: []string{"rest"}},
		},
		WeekPatterns: []modeldef.WeekPatternDef{
			{Name: "commuter", Every: "workday"},
			{Name: "homebody", Every: "homeday"},
		},
		Disease: &modeldef.DiseaseDef{
			Name: "flu",
			Phases: []modeldef.PhaseDef{
				{Name: "Exposed", Class: "healthy", DwellHours: 10},
				{Name: "Infected", Class: "infectious", DwellHours: 20},
				{Name: "Recovered", Class: "immune"},
			},
		},
		Population: []modeldef.PersonDef{
			{Home: "house", Work: "office", WeekPattern: "commuter", Phase: "Exposed"},
			{Home: "house", WeekPattern: "homebody", Phase: "Recovered"},
		},
	}
}

// MustBuild builds def or fails the test.
func MustBuild(t testing.TB, def *modeldef.Definition) *modeldef.Model {
	t.Helper()
	m, err := modeldef.Build(def)
	if err != nil {
		t.Fatalf("building model %q: %v", def.Name, err)
	}
	return m
}
