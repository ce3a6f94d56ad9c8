// Package modeldef loads model definition files (YAML or CUE) and builds
// the registry, population and phase registry a simulation runs on.
//
// # File Format
//
//	name: town
//	seed: 42
//	start_hour: 0
//	horizon_hours: 168
//	report_every_hours: 24
//	location_types: [home, office, bus]
//	locations:
//	  - { name: house-1, type: home, capacity: 4 }
//	  - { name: hq, type: office, capacity: 50 }
//	activities:
//	  - { name: sleep, at: { property: home }, hours: 8 }
//	  - name: commute
//	    kind: travel
//	    at: { location: line-1 }
//	    from: { property: home }
//	    to: { property: work }
//	    hours: 0.5
//	day_patterns:
//	  - { name: workday, activities: [sleep, commute, work] }
//	week_patterns:
//	  - { name: worker, days: [workday, workday, workday, workday, workday, weekend, weekend] }
//	  - { name: idle, every: weekend }
//	disease:
//	  name: flu
//	  phases:
//	    - { name: Susceptible, class: healthy }
//	    - { name: Infected, class: infectious, dwell_hours: 72 }
//	    - { name: Recovered, class: immune }
//	population:
//	  - { home: house-1, work: hq, week_pattern: worker, phase: Susceptible, count: 3 }
//
// Structural problems (unknown references, duplicate names, malformed
// patterns) fail the load. Individual population records that do not
// resolve are skipped with a warning and counted in the LoadReport.
package modeldef

// Definition is the decoded model file.
type Definition struct {
	Name             string           `yaml:"name" json:"name"`
	Seed             uint64           `yaml:"seed" json:"seed"`
	StartHour        float64          `yaml:"start_hour" json:"start_hour"`
	HorizonHours     float64          `yaml:"horizon_hours" json:"horizon_hours"`
	ReportEveryHours float64          `yaml:"report_every_hours,omitempty" json:"report_every_hours,omitempty"`
	LocationTypes    []string         `yaml:"location_types" json:"location_types"`
	Locations        []LocationDef    `yaml:"locations" json:"locations"`
	Activities       []ActivityDef    `yaml:"activities" json:"activities"`
	DayPatterns      []DayPatternDef  `yaml:"day_patterns" json:"day_patterns"`
	WeekPatterns     []WeekPatternDef `yaml:"week_patterns" json:"week_patterns"`
	Disease          *DiseaseDef      `yaml:"disease,omitempty" json:"disease,omitempty"`
	Population       []PersonDef      `yaml:"population" json:"population"`
}

// LocationDef declares one location. Ids follow declaration order.
type LocationDef struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Capacity int    `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Closed   bool   `yaml:"closed,omitempty" json:"closed,omitempty"`
}

// LocatorDef selects exactly one location rule.
type LocatorDef struct {
	// Property names a location-valued person property (home, work, ...).
	Property string `yaml:"property,omitempty" json:"property,omitempty"`
	// Location names a fixed location.
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	// Current keeps the person where they are.
	Current bool `yaml:"current,omitempty" json:"current,omitempty"`
}

// ActivityDef declares one activity.
type ActivityDef struct {
	Name               string      `yaml:"name" json:"name"`
	Kind               string      `yaml:"kind,omitempty" json:"kind,omitempty"` // stay (default) | travel
	At                 LocatorDef  `yaml:"at" json:"at"`
	From               *LocatorDef `yaml:"from,omitempty" json:"from,omitempty"`
	To                 *LocatorDef `yaml:"to,omitempty" json:"to,omitempty"`
	Hours              float64     `yaml:"hours" json:"hours"`
	StartAfterMidnight bool        `yaml:"start_after_midnight,omitempty" json:"start_after_midnight,omitempty"`
}

// DayPatternDef lists activity names in order.
type DayPatternDef struct {
	Name       string   `yaml:"name" json:"name"`
	Activities []string `yaml:"activities" json:"activities"`
}

// WeekPatternDef gives seven day pattern names (Monday first), or one
// name repeated every day.
type WeekPatternDef struct {
	Name  string   `yaml:"name" json:"name"`
	Days  []string `yaml:"days,omitempty" json:"days,omitempty"`
	Every string   `yaml:"every,omitempty" json:"every,omitempty"`
}

// DiseaseDef declares the phases of one disease.
type DiseaseDef struct {
	Name   string     `yaml:"name" json:"name"`
	Phases []PhaseDef `yaml:"phases" json:"phases"`
}

// PhaseDef declares one phase. A phase with zero dwell is terminal.
type PhaseDef struct {
	Name       string  `yaml:"name" json:"name"`
	Class      string  `yaml:"class,omitempty" json:"class,omitempty"`
	DwellHours float64 `yaml:"dwell_hours,omitempty" json:"dwell_hours,omitempty"`
	// Next defaults to the following phase in declaration order.
	Next string `yaml:"next,omitempty" json:"next,omitempty"`
	// Jitter spreads the dwell uniformly by +/- this fraction.
	Jitter float64 `yaml:"jitter,omitempty" json:"jitter,omitempty"`
}

// PersonDef is one population record, expanded Count times (default 1).
type PersonDef struct {
	Home        string `yaml:"home" json:"home"`
	Work        string `yaml:"work,omitempty" json:"work,omitempty"`
	WeekPattern string `yaml:"week_pattern" json:"week_pattern"`
	Phase       string `yaml:"phase,omitempty" json:"phase,omitempty"`
	Count       int    `yaml:"count,omitempty" json:"count,omitempty"`
}
