package modeldef

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/agentsim/internal/activity"
	"github.com/roach88/agentsim/internal/model"
	"github.com/roach88/agentsim/internal/phase"
)

// maxPersons keeps person ids inside the Int property range.
const maxPersons = math.MaxInt32

// Model is a built model, ready to hand to a simulation.
type Model struct {
	Name             string
	Seed             uint64
	StartHour        float64
	HorizonHours     float64
	ReportEveryHours float64

	Registry   *model.Registry
	Population *model.Population
	Disease    *Disease // nil when the file declares none

	// LocationNames maps location ids to their declared names.
	LocationNames []string

	Report LoadReport
}

// Disease is the phase registry of one disease plus the progression rule
// of each phase, indexed by ordinal.
type Disease struct {
	Name   string
	Phases *phase.Registry[string]
	Stages []Stage
}

// Stage is the progression rule of one phase.
type Stage struct {
	Next       int // ordinal of the following phase, -1 when terminal
	DwellHours float64
	Jitter     float64
}

// Terminal reports whether the phase never progresses.
func (s Stage) Terminal() bool { return s.Next < 0 }

// LoadReport summarizes population ingestion.
type LoadReport struct {
	Records  int      // population records read
	Accepted int      // records that resolved
	Skipped  int      // records dropped with a warning
	Persons  int      // persons created from accepted records
	Problems []string // one line per skipped record
}

// Build validates def and constructs the registry, population, activities
// and patterns it describes. Every person starts placed at home with the
// filler cursor; the first activity begins when the simulation bootstraps.
func Build(def *Definition) (*Model, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}

	m := &Model{
		Name:             def.Name,
		Seed:             def.Seed,
		StartHour:        def.StartHour,
		HorizonHours:     def.HorizonHours,
		ReportEveryHours: def.ReportEveryHours,
		Registry:         model.NewRegistry(),
	}
	reg := m.Registry

	for _, t := range def.LocationTypes {
		if _, err := reg.AddLocationType(t); err != nil {
			return nil, fmt.Errorf("building location types: %w", err)
		}
	}
	locations := make(map[string]*model.Location, len(def.Locations))
	for _, l := range def.Locations {
		loc, err := reg.AddLocation(l.Type, l.Capacity, !l.Closed)
		if err != nil {
			return nil, fmt.Errorf("building location %q: %w", l.Name, err)
		}
		locations[l.Name] = loc
		m.LocationNames = append(m.LocationNames, l.Name)
	}

	if def.Disease != nil {
		d, err := buildDisease(def.Disease)
		if err != nil {
			return nil, err
		}
		m.Disease = d
	}

	rows := m.resolvePopulation(def, locations)
	pop, err := model.NewPopulation(reg, m.Report.Persons)
	if err != nil {
		return nil, err
	}
	m.Population = pop

	acts := make(map[string]*activity.Activity, len(def.Activities))
	for _, a := range def.Activities {
		act, err := m.buildActivity(a, locations)
		if err != nil {
			return nil, err
		}
		acts[a.Name] = act
	}

	days := make(map[string]*activity.DayPattern, len(def.DayPatterns))
	for _, d := range def.DayPatterns {
		list := make([]*activity.Activity, len(d.Activities))
		for i, name := range d.Activities {
			list[i] = acts[name]
		}
		dp, err := activity.NewDayPattern(d.Name, list...)
		if err != nil {
			return nil, fmt.Errorf("building day pattern %q: %w", d.Name, err)
		}
		days[d.Name] = dp
	}

	for _, w := range def.WeekPatterns {
		var week [activity.DaysPerWeek]*activity.DayPattern
		for i := range week {
			if w.Every != "" {
				week[i] = days[w.Every]
			} else {
				week[i] = days[w.Days[i]]
			}
		}
		if _, err := reg.RegisterWeekPattern(w.Name, week); err != nil {
			return nil, fmt.Errorf("building week pattern %q: %w", w.Name, err)
		}
	}

	if err := m.assign(rows); err != nil {
		return nil, err
	}
	return m, nil
}

// LocationName returns the declared name of a location id.
func (m *Model) LocationName(id int) string {
	if id < 0 || id >= len(m.LocationNames) {
		return fmt.Sprintf("location(%d)", id)
	}
	return m.LocationNames[id]
}

func (m *Model) buildActivity(a ActivityDef, locations map[string]*model.Location) (*activity.Activity, error) {
	at, err := m.locator(a.At, locations)
	if err != nil {
		return nil, fmt.Errorf("activity %q: %w", a.Name, err)
	}
	d := activity.Def{
		Name:               a.Name,
		Kind:               activity.Stay,
		At:                 at,
		Duration:           activity.Fixed(a.Hours),
		StartAfterMidnight: a.StartAfterMidnight,
	}
	if a.Kind == KindTravel {
		d.Kind = activity.Travel
		if a.From != nil {
			if d.Start, err = m.locator(*a.From, locations); err != nil {
				return nil, fmt.Errorf("activity %q: %w", a.Name, err)
			}
		}
		if a.To != nil {
			if d.End, err = m.locator(*a.To, locations); err != nil {
				return nil, fmt.Errorf("activity %q: %w", a.Name, err)
			}
		}
	}
	return activity.New(d)
}

func (m *Model) locator(l LocatorDef, locations map[string]*model.Location) (activity.Locator, error) {
	switch {
	case l.Current:
		return model.Current(m.Registry), nil
	case l.Location != "":
		return model.Fixed(locations[l.Location]), nil
	}
	if !m.Population.Props().Has(l.Property) {
		if _, err := m.Population.AddLocationProperty(l.Property); err != nil {
			return nil, err
		}
	}
	return model.Property(m.Registry, l.Property), nil
}

func buildDisease(d *DiseaseDef) (*Disease, error) {
	reg := phase.NewRegistry[string](d.Name)
	index := make(map[string]int, len(d.Phases))
	for _, p := range d.Phases {
		ph, err := reg.Register(p.Name, p.Class)
		if err != nil {
			return nil, fmt.Errorf("building disease %q: %w", d.Name, err)
		}
		index[p.Name] = ph.Ordinal()
	}

	stages := make([]Stage, len(d.Phases))
	for i, p := range d.Phases {
		s := Stage{Next: -1, DwellHours: p.DwellHours, Jitter: p.Jitter}
		if p.DwellHours > 0 {
			switch {
			case p.Next != "":
				s.Next = index[p.Next]
			case i+1 < len(d.Phases):
				s.Next = i + 1
			}
		}
		stages[i] = s
	}
	return &Disease{Name: d.Name, Phases: reg, Stages: stages}, nil
}

// person is a resolved population record.
type person struct {
	home, work  *model.Location
	weekPattern string
	phase       int
	count       int
}

// resolvePopulation checks each record against the declared names. Bad
// records are skipped and logged; the rest are counted into the report.
func (m *Model) resolvePopulation(def *Definition, locations map[string]*model.Location) []person {
	weeks := make(map[string]bool, len(def.WeekPatterns))
	for _, w := range def.WeekPatterns {
		weeks[w.Name] = true
	}

	report := &m.Report
	report.Records = len(def.Population)
	rows := make([]person, 0, len(def.Population))
	for i, rec := range def.Population {
		p, reason := m.resolvePerson(rec, locations, weeks)
		if reason == "" && p.count > maxPersons-report.Persons {
			reason = fmt.Sprintf("count %d exceeds the population limit", p.count)
		}
		if reason != "" {
			slog.Warn("skipping population record", "record", i, "reason", reason)
			report.Skipped++
			report.Problems = append(report.Problems, fmt.Sprintf("population[%d]: %s", i, reason))
			continue
		}
		report.Accepted++
		report.Persons += p.count
		rows = append(rows, p)
	}
	return rows
}

func (m *Model) resolvePerson(rec PersonDef, locations map[string]*model.Location, weeks map[string]bool) (person, string) {
	p := person{weekPattern: rec.WeekPattern, count: rec.Count}
	if p.count == 0 {
		p.count = 1
	}
	if p.count < 0 {
		return p, fmt.Sprintf("negative count %d", rec.Count)
	}

	if rec.Home == "" {
		return p, "home is required"
	}
	var ok bool
	if p.home, ok = locations[rec.Home]; !ok {
		return p, fmt.Sprintf("unknown home %q", rec.Home)
	}
	if rec.Work != "" {
		if p.work, ok = locations[rec.Work]; !ok {
			return p, fmt.Sprintf("unknown work %q", rec.Work)
		}
	}

	if rec.WeekPattern == "" {
		return p, "week_pattern is required"
	}
	if !weeks[rec.WeekPattern] {
		return p, fmt.Sprintf("unknown week pattern %q", rec.WeekPattern)
	}

	if rec.Phase != "" {
		if m.Disease == nil {
			return p, fmt.Sprintf("phase %q given but no disease is declared", rec.Phase)
		}
		ph, err := m.Disease.Phases.ByName(rec.Phase)
		if err != nil {
			return p, err.Error()
		}
		p.phase = ph.Ordinal()
	}
	return p, ""
}

func (m *Model) assign(rows []person) error {
	pop := m.Population
	agent := 0
	for _, r := range rows {
		wp, err := m.Registry.WeekPattern(r.weekPattern)
		if err != nil {
			return err
		}
		for k := 0; k < r.count; k++ {
			pop.SetLocationProperty(model.PropHome, agent, r.home)
			if r.work != nil {
				pop.SetLocationProperty(model.PropWork, agent, r.work)
			}
			pop.SetWeekPattern(agent, wp)
			pop.SetPhase(agent, r.phase)
			pop.Place(agent, r.home)
			agent++
		}
	}
	return nil
}
