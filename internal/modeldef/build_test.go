package modeldef

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/agentsim/internal/activity"
	"github.com/roach88/agentsim/internal/model"
)

func buildTown(t *testing.T) *Model {
	t.Helper()
	def, err := Load(filepath.Join("testdata", "town.yaml"))
	require.NoError(t, err)
	m, err := Build(def)
	require.NoError(t, err)
	return m
}

func TestBuild_TownReport(t *testing.T) {
	m := buildTown(t)

	assert.Equal(t, 5, m.Report.Records)
	assert.Equal(t, 3, m.Report.Accepted)
	assert.Equal(t, 2, m.Report.Skipped)
	assert.Equal(t, 4, m.Report.Persons)
	require.Len(t, m.Report.Problems, 2)
	assert.Contains(t, m.Report.Problems[0], `population[3]: unknown home "nowhere"`)
	assert.Contains(t, m.Report.Problems[1], `population[4]: unknown week pattern "night-shift"`)
}

func TestBuild_TownRegistry(t *testing.T) {
	m := buildTown(t)
	reg := m.Registry

	assert.Equal(t, []string{"home", "office", "bus"}, reg.TypeNames())
	require.Len(t, reg.Locations(), 4)
	assert.Equal(t, []string{"house-1", "house-2", "hq", "line-1"}, m.LocationNames)
	assert.Equal(t, "hq", m.LocationName(2))
	assert.Equal(t, "location(9)", m.LocationName(9))

	hq, err := reg.Location(2)
	require.NoError(t, err)
	assert.Equal(t, 50, hq.Capacity())
	assert.True(t, hq.Open())

	worker, err := reg.WeekPattern("worker")
	require.NoError(t, err)
	assert.Equal(t, 0, worker.ID())
	assert.Equal(t, "workday", worker.Day(0).Name())
	assert.Equal(t, "weekend", worker.Day(5).Name())
	assert.Equal(t, 5, worker.Day(0).Len())

	idle, err := reg.WeekPattern("idle")
	require.NoError(t, err)
	for d := 0; d < activity.DaysPerWeek; d++ {
		assert.Equal(t, "weekend", idle.Day(d).Name())
	}
}

func TestBuild_TownPopulation(t *testing.T) {
	m := buildTown(t)
	pop := m.Population
	require.Equal(t, 4, pop.Size())

	house1, _ := m.Registry.Location(0)
	house2, _ := m.Registry.Location(1)
	hq, _ := m.Registry.Location(2)

	// count: 2 expands into persons 0 and 1.
	for _, agent := range []int{0, 1} {
		home, ok := pop.LocationProperty(model.PropHome, agent)
		require.True(t, ok)
		assert.Same(t, house1, home)
		work, ok := pop.LocationProperty(model.PropWork, agent)
		require.True(t, ok)
		assert.Same(t, hq, work)
		assert.Equal(t, 0, pop.Phase(agent))
		assert.Equal(t, "worker", pop.WeekPattern(agent).Name())
		assert.Equal(t, activity.Filler, pop.Cursor(agent))
	}

	assert.Equal(t, 1, pop.Phase(2))
	assert.Same(t, house2, pop.CurrentLocation(2))

	assert.Equal(t, "idle", pop.WeekPattern(3).Name())
	_, ok := pop.LocationProperty(model.PropWork, 3)
	assert.False(t, ok)

	assert.Equal(t, []int{0, 1}, house1.Members())
	assert.Equal(t, []int{2, 3}, house2.Members())
	assert.Equal(t, 0, hq.Count())
}

func TestBuild_TravelActivity(t *testing.T) {
	m := buildTown(t)
	worker, err := m.Registry.WeekPattern("worker")
	require.NoError(t, err)

	commute := worker.Day(0).At(1)
	assert.Equal(t, "commute", commute.Name())
	assert.True(t, commute.IsTravel())
	assert.Equal(t, 0, commute.StartLocation(0).ID())
	assert.Equal(t, 2, commute.EndLocation(0).ID())
	assert.Equal(t, 3, commute.Location(0).ID())
	assert.Equal(t, 0.5, commute.Duration(0, 0))

	sleep := worker.Day(0).At(0)
	assert.False(t, sleep.IsTravel())
	assert.Equal(t, 8.0, sleep.Duration(0, 0))
}

func TestBuild_Disease(t *testing.T) {
	m := buildTown(t)
	require.NotNil(t, m.Disease)

	d := m.Disease
	assert.Equal(t, "flu", d.Name)
	assert.Equal(t, 4, d.Phases.Len())

	infected, err := d.Phases.ByName("Infected")
	require.NoError(t, err)
	assert.Equal(t, 2, infected.Ordinal())
	assert.Equal(t, "infectious", infected.Class())

	require.Len(t, d.Stages, 4)
	assert.True(t, d.Stages[0].Terminal())
	assert.Equal(t, Stage{Next: 2, DwellHours: 24}, d.Stages[1])
	assert.Equal(t, Stage{Next: 3, DwellHours: 72, Jitter: 0.25}, d.Stages[2])
	assert.True(t, d.Stages[3].Terminal())
}

func TestBuild_ExplicitNextPhase(t *testing.T) {
	def := minimal()
	def.Disease = &DiseaseDef{Name: "cold", Phases: []PhaseDef{
		{Name: "Sick", DwellHours: 10, Next: "Well"},
		{Name: "Carrier", DwellHours: 5},
		{Name: "Well", DwellHours: 48, Next: "Sick"},
	}}

	m, err := Build(def)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Disease.Stages[0].Next)
	assert.Equal(t, 2, m.Disease.Stages[1].Next)
	assert.Equal(t, 0, m.Disease.Stages[2].Next)
}

func TestBuild_CustomLocationProperty(t *testing.T) {
	def := minimal()
	def.Activities = append(def.Activities, ActivityDef{Name: "school", At: LocatorDef{Property: "school"}, Hours: 6})
	def.DayPatterns[0].Activities = append(def.DayPatterns[0].Activities, "school")

	m, err := Build(def)
	require.NoError(t, err)
	require.True(t, m.Population.Props().Has("school"))

	// Unset property resolves to where the person already is.
	school := m.Registry.WeekPatterns()[0].Day(0).At(2)
	assert.Equal(t, 0, school.Location(0).ID())

	office, _ := m.Registry.Location(1)
	m.Population.SetLocationProperty("school", 0, office)
	assert.Equal(t, 1, school.Location(0).ID())
}

func TestBuild_SkipsBadRecords(t *testing.T) {
	def := minimal()
	def.Population = []PersonDef{
		{Home: "house", WeekPattern: "every", Count: 3},
		{WeekPattern: "every"},
		{Home: "house", Work: "mall", WeekPattern: "every"},
		{Home: "house"},
		{Home: "house", WeekPattern: "every", Count: -1},
		{Home: "house", WeekPattern: "every", Phase: "Infected"},
	}

	m, err := Build(def)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Report.Records)
	assert.Equal(t, 1, m.Report.Accepted)
	assert.Equal(t, 5, m.Report.Skipped)
	assert.Equal(t, 3, m.Population.Size())
	assert.Contains(t, m.Report.Problems[0], "home is required")
	assert.Contains(t, m.Report.Problems[1], `unknown work "mall"`)
	assert.Contains(t, m.Report.Problems[2], "week_pattern is required")
	assert.Contains(t, m.Report.Problems[3], "negative count")
	assert.Contains(t, m.Report.Problems[4], "no disease is declared")
}

func TestBuild_UnknownPhaseSkipped(t *testing.T) {
	def := minimal()
	def.Disease = &DiseaseDef{Name: "flu", Phases: []PhaseDef{{Name: "S"}}}
	def.Population = append(def.Population, PersonDef{Home: "house", WeekPattern: "every", Phase: "Z"})

	m, err := Build(def)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Report.Skipped)
	assert.Contains(t, m.Report.Problems[0], "unknown phase")
	assert.Equal(t, 1, m.Population.Size())
}

func TestBuild_ClosedLocation(t *testing.T) {
	def := minimal()
	def.Locations[1].Closed = true

	m, err := Build(def)
	require.NoError(t, err)
	office, _ := m.Registry.Location(1)
	assert.False(t, office.Open())
}

func TestBuild_InvalidDefinition(t *testing.T) {
	def := minimal()
	def.WeekPatterns = nil

	_, err := Build(def)
	assert.True(t, IsLoadError(err))
}

func TestBuild_FromCUE(t *testing.T) {
	def, err := Load(filepath.Join("testdata", "town.cue"))
	require.NoError(t, err)
	m, err := Build(def)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Population.Size())
	assert.Equal(t, 2, m.Report.Skipped)
}
