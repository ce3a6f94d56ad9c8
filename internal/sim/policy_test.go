package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/agentsim/internal/modeldef"
	"github.com/roach88/agentsim/internal/rng"
	"github.com/roach88/agentsim/internal/testutil"
)

func tinyDisease(t *testing.T, jitter float64) *modeldef.Disease {
	t.Helper()
	def := testutil.TinyTown()
	def.Disease.Phases[1].Jitter = jitter
	return testutil.MustBuild(t, def).Disease
}

func TestChainPolicy_FixedDwell(t *testing.T) {
	d := tinyDisease(t, 0)
	p := NewChainPolicy(d, rng.NewSource(1))

	exposed, err := d.Phases.ByName("Exposed")
	require.NoError(t, err)
	next, dwell, ok := p.Next(0, exposed)
	require.True(t, ok)
	assert.Equal(t, "Infected", next.Name())
	assert.Equal(t, 10.0, dwell)

	recovered, err := d.Phases.ByName("Recovered")
	require.NoError(t, err)
	_, _, ok = p.Next(0, recovered)
	assert.False(t, ok)
}

func TestChainPolicy_JitterBoundsAndDeterminism(t *testing.T) {
	d := tinyDisease(t, 0.5)
	infected, err := d.Phases.ByName("Infected")
	require.NoError(t, err)

	draw := func(seed uint64, agent int) float64 {
		_, dwell, ok := NewChainPolicy(d, rng.NewSource(seed)).Next(agent, infected)
		require.True(t, ok)
		return dwell
	}

	for agent := 0; agent < 50; agent++ {
		dwell := draw(3, agent)
		assert.GreaterOrEqual(t, dwell, 10.0)
		assert.LessOrEqual(t, dwell, 30.0)
		assert.Equal(t, dwell, draw(3, agent))
	}
	assert.NotEqual(t, draw(3, 0), draw(3, 1))
}

func TestChainPolicy_AgentStreamsIndependent(t *testing.T) {
	d := tinyDisease(t, 1)
	infected, err := d.Phases.ByName("Infected")
	require.NoError(t, err)

	// Agent 9's draw does not depend on whether agent 2 drew first.
	alone := NewChainPolicy(d, rng.NewSource(11))
	_, want, _ := alone.Next(9, infected)

	shared := NewChainPolicy(d, rng.NewSource(11))
	shared.Next(2, infected)
	shared.Next(2, infected)
	_, got, _ := shared.Next(9, infected)

	assert.Equal(t, want, got)
	assert.False(t, math.IsNaN(got))
}

func TestTextTracer_Format(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTextTracer(&buf)
	tr.ActivityStarted(1.5, 3, "work", "hq", 8)
	tr.ActivityStarted(2, 3, "nap", "home", math.NaN())
	tr.PhaseEntered(2.25, 3, "Infected")

	assert.Equal(t,
		"t=1.500 agent=3 start=work at=hq hours=8.000\n"+
			"t=2.000 agent=3 start=nap at=home hours=NaN\n"+
			"t=2.250 agent=3 phase=Infected\n",
		buf.String())
	assert.NoError(t, tr.Err())
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	return 0, errors.New("closed")
}

func TestTextTracer_StopsAfterError(t *testing.T) {
	w := &failingWriter{}
	tr := NewTextTracer(w)
	tr.PhaseEntered(0, 0, "A")
	tr.PhaseEntered(1, 0, "B")

	assert.EqualError(t, tr.Err(), "closed")
	assert.Equal(t, 1, w.n)
}

func TestRecorder_Copies(t *testing.T) {
	rec := &Recorder{}
	require.NoError(t, rec.Report(context.Background(), &Snapshot{Seq: 0}))
	got := rec.Snapshots()
	got[0] = nil
	assert.NotNil(t, rec.Snapshots()[0])
}
