package sim

import (
	"github.com/roach88/agentsim/internal/modeldef"
	"github.com/roach88/agentsim/internal/phase"
	"github.com/roach88/agentsim/internal/rng"
)

// ChainPolicy walks each person along the stages declared for a disease.
// Jittered dwell times draw from the person's own random stream, so one
// person's draws never shift another's.
type ChainPolicy struct {
	disease *modeldef.Disease
	rng     *rng.Source
}

// NewChainPolicy creates the default policy for d.
func NewChainPolicy(d *modeldef.Disease, src *rng.Source) *ChainPolicy {
	return &ChainPolicy{disease: d, rng: src}
}

// Next implements phase.Policy.
func (c *ChainPolicy) Next(agent int, current *phase.Phase[string]) (*phase.Phase[string], float64, bool) {
	stage := c.disease.Stages[current.Ordinal()]
	if stage.Terminal() {
		return nil, 0, false
	}
	next, err := c.disease.Phases.ByOrdinal(stage.Next)
	if err != nil {
		return nil, 0, false
	}
	dwell := stage.DwellHours
	if stage.Jitter > 0 {
		u := c.rng.Agent(agent).Float64()
		dwell *= 1 + stage.Jitter*(2*u-1)
	}
	return next, dwell, true
}
