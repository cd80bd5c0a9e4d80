package learner

import "math"

// Hyper is one bar's annealed hyperparameter set.
type Hyper struct {
	Decay       float64 // the shared decay multiplier
	Exploration float64
	Sigma       float64
	Beta        float64
	Gamma       float64
}

// Schedule derives all hyperparameters from a single decay curve over
// elapsed learning bars: wide, fast, exploratory early; narrow, slow,
// greedy later, approaching the epsilon floor. Nothing is stored per bar;
// the schedule is a pure function of elapsed-bar count.
type Schedule struct {
	params *Params
}

// NewSchedule builds the decay schedule for the session parameters.
func NewSchedule(p *Params) *Schedule {
	return &Schedule{params: p}
}

// At returns the hyperparameters after elapsedBars of learning.
func (s *Schedule) At(elapsedBars int) Hyper {
	if elapsedBars < 0 {
		elapsedBars = 0
	}
	d := math.Pow(s.params.DecayFactor, float64(elapsedBars)) + s.params.Epsilon
	return Hyper{
		Decay:       d,
		Exploration: s.params.InitialExploration * d,
		Sigma:       float64(s.params.NodeCount) * s.params.InitialSigmaFactor * d,
		Beta:        s.params.InitialBeta * d,
		Gamma:       s.params.InitialGamma * d,
	}
}
