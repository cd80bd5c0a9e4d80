package learner

import (
	"errors"
	"fmt"

	"som_trader/internal/domain"
)

// Defaults for optional parameters. Values follow the usual small-scale
// intraday setup; everything is overridable from configuration.
const (
	DefaultReturnScale  = 10000
	DefaultLeadFeature  = 0.1
	DefaultClipRange    = 3.0
	DefaultDecayFactor  = 0.9992
	DefaultUpdateEveryN = 2
	DefaultEpsilon      = 1e-8
)

// RewardParams holds the reward-shaping factors and caps.
type RewardParams struct {
	VolPenaltyFactor      float64
	VolPenaltyCap         float64
	PositionPenaltyFactor float64
	TradingPenalty        float64
	DirectionalBonus      float64
}

// Params is the static per-session learner configuration, read once at
// session start. Validate is the ConfigurationError gate: it runs before
// any bar is processed and a failure is fatal.
type Params struct {
	WindowLength  int  // backward feature window (bars)
	ForwardWindow int  // forward evaluation window (bars)
	NodeCount     int  // competitive map size
	ActionMemory  int  // recent-action context window, 0 disables
	IncludeVolume bool // append the log-volume block

	Metric      MetricKind
	ReturnScale float64 // percent-return scaling for numerical resolution
	LeadFeature float64 // fixed first pattern element, keeps the lead feature non-zero
	ClipRange   float64 // symmetric clip bound for magnitude mode

	Actions *domain.ActionSet

	Reward RewardParams

	InitialExploration float64
	InitialSigmaFactor float64 // sigma0 = NodeCount * factor
	InitialBeta        float64
	InitialGamma       float64
	DecayFactor        float64

	DelayBars    int // extra bars to wait before learning starts
	WarmupBars   int // learn-only bars before trading starts
	UpdateEveryN int // map update stride

	Epsilon float64 // numerical floor
}

// applyDefaults fills zero-valued optional fields.
func (p *Params) applyDefaults() {
	if p.ReturnScale == 0 {
		p.ReturnScale = DefaultReturnScale
	}
	if p.LeadFeature == 0 {
		p.LeadFeature = DefaultLeadFeature
	}
	if p.ClipRange == 0 {
		p.ClipRange = DefaultClipRange
	}
	if p.DecayFactor == 0 {
		p.DecayFactor = DefaultDecayFactor
	}
	if p.UpdateEveryN == 0 {
		p.UpdateEveryN = DefaultUpdateEveryN
	}
	if p.Epsilon == 0 {
		p.Epsilon = DefaultEpsilon
	}
	if p.Metric == "" {
		p.Metric = MetricCosine
	}
	if p.Actions == nil {
		p.Actions = domain.DefaultActionSet()
	}
}

// Validate checks configuration validity. Every violation is a
// domain.ConfigError and aborts the session before the first bar.
func (p *Params) Validate() error {
	if p.WindowLength <= 0 {
		return &domain.ConfigError{Field: "window_length", Err: errors.New("must be positive")}
	}
	if p.ForwardWindow <= 0 {
		return &domain.ConfigError{Field: "forward_window", Err: errors.New("must be positive")}
	}
	if p.NodeCount <= 0 {
		return &domain.ConfigError{Field: "nodes", Err: errors.New("must be positive")}
	}
	if p.ActionMemory < 0 {
		return &domain.ConfigError{Field: "action_memory", Err: errors.New("must be non-negative")}
	}
	if p.Actions.Len() == 0 {
		return &domain.ConfigError{Field: "actions", Err: errors.New("action set is empty")}
	}
	if p.ClipRange <= 0 {
		return &domain.ConfigError{Field: "clip_range", Err: errors.New("clip bound inverted")}
	}
	if p.InitialExploration < 0 || p.InitialExploration > 1 {
		return &domain.ConfigError{Field: "exploration", Err: fmt.Errorf("%v outside [0,1]", p.InitialExploration)}
	}
	if p.DecayFactor <= 0 || p.DecayFactor > 1 {
		return &domain.ConfigError{Field: "decay_factor", Err: fmt.Errorf("%v outside (0,1]", p.DecayFactor)}
	}
	if p.DelayBars < 0 || p.WarmupBars < 0 {
		return &domain.ConfigError{Field: "delay_bars", Err: errors.New("must be non-negative")}
	}
	if p.UpdateEveryN <= 0 {
		return &domain.ConfigError{Field: "update_every", Err: errors.New("must be positive")}
	}
	if p.Epsilon <= 0 {
		return &domain.ConfigError{Field: "epsilon", Err: errors.New("must be positive")}
	}
	return nil
}

// LearningStartBar is the first bar index with enough history to learn from.
func (p *Params) LearningStartBar() int {
	start := p.WindowLength + p.ForwardWindow
	if p.DelayBars > start {
		start = p.DelayBars
	}
	return start
}

// TradingStartBar is the first bar index on which orders may be placed.
func (p *Params) TradingStartBar() int {
	return p.LearningStartBar() + p.WarmupBars
}

// Dim is the feature-vector length implied by the configuration.
func (p *Params) Dim() int {
	d := p.WindowLength
	if p.IncludeVolume {
		d += p.WindowLength
	}
	d += 2 * p.ActionMemory
	return d
}
