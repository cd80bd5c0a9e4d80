package learner

import (
	"math/rand"

	"som_trader/internal/domain"
)

// Phase is the session state gating learning and trading.
type Phase int

const (
	// PhaseIdle: not enough history yet, nothing runs.
	PhaseIdle Phase = iota
	// PhaseLearnOnly: learning steps run, no orders are placed.
	PhaseLearnOnly
	// PhaseLearnAndTrade: learning steps plus action execution.
	PhaseLearnAndTrade
)

// String returns the string representation of Phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseLearnOnly:
		return "LEARN_ONLY"
	case PhaseLearnAndTrade:
		return "LEARN_AND_TRADE"
	default:
		return "UNKNOWN"
	}
}

// StepRecord is the per-bar monitoring record emitted for telemetry.
type StepRecord struct {
	Bar         int
	Phase       Phase
	Decay       float64
	NodeIndex   int
	Distance    float64
	ActionIndex int
	QValue      float64
	Reward      float64
}

// StepResult aggregates everything one ingested bar produced.
type StepResult struct {
	Bar   int
	Phase Phase
	Learn *StepRecord          // nil while idle or before the forward window fills
	Order *domain.OrderRequest // nil unless trading and non-hold
}

// Scheduler is the phase-gated online loop tying the components together.
// It owns the map, the action history and the position state for exactly one
// session; everything mutable is touched from a single logical thread, one
// bar fully processed before the next.
//
// Learning for decision bar d runs once bar d+P has been observed, so the
// learning step lags the live stream by the forward window and never reads
// future data. The trading step acts on the live bar.
type Scheduler struct {
	params   Params
	series   *Series
	vec      *Vectorizer
	som      *Map
	policy   *Policy
	reward   *RewardModel
	schedule *Schedule

	history  []int // bounded FIFO of chosen action indices
	position float64
	counters Counters
}

// NewScheduler validates the parameters and assembles a session. A
// validation failure is the fatal ConfigurationError of session start.
func NewScheduler(p Params, rng *rand.Rand) (*Scheduler, error) {
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{params: p}
	s.series = NewSeries(p.WindowLength + p.ForwardWindow + 2)
	s.vec = NewVectorizer(&s.params, s.series, &s.counters)
	s.som = NewMap(p.NodeCount, p.Dim(), p.Actions.Len(), p.Metric, p.Epsilon, rng, &s.counters)
	s.policy = NewPolicy(rng, &s.counters)
	s.reward = NewRewardModel(p.Reward, p.Epsilon)
	s.schedule = NewSchedule(&s.params)
	if p.ActionMemory > 0 {
		s.history = make([]int, 0, p.ActionMemory)
	}
	return s, nil
}

// LearningStartBar returns the first bar index eligible for learning.
func (s *Scheduler) LearningStartBar() int {
	return s.params.LearningStartBar()
}

// PhaseAt is the pure phase transition function over bar index.
func (s *Scheduler) PhaseAt(bar int) Phase {
	switch {
	case bar < s.params.LearningStartBar():
		return PhaseIdle
	case bar < s.params.TradingStartBar():
		return PhaseLearnOnly
	default:
		return PhaseLearnAndTrade
	}
}

// Counters returns the session fault/draw counters.
func (s *Scheduler) Counters() Counters {
	return s.counters
}

// Position returns the current signed position magnitude.
func (s *Scheduler) Position() float64 {
	return s.position
}

// SetPosition overrides the tracked position with the execution layer's
// actual signed magnitude after fills settle.
func (s *Scheduler) SetPosition(p float64) {
	s.position = p
}

// OnBar ingests one sample and runs the full per-bar pipeline:
// vectorize, match, map update, TD update for the decision bar whose forward
// window just completed, then the trading step on the live bar.
func (s *Scheduler) OnBar(bar domain.Bar) (StepResult, error) {
	if !bar.HasPrice() {
		s.counters.MissingSamples++
	}
	s.series.Append(bar)

	t := s.series.LastIndex()
	res := StepResult{Bar: t, Phase: s.PhaseAt(t)}

	// The forward evaluation window of bar d = t-P is complete now.
	d := t - s.params.ForwardWindow
	if d >= s.params.LearningStartBar() {
		rec, err := s.learnStep(d)
		if err != nil {
			return res, err
		}
		res.Learn = rec
	}

	if res.Phase == PhaseLearnAndTrade {
		order, err := s.tradeStep(t)
		if err != nil {
			return res, err
		}
		res.Order = order
	}
	return res, nil
}

// learnStep runs one competitive-map plus Q-learning update for decision
// bar d, whose forward window is fully observed.
func (s *Scheduler) learnStep(d int) (*StepRecord, error) {
	elapsed := d - s.params.LearningStartBar()
	hy := s.schedule.At(elapsed)

	inputNow, err := s.vec.Build(d, s.history)
	if err != nil {
		return nil, err
	}
	winner, dist, node, err := s.som.Best(inputNow)
	if err != nil {
		return nil, err
	}

	actionIdx, _ := s.policy.Select(node.Values, hy.Exploration)

	if elapsed%s.params.UpdateEveryN == 0 {
		s.som.Update(winner, inputNow, hy.Sigma, hy.Beta)
	}

	inputNext, err := s.vec.Build(d+s.params.ForwardWindow, s.history)
	if err != nil {
		return nil, err
	}
	_, _, nodeNext, err := s.som.Best(inputNext)
	if err != nil {
		return nil, err
	}
	_, nextBest := Greedy(nodeNext.Values)

	r := s.reward.Reward(s.rewardInputs(d, actionIdx))
	newQ := TDUpdate(node.Values, actionIdx, r, hy.Beta, hy.Gamma, nextBest)

	return &StepRecord{
		Bar:         d,
		Phase:       s.PhaseAt(d),
		Decay:       hy.Decay,
		NodeIndex:   winner,
		Distance:    dist,
		ActionIndex: actionIdx,
		QValue:      newQ,
		Reward:      r,
	}, nil
}

// rewardInputs collects the series statistics the reward model needs for
// decision bar d.
func (s *Scheduler) rewardInputs(d, actionIdx int) RewardInputs {
	p := s.params

	forward := make([]float64, 0, p.ForwardWindow)
	for j := d + 1; j <= d+p.ForwardWindow; j++ {
		r, _ := s.series.Return(j)
		forward = append(forward, r)
	}
	fMean, fStd := meanStd(forward)

	backward := make([]float64, 0, p.WindowLength)
	for j := d - p.WindowLength + 1; j <= d; j++ {
		r, _ := s.series.Return(j)
		backward = append(backward, r)
	}
	_, bStd := meanStd(backward)

	// A missing price on either side makes the change unknowable; the
	// neutral 0 grants the directional bonus to no side.
	change := 0.0
	if cur, prev := s.series.Price(d), s.series.Price(d-1); cur > 0 && prev > 0 {
		change = cur - prev
	} else {
		s.counters.MissingSamples++
	}

	act := p.Actions.At(actionIdx)
	return RewardInputs{
		ForwardMeanReturn: fMean,
		ForwardDispersion: fStd,
		RecentDispersion:  bStd,
		RecentChange:      change,
		Direction:         int(act.Direction.Sign()),
		IsHold:            p.Actions.IsHold(actionIdx),
		Position:          s.position,
	}
}

// tradeStep recomputes the winner and greedy action on the live vector and
// translates it into a directional order request. HOLD emits nothing.
func (s *Scheduler) tradeStep(t int) (*domain.OrderRequest, error) {
	live, err := s.vec.Build(t, s.history)
	if err != nil {
		return nil, err
	}
	_, _, node, err := s.som.Best(live)
	if err != nil {
		return nil, err
	}
	idx, _ := Greedy(node.Values)
	s.pushHistory(idx)

	act := s.params.Actions.At(idx)
	if act.Direction == domain.Flat {
		return nil, nil
	}
	// Actions are target positions: the chosen magnitude replaces whatever
	// is currently held.
	s.position = act.Direction.Sign() * act.Size
	return &domain.OrderRequest{Direction: act.Direction, Magnitude: act.Size}, nil
}

// pushHistory appends an action index to the bounded FIFO.
func (s *Scheduler) pushHistory(idx int) {
	if s.params.ActionMemory == 0 {
		return
	}
	s.history = append(s.history, idx)
	if len(s.history) > s.params.ActionMemory {
		s.history = s.history[1:]
	}
}
