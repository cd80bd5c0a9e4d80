package strategy

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"som_trader/internal/domain"
	"som_trader/internal/learner"
)

// SOMQStrategy runs the online self-organizing-map / Q-learning session and
// adapts its directional order requests to the engine's action interface.
// The learner treats actions as target positions; this layer turns a target
// into the buy/sell delta needed to reach it.
//
// It is stateful and deterministic under a fixed seed.
type SOMQStrategy struct {
	symbol   string
	baseSize decimal.Decimal // quantity per learner size step
	sched    *learner.Scheduler

	position float64 // current target position in size steps

	// Boundary: telemetry sink, invoked once per completed learning step.
	onStep func(learner.StepRecord)
}

// NewSOMQStrategy creates a session-scoped strategy instance. Parameter
// validation failures surface here, before any bar is processed.
func NewSOMQStrategy(symbol string, baseSize decimal.Decimal, params learner.Params, rng *rand.Rand) (*SOMQStrategy, error) {
	sched, err := learner.NewScheduler(params, rng)
	if err != nil {
		return nil, err
	}
	return &SOMQStrategy{
		symbol:   symbol,
		baseSize: baseSize,
		sched:    sched,
	}, nil
}

// SetTelemetrySink registers a callback receiving every learning-step
// monitoring record. Must be set before the first bar.
func (s *SOMQStrategy) SetTelemetrySink(fn func(learner.StepRecord)) {
	s.onStep = fn
}

// Counters exposes the session fault and draw counters.
func (s *SOMQStrategy) Counters() learner.Counters {
	return s.sched.Counters()
}

// Phase returns the phase the session is in at bar index.
func (s *SOMQStrategy) Phase(bar int) learner.Phase {
	return s.sched.PhaseAt(bar)
}

// OnBar feeds one sample through the learning pipeline and translates the
// resulting order request, if any, into engine actions.
func (s *SOMQStrategy) OnBar(bar domain.Bar) []Action {
	if bar.Symbol != s.symbol {
		return nil
	}

	res, err := s.sched.OnBar(bar)
	if err != nil {
		// Per-bar errors cannot occur after the startup validation gate;
		// if one does, skip the bar rather than halt the stream.
		slog.Error("learner step failed", slog.Int("bar", res.Bar), slog.Any("error", err))
		return nil
	}

	if res.Learn != nil && s.onStep != nil {
		s.onStep(*res.Learn)
	}
	if res.Order == nil {
		return nil
	}

	target := res.Order.Direction.Sign() * res.Order.Magnitude
	delta := target - s.position
	if delta == 0 {
		return nil
	}
	s.position = target
	s.sched.SetPosition(target)

	typ := ActionBuy
	if delta < 0 {
		typ = ActionSell
	}
	qty := s.baseSize.Mul(decimal.NewFromFloat(math.Abs(delta)))
	return []Action{{Type: typ, Symbol: s.symbol, Qty: qty}}
}
