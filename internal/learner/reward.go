package learner

import "math"

// rawRewardClamp bounds the tanh argument so the exponentials stay finite.
const rawRewardClamp = 20.0

// RewardInputs gathers everything the reward needs for one decision bar.
type RewardInputs struct {
	ForwardMeanReturn float64 // mean per-period return over the evaluation window
	ForwardDispersion float64 // std of those returns
	RecentDispersion  float64 // std of backward-window returns
	RecentChange      float64 // last observed price change
	Direction         int     // +1 long, -1 short, 0 flat
	IsHold            bool
	Position          float64 // current signed position magnitude
}

// RewardModel converts forward price movement, volatility, position size and
// action choice into a bounded scalar in (-1, 1). The tanh compression keeps
// the TD target stable independent of raw-return scale.
type RewardModel struct {
	params RewardParams
	eps    float64
}

// NewRewardModel creates a reward model with the given shaping factors.
func NewRewardModel(p RewardParams, eps float64) *RewardModel {
	return &RewardModel{params: p, eps: eps}
}

// Reward computes the shaped, bounded reward for one decision.
func (r *RewardModel) Reward(in RewardInputs) float64 {
	base := in.ForwardMeanReturn / (in.ForwardDispersion + r.eps)

	volPenalty := r.params.VolPenaltyFactor * in.RecentDispersion
	if volPenalty > r.params.VolPenaltyCap {
		volPenalty = r.params.VolPenaltyCap
	}

	posPenalty := math.Abs(in.Position) * r.params.PositionPenaltyFactor

	var cost float64
	if !in.IsHold {
		cost = r.params.TradingPenalty
	}

	// An exactly flat change carries no directional signal, so nobody
	// earns the bonus on it.
	var bonus float64
	if (in.RecentChange > 0 && in.Direction > 0) || (in.RecentChange < 0 && in.Direction < 0) {
		bonus = r.params.DirectionalBonus
	}

	raw := base - volPenalty - posPenalty - cost + bonus
	return r.boundedTanh(raw)
}

// boundedTanh computes (e^x - e^-x)/(e^x + e^-x + eps): strictly inside
// (-1, 1) for any finite input.
func (r *RewardModel) boundedTanh(x float64) float64 {
	if x > rawRewardClamp {
		x = rawRewardClamp
	} else if x < -rawRewardClamp {
		x = -rawRewardClamp
	}
	ex := math.Exp(x)
	exn := math.Exp(-x)
	return (ex - exn) / (ex + exn + r.eps)
}
