package learner

import "math/rand"

// Policy performs epsilon-greedy selection over a node's action-value table.
// All randomness comes from the injected generator, so runs are reproducible
// under a fixed seed.
type Policy struct {
	rng      *rand.Rand
	counters *Counters
}

// NewPolicy creates a policy drawing from rng.
func NewPolicy(rng *rand.Rand, c *Counters) *Policy {
	if c == nil {
		c = &Counters{}
	}
	return &Policy{rng: rng, counters: c}
}

// Select picks an action from values: with probability explore a uniformly
// random one, otherwise the greedy choice. Returns the index and its stored
// value.
func (p *Policy) Select(values []float64, explore float64) (int, float64) {
	if explore > 0 && p.rng.Float64() < explore {
		p.counters.ExploreDraws++
		i := p.rng.Intn(len(values))
		return i, values[i]
	}
	p.counters.GreedyDraws++
	return Greedy(values)
}

// Greedy returns the index of the strictly greatest value, breaking ties
// toward the lowest index.
func Greedy(values []float64) (int, float64) {
	bestIdx := 0
	bestVal := values[0]
	for i := 1; i < len(values); i++ {
		if values[i] > bestVal {
			bestIdx = i
			bestVal = values[i]
		}
	}
	return bestIdx, bestVal
}

// TDUpdate applies the one-step tabular Q-learning rule in place:
//
//	newQ = oldQ + beta*(reward + gamma*nextBest - oldQ)
//
// and returns the stored value. The "state" here is a winning-node identity,
// so this is a prototype-indexed value function.
func TDUpdate(values []float64, action int, reward, beta, gamma, nextBest float64) float64 {
	old := values[action]
	values[action] = old + beta*(reward+gamma*nextBest-old)
	return values[action]
}
