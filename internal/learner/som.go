package learner

import (
	"errors"
	"math"
	"math/rand"
)

// ErrEmptyMap is returned by Best when the map owns no nodes.
var ErrEmptyMap = errors.New("map has no nodes")

// Node is one competitive prototype: a state vector quantizing the input
// distribution plus the action-value table learned at that state.
// StateVector length always equals the feature-vector length.
type Node struct {
	State  []float64
	Values []float64
}

// Map is a 1-D ordered line of competitive nodes. Index 0 and index N-1 are
// not adjacent: the neighborhood function runs over plain integer index
// distance with no wraparound. Nodes are created once at session start and
// live for the session.
type Map struct {
	nodes    []Node
	metric   MetricKind
	eps      float64
	counters *Counters
}

// NewMap creates n nodes with small-magnitude random state vectors and
// small positive random action values, drawn from the injected generator.
func NewMap(n, dim, actions int, metric MetricKind, eps float64, rng *rand.Rand, c *Counters) *Map {
	if c == nil {
		c = &Counters{}
	}
	nodes := make([]Node, n)
	for i := range nodes {
		state := make([]float64, dim)
		for j := range state {
			state[j] = (rng.Float64() - 0.5) * 0.2
		}
		values := make([]float64, actions)
		for j := range values {
			values[j] = rng.Float64() * 0.1
		}
		nodes[i] = Node{State: state, Values: values}
	}
	return &Map{nodes: nodes, metric: metric.Normalize(), eps: eps, counters: c}
}

// Len returns the number of nodes.
func (m *Map) Len() int {
	return len(m.nodes)
}

// Node returns node i for inspection.
func (m *Map) Node(i int) *Node {
	return &m.nodes[i]
}

// Best performs a linear scan for the node closest to x under the configured
// metric. Ties break toward the lowest index. Fails only on an empty map.
func (m *Map) Best(x []float64) (int, float64, *Node, error) {
	if len(m.nodes) == 0 {
		return 0, 0, nil, ErrEmptyMap
	}
	if m.metric == MetricCosine && normL2(x) <= m.eps {
		// Zero-norm input: every comparison degenerates to max distance.
		// Resolved by definition (lowest index wins), counted, not fatal.
		m.counters.Degeneracies++
	}

	bestIdx := 0
	bestDist := Distance(m.metric, x, m.nodes[0].State, m.eps)
	for i := 1; i < len(m.nodes); i++ {
		d := Distance(m.metric, x, m.nodes[i].State, m.eps)
		if d < bestDist {
			bestIdx = i
			bestDist = d
		}
	}
	return bestIdx, bestDist, &m.nodes[bestIdx], nil
}

// Update moves every node toward x with Gaussian falloff over index distance
// from the winner. The winner receives full influence h=1; sigma controls
// the neighborhood width, beta the learning rate.
func (m *Map) Update(winner int, x []float64, sigma, beta float64) {
	denom := 2*sigma*sigma + m.eps
	for i := range m.nodes {
		d := float64(winner - i)
		h := math.Exp(-(d * d) / denom)
		state := m.nodes[i].State
		for j := range state {
			state[j] += beta * h * (x[j] - state[j])
		}
	}
	m.counters.MapUpdates++
}
