package learner

import (
	"errors"
	"math"

	"som_trader/internal/domain"
)

// Vectorizer turns a window of the bar series (plus optional recent-action
// memory) into a fixed-length feature vector. Vectors are built fresh each
// bar and never shared once consumed.
//
// Two preprocessing modes exist, tied to the metric:
//   - pattern (cosine): scaled percent returns with a fixed non-zero lead
//     element, so the direction of the shape carries the signal;
//   - magnitude (euclidean): the same returns z-scored over the window and
//     clipped, so absolute deviations carry the signal.
type Vectorizer struct {
	params   *Params
	series   *Series
	counters *Counters
}

// NewVectorizer creates a vectorizer over the given series.
func NewVectorizer(p *Params, s *Series, c *Counters) *Vectorizer {
	if c == nil {
		c = &Counters{}
	}
	return &Vectorizer{params: p, series: s, counters: c}
}

// Build assembles the feature vector for the window ending at bar end
// (inclusive). history is the bounded recent-action FIFO, oldest first.
func (v *Vectorizer) Build(end int, history []int) ([]float64, error) {
	m := v.params.WindowLength
	if m <= 0 {
		return nil, &domain.ConfigError{Field: "window_length", Err: errors.New("must be positive")}
	}

	vec := make([]float64, 0, v.params.Dim())
	vec = v.appendPriceBlock(vec, end)
	if v.params.IncludeVolume {
		vec = v.appendVolumeBlock(vec, end)
	}
	vec = v.appendActionBlock(vec, history)
	return vec, nil
}

// appendPriceBlock emits the return features for the window ending at end.
func (v *Vectorizer) appendPriceBlock(vec []float64, end int) []float64 {
	m := v.params.WindowLength
	start := end - m + 1

	block := make([]float64, m)
	// The first window element is a fixed small constant rather than a
	// return, preventing an all-zero lead feature under cosine matching.
	block[0] = v.params.LeadFeature
	for j := 1; j < m; j++ {
		r, ok := v.series.Return(start + j)
		if !ok {
			v.counters.MissingSamples++
		}
		block[j] = r * v.params.ReturnScale
	}

	if v.params.Metric.Normalize() == MetricEuclidean {
		v.zscoreClip(block)
	}
	return append(vec, block...)
}

// zscoreClip normalizes the block in place to zero mean and unit deviation,
// then clips to the configured symmetric range.
func (v *Vectorizer) zscoreClip(block []float64) {
	mean, std := meanStd(block)
	if std < v.params.Epsilon {
		// Zero window deviation: epsilon floor, resolved not fatal.
		v.counters.Degeneracies++
		std = v.params.Epsilon
	}
	clip := v.params.ClipRange
	for i := range block {
		z := (block[i] - mean) / std
		if z > clip {
			z = clip
		} else if z < -clip {
			z = -clip
		}
		block[i] = z
	}
}

// appendVolumeBlock emits log1p-transformed, mean-centered volumes.
func (v *Vectorizer) appendVolumeBlock(vec []float64, end int) []float64 {
	m := v.params.WindowLength
	start := end - m + 1

	block := make([]float64, m)
	var mean float64
	for j := 0; j < m; j++ {
		block[j] = math.Log1p(v.series.Volume(start + j))
		mean += block[j]
	}
	mean /= float64(m)
	for j := range block {
		block[j] -= mean
	}
	return append(vec, block...)
}

// appendActionBlock emits (cos, sin) pairs for the last K chosen actions,
// most-recent first. The angular encoding keeps all action identities
// equidistant; missing history slots emit (0,0).
func (v *Vectorizer) appendActionBlock(vec []float64, history []int) []float64 {
	k := v.params.ActionMemory
	if k == 0 {
		return vec
	}
	n := float64(v.params.Actions.Len())
	for i := 0; i < k; i++ {
		if i < len(history) {
			idx := history[len(history)-1-i]
			theta := 2 * math.Pi * float64(idx) / n
			vec = append(vec, math.Cos(theta), math.Sin(theta))
		} else {
			vec = append(vec, 0, 0)
		}
	}
	return vec
}

// meanStd returns the mean and population standard deviation of values.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var mean float64
	for _, x := range values {
		mean += x
	}
	mean /= float64(len(values))

	var variance float64
	for _, x := range values {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
