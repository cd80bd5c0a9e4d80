package learner

import (
	"errors"
	"math"
	"testing"

	"som_trader/internal/domain"
)

func testVectorizerParams(metric MetricKind) *Params {
	p := &Params{
		WindowLength:  4,
		ForwardWindow: 2,
		NodeCount:     5,
		Metric:        metric,
	}
	p.applyDefaults()
	return p
}

func TestVectorizer_PatternMode(t *testing.T) {
	p := testVectorizerParams(MetricCosine)
	s := seriesFromPrices(8, 100, 101, 100, 102)
	v := NewVectorizer(p, s, nil)

	vec, err := v.Build(3, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(vec) != p.Dim() {
		t.Fatalf("Expected dimension %d, got %d", p.Dim(), len(vec))
	}

	// Lead element is the fixed constant, not a return.
	if vec[0] != DefaultLeadFeature {
		t.Errorf("Expected lead feature %g, got %g", DefaultLeadFeature, vec[0])
	}
	// (101-100)/100 * 10000 = 100
	if math.Abs(vec[1]-100) > 1e-9 {
		t.Errorf("Expected scaled return 100, got %g", vec[1])
	}
	// (100-101)/101 * 10000
	want := (100.0 - 101.0) / 101.0 * 10000
	if math.Abs(vec[2]-want) > 1e-9 {
		t.Errorf("Expected scaled return %g, got %g", want, vec[2])
	}
}

func TestVectorizer_MagnitudeModeZScoredAndClipped(t *testing.T) {
	p := testVectorizerParams(MetricEuclidean)
	s := seriesFromPrices(8, 100, 150, 60, 200)
	v := NewVectorizer(p, s, nil)

	vec, err := v.Build(3, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var sum float64
	for _, x := range vec {
		if x > p.ClipRange || x < -p.ClipRange {
			t.Errorf("Element %g outside clip range ±%g", x, p.ClipRange)
		}
		sum += x
	}
	// Without clipping engaged the z-scored block is zero-mean.
	if math.Abs(sum) > 1e-9 {
		t.Errorf("Expected near-zero mean after z-score, got sum %g", sum)
	}
}

func TestVectorizer_ZeroDeviationCountedNotFatal(t *testing.T) {
	p := testVectorizerParams(MetricEuclidean)
	p.WindowLength = 1 // single-element block has zero deviation
	c := &Counters{}
	s := seriesFromPrices(4, 100)
	v := NewVectorizer(p, s, c)

	vec, err := v.Build(0, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if c.Degeneracies != 1 {
		t.Errorf("Expected 1 counted degeneracy, got %d", c.Degeneracies)
	}
	for _, x := range vec {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Errorf("Expected finite fallback values, got %g", x)
		}
	}
}

func TestVectorizer_MissingPriceNeutralized(t *testing.T) {
	p := testVectorizerParams(MetricCosine)
	c := &Counters{}
	s := NewSeries(8)
	for _, price := range []float64{100, 0, 102, 103} {
		s.Append(domain.Bar{Price: price, Volume: 5})
	}
	v := NewVectorizer(p, s, c)

	vec, err := v.Build(3, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// Returns touching the missing bar resolve to 0.
	if vec[1] != 0 || vec[2] != 0 {
		t.Errorf("Expected neutral returns around the gap, got %g, %g", vec[1], vec[2])
	}
	if c.MissingSamples != 2 {
		t.Errorf("Expected 2 counted missing samples, got %d", c.MissingSamples)
	}
}

func TestVectorizer_VolumeBlock(t *testing.T) {
	p := testVectorizerParams(MetricCosine)
	p.IncludeVolume = true
	s := NewSeries(8)
	for i, price := range []float64{100, 101, 102, 103} {
		s.Append(domain.Bar{Price: price, Volume: float64(10 * (i + 1))})
	}
	v := NewVectorizer(p, s, nil)

	vec, err := v.Build(3, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(vec) != 2*p.WindowLength {
		t.Fatalf("Expected dimension %d, got %d", 2*p.WindowLength, len(vec))
	}

	var sum float64
	for _, x := range vec[p.WindowLength:] {
		sum += x
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("Expected mean-centered volume block, got sum %g", sum)
	}
}

func TestVectorizer_ActionContextBlock(t *testing.T) {
	p := testVectorizerParams(MetricCosine)
	p.ActionMemory = 2
	s := seriesFromPrices(8, 100, 101, 102, 103)
	v := NewVectorizer(p, s, nil)

	vec, err := v.Build(3, []int{3})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(vec) != p.WindowLength+4 {
		t.Fatalf("Expected dimension %d, got %d", p.WindowLength+4, len(vec))
	}

	theta := 2 * math.Pi * 3 / float64(p.Actions.Len())
	base := p.WindowLength
	if math.Abs(vec[base]-math.Cos(theta)) > 1e-12 || math.Abs(vec[base+1]-math.Sin(theta)) > 1e-12 {
		t.Errorf("Most-recent action encoded as (%g,%g), expected (%g,%g)",
			vec[base], vec[base+1], math.Cos(theta), math.Sin(theta))
	}
	// Missing history slot emits (0,0).
	if vec[base+2] != 0 || vec[base+3] != 0 {
		t.Errorf("Expected (0,0) for the empty slot, got (%g,%g)", vec[base+2], vec[base+3])
	}
}

func TestVectorizer_RejectsNonPositiveWindow(t *testing.T) {
	p := testVectorizerParams(MetricCosine)
	p.WindowLength = 0
	s := seriesFromPrices(4, 100)
	v := NewVectorizer(p, s, nil)

	_, err := v.Build(0, nil)
	if err == nil {
		t.Fatal("Expected a configuration error for zero window length")
	}
	var ce *domain.ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}
