package learner

import "som_trader/internal/domain"

// Series is a bounded, append-only view of the bar stream, indexed by
// absolute bar number. Storage is a fixed ring buffer sized to the
// backward window plus the forward evaluation window; older bars fall out.
type Series struct {
	bars  []domain.Bar
	total int // bars ever appended
}

// NewSeries creates a series retaining the last capacity bars.
func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{bars: make([]domain.Bar, capacity)}
}

// Append records the next bar. Missing price/volume values are stored as-is;
// accessors substitute neutral defaults on read.
func (s *Series) Append(bar domain.Bar) {
	s.bars[s.total%len(s.bars)] = bar
	s.total++
}

// Len returns the total number of bars appended so far.
func (s *Series) Len() int {
	return s.total
}

// LastIndex returns the absolute index of the most recent bar, -1 when empty.
func (s *Series) LastIndex() int {
	return s.total - 1
}

// Has reports whether absolute bar i is still inside the retained window.
func (s *Series) Has(i int) bool {
	return i >= 0 && i < s.total && i >= s.total-len(s.bars)
}

// Price returns the raw stored price for bar i, or 0 when out of range.
// A zero price means "missing"; callers substitute the neutral default.
func (s *Series) Price(i int) float64 {
	if !s.Has(i) {
		return 0
	}
	return s.bars[i%len(s.bars)].Price
}

// Volume returns the traded volume for bar i, defaulting to 1 when the
// sample is missing so the log1p transform stays well-defined.
func (s *Series) Volume(i int) float64 {
	if !s.Has(i) {
		return 1
	}
	return s.bars[i%len(s.bars)].EffectiveVolume()
}

// Return computes the unscaled percent return between bars i-1 and i.
// ok is false when either price is missing or the denominator is zero;
// the value is then the neutral 0.
func (s *Series) Return(i int) (float64, bool) {
	prev := s.Price(i - 1)
	cur := s.Price(i)
	if prev <= 0 || cur <= 0 {
		return 0, false
	}
	return (cur - prev) / prev, true
}
