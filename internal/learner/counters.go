package learner

// Counters tracks per-session resolved faults and policy draws. The learner
// is single-threaded, so plain integers suffice; the host mirrors these into
// its own metrics when it wants process-wide observability.
type Counters struct {
	Degeneracies   uint64 // numeric degeneracies resolved via documented fallbacks
	MissingSamples uint64 // absent price/volume substituted with neutral defaults
	ExploreDraws   uint64
	GreedyDraws    uint64
	MapUpdates     uint64
}
