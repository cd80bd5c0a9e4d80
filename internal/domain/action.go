package domain

// Direction of a trading action relative to the instrument.
type Direction int

const (
	Flat Direction = iota
	Long
	Short
)

// String returns the string representation of Direction
func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	case Flat:
		return "FLAT"
	default:
		return "UNKNOWN"
	}
}

// Sign returns +1 for long, -1 for short, 0 for flat.
func (d Direction) Sign() float64 {
	switch d {
	case Long:
		return 1
	case Short:
		return -1
	default:
		return 0
	}
}

// Action couples a direction with a target position magnitude (in size steps).
type Action struct {
	Direction Direction
	Size      float64
}

// ActionSet is the static per-session action enumeration. It is created once
// at session start and never mutated; every index is stable for the session.
type ActionSet struct {
	actions []Action
}

// NewActionSet builds an action set from an explicit enumeration.
func NewActionSet(actions []Action) *ActionSet {
	cp := make([]Action, len(actions))
	copy(cp, actions)
	return &ActionSet{actions: cp}
}

// DefaultActionSet returns the standard 9-action enumeration:
// HOLD plus four long and four short position sizes (1x..4x).
func DefaultActionSet() *ActionSet {
	actions := make([]Action, 0, 9)
	actions = append(actions, Action{Direction: Flat})
	for size := 1; size <= 4; size++ {
		actions = append(actions, Action{Direction: Long, Size: float64(size)})
	}
	for size := 1; size <= 4; size++ {
		actions = append(actions, Action{Direction: Short, Size: float64(size)})
	}
	return NewActionSet(actions)
}

// Len returns the number of actions.
func (s *ActionSet) Len() int {
	return len(s.actions)
}

// At returns the action at index i.
func (s *ActionSet) At(i int) Action {
	return s.actions[i]
}

// IsHold reports whether action i is the no-op.
func (s *ActionSet) IsHold(i int) bool {
	return s.actions[i].Direction == Flat
}

// Target returns the signed target position for action i.
func (s *ActionSet) Target(i int) float64 {
	a := s.actions[i]
	return a.Direction.Sign() * a.Size
}

// OrderRequest is the directional order emitted by the learning core once per
// trading bar. The host execution collaborator decides how to realize it.
type OrderRequest struct {
	Direction Direction
	Magnitude float64
}
