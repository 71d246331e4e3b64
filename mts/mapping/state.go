package mapping

// State tracks a mapping's position in the one-time construction sequence.
// Every mapping passes through the states in order, exactly once, and is
// immutable after validation.
type State uint8

const (
	StateConstructing State = iota
	StateAliasesResolved
	StateConventionsApplied
	StateValidated
)

func (s State) String() string {
	switch s {
	case StateConstructing:
		return "constructing"
	case StateAliasesResolved:
		return "aliases-resolved"
	case StateConventionsApplied:
		return "conventions-applied"
	case StateValidated:
		return "validated"
	default:
		return "unknown"
	}
}
