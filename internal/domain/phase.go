package domain

// Phase is a session's position in its lifecycle. Transitions only move
// forward: Collecting -> Voting -> Closed. Termination is not a phase; it is
// modeled as immediate registry eviction.
type Phase int

const (
	Collecting Phase = iota
	Voting
	Closed
)

func (p Phase) String() string {
	switch p {
	case Collecting:
		return "collecting"
	case Voting:
		return "voting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
