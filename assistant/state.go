package assistant

// State is where a question is in its lifecycle.
type State int

const (
	AwaitingQuestion State = iota
	Building
	Generating
	Executing
	Composing
	Reporting
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingQuestion:
		return "awaiting-question"
	case Building:
		return "building"
	case Generating:
		return "generating"
	case Executing:
		return "executing"
	case Composing:
		return "composing"
	case Reporting:
		return "reporting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
