package reconciler

// Status is the state of a single resource instance within a run.
type Status int

// Instance states. Done and Destroyed are the terminal success states.
const (
	StatusPending Status = iota
	StatusInProgress
	StatusDone
	StatusFailed
	StatusBlocked
	StatusDestroyed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in progress"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusBlocked:
		return "blocked"
	case StatusDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// A NodeResult is the terminal state of a single resource instance.
type NodeResult struct {
	Address string
	Status  Status

	// Err is set for failed and blocked instances.
	Err error
}

// A Report summarizes a run.
type Report struct {
	Project string

	// Nodes contains the terminal state of every instance, in the order
	// the run considered them.
	Nodes []NodeResult

	Created   uint32
	Updated   uint32
	Deleted   uint32
	Destroyed uint32
}

// OK returns true if every instance reached a terminal success state.
func (r *Report) OK() bool {
	for _, n := range r.Nodes {
		if n.Status != StatusDone && n.Status != StatusDestroyed {
			return false
		}
	}
	return true
}
