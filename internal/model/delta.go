package model

import "fmt"

// Delta classifies the effect of adding an object to a store.
type Delta int

const (
	// NOOP means an identical value was already current.
	NOOP Delta = iota
	// ADD means the identity was not present before.
	ADD
	// UPDATE means an existing identity was replaced.
	UPDATE
	// DELETE means the identity was tombstoned.
	DELETE
)

func (d Delta) String() string {
	switch d {
	case NOOP:
		return "noop"
	case ADD:
		return "add"
	case UPDATE:
		return "update"
	case DELETE:
		return "delete"
	default:
		return "unknown"
	}
}

// Status is the judged state of a submission or of a team/problem cell.
type Status int

const (
	Unattempted Status = iota
	// Submitted means at least one submission is still waiting for a verdict.
	Submitted
	Failed
	Solved
)

func (s Status) String() string {
	switch s {
	case Unattempted:
		return "unattempted"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	case Solved:
		return "solved"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for _, v := range []Status{Unattempted, Submitted, Failed, Solved} {
		if v.String() == string(text) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}
