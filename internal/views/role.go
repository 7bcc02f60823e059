package views

import (
	"errors"
	"fmt"
)

// Role is a consumer privilege level.
type Role int

const (
	// RoleBlue sees the full contest.
	RoleBlue Role = iota
	RoleTrusted
	RoleBalloon
	RolePublic
	RoleTeam
)

var roleNames = map[Role]string{
	RoleBlue:    "blue",
	RoleTrusted: "trusted",
	RoleBalloon: "balloon",
	RolePublic:  "public",
	RoleTeam:    "team",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", int(r))
}

var (
	// ErrUnknownRole is returned for a role name that does not exist.
	ErrUnknownRole = errors.New("unknown role")
	// ErrNoView is returned when no projection serves the request.
	ErrNoView = errors.New("no view for role")
)

// ParseRole maps a role name ("public", "blue", ...) to a Role. "admin" is
// accepted as blue.
func ParseRole(s string) (Role, error) {
	if s == "admin" {
		return RoleBlue, nil
	}
	for r, n := range roleNames {
		if n == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Transition is a one-time contest clock edge.
type Transition int

const (
	Started Transition = iota
	Ended
	Frozen
	Thawed
	Finalized
	EndOfUpdates
)

func (t Transition) String() string {
	switch t {
	case Started:
		return "started"
	case Ended:
		return "ended"
	case Frozen:
		return "frozen"
	case Thawed:
		return "thawed"
	case Finalized:
		return "finalized"
	case EndOfUpdates:
		return "end of updates"
	default:
		return "unknown"
	}
}
