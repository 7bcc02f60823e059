package model

import (
	"errors"
	"fmt"
)

// Kind identifies the type of a contest object.
type Kind int

const (
	KindInfo Kind = iota
	KindState
	KindLanguage
	KindJudgementType
	KindProblem
	KindGroup
	KindOrganization
	KindTeam
	KindTeamMember
	KindSubmission
	KindJudgement
	KindRun
	KindClarification
	KindAward
	KindPause
	KindCountdown

	// NumKinds is the number of object kinds. Useful for per-kind arrays.
	NumKinds
)

// ErrUnknownKind is returned when a feed type name has no matching kind.
var ErrUnknownKind = errors.New("unknown object kind")

var kindNames = [NumKinds]string{
	KindInfo:          "contest",
	KindState:         "state",
	KindLanguage:      "languages",
	KindJudgementType: "judgement-types",
	KindProblem:       "problems",
	KindGroup:         "groups",
	KindOrganization:  "organizations",
	KindTeam:          "teams",
	KindTeamMember:    "team-members",
	KindSubmission:    "submissions",
	KindJudgement:     "judgements",
	KindRun:           "runs",
	KindClarification: "clarifications",
	KindAward:         "awards",
	KindPause:         "pauses",
	KindCountdown:     "countdown",
}

// String returns the feed type name of the kind (e.g. "submissions").
func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a feed type name to its Kind.
// The singular forms used by some feeds ("team", "submission") are accepted.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	for k, n := range kindNames {
		if n == name+"s" {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, NumKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}
