package model

// stateID is the fixed identity of the State singleton.
const stateID = "state"

// Info is the contest configuration singleton.
type Info struct {
	ContestID          string  `json:"id"`
	Name               string  `json:"name,omitempty"`
	FormalName         string  `json:"formal_name,omitempty"`
	StartTime          string  `json:"start_time,omitempty"`
	CountdownPauseTime RelTime `json:"countdown_pause_time"`
	Length             RelTime `json:"duration"`
	FreezeLength       RelTime `json:"scoreboard_freeze_duration"`
	PenaltyTime        int     `json:"penalty_time"`
	TimeMultiplier     float64 `json:"time_multiplier,omitempty"`
}

func (i Info) Kind() Kind { return KindInfo }
func (i Info) ID() string { return i.ContestID }
func (Info) object() {}

// FreezeBoundary is the contest time from which results are withheld from
// non-privileged views: duration minus freeze duration. Without a freeze the
// boundary equals the duration.
func (i Info) FreezeBoundary() RelTime {
	if !i.FreezeLength.Known() || i.FreezeLength <= 0 {
		return i.Length
	}
	return i.Length - i.FreezeLength
}

// Penalty returns the per-attempt penalty in minutes; negative values mean
// the contest has no penalty concept and count as zero.
func (i Info) Penalty() int {
	if i.PenaltyTime < 0 {
		return 0
	}
	return i.PenaltyTime
}

// State is the contest clock singleton. Each field holds the wall-clock
// timestamp at which the transition happened, or is empty.
type State struct {
	StartedAt      string `json:"started,omitempty"`
	EndedAt        string `json:"ended,omitempty"`
	FrozenAt       string `json:"frozen,omitempty"`
	ThawedAt       string `json:"thawed,omitempty"`
	FinalizedAt    string `json:"finalized,omitempty"`
	EndOfUpdatesAt string `json:"end_of_updates,omitempty"`
}

func (State) Kind() Kind { return KindState }
func (State) ID() string { return stateID }
func (State) object() {}

func (s State) Started() bool { return s.StartedAt != "" }
func (s State) Running() bool { return s.Started() && s.EndedAt == "" }
func (s State) Frozen() bool { return s.FrozenAt != "" && s.ThawedAt == "" }
func (s State) Final() bool { return s.FinalizedAt != "" }
func (s State) DoneUpdating() bool { return s.EndOfUpdatesAt != "" }

// Language is a programming language accepted by the judge.
type Language struct {
	LanguageID string `json:"id"`
	Name       string `json:"name,omitempty"`
}

func (l Language) Kind() Kind { return KindLanguage }
func (l Language) ID() string { return l.LanguageID }
func (Language) object() {}

// JudgementType carries the solved/penalty semantics of a verdict.
type JudgementType struct {
	TypeID  string `json:"id"`
	Name    string `json:"name,omitempty"`
	Penalty bool   `json:"penalty"`
	Solved  bool   `json:"solved"`
}

func (j JudgementType) Kind() Kind { return KindJudgementType }
func (j JudgementType) ID() string { return j.TypeID }
func (JudgementType) object() {}

// Problem is a contest problem. Ordinal fixes the display order.
type Problem struct {
	ProblemID     string `json:"id"`
	Label         string `json:"label,omitempty"`
	Name          string `json:"name,omitempty"`
	Ordinal       int    `json:"ordinal"`
	Color         string `json:"color,omitempty"`
	RGB           string `json:"rgb,omitempty"`
	TestDataCount int    `json:"test_data_count,omitempty"`
}

func (p Problem) Kind() Kind { return KindProblem }
func (p Problem) ID() string { return p.ProblemID }
func (Problem) object() {}

// Group is a team category. Teams in hidden groups are kept off public
// scoreboards.
type Group struct {
	GroupID    string `json:"id"`
	ExternalID string `json:"icpc_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Type       string `json:"type,omitempty"`
	Hidden     bool   `json:"hidden,omitempty"`
}

func (g Group) Kind() Kind { return KindGroup }
func (g Group) ID() string { return g.GroupID }
func (Group) object() {}

type Organization struct {
	OrganizationID string `json:"id"`
	ExternalID     string `json:"icpc_id,omitempty"`
	Name           string `json:"name,omitempty"`
	FormalName     string `json:"formal_name,omitempty"`
	Country        string `json:"country,omitempty"`
}

func (o Organization) Kind() Kind { return KindOrganization }
func (o Organization) ID() string { return o.OrganizationID }
func (Organization) object() {}

// Team is a contestant team. Its visibility is derived from GroupIDs and is
// never stored on the team itself.
type Team struct {
	TeamID         string   `json:"id"`
	Label          string   `json:"label,omitempty"`
	Name           string   `json:"name,omitempty"`
	OrganizationID string   `json:"organization_id,omitempty"`
	GroupIDs       []string `json:"group_ids,omitempty"`
}

func (t Team) Kind() Kind { return KindTeam }
func (t Team) ID() string { return t.TeamID }
func (Team) object() {}

type TeamMember struct {
	MemberID   string `json:"id"`
	TeamID     string `json:"team_id"`
	ExternalID string `json:"icpc_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Role       string `json:"role,omitempty"`
}

func (m TeamMember) Kind() Kind { return KindTeamMember }
func (m TeamMember) ID() string { return m.MemberID }
func (TeamMember) object() {}

// Submission is a team's attempt at a problem.
type Submission struct {
	SubmissionID string  `json:"id"`
	TeamID       string  `json:"team_id"`
	ProblemID    string  `json:"problem_id"`
	LanguageID   string  `json:"language_id,omitempty"`
	WallTime     string  `json:"time,omitempty"`
	ContestTime  RelTime `json:"contest_time"`
}

func (s Submission) Kind() Kind { return KindSubmission }
func (s Submission) ID() string { return s.SubmissionID }
func (s Submission) Time() RelTime { return s.ContestTime }
func (Submission) object() {}

// Judgement is a verdict on a submission. A submission may be judged more
// than once; the latest judgement is current.
type Judgement struct {
	JudgementID      string  `json:"id"`
	SubmissionID     string  `json:"submission_id"`
	JudgementTypeID  string  `json:"judgement_type_id,omitempty"`
	StartContestTime RelTime `json:"start_contest_time"`
	EndContestTime   RelTime `json:"end_contest_time"`
}

func (j Judgement) Kind() Kind { return KindJudgement }
func (j Judgement) ID() string { return j.JudgementID }
func (Judgement) object() {}

// Time is the end time when known, else the start time.
func (j Judgement) Time() RelTime {
	if j.EndContestTime.Known() {
		return j.EndContestTime
	}
	return j.StartContestTime
}

// Run is a single test case execution inside a judgement.
type Run struct {
	RunID           string  `json:"id"`
	JudgementID     string  `json:"judgement_id"`
	Ordinal         int     `json:"ordinal"`
	JudgementTypeID string  `json:"judgement_type_id,omitempty"`
	ContestTime     RelTime `json:"contest_time"`
}

func (r Run) Kind() Kind { return KindRun }
func (r Run) ID() string { return r.RunID }
func (r Run) Time() RelTime { return r.ContestTime }
func (Run) object() {}

// Clarification is a question or answer. Broadcasts have neither FromTeamID
// nor ToTeamID.
type Clarification struct {
	ClarificationID string  `json:"id"`
	FromTeamID      string  `json:"from_team_id,omitempty"`
	ToTeamID        string  `json:"to_team_id,omitempty"`
	ReplyToID       string  `json:"reply_to_id,omitempty"`
	ProblemID       string  `json:"problem_id,omitempty"`
	Text            string  `json:"text,omitempty"`
	ContestTime     RelTime `json:"contest_time"`
}

func (c Clarification) Kind() Kind { return KindClarification }
func (c Clarification) ID() string { return c.ClarificationID }
func (c Clarification) Time() RelTime { return c.ContestTime }
func (Clarification) object() {}

// Broadcast reports whether the clarification is addressed to everyone.
func (c Clarification) Broadcast() bool {
	return c.FromTeamID == "" && c.ToTeamID == ""
}

type Award struct {
	AwardID  string   `json:"id"`
	Citation string   `json:"citation,omitempty"`
	TeamIDs  []string `json:"team_ids,omitempty"`
}

func (a Award) Kind() Kind { return KindAward }
func (a Award) ID() string { return a.AwardID }
func (Award) object() {}

type Pause struct {
	PauseID string  `json:"id"`
	Start   RelTime `json:"start"`
	End     RelTime `json:"end"`
}

func (p Pause) Kind() Kind { return KindPause }
func (p Pause) ID() string { return p.PauseID }
func (Pause) object() {}

type Countdown struct {
	CountdownID string `json:"id"`
	Status      string `json:"status,omitempty"`
}

func (c Countdown) Kind() Kind { return KindCountdown }
func (c Countdown) ID() string { return c.CountdownID }
func (Countdown) object() {}
