package testutil

import (
	"github.com/roach88/cds/internal/model"
)

// Judgement types used across tests.
var (
	AC = model.JudgementType{TypeID: "AC", Name: "accepted", Solved: true}
	WA = model.JudgementType{TypeID: "WA", Name: "wrong answer", Penalty: true}
	CE = model.JudgementType{TypeID: "CE", Name: "compiler error"}
)

// Info returns a contest configuration with whole-minute durations.
func Info(durationMin, freezeMin, penalty int) model.Info {
	return model.Info{
		ContestID:          "test",
		Name:               "Test Contest",
		CountdownPauseTime: model.UnknownTime,
		Length:             model.Minutes(durationMin),
		FreezeLength:       model.Minutes(freezeMin),
		PenaltyTime:        penalty,
	}
}

// Team returns a team in the given groups.
func Team(id string, groupIDs ...string) model.Team {
	return model.Team{TeamID: id, Label: id, Name: "Team " + id, GroupIDs: groupIDs}
}

// Group returns a group.
func Group(id string, hidden bool) model.Group {
	return model.Group{GroupID: id, Name: "Group " + id, Hidden: hidden}
}

// Problem returns a problem labelled with its id.
func Problem(id string, ordinal int) model.Problem {
	return model.Problem{ProblemID: id, Label: id, Ordinal: ordinal}
}

// Submission returns a submission at a whole minute of contest time.
func Submission(id, teamID, problemID string, minute int) model.Submission {
	return model.Submission{
		SubmissionID: id,
		TeamID:       teamID,
		ProblemID:    problemID,
		ContestTime:  model.Minutes(minute),
	}
}

// Judgement returns a judgement finished at the given minute.
func Judgement(id, submissionID, typeID string, minute int) model.Judgement {
	return model.Judgement{
		JudgementID:      id,
		SubmissionID:     submissionID,
		JudgementTypeID:  typeID,
		StartContestTime: model.Minutes(minute),
		EndContestTime:   model.Minutes(minute),
	}
}

// Run returns a test case run of a judgement.
func Run(id, judgementID string, ordinal, minute int) model.Run {
	return model.Run{
		RunID:           id,
		JudgementID:     judgementID,
		Ordinal:         ordinal,
		JudgementTypeID: AC.TypeID,
		ContestTime:     model.Minutes(minute),
	}
}

// Setup returns the objects every contest test starts from: a 300 minute
// contest with a 60 minute freeze and 20 minute penalty, the standard
// judgement types and problems A and B.
func Setup() []model.Object {
	return []model.Object{
		Info(300, 60, 20),
		AC, WA, CE,
		Problem("A", 1),
		Problem("B", 2),
	}
}

// Adder is implemented by anything that accepts contest objects.
type Adder interface {
	Add(model.Object) model.Delta
}

// AddAll adds objs in order.
func AddAll(a Adder, objs ...model.Object) {
	for _, obj := range objs {
		a.Add(obj)
	}
}
