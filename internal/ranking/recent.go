package ranking

import "github.com/roach88/cds/internal/model"

// Recent is a team's most recent submission.
type Recent struct {
	SubmissionID string        `json:"submission_id"`
	Time         model.RelTime `json:"time"`
	Status       model.Status  `json:"status"`
}

// RecentActivity returns, per team index, the latest submission by arrival
// order and its status. Teams without submissions map to nil.
func RecentActivity(teams []model.Team, subs []model.Submission, status func(model.Submission) model.Status) []*Recent {
	index := make(map[string]int, len(teams))
	for i, t := range teams {
		index[t.TeamID] = i
	}
	out := make([]*Recent, len(teams))
	for i := len(subs) - 1; i >= 0; i-- {
		s := subs[i]
		ti, ok := index[s.TeamID]
		if !ok || out[ti] != nil {
			continue
		}
		out[ti] = &Recent{SubmissionID: s.SubmissionID, Time: s.ContestTime, Status: status(s)}
	}
	return out
}
