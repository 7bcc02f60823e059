package feed

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cds/internal/model"
)

func TestDecode_Submission(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"submissions","id":"s1","data":{"id":"s1","team_id":"t1","problem_id":"A","contest_time":"1:02:03.500"}}`))
	require.NoError(t, err)

	s, ok := obj.(model.Submission)
	require.True(t, ok)
	assert.Equal(t, "t1", s.TeamID)
	assert.Equal(t, "A", s.ProblemID)
	assert.Equal(t, "1:02:03.500", s.ContestTime.String())
}

func TestDecode_MissingTimeIsUnknown(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"submissions","data":{"id":"s1","team_id":"t1","problem_id":"A"}}`))
	require.NoError(t, err)
	assert.False(t, obj.(model.Submission).ContestTime.Known())

	obj, err = Decode([]byte(`{"type":"judgements","data":{"id":"j1","submission_id":"s1","end_contest_time":"0:10:00"}}`))
	require.NoError(t, err)
	j := obj.(model.Judgement)
	assert.False(t, j.StartContestTime.Known())
	assert.Equal(t, model.Minutes(10), j.Time())
}

func TestDecode_MalformedTimeIsUnknown(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"runs","data":{"id":"r1","judgement_id":"j1","contest_time":"soon"}}`))
	require.NoError(t, err)
	assert.False(t, obj.(model.Run).ContestTime.Known())
}

func TestDecode_Deletions(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"teams","id":"t1","data":null}`))
	require.NoError(t, err)
	assert.Equal(t, model.Deletion{Of: model.KindTeam, ObjectID: "t1"}, obj)

	obj, err = Decode([]byte(`{"type":"teams","id":"t1","op":"delete","data":{"id":"t1"}}`))
	require.NoError(t, err)
	assert.Equal(t, model.Deletion{Of: model.KindTeam, ObjectID: "t1"}, obj)

	_, err = Decode([]byte(`{"type":"teams"}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestDecode_SingularTypeAndState(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"team","data":{"id":"t1","group_ids":["g1"]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, obj.(model.Team).GroupIDs)

	obj, err = Decode([]byte(`{"type":"state","data":{"started":"2026-01-01T10:00:00Z"}}`))
	require.NoError(t, err)
	assert.True(t, obj.(model.State).Started())
}

func TestDecode_Info(t *testing.T) {
	obj, err := Decode([]byte(`{"type":"contest","data":{"id":"wf","duration":"5:00:00","penalty_time":20}}`))
	require.NoError(t, err)
	info := obj.(model.Info)
	assert.Equal(t, model.Minutes(300), info.Length)
	assert.False(t, info.FreezeLength.Known())
	assert.Equal(t, model.Minutes(300), info.FreezeBoundary())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"type":"balloons","id":"b1","data":{}}`))
	assert.ErrorIs(t, err, model.ErrUnknownKind)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"teams","data":{"id":42}}`))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, model.Team{TeamID: "t1", Name: "<A&B>"}))
	require.NoError(t, Encode(&buf, model.Deletion{Of: model.KindTeam, ObjectID: "t1"}))

	assert.Equal(t,
		`{"type":"teams","id":"t1","data":{"id":"t1","name":"<A&B>"}}`+"\n"+
			`{"type":"teams","id":"t1","data":null}`+"\n",
		buf.String())
}

func TestEncode_DecodeIsIdentity(t *testing.T) {
	objs := []model.Object{
		model.Submission{SubmissionID: "s1", TeamID: "t1", ProblemID: "A", ContestTime: model.Minutes(61)},
		model.Judgement{JudgementID: "j1", SubmissionID: "s1", JudgementTypeID: "AC", StartContestTime: model.Minutes(62), EndContestTime: model.UnknownTime},
		model.Deletion{Of: model.KindRun, ObjectID: "r9"},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeAll(&buf, objs))

	got, err := ReadAll(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(objs))
	for i := range objs {
		assert.True(t, model.Equal(objs[i], got[i]), "object %d", i)
	}
}

func TestReader_SkipsBlankLinesAndReportsLine(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"teams","data":{"id":"t1"}}`,
		``,
		`   `,
		`{"type":"nonsense","data":{"id":"x"}}`,
		`{"type":"teams","data":{"id":"t2"}}`,
	}, "\n")
	r := NewReader(strings.NewReader(input))

	obj, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "t1", obj.ID())

	_, err = r.Next()
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 4, de.Line)
	assert.Equal(t, "nonsense", de.Kind)
	assert.ErrorIs(t, err, model.ErrUnknownKind)
	assert.Contains(t, de.Error(), "line 4 (nonsense)")

	obj, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "t2", obj.ID())

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, r.Line())
}
