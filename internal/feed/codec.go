package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/cds/internal/model"
)

// ErrMissingID is returned for an event whose object has no identity.
var ErrMissingID = errors.New("event without id")

// event is the wire envelope of one feed line.
type event struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Op    string          `json:"op,omitempty"`
	Token string          `json:"token,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// DecodeError reports a feed line that could not be turned into an object.
type DecodeError struct {
	Line int
	Kind string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode parses one feed line.
func Decode(line []byte) (model.Object, error) {
	var ev event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	kind, err := model.ParseKind(ev.Type)
	if err != nil {
		return nil, err
	}

	data := bytes.TrimSpace(ev.Data)
	if ev.Op == "delete" || len(data) == 0 || bytes.Equal(data, []byte("null")) {
		id := ev.ID
		if kind == model.KindState {
			id = model.State{}.ID()
		}
		if id == "" {
			return nil, fmt.Errorf("%s: %w", kind, ErrMissingID)
		}
		return model.Deletion{Of: kind, ObjectID: id}, nil
	}

	obj, err := decodeData(kind, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	if obj.ID() == "" {
		return nil, fmt.Errorf("%s: %w", kind, ErrMissingID)
	}
	return obj, nil
}

// decodeData unmarshals data into the struct for kind. Time fields start
// out unknown so an absent member is distinguishable from zero.
func decodeData(kind model.Kind, data []byte) (model.Object, error) {
	unknown := model.UnknownTime
	switch kind {
	case model.KindInfo:
		return decodeAs(data, model.Info{CountdownPauseTime: unknown, FreezeLength: unknown})
	case model.KindState:
		return decodeAs(data, model.State{})
	case model.KindLanguage:
		return decodeAs(data, model.Language{})
	case model.KindJudgementType:
		return decodeAs(data, model.JudgementType{})
	case model.KindProblem:
		return decodeAs(data, model.Problem{})
	case model.KindGroup:
		return decodeAs(data, model.Group{})
	case model.KindOrganization:
		return decodeAs(data, model.Organization{})
	case model.KindTeam:
		return decodeAs(data, model.Team{})
	case model.KindTeamMember:
		return decodeAs(data, model.TeamMember{})
	case model.KindSubmission:
		return decodeAs(data, model.Submission{ContestTime: unknown})
	case model.KindJudgement:
		return decodeAs(data, model.Judgement{StartContestTime: unknown, EndContestTime: unknown})
	case model.KindRun:
		return decodeAs(data, model.Run{ContestTime: unknown})
	case model.KindClarification:
		return decodeAs(data, model.Clarification{ContestTime: unknown})
	case model.KindAward:
		return decodeAs(data, model.Award{})
	case model.KindPause:
		return decodeAs(data, model.Pause{Start: unknown, End: unknown})
	case model.KindCountdown:
		return decodeAs(data, model.Countdown{})
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnknownKind, kind)
}

func decodeAs[T model.Object](data []byte, v T) (model.Object, error) {
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Encode writes obj as one feed line.
func Encode(w io.Writer, obj model.Object) error {
	ev := event{Type: obj.Kind().String(), ID: obj.ID()}
	if model.IsDeletion(obj) {
		ev.Data = json.RawMessage("null")
	} else {
		data, err := marshal(obj)
		if err != nil {
			return fmt.Errorf("encode %s: %w", model.KeyOf(obj), err)
		}
		ev.Data = data
	}

	line, err := marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", model.KeyOf(obj), err)
	}
	line = append(line, '\n')
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("encode %s: %w", model.KeyOf(obj), err)
	}
	return nil
}

// marshal is json.Marshal without HTML escaping.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// EncodeAll writes objs in order.
func EncodeAll(w io.Writer, objs []model.Object) error {
	for _, obj := range objs {
		if err := Encode(w, obj); err != nil {
			return err
		}
	}
	return nil
}
