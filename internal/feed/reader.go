package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/cds/internal/model"
)

// maxLineSize bounds a single feed line. Clarification texts and award
// citations are the only large members in practice.
const maxLineSize = 4 << 20

// Reader decodes a feed stream one event at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// Next returns the next object. Blank lines are skipped. At the end of the
// stream it returns io.EOF. A line that does not decode yields a
// *DecodeError and the reader stays usable.
func (r *Reader) Next() (model.Object, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		obj, err := Decode(line)
		if err != nil {
			return nil, &DecodeError{Line: r.line, Kind: peekType(line), Err: err}
		}
		return obj, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// ReadAll decodes every line of r. It stops at the first error.
func ReadAll(r io.Reader) ([]model.Object, error) {
	fr := NewReader(r)
	var out []model.Object
	for {
		obj, err := fr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
}

func peekType(line []byte) string {
	var ev struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(line, &ev) != nil {
		return ""
	}
	return ev.Type
}
