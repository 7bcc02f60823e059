package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RelTime is a contest-relative time: the offset from contest start.
type RelTime time.Duration

// UnknownTime marks a missing or malformed contest time. It is negative, so
// anything carrying it falls outside the [0, duration) contest window.
const UnknownTime = RelTime(-1 << 62)

// ErrMalformedTime is returned by ParseRelTime for text that is not
// [-]h:mm:ss[.uuu].
var ErrMalformedTime = errors.New("malformed contest time")

// Minutes builds a RelTime from whole minutes.
func Minutes(n int) RelTime {
	return RelTime(time.Duration(n) * time.Minute)
}

// Known reports whether the time was present and well formed.
func (t RelTime) Known() bool {
	return t != UnknownTime
}

// Minutes returns the time truncated to whole minutes.
func (t RelTime) Minutes() int {
	return int(time.Duration(t) / time.Minute)
}

// Duration converts to time.Duration.
func (t RelTime) Duration() time.Duration {
	return time.Duration(t)
}

// String formats as h:mm:ss.uuu, the feed representation.
func (t RelTime) String() string {
	if !t.Known() {
		return ""
	}
	d := time.Duration(t)
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, ms)
}

// ParseRelTime parses [-]h:mm:ss[.uuu].
func ParseRelTime(s string) (RelTime, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return UnknownTime, fmt.Errorf("%w: %q", ErrMalformedTime, orig)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return UnknownTime, fmt.Errorf("%w: %q", ErrMalformedTime, orig)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return UnknownTime, fmt.Errorf("%w: %q", ErrMalformedTime, orig)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || sec < 0 || sec >= 60 {
		return UnknownTime, fmt.Errorf("%w: %q", ErrMalformedTime, orig)
	}

	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)).Round(time.Millisecond)
	if neg {
		d = -d
	}
	return RelTime(d), nil
}

// MarshalJSON writes the feed text form, or null when unknown.
func (t RelTime) MarshalJSON() ([]byte, error) {
	if !t.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the feed text form. Null and malformed text decode
// to UnknownTime rather than failing the whole object.
func (t *RelTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = UnknownTime
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = UnknownTime
		return nil
	}
	v, err := ParseRelTime(s)
	if err != nil {
		*t = UnknownTime
		return nil
	}
	*t = v
	return nil
}
