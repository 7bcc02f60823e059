package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/ranking"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Failing scenarios, non-deterministic replay
	ExitCommandError = 2 // Command error (missing feed, bad flags, unreadable config)
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int    // ExitFailure or ExitCommandError
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// an ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error part of a JSON response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON reports whether the formatter emits JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(resp Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// VerboseLog writes a diagnostic line when verbose mode is enabled. It
// never writes to Writer in JSON mode so the response stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// writeScoreboard renders sb as an aligned table with one column per
// problem. Cells read "+n" for a solve after n rejections, "-n" for n
// rejections, "?n" for pending work and "." for no attempt.
func writeScoreboard(w io.Writer, sb contest.Scoreboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"RANK", "TEAM", "SOLVED", "PENALTY"}
	for _, p := range sb.Problems {
		header = append(header, problemLabel(p))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range sb.Rows {
		cols := []string{
			strconv.Itoa(row.Rank),
			teamLabel(row),
			strconv.Itoa(row.Solved),
			strconv.Itoa(row.Penalty),
		}
		for _, r := range row.Results {
			cols = append(cols, resultCell(r))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

func problemLabel(p contest.ScoreboardProblem) string {
	if p.Label != "" {
		return p.Label
	}
	return p.ProblemID
}

func teamLabel(row contest.ScoreboardRow) string {
	switch {
	case row.Name != "":
		return row.Name
	case row.Label != "":
		return row.Label
	}
	return row.TeamID
}

func resultCell(r ranking.Result) string {
	switch r.Status {
	case model.Solved:
		return "+" + strconv.Itoa(r.NumJudged-1)
	case model.Submitted:
		return "?" + strconv.Itoa(r.NumPending)
	case model.Failed:
		return "-" + strconv.Itoa(r.NumJudged)
	}
	return "."
}
