// Package export models the asynchronous data-export job lifecycle:
// submitted once, polled until a terminal state, never mutated locally.
package export

import (
	"fmt"
	"time"
)

// State is a job's lifecycle position. The service reports free-text
// strings; anything outside this set is a protocol error, never a silent
// success.
type State string

const (
	StatePending  State = "PENDING"
	StateRunning  State = "RUNNING"
	StateFinished State = "FINISHED"
	StateFailed   State = "FAILED"
)

func ParseState(s string) (State, error) {
	switch State(s) {
	case StatePending, StateRunning, StateFinished, StateFailed:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown export state %q", s)
}

// Terminal reports whether polling can stop.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}

// Job is one poll's view of an export. S3CopyStatus tracks the optional S3
// delivery independently of the main state and stays nil when no S3
// destination was requested.
type Job struct {
	JobID            string
	State            State
	Files            []string
	NumberOfBytes    int64
	NumberOfSessions int64
	S3CopyStatus     *State
}

// DateLayout is the wire form for export range boundaries.
const DateLayout = "20060102"

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// JobFromResult maps one classified status result onto a Job. The input is
// the raw per-action result mapping produced by the response classifier.
func JobFromResult(jobID string, res map[string]any) (*Job, error) {
	raw, ok := res["state"].(string)
	if !ok {
		return nil, fmt.Errorf("export status carries no state: %v", res)
	}
	state, err := ParseState(raw)
	if err != nil {
		return nil, err
	}

	job := &Job{JobID: jobID, State: state}

	if files, ok := res["files"].([]any); ok {
		job.Files = make([]string, 0, len(files))
		for _, f := range files {
			u, ok := f.(string)
			if !ok {
				return nil, fmt.Errorf("export file entry is not a url: %v", f)
			}
			job.Files = append(job.Files, u)
		}
	}

	if n, ok := asInt64(res["numberOfBytes"]); ok {
		job.NumberOfBytes = n
	}
	if n, ok := asInt64(res["numberOfSessions"]); ok {
		job.NumberOfSessions = n
	}

	if raw, ok := res["s3CopyStatus"].(string); ok {
		s3, err := ParseState(raw)
		if err != nil {
			return nil, err
		}
		job.S3CopyStatus = &s3
	}

	return job, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
