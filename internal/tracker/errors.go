package tracker

import (
	"errors"
	"fmt"
)

// ErrorKind classifies tracker failures.
type ErrorKind int

const (
	KindUnreachable ErrorKind = iota + 1
	KindRequestFailed
	KindResponseMalformed
	KindIssueError
)

// Sentinels for errors.Is checks against *Error.
var (
	ErrTrackerUnreachable       = errors.New("tracker unreachable")
	ErrTrackerRequestFailed     = errors.New("tracker request failed")
	ErrTrackerResponseMalformed = errors.New("tracker response malformed")
	ErrTrackerIssueError        = errors.New("tracker reported issue error")
)

// Error describes a failed lookup of a single issue key.
type Error struct {
	Kind       ErrorKind
	Key        string
	StatusCode int    // KindRequestFailed only
	Message    string // tracker message for KindIssueError
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnreachable:
		return fmt.Sprintf("error retrieving status for issue %q: %v", e.Key, e.Err)
	case KindRequestFailed:
		return fmt.Sprintf("request to Jira for issue %q failed with status code %d", e.Key, e.StatusCode)
	case KindResponseMalformed:
		return fmt.Sprintf("error parsing JSON response for issue %q: %v", e.Key, e.Err)
	case KindIssueError:
		return fmt.Sprintf("error getting status for issue %q: %q", e.Key, e.Message)
	default:
		return fmt.Sprintf("tracker error for issue %q", e.Key)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindUnreachable:
		return target == ErrTrackerUnreachable
	case KindRequestFailed:
		return target == ErrTrackerRequestFailed
	case KindResponseMalformed:
		return target == ErrTrackerResponseMalformed
	case KindIssueError:
		return target == ErrTrackerIssueError
	}
	return false
}
