package domain

import (
	"fmt"
	"strconv"
)

// TodoRecord is one extracted TODO comment.
type TodoRecord struct {
	Text string `json:"text" yaml:"text"`
	File string `json:"file" yaml:"file"`
	Line int    `json:"line" yaml:"line"`
}

// Validate checks the record carries a location.
func (r TodoRecord) Validate() error {
	if r.File == "" {
		return fmt.Errorf("todo record: file is required")
	}
	if r.Line <= 0 {
		return fmt.Errorf("todo record %s: line must be positive, got %d", r.File, r.Line)
	}
	return nil
}

// IssueReference is a ticket found in a TODO, or a bare reference when
// the TODO names no ticket (Key is empty).
type IssueReference struct {
	Key     string `json:"key,omitempty"`
	Project string `json:"project,omitempty"`
	Number  int    `json:"number,omitempty"`
	File    string `json:"file"`
	Line    int    `json:"line"`
}

// HasTicket reports whether the reference names a ticket.
func (r IssueReference) HasTicket() bool {
	return r.Key != ""
}

// Location formats the reference as file:line.
func (r IssueReference) Location() string {
	return r.File + ":" + strconv.Itoa(r.Line)
}

// IssueStatus is a snapshot of a ticket's status and type as reported
// by the tracker.
type IssueStatus struct {
	ID         int    `json:"id"`
	StatusName string `json:"statusName"`
	Type       int    `json:"type"`
	TypeName   string `json:"typeName"`
}
