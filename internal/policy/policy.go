// Package policy classifies tracker statuses against allow-lists.
package policy

import "github.com/hochfrequenz/jira-todo/internal/domain"

// Tracker-specific numeric defaults: status "Open" and the standard
// work item types.
var (
	DefaultAllowedStatuses   = []int{1}
	DefaultAllowedIssueTypes = []int{1, 3, 4, 5}
)

// Evaluator checks ticket statuses against allowed status and type ids.
type Evaluator struct {
	statuses map[int]struct{}
	types    map[int]struct{}
}

// NewEvaluator creates an Evaluator. Nil slices select the defaults; an
// empty non-nil slice allows nothing.
func NewEvaluator(allowedStatuses, allowedIssueTypes []int) *Evaluator {
	if allowedStatuses == nil {
		allowedStatuses = DefaultAllowedStatuses
	}
	if allowedIssueTypes == nil {
		allowedIssueTypes = DefaultAllowedIssueTypes
	}
	return &Evaluator{
		statuses: toSet(allowedStatuses),
		types:    toSet(allowedIssueTypes),
	}
}

// Evaluate returns the problem for ref, or nil. The issue type is
// checked before the status, so a reference yields at most one problem.
func (e *Evaluator) Evaluate(ref domain.IssueReference, status domain.IssueStatus) *domain.Problem {
	if _, ok := e.types[status.Type]; !ok {
		p := domain.TypeForbidden(ref, status)
		return &p
	}
	if _, ok := e.statuses[status.ID]; !ok {
		p := domain.StatusForbidden(ref, status)
		return &p
	}
	return nil
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
