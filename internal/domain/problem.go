package domain

// ProblemKind identifies a policy violation
type ProblemKind string

const (
	ProblemWithoutTicket   ProblemKind = "withoutTicket"
	ProblemStatusForbidden ProblemKind = "statusForbidden"
	ProblemTypeForbidden   ProblemKind = "typeForbidden"
)

// Problem is a finding for a single TODO. Status is nil for
// ProblemWithoutTicket.
type Problem struct {
	Kind   ProblemKind    `json:"kind"`
	Issue  IssueReference `json:"issue"`
	Status *IssueStatus   `json:"status,omitempty"`
}

// WithoutTicket builds a problem for a bare reference.
func WithoutTicket(ref IssueReference) Problem {
	return Problem{Kind: ProblemWithoutTicket, Issue: ref}
}

// StatusForbidden builds a problem for a ticket whose status is not allowed.
func StatusForbidden(ref IssueReference, status IssueStatus) Problem {
	return Problem{Kind: ProblemStatusForbidden, Issue: ref, Status: &status}
}

// TypeForbidden builds a problem for a ticket whose issue type is not allowed.
func TypeForbidden(ref IssueReference, status IssueStatus) Problem {
	return Problem{Kind: ProblemTypeForbidden, Issue: ref, Status: &status}
}
