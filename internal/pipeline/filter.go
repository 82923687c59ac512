package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hochfrequenz/jira-todo/internal/checker"
	"github.com/hochfrequenz/jira-todo/internal/config"
	"github.com/hochfrequenz/jira-todo/internal/domain"
	"github.com/hochfrequenz/jira-todo/internal/parser"
	"github.com/hochfrequenz/jira-todo/internal/policy"
	"github.com/hochfrequenz/jira-todo/internal/tracker"
)

// ErrPolicyViolation is matched by the error of a Result with failures.
var ErrPolicyViolation = errors.New("todo policy violated")

// Filter checks TODO records and decides which problems break the build.
type Filter struct {
	checker       *checker.Checker
	issueRequired bool
}

// NewFilter validates cfg and builds a Filter. A nil fetcher selects a
// Jira client built from cfg.
func NewFilter(cfg *config.Config, fetcher checker.StatusFetcher, logger *slog.Logger) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pattern, err := parser.CompilePattern(cfg.Check.IssueRegex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	if fetcher == nil {
		fetcher = tracker.NewClient(cfg.TrackerClientConfig(), logger)
	}

	return &Filter{
		checker: checker.New(
			parser.NewExtractor(pattern),
			cfg.Check.Projects,
			fetcher,
			policy.NewEvaluator(cfg.Check.AllowedStatuses, cfg.Check.AllowedIssueTypes),
			logger,
		),
		issueRequired: cfg.Check.IssueRequired,
	}, nil
}

// Result is the outcome of one check.
type Result struct {
	Records  int              `json:"records"`
	Problems []domain.Problem `json:"problems"`
	Failures []string         `json:"failures"`
	Warnings []string         `json:"warnings"`
}

// Failed reports whether the build should break.
func (r *Result) Failed() bool {
	return len(r.Failures) > 0
}

// Err returns a *ViolationError when there are failures, nil otherwise.
func (r *Result) Err() error {
	if !r.Failed() {
		return nil
	}
	return &ViolationError{Messages: r.Failures}
}

// ViolationError lists every fatal problem of a check.
type ViolationError struct {
	Messages []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%d todo problem(s):\n%s", len(e.Messages), strings.Join(e.Messages, "\n"))
}

func (e *ViolationError) Is(target error) bool {
	return target == ErrPolicyViolation
}

// Run checks records. Problems without a ticket are fatal only when an
// issue is required; otherwise they are reported as warnings.
func (f *Filter) Run(ctx context.Context, records []domain.TodoRecord) (*Result, error) {
	problems, err := f.checker.Process(ctx, records)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Records:  len(records),
		Problems: problems,
		Failures: []string{},
		Warnings: []string{},
	}
	for _, p := range problems {
		msg := Message(p)
		if p.Kind == domain.ProblemWithoutTicket && !f.issueRequired {
			res.Warnings = append(res.Warnings, msg)
			continue
		}
		res.Failures = append(res.Failures, msg)
	}
	return res, nil
}

// Message renders a problem as a build failure message.
func Message(p domain.Problem) string {
	switch p.Kind {
	case domain.ProblemStatusForbidden:
		return fmt.Sprintf("File %q has a todo for issue %s in line %d (issue status: %q).",
			p.Issue.File, p.Issue.Key, p.Issue.Line, p.Status.StatusName)
	case domain.ProblemTypeForbidden:
		return fmt.Sprintf("File %q has a todo for an issue of disallowed type %q in line: %d.",
			p.Issue.File, p.Status.TypeName, p.Issue.Line)
	case domain.ProblemWithoutTicket:
		return fmt.Sprintf("File %q has a todo without a specified issue in line %d.",
			p.Issue.File, p.Issue.Line)
	}
	return fmt.Sprintf("File %q has an unknown todo problem %q in line %d.", p.Issue.File, p.Kind, p.Issue.Line)
}
