// Package checker runs TODO records through extraction, project
// filtering, tracker lookup and policy evaluation.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hochfrequenz/jira-todo/internal/domain"
	"github.com/hochfrequenz/jira-todo/internal/parser"
	"github.com/hochfrequenz/jira-todo/internal/policy"
)

// StatusFetcher looks up the tracker status of a batch of issue keys.
type StatusFetcher interface {
	FetchStatuses(ctx context.Context, keys []string) (map[string]domain.IssueStatus, error)
}

// Checker produces the problem list for a batch of TODO records.
type Checker struct {
	extractor *parser.Extractor
	projects  map[string]struct{}
	fetcher   StatusFetcher
	evaluator *policy.Evaluator
	logger    *slog.Logger
}

// New creates a Checker.
func New(extractor *parser.Extractor, projects []string, fetcher StatusFetcher, evaluator *policy.Evaluator, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		extractor: extractor,
		projects:  parser.ProjectSet(projects),
		fetcher:   fetcher,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Process returns all problems found in records: first every TODO
// without a ticket, then every ticket problem, each group in input
// order. Any failure discards the whole result.
func (c *Checker) Process(ctx context.Context, records []domain.TodoRecord) ([]domain.Problem, error) {
	log := c.logger.With("run_id", uuid.NewString())
	start := time.Now()
	log.Info("checking todos", "records", len(records))

	var problems []domain.Problem
	var tracked []domain.IssueReference

	for _, rec := range records {
		refs, err := c.extractor.Extract(rec)
		if err != nil {
			return nil, err
		}
		cls := parser.Classify(refs, c.projects)
		for _, ref := range cls.Untracked {
			problems = append(problems, domain.WithoutTicket(ref))
		}
		tracked = append(tracked, cls.Tracked...)
	}

	if len(tracked) == 0 {
		log.Info("check finished", "problems", len(problems), "duration", time.Since(start))
		return problems, nil
	}

	keys := make([]string, len(tracked))
	for i, ref := range tracked {
		keys[i] = ref.Key
	}

	statuses, err := c.fetcher.FetchStatuses(ctx, keys)
	if err != nil {
		log.Error("status lookup failed", "err", err)
		return nil, err
	}

	for _, ref := range tracked {
		status, ok := statuses[ref.Key]
		if !ok {
			return nil, fmt.Errorf("no status returned for issue %q", ref.Key)
		}
		if p := c.evaluator.Evaluate(ref, status); p != nil {
			problems = append(problems, *p)
		}
	}

	log.Info("check finished",
		"problems", len(problems),
		"tickets", len(statuses),
		"duration", time.Since(start))
	return problems, nil
}
