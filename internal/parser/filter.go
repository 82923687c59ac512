package parser

import "github.com/hochfrequenz/jira-todo/internal/domain"

// Classification partitions references by whether they are checked
// against the tracker.
type Classification struct {
	Tracked   []domain.IssueReference
	Untracked []domain.IssueReference
}

// Classify splits refs into tracked tickets and bare references.
// Tickets of projects not listed in projects are dropped.
func Classify(refs []domain.IssueReference, projects map[string]struct{}) Classification {
	var c Classification
	for _, ref := range refs {
		if !ref.HasTicket() {
			c.Untracked = append(c.Untracked, ref)
			continue
		}
		if _, ok := projects[ref.Project]; ok {
			c.Tracked = append(c.Tracked, ref)
		}
	}
	return c
}

// ProjectSet builds the lookup set used by Classify.
func ProjectSet(projects []string) map[string]struct{} {
	set := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		set[p] = struct{}{}
	}
	return set
}
