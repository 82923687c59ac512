package parser

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hochfrequenz/jira-todo/internal/domain"
)

// DefaultIssuePattern matches keys like ABC-123 anywhere in the text.
const DefaultIssuePattern = `(?P<key>(?P<project>[A-Z][_A-Z0-9]*)-(?P<number>\d+))`

var (
	// ErrMalformedNumber is returned when the number group of a match is not
	// a base-10 integer.
	ErrMalformedNumber = errors.New("malformed issue number")

	// ErrInvalidPattern is returned for patterns that do not compile or do
	// not define the required named groups.
	ErrInvalidPattern = errors.New("invalid issue pattern")
)

var requiredGroups = []string{"key", "number", "project"}

// Pattern is a compiled issue pattern with resolved group indexes.
type Pattern struct {
	re         *regexp.Regexp
	keyIdx     int
	projectIdx int
	numberIdx  int
}

// CompilePattern compiles expr case-insensitively. The pattern must
// define exactly the named groups key, project and number. An empty
// expr selects DefaultIssuePattern.
func CompilePattern(expr string) (*Pattern, error) {
	if expr == "" {
		expr = DefaultIssuePattern
	}

	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	var named []string
	idx := map[string]int{}
	for i, name := range re.SubexpNames() {
		if name == "" {
			continue
		}
		if _, dup := idx[name]; dup {
			return nil, fmt.Errorf("%w: group %q defined twice", ErrInvalidPattern, name)
		}
		idx[name] = i
		named = append(named, name)
	}

	sort.Strings(named)
	if strings.Join(named, ",") != strings.Join(requiredGroups, ",") {
		return nil, fmt.Errorf("%w: named groups must be exactly key, project, number (got %v)", ErrInvalidPattern, named)
	}

	return &Pattern{
		re:         re,
		keyIdx:     idx["key"],
		projectIdx: idx["project"],
		numberIdx:  idx["number"],
	}, nil
}

// MustCompilePattern is like CompilePattern but panics on error.
func MustCompilePattern(expr string) *Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source of the compiled pattern.
func (p *Pattern) String() string {
	return p.re.String()
}

// Extractor turns TODO records into issue references.
type Extractor struct {
	pattern *Pattern
}

// NewExtractor creates an Extractor for the given pattern.
func NewExtractor(p *Pattern) *Extractor {
	return &Extractor{pattern: p}
}

// Extract returns one reference per match in the record's text, left to
// right. A text without matches yields a single bare reference.
func (e *Extractor) Extract(rec domain.TodoRecord) ([]domain.IssueReference, error) {
	matches := e.pattern.re.FindAllStringSubmatch(rec.Text, -1)
	if len(matches) == 0 {
		return []domain.IssueReference{{File: rec.File, Line: rec.Line}}, nil
	}

	refs := make([]domain.IssueReference, 0, len(matches))
	for _, m := range matches {
		raw := m[e.pattern.numberIdx]
		number, err := strconv.ParseInt(raw, 10, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: %q in %s:%d", ErrMalformedNumber, raw, rec.File, rec.Line)
		}

		refs = append(refs, domain.IssueReference{
			Key:     m[e.pattern.keyIdx],
			Project: m[e.pattern.projectIdx],
			Number:  int(number),
			File:    rec.File,
			Line:    rec.Line,
		})
	}

	return refs, nil
}
