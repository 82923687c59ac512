package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hochfrequenz/jira-todo/internal/domain"
)

// ErrBadInput is returned for input that is not a list of TODO records.
var ErrBadInput = errors.New("expected input to be an array of TODO objects")

// Format is the encoding of a TODO record stream.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown input format %q", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ReadRecords decodes either a bare list of records or an object with a
// "todos" list.
func ReadRecords(r io.Reader, format Format) ([]domain.TodoRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var records []domain.TodoRecord
	switch format {
	case FormatYAML:
		records, err = decodeYAML(data)
	default:
		records, err = decodeJSON(data)
	}
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrBadInput, i, err)
		}
	}
	return records, nil
}

func decodeJSON(data []byte) ([]domain.TodoRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrBadInput
	}

	switch data[0] {
	case '[':
		var records []domain.TodoRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		return records, nil
	case '{':
		var wrapped struct {
			Todos *[]domain.TodoRecord `json:"todos"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		if wrapped.Todos == nil {
			return nil, ErrBadInput
		}
		return *wrapped.Todos, nil
	}
	return nil, ErrBadInput
}

func decodeYAML(data []byte) ([]domain.TodoRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrBadInput
	}

	node := doc.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var records []domain.TodoRecord
		if err := node.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		return records, nil
	case yaml.MappingNode:
		var wrapped struct {
			Todos *[]domain.TodoRecord `yaml:"todos"`
		}
		if err := node.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		if wrapped.Todos == nil {
			return nil, ErrBadInput
		}
		return *wrapped.Todos, nil
	}
	return nil, ErrBadInput
}
