package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be decoded as JSON from
// any recognized shape.
var ErrParseFailed = errors.New("failed to parse response")

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes a model response into T. Agents are instructed to answer
// with JSON, but responses arrive in three shapes in practice: bare JSON,
// JSON inside a markdown fence, and JSON surrounded by prose. Parse tries
// each in that order and returns ErrParseFailed when none decode.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	for _, candidate := range candidates(content) {
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, snippet(content))
}

func candidates(content string) []string {
	out := []string{content}

	if m := fencedBlock.FindStringSubmatch(content); len(m) >= 2 {
		out = append(out, strings.TrimSpace(m[1]))
	}

	// Prose-wrapped object: take the outermost brace span.
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			out = append(out, content[start:end+1])
		}
	}

	return out
}

// snippet bounds error messages so a runaway response does not flood logs.
func snippet(content string) string {
	const max = 200
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
