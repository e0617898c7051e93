package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseStringArray pulls the first bracket-delimited JSON array out of a
// model reply, which is often wrapped in prose or code fences, and returns
// its elements as strings.
func ParseStringArray(content string) ([]string, error) {
	raw, ok := findArray(content)
	if !ok {
		return nil, ErrMalformedResponse
	}

	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = v
		case nil:
			continue
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			s = string(b)
		}

		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// findArray returns the substring from the first '[' to its matching ']',
// ignoring brackets inside JSON strings.
func findArray(content string) (string, bool) {
	start := strings.IndexByte(content, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}
	return "", false
}
