package classifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/assareh/fragrance-scout/internal/domain"
)

var thinkExpr = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripReasoning removes delimited thinking sections emitted by reasoning
// models before their actual answer.
func StripReasoning(s string) string {
	return strings.TrimSpace(thinkExpr.ReplaceAllString(s, ""))
}

// StripCodeFence unwraps a markdown code block if the text is fenced.
func StripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	idx := strings.IndexByte(t, '\n')
	if idx < 0 {
		return t
	}
	t = t[idx+1:]
	if end := strings.LastIndex(t, "```"); end >= 0 {
		t = t[:end]
	}
	return strings.TrimSpace(t)
}

// ExtractJSON returns the first balanced-brace JSON object in s. Braces
// inside string literals do not count toward the balance.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseVerdict runs the full sanitize-then-parse pipeline over a free-text
// model response. Both fields are required; anything else is a terminal
// failure for this call.
func ParseVerdict(raw string) (*domain.Verdict, error) {
	cleaned := StripCodeFence(StripReasoning(raw))
	obj, ok := ExtractJSON(cleaned)
	if !ok {
		return nil, fmt.Errorf("no JSON object in classifier response")
	}

	var v struct {
		Accept *bool   `json:"accept"`
		Reason *string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}
	if v.Accept == nil || v.Reason == nil {
		return nil, fmt.Errorf("verdict missing required fields")
	}
	return &domain.Verdict{Accept: *v.Accept, Reason: *v.Reason}, nil
}
