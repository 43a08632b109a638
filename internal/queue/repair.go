package queue

import (
	"encoding/json"
	"regexp"
)

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// RepairJSON applies best-effort heuristics to malformed JSON text: trailing
// commas before closing brackets are stripped, and closers missing from a
// truncated document are appended based on the open/close imbalance. The
// returned bool reports whether the result parses.
func RepairJSON(data []byte) ([]byte, bool) {
	if json.Valid(data) {
		return data, true
	}

	repaired := trailingCommaPattern.ReplaceAll(data, []byte("$1"))
	repaired = append(repaired, missingClosers(repaired)...)

	return repaired, json.Valid(repaired)
}

// ParseOrRepair parses data into T, repairing the text first when strict
// parsing fails. Unrepairable input yields the supplied default; this path
// never returns an error, callers tolerate data loss on real corruption.
func ParseOrRepair[T any](data []byte, defaultValue T) (T, bool) {
	var out T
	if err := json.Unmarshal(data, &out); err == nil {
		return out, true
	}

	repaired, ok := RepairJSON(data)
	if ok {
		var out T
		if err := json.Unmarshal(repaired, &out); err == nil {
			return out, true
		}
	}

	return defaultValue, false
}

// missingClosers walks the document tracking unclosed braces and brackets,
// skipping bracket characters inside string literals, and returns the
// closers needed to balance it (innermost first). A string left open by the
// truncation is closed too.
func missingClosers(data []byte) []byte {
	var stack []byte
	inString := false
	escaped := false

	for _, c := range data {
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
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var closers []byte
	if inString {
		closers = append(closers, '"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			closers = append(closers, '}')
		} else {
			closers = append(closers, ']')
		}
	}
	return closers
}
