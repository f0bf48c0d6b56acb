// Package scan implements the line-oriented lexical pass over C source:
// comment stripping and function extraction. It deliberately stays a
// heuristic scanner rather than a tokenizer; the false-positive/negative
// profile of downstream rules depends on it staying that way.
package scan

import "strings"

// StripLineComment removes a trailing // comment from a single line. The
// marker is kept when it sits inside a double-quoted string opened earlier
// on the same line; escaped quotes (\") do not toggle the string state.
// Block comments (/* ... */) are not this function's problem; callers that
// need them handled, such as line counting, do that separately.
func StripLineComment(line string) string {
	idx := strings.Index(line, "//")
	if idx < 0 {
		return line
	}
	inString := false
	for i := 0; i < idx; i++ {
		if line[i] == '"' && (i == 0 || line[i-1] != '\\') {
			inString = !inString
		}
	}
	if inString {
		return line
	}
	return line[:idx]
}
