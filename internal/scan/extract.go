package scan

import (
	"regexp"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
)

// funcSigRe matches a C function definition heading: optional modifiers, a
// return type, the function name and a parenthesized parameter list. The
// opening brace must appear on the same line; a brace on the following line
// is not recognized as a function start. That gap is intentional and
// downstream behavior depends on it.
var funcSigRe = regexp.MustCompile(
	`^(?:static\s+)?(?:inline\s+)?` +
		`(?:const\s+)?` +
		`[a-zA-Z_][a-zA-Z0-9_*\s]+\s+` +
		`([a-zA-Z_][a-zA-Z0-9_]*)\s*` +
		`\(([^)]*)\)\s*` +
		`(?:\{|$)`,
)

var (
	assertRe = regexp.MustCompile(`\b(P10_ASSERT|assert|ASSERT)\s*\(`)
	loopRe   = regexp.MustCompile(`\b(while|for|do)\s*[({]`)
	returnRe = regexp.MustCompile(`\breturn\b`)
)

// Functions runs the brace-depth state machine over a file's lines and
// returns the ordered function records. An unterminated function (the file
// ends before its braces balance) is dropped without a partial record.
func Functions(lines []string) []ir.FunctionInfo {
	var out []ir.FunctionInfo
	var cur *ir.FunctionInfo
	var selfRe *regexp.Regexp
	depth := 0

	for i, raw := range lines {
		n := i + 1
		code := StripLineComment(raw)

		if cur == nil {
			m := funcSigRe.FindStringSubmatch(strings.TrimSpace(code))
			if m == nil || !strings.Contains(code, "{") {
				continue
			}
			cur = &ir.FunctionInfo{
				Name:       m[1],
				StartLine:  n,
				EndLine:    n,
				ParamCount: countParams(m[2]),
			}
			selfRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(m[1]) + `\s*\(`)
			depth = strings.Count(code, "{") - strings.Count(code, "}")
			continue
		}

		depth += strings.Count(code, "{") - strings.Count(code, "}")

		if assertRe.MatchString(code) {
			cur.AssertCount++
		}
		if loopRe.MatchString(code) {
			cur.HasLoops = true
		}
		if selfRe.MatchString(code) {
			cur.CallsItself = true
		}
		if returnRe.MatchString(code) {
			cur.ReturnCount++
		}

		if depth <= 0 {
			cur.EndLine = n
			out = append(out, *cur)
			cur = nil
			selfRe = nil
		}
	}
	return out
}

// countParams counts comma-separated parameters; blank parameter text means
// zero parameters.
func countParams(params string) int {
	if strings.TrimSpace(params) == "" {
		return 0
	}
	n := 0
	for _, p := range strings.Split(params, ",") {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
