package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/scan"
)

// Literal "always true" loop conditions. These are ERRORs: the syntax
// leaves no doubt.
var unboundedForms = []struct {
	re  *regexp.Regexp
	msg string
}{
	{regexp.MustCompile(`while\s*\(\s*1\s*\)`), "Infinite loop: while(1)"},
	{regexp.MustCompile(`while\s*\(\s*true\s*\)`), "Infinite loop: while(true)"},
	{regexp.MustCompile(`for\s*\(\s*;\s*;\s*\)`), "Infinite loop: for(;;)"},
	{regexp.MustCompile(`while\s*\(\s*!\s*0\s*\)`), "Infinite loop: while(!0)"},
}

var whileCondRe = regexp.MustCompile(`while\s*\(([^)]+)\)`)

// Lexical cues that a while condition is plausibly bounded: comparisons,
// counter mutation, or timeout/limit vocabulary.
var boundednessTokens = []string{
	"<", ">", "<=", ">=", "==", "!=",
	"--", "++", "timeout", "retry", "count", "iter", "attempt",
	"MAX_", "_MAX", "LIMIT",
}

func init() {
	Register(Rule{
		ID:      "P10-2",
		Summary: "All loops must have a fixed upper bound.",
		Order:   orderLoopBounds,
		Eval:    evalLoopBounds,
	})
}

func evalLoopBounds(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	exempt := cfg.mainLoopLines(file)

	var out []ir.Violation
	for i, line := range file.Lines {
		n := i + 1
		if exempt[n] {
			continue
		}
		code := scan.StripLineComment(line)

		literal := false
		for _, form := range unboundedForms {
			if form.re.MatchString(code) {
				literal = true
				out = append(out, ir.Violation{
					Line:     n,
					Severity: ir.SeverityError,
					Message:  form.msg,
					Snippet:  strings.TrimSpace(line),
				})
			}
		}
		// A literal infinite form already produced an ERROR; piling a
		// heuristic WARNING on the same condition helps nobody.
		if literal {
			continue
		}

		m := whileCondRe.FindStringSubmatch(code)
		if m == nil {
			continue
		}
		condition := strings.TrimSpace(m[1])
		if hasBoundednessToken(condition) {
			continue
		}
		if condition == "0" || condition == "false" || condition == "NULL" {
			continue
		}
		out = append(out, ir.Violation{
			Line:     n,
			Severity: ir.SeverityWarning,
			Message:  fmt.Sprintf("Loop may lack explicit bound: while(%s)", condition),
			Snippet:  strings.TrimSpace(line),
		})
	}
	return out
}

func hasBoundednessToken(condition string) bool {
	for _, tok := range boundednessTokens {
		if strings.Contains(condition, tok) {
			return true
		}
	}
	return false
}
