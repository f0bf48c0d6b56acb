package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/scan"
)

// A bare call is one that starts the statement: not assigned, not inside a
// condition keyword.
var consumedRe = regexp.MustCompile(`^(if|while|for|switch|\w+\s*=)`)

func init() {
	Register(Rule{
		ID:      "P10-7",
		Summary: "Return values of I/O primitives must be checked.",
		Order:   orderReturnValues,
		Eval:    evalReturnValues,
	})
}

func evalReturnValues(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	patterns := make([]*regexp.Regexp, len(cfg.ReturnPrefixes))
	for i, prefix := range cfg.ReturnPrefixes {
		patterns[i] = regexp.MustCompile(`^\s*` + regexp.QuoteMeta(prefix) + `[_a-z]*\s*\([^;]+\);`)
	}

	var out []ir.Violation
	for i, line := range file.Lines {
		code := strings.TrimSpace(scan.StripLineComment(line))
		for k, prefix := range cfg.ReturnPrefixes {
			if !patterns[k].MatchString(code) {
				continue
			}
			if consumedRe.MatchString(code) {
				continue
			}
			out = append(out, ir.Violation{
				Line:     i + 1,
				Severity: ir.SeverityWarning,
				Message:  fmt.Sprintf("Return value of '%s...' may be ignored", prefix),
				Snippet:  strings.TrimSpace(line),
			})
		}
	}
	return out
}
