package rules

import (
	"regexp"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/scan"
)

var gotoRe = regexp.MustCompile(`\bgoto\s+\w+`)

func init() {
	Register(Rule{
		ID:      "P10-GOTO",
		Summary: "No unstructured jumps.",
		Order:   orderGoto,
		Eval:    evalGoto,
	})
}

func evalGoto(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	var out []ir.Violation
	for i, line := range file.Lines {
		code := scan.StripLineComment(line)
		if gotoRe.MatchString(code) {
			out = append(out, ir.Violation{
				Line:     i + 1,
				Severity: ir.SeverityError,
				Message:  "goto statement found",
				Snippet:  strings.TrimSpace(line),
			})
		}
	}
	return out
}
