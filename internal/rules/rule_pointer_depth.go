package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/scan"
)

func init() {
	Register(Rule{
		ID:      "P10-8",
		Summary: "Limited pointer indirection depth.",
		Order:   orderPointerDepth,
		Eval:    evalPointerDepth,
	})
}

// evalPointerDepth flags runs of consecutive '*' longer than the allowed
// depth, one violation per line regardless of how long the run is.
func evalPointerDepth(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	deepRe := regexp.MustCompile(fmt.Sprintf(`\*{%d,}`, cfg.MaxPointerDepth+1))

	var out []ir.Violation
	for i, line := range file.Lines {
		code := scan.StripLineComment(line)
		if deepRe.MatchString(code) {
			out = append(out, ir.Violation{
				Line:     i + 1,
				Severity: ir.SeverityWarning,
				Message:  fmt.Sprintf("Pointer depth exceeds %d levels", cfg.MaxPointerDepth),
				Snippet:  strings.TrimSpace(line),
			})
		}
	}
	return out
}
