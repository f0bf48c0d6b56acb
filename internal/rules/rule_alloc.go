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
		ID:      "P10-1",
		Summary: "No dynamic memory allocation (malloc, free, strdup, ...).",
		Order:   orderAlloc,
		Eval:    evalAlloc,
	})
}

// evalAlloc flags call-like occurrences of forbidden identifiers. One
// violation is emitted per occurrence, so a line calling malloc twice is
// reported twice.
func evalAlloc(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	idents := cfg.forbiddenIdents()
	patterns := make([]*regexp.Regexp, len(idents))
	for i, ident := range idents {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(ident) + `\s*\(`)
	}

	var out []ir.Violation
	for i, line := range file.Lines {
		code := scan.StripLineComment(line)
		for k, ident := range idents {
			for range patterns[k].FindAllStringIndex(code, -1) {
				out = append(out, ir.Violation{
					Line:     i + 1,
					Severity: ir.SeverityError,
					Message:  fmt.Sprintf("Dynamic memory function '%s': %s", ident, cfg.Forbidden[ident]),
					Snippet:  strings.TrimSpace(line),
				})
			}
		}
	}
	return out
}
