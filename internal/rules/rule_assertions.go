package rules

import (
	"fmt"

	"github.com/mojoatomic/triton/internal/ir"
)

// Functions below this span are too trivial to demand an assertion.
const assertSpanFloor = 10

func init() {
	Register(Rule{
		ID:      "P10-5",
		Summary: "Minimum assertion count per non-trivial function.",
		Order:   orderAssertions,
		Eval:    evalAssertions,
	})
}

func evalAssertions(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	var out []ir.Violation
	for _, f := range file.Functions {
		// Main event loops are exempt; they dispatch rather than compute.
		if cfg.isMainLoop(f.Name) {
			continue
		}
		if f.Span() < assertSpanFloor {
			continue
		}
		if f.AssertCount < cfg.MinAsserts {
			out = append(out, ir.Violation{
				Line:     f.StartLine,
				Severity: ir.SeverityWarning,
				Message: fmt.Sprintf("Function '%s' has %d assertions (need %d)",
					f.Name, f.AssertCount, cfg.MinAsserts),
			})
		}
	}
	return out
}
