package rules

import (
	"fmt"

	"github.com/mojoatomic/triton/internal/ir"
)

func init() {
	Register(Rule{
		ID:      "P10-3",
		Summary: "No recursion.",
		Order:   orderRecursion,
		Eval:    evalRecursion,
	})
}

func evalRecursion(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	var out []ir.Violation
	for _, f := range file.Functions {
		if f.CallsItself {
			out = append(out, ir.Violation{
				Line:     f.StartLine,
				Severity: ir.SeverityError,
				Message:  fmt.Sprintf("Function '%s' appears to be recursive", f.Name),
			})
		}
	}
	return out
}
