package rules

import (
	"fmt"

	"github.com/mojoatomic/triton/internal/ir"
)

func init() {
	Register(Rule{
		ID:      "P10-4",
		Summary: "Functions must fit in the configured line budget.",
		Order:   orderFuncLength,
		Eval:    evalFuncLength,
	})
	Register(Rule{
		ID:      "P10-PARAMS",
		Summary: "Functions must not take more than the configured parameter count.",
		Order:   orderParams,
		Eval:    evalParamCount,
	})
}

func evalFuncLength(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	var out []ir.Violation
	for _, f := range file.Functions {
		if f.Span() > cfg.MaxFunctionLines {
			out = append(out, ir.Violation{
				Line:     f.StartLine,
				Severity: ir.SeverityWarning,
				Message: fmt.Sprintf("Function '%s' is %d lines (max %d)",
					f.Name, f.Span(), cfg.MaxFunctionLines),
			})
		}
	}
	return out
}

func evalParamCount(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	var out []ir.Violation
	for _, f := range file.Functions {
		if f.ParamCount > cfg.MaxParams {
			out = append(out, ir.Violation{
				Line:     f.StartLine,
				Severity: ir.SeverityWarning,
				Message: fmt.Sprintf("Function '%s' has %d parameters (max %d)",
					f.Name, f.ParamCount, cfg.MaxParams),
			})
		}
	}
	return out
}
