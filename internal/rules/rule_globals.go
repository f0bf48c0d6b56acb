package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/scan"
)

// declRe matches "type name;" or "type name = value;" with optional storage
// qualifiers. Anything with a paren, typedef, extern or a preprocessor
// marker is excluded below.
var declRe = regexp.MustCompile(`^(?:static\s+)?(?:volatile\s+)?[a-zA-Z_][a-zA-Z0-9_]*\s+[a-zA-Z_][a-zA-Z0-9_*\[\]]*\s*[;=]`)

func init() {
	Register(Rule{
		ID:      "P10-6",
		Summary: "Keep the file-level global variable count within budget.",
		Order:   orderGlobals,
		Eval:    evalGlobals,
	})
}

// evalGlobals counts declaration-like lines outside every extracted
// function span. The extractor's spans are the single source of truth for
// "inside a function"; this rule does not run its own brace tracking.
func evalGlobals(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	inFunction := make([]bool, len(file.Lines)+1)
	for _, f := range file.Functions {
		for n := f.StartLine; n <= f.EndLine && n < len(inFunction); n++ {
			inFunction[n] = true
		}
	}

	count := 0
	for i, line := range file.Lines {
		if inFunction[i+1] {
			continue
		}
		code := scan.StripLineComment(line)
		if !declRe.MatchString(strings.TrimSpace(code)) {
			continue
		}
		if strings.Contains(code, "(") ||
			strings.Contains(code, "typedef") ||
			strings.Contains(code, "extern") ||
			strings.Contains(code, "#") {
			continue
		}
		count++
	}

	if count <= cfg.MaxGlobals {
		return nil
	}
	return []ir.Violation{{
		Line:     0, // file-level
		Severity: ir.SeverityInfo,
		Message:  fmt.Sprintf("File has %d global variables (consider reducing)", count),
	}}
}
