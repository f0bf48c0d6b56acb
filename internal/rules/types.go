package rules

import "github.com/mojoatomic/triton/internal/ir"

// Rule is a single evaluator over one file analysis. Evaluators are pure
// functions of (lines, functions): they never raise on malformed C, they
// only risk a missing or spurious violation.
type Rule struct {
	ID      string
	Summary string
	// Order fixes the concatenation position of this rule's output so a
	// full evaluation is deterministic regardless of registration order.
	Order int
	Eval  func(cfg *Config, file *ir.FileAnalysis) []ir.Violation
}
