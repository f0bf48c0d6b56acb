package rules

import (
	"fmt"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
)

// Evaluator concatenation order. Keeping the positions explicit means new
// rules slot in without touching existing ones.
const (
	orderAlloc        = 10
	orderLoopBounds   = 20
	orderFuncLength   = 30
	orderParams       = 31
	orderRecursion    = 40
	orderAssertions   = 50
	orderPointerDepth = 60
	orderGoto         = 70
	orderReturnValues = 80
	orderGlobals      = 90
	// Custom pack rules run after every built-in.
	orderCustomBase = 100
)

// OrderCustom positions a pack-defined rule after every built-in.
func OrderCustom(ordinal int) int { return orderCustomBase + ordinal }

var (
	registry  []Rule
	ruleIndex = map[string]int{} // UPPER(ruleID) -> index
)

func Register(r Rule) {
	registry = append(registry, r)
	ruleIndex[strings.ToUpper(strings.TrimSpace(r.ID))] = len(registry) - 1
}

// List returns the enabled rules in evaluation order.
func List(cfg *Config) []Rule {
	out := make([]Rule, 0, len(registry))
	for _, r := range registry {
		if cfg != nil && cfg.disabled(r.ID) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns a rule by ID if registered (used by the HTML report and the
// rules inventory endpoint).
func Get(id string) (Rule, bool) {
	idx, ok := ruleIndex[strings.ToUpper(strings.TrimSpace(id))]
	if !ok || idx < 0 || idx >= len(registry) {
		return Rule{}, false
	}
	return registry[idx], true
}

// EvaluateFile runs every enabled rule against one file and stores the
// concatenated result on the analysis. A file whose read failed keeps its
// single FILE violation; no evaluator runs for it.
func EvaluateFile(cfg *Config, file *ir.FileAnalysis) []ir.Violation {
	if file.ReadFailed {
		for k := range file.Violations {
			if file.Violations[k].ID == "" {
				file.Violations[k].ID = makeID(file.Violations[k].RuleID, file.Violations[k].File, file.Violations[k].Line, k)
			}
		}
		return file.Violations
	}

	var all []ir.Violation
	for _, rule := range List(cfg) {
		vs := rule.Eval(cfg, file)
		for k := range vs {
			if vs[k].File == "" {
				vs[k].File = file.Path
			}
			if vs[k].RuleID == "" {
				vs[k].RuleID = rule.ID
			}
		}
		all = append(all, vs...)
	}
	for k := range all {
		all[k].ID = makeID(all[k].RuleID, all[k].File, all[k].Line, k)
	}
	file.Violations = all
	return all
}

// Evaluate runs the full rule set over every file in the run and returns
// the aggregated, per-file-ordered violation list.
func Evaluate(cfg *Config, run *ir.Run) []ir.Violation {
	var all []ir.Violation
	for i := range run.Files {
		all = append(all, EvaluateFile(cfg, &run.Files[i])...)
	}
	return all
}

// makeID derives a run-stable violation id; the per-file ordinal keeps ids
// unique when one line trips the same rule twice.
func makeID(ruleID, file string, line, ordinal int) string {
	data := fmt.Sprintf("%s|%s|%d|%d", ruleID, file, line, ordinal)
	sum := crc32.ChecksumIEEE([]byte(data))
	return fmt.Sprintf("%s-%08x", ruleID, sum)
}
