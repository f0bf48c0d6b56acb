package ir

import "time"

const Version = "1.0"

// Severity classifies how certain a violation is: ERROR for syntactically
// unambiguous patterns, WARNING for heuristics with plausible false
// positives, INFO for soft guidance.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Rank maps a severity to a comparable weight. Unknown strings rank as INFO.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	default:
		return 1
	}
}

type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source,omitempty"`
	IRVersion string    `json:"ir_version,omitempty"`

	Context    Context        `json:"context"`
	Files      []FileAnalysis `json:"files"`
	Violations []Violation    `json:"violations,omitempty"`
}

// Context echoes the effective analysis settings into reports.
type Context struct {
	MinSeverity   string   `json:"min_severity,omitempty"`
	DisabledRules []string `json:"disabled_rules,omitempty"`
	Strict        bool     `json:"strict,omitempty"`
}

// FileAnalysis is the unit of work and the unit of output: one per source
// file, independent of all others.
type FileAnalysis struct {
	Path       string         `json:"path"`
	Lines      []string       `json:"-"`
	Functions  []FunctionInfo `json:"functions,omitempty"`
	Violations []Violation    `json:"violations,omitempty"`
	Metrics    SourceMetrics  `json:"metrics"`

	// ReadFailed marks a file whose content could not be loaded. Such a
	// file carries exactly one FILE violation and is never evaluated.
	ReadFailed bool `json:"read_failed,omitempty"`
}

// FunctionInfo is produced by the extraction pass and never mutated after
// the pass completes. Functions are non-overlapping and non-nested.
type FunctionInfo struct {
	Name        string `json:"name"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	ParamCount  int    `json:"param_count"`
	AssertCount int    `json:"assert_count"`
	ReturnCount int    `json:"return_count"`
	HasLoops    bool   `json:"has_loops,omitempty"`
	CallsItself bool   `json:"calls_itself,omitempty"`
}

// Span is the inclusive line count of the function body.
func (f FunctionInfo) Span() int { return f.EndLine - f.StartLine + 1 }

// Contains reports whether the 1-indexed line falls inside the function.
func (f FunctionInfo) Contains(line int) bool {
	return line >= f.StartLine && line <= f.EndLine
}

// Violation is created once by the evaluator that detects it. Line 0 means
// the violation is file-level rather than line-specific.
type Violation struct {
	ID       string   `json:"id,omitempty"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Snippet  string   `json:"snippet,omitempty"`
}

// SourceMetrics summarizes one file; block comments are honored here even
// though the per-line comment stripper ignores them.
type SourceMetrics struct {
	TotalLines    int     `json:"total_lines"`
	CodeLines     int     `json:"code_lines"`
	CommentLines  int     `json:"comment_lines"`
	BlankLines    int     `json:"blank_lines"`
	FunctionCount int     `json:"function_count"`
	AssertDensity float64 `json:"assert_density"`
}

// Totals are the per-severity violation counts the gate policy consumes.
type Totals struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

func Tally(vs []Violation) Totals {
	var t Totals
	for _, v := range vs {
		switch v.Severity {
		case SeverityError:
			t.Errors++
		case SeverityWarning:
			t.Warnings++
		default:
			t.Infos++
		}
	}
	return t
}
