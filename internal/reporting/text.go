package reporting

import (
	"fmt"
	"io"

	"github.com/mojoatomic/triton/internal/ir"
)

const (
	ansiRed    = "\033[91m"
	ansiYellow = "\033[93m"
	ansiBlue   = "\033[94m"
	ansiGreen  = "\033[92m"
	ansiReset  = "\033[0m"
)

// WriteText renders the human gate output: one line per violation in
// "file:line: [SEVERITY] rule: message" form. INFO lines and source
// snippets appear only in verbose mode. Returns the severity totals.
func WriteText(w io.Writer, run *ir.Run, verbose, color bool) ir.Totals {
	totals := ir.Tally(run.Violations)

	for _, file := range run.Files {
		if len(file.Violations) == 0 {
			if verbose {
				fmt.Fprintf(w, "%s %s\n", paint("✓", ansiGreen, color), file.Path)
			}
			continue
		}
		for _, v := range file.Violations {
			if v.Severity == ir.SeverityInfo && !verbose {
				continue
			}
			fmt.Fprintf(w, "%s:%d: [%s] %s: %s\n",
				v.File, v.Line, severityLabel(v.Severity, color), v.RuleID, v.Message)
			if verbose && v.Snippet != "" {
				fmt.Fprintf(w, "    %s\n", v.Snippet)
			}
		}
	}
	return totals
}

// WriteSummary renders the trailing block with counts. The pass/fail
// decision itself belongs to the caller's exit policy.
func WriteSummary(w io.Writer, run *ir.Run, totals ir.Totals) {
	fmt.Fprintf(w, "\n%s\n", divider)
	fmt.Fprintf(w, "Files checked: %d\n", len(run.Files))
	fmt.Fprintf(w, "Errors: %d\n", totals.Errors)
	fmt.Fprintf(w, "Warnings: %d\n", totals.Warnings)
}

var divider = "============================================================"

func severityLabel(s ir.Severity, color bool) string {
	switch s {
	case ir.SeverityError:
		return paint("ERROR", ansiRed, color)
	case ir.SeverityWarning:
		return paint("WARN", ansiYellow, color)
	default:
		return paint("INFO", ansiBlue, color)
	}
}

func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return code + s + ansiReset
}
