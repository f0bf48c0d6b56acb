package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/ruledocs"
)

func WriteHTML(runID, outDir string, run *ir.Run) (string, error) {
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	totals := ir.Tally(run.Violations)

	var totalLines, codeLines, functions int
	for _, file := range run.Files {
		totalLines += file.Metrics.TotalLines
		codeLines += file.Metrics.CodeLines
		functions += file.Metrics.FunctionCount
	}

	// Head + styles
	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .sev-ERROR{color:#b00} .sev-WARNING{color:#a60} .sev-INFO{color:#06a}</style>")
	fmt.Fprint(f, "</head><body>")

	// Title + summary
	fmt.Fprintf(f, "<h1>triton report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	fmt.Fprintf(f, "<p>Files: %d &nbsp; Violations: %d</p>", len(run.Files), len(run.Violations))
	fmt.Fprintf(f, "<p><b>Severity totals</b>: errors=%d &nbsp; warnings=%d &nbsp; infos=%d</p>",
		totals.Errors, totals.Warnings, totals.Infos)
	fmt.Fprintf(f, "<p class='dim'>Lines: %d total, %d code &nbsp; Functions: %d</p>",
		totalLines, codeLines, functions)

	if run.Context.MinSeverity != "" {
		fmt.Fprintf(f, "<p class='dim'>Severity threshold: %s", html.EscapeString(run.Context.MinSeverity))
		if n := len(run.Context.DisabledRules); n > 0 {
			fmt.Fprintf(f, " &nbsp; Disabled rules: %d", n)
		}
		fmt.Fprint(f, "</p>")
	}

	// Violations table
	fmt.Fprint(f, "<h2>Violations</h2>")
	if len(run.Violations) == 0 {
		fmt.Fprint(f, "<p>None. The run is clean.</p>")
	} else {
		fmt.Fprint(f, "<table><tr><th>File</th><th>Line</th><th>Rule</th><th>Severity</th><th>Message</th><th>Snippet</th></tr>")
		for _, v := range run.Violations {
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%s</td><td class='sev-%s'>%s</td><td>%s</td><td class='mono'>%s</td></tr>",
				html.EscapeString(v.File), v.Line,
				html.EscapeString(v.RuleID),
				html.EscapeString(string(v.Severity)), html.EscapeString(string(v.Severity)),
				html.EscapeString(v.Message), html.EscapeString(v.Snippet))
		}
		fmt.Fprint(f, "</table>")
	}

	// Per-file metrics
	fmt.Fprint(f, "<h2>Files</h2>")
	fmt.Fprint(f, "<table><tr><th>File</th><th>Lines</th><th>Code</th><th>Comments</th><th>Functions</th><th>Assert density</th><th>Violations</th></tr>")
	for _, file := range run.Files {
		fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td><td>%d</td><td>%d</td><td>%d</td><td>%.2f</td><td>%d</td></tr>",
			html.EscapeString(file.Path),
			file.Metrics.TotalLines, file.Metrics.CodeLines, file.Metrics.CommentLines,
			file.Metrics.FunctionCount, file.Metrics.AssertDensity, len(file.Violations))
	}
	fmt.Fprint(f, "</table>")

	// Docs for the rules that fired
	writeFiredRuleDocs(f, run)

	fmt.Fprint(f, "</body></html>")
	return path, nil
}

func writeFiredRuleDocs(f *os.File, run *ir.Run) {
	fired := map[string]bool{}
	for _, v := range run.Violations {
		fired[v.RuleID] = true
	}
	if len(fired) == 0 {
		return
	}
	ids := make([]string, 0, len(fired))
	for id := range fired {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprint(f, "<h2>Rule documentation</h2>")
	for _, id := range ids {
		doc, ok := ruledocs.Get(id)
		if !ok {
			continue
		}
		fmt.Fprintf(f, "<h3>%s – %s</h3>", html.EscapeString(doc.RuleID), html.EscapeString(doc.Title))
		// Already sanitized at load time.
		fmt.Fprint(f, doc.HTML)
	}
}
