// Package metrics computes per-file source statistics for report summaries.
// Unlike the per-line comment stripper, the counters here do track /* */
// block comments across lines.
package metrics

import (
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
)

// Compute fills the counters for one analyzed file.
func Compute(file *ir.FileAnalysis) ir.SourceMetrics {
	m := ir.SourceMetrics{
		TotalLines:    len(file.Lines),
		FunctionCount: len(file.Functions),
	}

	inBlock := false
	for _, line := range file.Lines {
		kind, stillInBlock := classify(line, inBlock)
		inBlock = stillInBlock
		switch kind {
		case lineBlank:
			m.BlankLines++
		case lineComment:
			m.CommentLines++
		default:
			m.CodeLines++
		}
	}

	if m.FunctionCount > 0 {
		asserts := 0
		for _, f := range file.Functions {
			asserts += f.AssertCount
		}
		m.AssertDensity = float64(asserts) / float64(m.FunctionCount)
	}
	return m
}

// Annotate computes metrics for every file in the run.
func Annotate(run *ir.Run) {
	for i := range run.Files {
		run.Files[i].Metrics = Compute(&run.Files[i])
	}
}

type lineKind int

const (
	lineCode lineKind = iota
	lineComment
	lineBlank
)

// classify decides what a single line counts as, carrying block-comment
// state between lines. A line holding both code and a comment counts as
// code.
func classify(line string, inBlock bool) (lineKind, bool) {
	s := strings.TrimSpace(line)

	if inBlock {
		end := strings.Index(s, "*/")
		if end < 0 {
			return lineComment, true
		}
		rest := strings.TrimSpace(s[end+2:])
		if rest == "" {
			return lineComment, false
		}
		kind, still := classify(rest, false)
		return kind, still
	}

	if s == "" {
		return lineBlank, false
	}
	if strings.HasPrefix(s, "//") {
		return lineComment, false
	}
	if strings.HasPrefix(s, "/*") {
		end := strings.Index(s[2:], "*/")
		if end < 0 {
			return lineComment, true
		}
		rest := strings.TrimSpace(s[2+end+2:])
		if rest == "" {
			return lineComment, false
		}
		kind, still := classify(rest, false)
		return kind, still
	}

	// Code first on the line; note whether a block comment stays open.
	if open := strings.LastIndex(s, "/*"); open >= 0 && !strings.Contains(s[open:], "*/") {
		return lineCode, true
	}
	return lineCode, false
}
