// Package parser discovers C sources and loads them into the analysis IR.
// It owns everything the engine treats as a collaborator: directory
// traversal, file selection and encoding-tolerant reading.
package parser

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/scan"
)

type Diagnostics struct {
	Warnings []string
}

// Directories that never contain gate-relevant sources.
var skipDirs = map[string]bool{
	"build": true,
	".git":  true,
	"test":  true,
}

// Parse loads every .c/.h file under path (or path itself when it is a
// file) into a Run. A .gitignore at the root is honored when present.
func Parse(path string) (ir.Run, Diagnostics) {
	var run ir.Run
	run.IRVersion = ir.Version
	run.Source = filepath.Clean(path)
	diags := Diagnostics{}

	info, err := os.Stat(path)
	if err != nil {
		run.Files = append(run.Files, ParseFile(path))
		return run, diags
	}
	if !info.IsDir() {
		run.Files = append(run.Files, ParseFile(path))
		return run, diags
	}

	gi := loadGitignore(path)
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != path && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSource(d.Name()) {
			return nil
		}
		if gi != nil {
			if rel, rerr := filepath.Rel(path, p); rerr == nil && gi.MatchesPath(rel) {
				return nil
			}
		}
		run.Files = append(run.Files, ParseFile(p))
		return nil
	})

	if len(run.Files) == 0 {
		diags.Warnings = append(diags.Warnings, "no C sources found under "+run.Source)
	}
	return run, diags
}

// ParseFile reads one file and runs the extraction pass. A read failure
// yields a single file-level FILE violation and marks the analysis so no
// evaluator touches it.
func ParseFile(path string) ir.FileAnalysis {
	b, err := os.ReadFile(path)
	if err != nil {
		return ir.FileAnalysis{
			Path:       path,
			ReadFailed: true,
			Violations: []ir.Violation{{
				File:     path,
				Line:     0,
				RuleID:   "FILE",
				Message:  "cannot read file: " + err.Error(),
				Severity: ir.SeverityError,
			}},
		}
	}

	lines := splitLines(string(b))
	return ir.FileAnalysis{
		Path:      path,
		Lines:     lines,
		Functions: scan.Functions(lines),
	}
}

func isSource(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".c") || strings.HasSuffix(name, ".h")
}

// splitLines is encoding-tolerant: undecodable bytes are replaced, never
// fatal. A trailing newline does not produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToValidUTF8(text, string(utf8.RuneError))
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
