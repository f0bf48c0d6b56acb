package parser

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mojoatomic/triton/internal/ir"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func paths(run ir.Run, root string) []string {
	var out []string
	for _, f := range run.Files {
		rel, _ := filepath.Rel(root, f.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestParse_WalksAndFilters(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.c":          "int main(void) { return 0; }\n",
		"drivers/uart.c":  "void uart_init(void) {\n}\n",
		"drivers/uart.h":  "#pragma once\n",
		"README.md":       "docs\n",
		"build/gen.c":     "int generated;\n",
		"test/harness.c":  "int t;\n",
		".git/objects/x":  "blob\n",
		"notes/design.md": "notes\n",
	})

	run, diags := Parse(dir)
	if len(diags.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", diags.Warnings)
	}
	got := paths(run, dir)
	want := []string{"drivers/uart.c", "drivers/uart.h", "main.c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParse_HonorsGitignore(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".gitignore":  "vendor/\ngen_*.c\n",
		"main.c":      "int main(void) { return 0; }\n",
		"gen_tab.c":   "int tab;\n",
		"vendor/x.c":  "int x;\n",
		"drivers/y.c": "int y;\n",
	})

	run, _ := Parse(dir)
	got := paths(run, dir)
	want := []string{"drivers/y.c", "main.c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParse_SingleFile(t *testing.T) {
	dir := writeTree(t, map[string]string{"one.c": "int a;\nint b;\n"})
	run, _ := Parse(filepath.Join(dir, "one.c"))
	if len(run.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(run.Files))
	}
	if got := len(run.Files[0].Lines); got != 2 {
		t.Errorf("got %d lines, want 2", got)
	}
}

func TestParse_EmptyDirWarns(t *testing.T) {
	run, diags := Parse(t.TempDir())
	if len(run.Files) != 0 {
		t.Fatalf("got %d files, want 0", len(run.Files))
	}
	if len(diags.Warnings) != 1 {
		t.Fatalf("got %v, want one warning", diags.Warnings)
	}
}

func TestParseFile_ReadFailure(t *testing.T) {
	file := ParseFile(filepath.Join(t.TempDir(), "missing.c"))
	if !file.ReadFailed {
		t.Fatal("ReadFailed = false, want true")
	}
	if len(file.Violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(file.Violations))
	}
	v := file.Violations[0]
	if v.RuleID != "FILE" || v.Severity != ir.SeverityError || v.Line != 0 {
		t.Errorf("got %+v, want file-level FILE error", v)
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"no trailing newline", "a\nb", 2},
		{"trailing newline not an extra line", "a\nb\n", 2},
		{"crlf stripped", "a\r\nb\r\n", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitLines(tc.in)
			if len(got) != tc.want {
				t.Fatalf("splitLines(%q) = %v, want %d lines", tc.in, got, tc.want)
			}
			for _, l := range got {
				if len(l) > 0 && l[len(l)-1] == '\r' {
					t.Errorf("line %q keeps its \\r", l)
				}
			}
		})
	}
}

func TestSplitLines_InvalidUTF8Replaced(t *testing.T) {
	lines := splitLines("ok\n\xff\xfe broken\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		for _, r := range l {
			if r == 0xFFFD {
				return
			}
		}
	}
	t.Error("invalid bytes were not replaced")
}
