package rulesdsl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/rules"
	"github.com/mojoatomic/triton/internal/scan"
)

func writePack(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	return p
}

func TestLoadAndRegister(t *testing.T) {
	n, err := LoadAndRegister(writePack(t, `
rules:
  - id: PRJ-SLEEP
    summary: No blocking sleeps
    severity: ERROR
    message: "Blocking sleep in control path"
    where:
      line_regex: '\bsleep\s*\('
      exempt_functions: [main]
`))
	if err != nil {
		t.Fatalf("LoadAndRegister: %v", err)
	}
	if n != 1 {
		t.Fatalf("registered %d rules, want 1", n)
	}

	r, ok := rules.Get("PRJ-SLEEP")
	if !ok {
		t.Fatal("PRJ-SLEEP not registered")
	}

	src := strings.Split(
		"void worker(void) {\n    sleep(1);\n}\n\nint main(void) {\n    sleep(1);\n    return 0;\n}",
		"\n")
	file := &ir.FileAnalysis{Path: "w.c", Lines: src, Functions: scan.Functions(src)}
	cfg := rules.DefaultConfig()
	vs := r.Eval(&cfg, file)

	if len(vs) != 1 {
		t.Fatalf("got %d violations, want 1 (main is exempt): %v", len(vs), vs)
	}
	if vs[0].Line != 2 || vs[0].Severity != ir.SeverityError {
		t.Errorf("got %+v, want ERROR at line 2", vs[0])
	}
	if vs[0].Message != "Blocking sleep in control path" {
		t.Errorf("message = %q", vs[0].Message)
	}
}

func TestLoadAndRegister_CommentsSkippedByDefault(t *testing.T) {
	n, err := LoadAndRegister(writePack(t, `
rules:
  - id: PRJ-FIXME
    severity: INFO
    message: "fixme marker"
    where:
      line_regex: 'FIXME'
      include_comments: true
`))
	if err != nil || n != 1 {
		t.Fatalf("LoadAndRegister: n=%d err=%v", n, err)
	}
	r, _ := rules.Get("PRJ-FIXME")

	src := []string{"int x; // FIXME tighten type"}
	file := &ir.FileAnalysis{Path: "f.c", Lines: src}
	cfg := rules.DefaultConfig()
	if vs := r.Eval(&cfg, file); len(vs) != 1 {
		t.Fatalf("include_comments rule missed the comment: %v", vs)
	}
}

func TestLoadAndRegister_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"missing message",
			"rules:\n  - id: X\n    severity: ERROR\n    where: {line_regex: a}\n",
			"missing required fields",
		},
		{
			"bad severity",
			"rules:\n  - id: X\n    severity: FATAL\n    message: m\n    where: {line_regex: a}\n",
			"unknown severity",
		},
		{
			"missing regex",
			"rules:\n  - id: X\n    severity: ERROR\n    message: m\n",
			"line_regex is required",
		},
		{
			"broken regex",
			"rules:\n  - id: X\n    severity: ERROR\n    message: m\n    where: {line_regex: '['}\n",
			"line_regex",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadAndRegister(writePack(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadAndRegister_MissingFile(t *testing.T) {
	if _, err := LoadAndRegister(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing pack file")
	}
}
