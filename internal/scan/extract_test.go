package scan

import (
	"strings"
	"testing"
)

func lines(src string) []string {
	return strings.Split(strings.TrimPrefix(src, "\n"), "\n")
}

func TestFunctions_BasicSpans(t *testing.T) {
	src := `
#include <stdio.h>

static int add(int a, int b) {
    return a + b;
}

uint32_t mix(uint32_t a, uint32_t b, uint32_t c) {
    return a ^ b ^ c;
}`
	fns := Functions(lines(src))
	if len(fns) != 2 {
		t.Fatalf("got %d functions, want 2", len(fns))
	}

	add := fns[0]
	if add.Name != "add" || add.StartLine != 3 || add.EndLine != 5 {
		t.Errorf("add = %q [%d..%d], want add [3..5]", add.Name, add.StartLine, add.EndLine)
	}
	if add.ParamCount != 2 || add.ReturnCount != 1 {
		t.Errorf("add params=%d returns=%d, want 2/1", add.ParamCount, add.ReturnCount)
	}

	mix := fns[1]
	if mix.Name != "mix" || mix.ParamCount != 3 {
		t.Errorf("mix = %q params=%d, want mix/3", mix.Name, mix.ParamCount)
	}
}

func TestFunctions_BodyFlags(t *testing.T) {
	src := `
void pump(int n) {
    ASSERT(n > 0);
    for (int i = 0; i < n; i++) {
        step(i);
    }
    if (n > 100) {
        pump(n / 2);
    }
}`
	fns := Functions(lines(src))
	if len(fns) != 1 {
		t.Fatalf("got %d functions, want 1", len(fns))
	}
	f := fns[0]
	if f.AssertCount != 1 {
		t.Errorf("AssertCount = %d, want 1", f.AssertCount)
	}
	if !f.HasLoops {
		t.Error("HasLoops = false, want true")
	}
	if !f.CallsItself {
		t.Error("CallsItself = false, want true")
	}
}

// An opening brace on its own line is not recognized as a function start.
// The scanner requires the brace on the signature line.
func TestFunctions_BraceOnNextLineNotExtracted(t *testing.T) {
	src := `
void init(void)
{
    reset();
}`
	if fns := Functions(lines(src)); len(fns) != 0 {
		t.Fatalf("got %d functions, want 0", len(fns))
	}
}

// A function left open at EOF never produces a partial record.
func TestFunctions_UnterminatedDropped(t *testing.T) {
	src := `
int ok(void) {
    return 1;
}

int broken(int a) {
    if (a) {
        return a;`
	fns := Functions(lines(src))
	if len(fns) != 1 || fns[0].Name != "ok" {
		t.Fatalf("got %v, want just 'ok'", fns)
	}
}

// Flags only count on lines after the signature line; commented code does
// not count at all.
func TestFunctions_CommentedCodeIgnored(t *testing.T) {
	src := `
int quiet(int a) {
    // assert(a > 0);
    // while (1) { spin(); }
    return a;
}`
	fns := Functions(lines(src))
	if len(fns) != 1 {
		t.Fatalf("got %d functions, want 1", len(fns))
	}
	if fns[0].AssertCount != 0 || fns[0].HasLoops {
		t.Errorf("asserts=%d loops=%v, want 0/false", fns[0].AssertCount, fns[0].HasLoops)
	}
}

func TestCountParams(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"int a", 1},
		{"int a, int b, char *c", 3},
	}
	for _, tc := range cases {
		if got := countParams(tc.in); got != tc.want {
			t.Errorf("countParams(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
