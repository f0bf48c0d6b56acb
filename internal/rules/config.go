package rules

import (
	"sort"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
)

// Config carries every tunable the evaluators consult. It is passed into
// evaluation explicitly so two profiles (say strict and default) can run
// side by side without interference.
type Config struct {
	MinAsserts       int
	MaxFunctionLines int
	MaxParams        int
	MaxPointerDepth  int
	MaxGlobals       int

	// Forbidden maps an allocation-style identifier to the reason it is
	// banned.
	Forbidden map[string]string

	// MainLoops lists function names where intentionally infinite loops
	// are permitted (program entry points and per-core event loops).
	MainLoops []string

	// ReturnPrefixes are the I/O-primitive name prefixes whose return
	// values must not be silently dropped.
	ReturnPrefixes []string

	// Disabled holds upper-cased rule IDs excluded from evaluation.
	Disabled map[string]bool
}

func DefaultConfig() Config {
	return Config{
		MinAsserts:       1,
		MaxFunctionLines: 60,
		MaxParams:        7,
		MaxPointerDepth:  2,
		MaxGlobals:       10,
		Forbidden: map[string]string{
			"malloc":    "Use static allocation instead",
			"calloc":    "Use static allocation instead",
			"realloc":   "Use static allocation instead",
			"free":      "Memory should be statically allocated",
			"alloca":    "Stack allocation is unpredictable",
			"strdup":    "Allocates memory dynamically",
			"strndup":   "Allocates memory dynamically",
			"asprintf":  "Allocates memory dynamically",
			"vasprintf": "Allocates memory dynamically",
		},
		MainLoops: []string{"main", "core0_main", "core1_main", "core0_entry", "core1_entry"},
		ReturnPrefixes: []string{
			"i2c_write", "i2c_read", "spi_write", "spi_read",
			"uart_write", "uart_read", "gpio_get", "adc_read",
			"fopen", "fread", "fwrite", "fclose",
		},
		Disabled: map[string]bool{},
	}
}

func (c *Config) isMainLoop(name string) bool {
	for _, m := range c.MainLoops {
		if m == name {
			return true
		}
	}
	return false
}

// mainLoopLines returns the set of 1-indexed lines covered by allow-listed
// functions, where loop-form and assertion rules do not apply.
func (c *Config) mainLoopLines(file *ir.FileAnalysis) map[int]bool {
	exempt := map[int]bool{}
	for _, f := range file.Functions {
		if !c.isMainLoop(f.Name) {
			continue
		}
		for n := f.StartLine; n <= f.EndLine; n++ {
			exempt[n] = true
		}
	}
	return exempt
}

// forbiddenIdents returns the banned identifiers in a stable order so the
// allocation rule emits deterministically.
func (c *Config) forbiddenIdents() []string {
	idents := make([]string, 0, len(c.Forbidden))
	for ident := range c.Forbidden {
		idents = append(idents, ident)
	}
	sort.Strings(idents)
	return idents
}

func (c *Config) disabled(ruleID string) bool {
	return c.Disabled[strings.ToUpper(strings.TrimSpace(ruleID))]
}
