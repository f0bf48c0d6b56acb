// Package rulesdsl loads project-specific lexical rules from YAML packs and
// registers them beside the built-ins. Packs are how a project bans its own
// APIs (a blocking sleep in control code, a vendor printf) without forking
// the checker.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/rules"
	"github.com/mojoatomic/triton/internal/scan"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID       string `yaml:"id"`
	Summary  string `yaml:"summary"`
	Severity string `yaml:"severity"` // ERROR|WARNING|INFO
	Message  string `yaml:"message"`

	Where struct {
		LineRegex       string   `yaml:"line_regex"`
		ExemptFunctions []string `yaml:"exempt_functions"` // skip lines inside these
		IncludeComments bool     `yaml:"include_comments"` // match before stripping
	} `yaml:"where"`
}

type compiled struct {
	rule   dslRule
	reLine *regexp.Regexp
	sev    ir.Severity
}

// LoadAndRegister reads one pack file and registers its rules. Returns the
// number of rules registered.
func LoadAndRegister(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules pack: %w", err)
	}
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}
	var n int
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return n, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		registerCompiled(*cr, n)
		n++
	}
	return n, nil
}

func compile(r dslRule) (*compiled, error) {
	if r.ID == "" || r.Severity == "" || r.Message == "" {
		return nil, fmt.Errorf("missing required fields (id/severity/message)")
	}
	if r.Where.LineRegex == "" {
		return nil, fmt.Errorf("where.line_regex is required")
	}
	sev := ir.Severity(strings.ToUpper(strings.TrimSpace(r.Severity)))
	switch sev {
	case ir.SeverityError, ir.SeverityWarning, ir.SeverityInfo:
	default:
		return nil, fmt.Errorf("unknown severity %q", r.Severity)
	}
	re, err := regexp.Compile(r.Where.LineRegex)
	if err != nil {
		return nil, fmt.Errorf("line_regex: %w", err)
	}
	return &compiled{rule: r, reLine: re, sev: sev}, nil
}

func registerCompiled(c compiled, ordinal int) {
	rules.Register(rules.Rule{
		ID:      c.rule.ID,
		Summary: c.rule.Summary,
		Order:   rules.OrderCustom(ordinal),
		Eval: func(cfg *rules.Config, file *ir.FileAnalysis) []ir.Violation {
			exempt := exemptLines(c.rule.Where.ExemptFunctions, file)
			var out []ir.Violation
			for i, line := range file.Lines {
				if exempt[i+1] {
					continue
				}
				code := line
				if !c.rule.Where.IncludeComments {
					code = scan.StripLineComment(line)
				}
				if !c.reLine.MatchString(code) {
					continue
				}
				out = append(out, ir.Violation{
					Line:     i + 1,
					RuleID:   c.rule.ID,
					Severity: c.sev,
					Message:  c.rule.Message,
					Snippet:  strings.TrimSpace(line),
				})
			}
			return out
		},
	})
}

func exemptLines(names []string, file *ir.FileAnalysis) map[int]bool {
	out := map[int]bool{}
	if len(names) == 0 {
		return out
	}
	for _, f := range file.Functions {
		for _, name := range names {
			if strings.EqualFold(f.Name, name) {
				for n := f.StartLine; n <= f.EndLine; n++ {
					out[n] = true
				}
			}
		}
	}
	return out
}
