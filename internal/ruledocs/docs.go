// Package ruledocs carries the long-form documentation for each rule:
// TOML files embedded in the binary, with markdown bodies rendered to
// sanitized HTML for the report and the rules endpoint.
package ruledocs

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed docs/*.toml
var docFS embed.FS

// Doc describes one rule for human consumption.
type Doc struct {
	RuleID      string `toml:"rule_id" json:"rule_id"`
	Title       string `toml:"title" json:"title"`
	Description string `toml:"description" json:"-"` // markdown source
	HTML        string `toml:"-" json:"html,omitempty"`
}

var (
	once    sync.Once
	docs    map[string]Doc
	ordered []Doc
	loadErr error
)

func load() {
	docs = map[string]Doc{}

	entries, err := docFS.ReadDir("docs")
	if err != nil {
		loadErr = err
		return
	}
	for _, e := range entries {
		b, err := docFS.ReadFile("docs/" + e.Name())
		if err != nil {
			loadErr = err
			return
		}
		var d Doc
		if err := toml.Unmarshal(b, &d); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", e.Name(), err)
			return
		}
		if d.RuleID == "" {
			loadErr = fmt.Errorf("%s: missing rule_id", e.Name())
			return
		}
		html, err := renderMarkdown(d.Description)
		if err != nil {
			loadErr = fmt.Errorf("render %s: %w", e.Name(), err)
			return
		}
		d.HTML = html
		docs[d.RuleID] = d
	}

	for _, d := range docs {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RuleID < ordered[j].RuleID })
}

// Get returns the documentation for one rule id.
func Get(ruleID string) (Doc, bool) {
	once.Do(load)
	d, ok := docs[ruleID]
	return d, ok
}

// All returns every rule doc sorted by rule id.
func All() ([]Doc, error) {
	once.Do(load)
	return ordered, loadErr
}

// renderMarkdown converts a markdown body to sanitized HTML.
func renderMarkdown(content string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}

	p := bluemonday.UGCPolicy()
	return p.Sanitize(buf.String()), nil
}
