package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mojoatomic/triton/internal/ir"
)

type diffPayload struct {
	BaseID  string          `json:"base_id"`
	HeadID  string          `json:"head_id"`
	Summary diffSummary     `json:"summary"`
	New     []diffViolation `json:"new"`
	Removed []diffViolation `json:"removed"`
	Changed []diffChanged   `json:"changed"`
}

type diffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type diffViolation struct {
	RuleID   string `json:"rule_id"`
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message,omitempty"`
}

type diffChanged struct {
	Key     string        `json:"key"`
	Base    diffViolation `json:"base"`
	Head    diffViolation `json:"head"`
	Changed []string      `json:"fields_changed"`
}

// WriteDiffJSON compares two runs and writes what appeared, disappeared or
// moved between them. Violations are matched on rule, file and snippet so
// a block that merely shifted lines shows up as "changed", not as a
// remove/add pair.
func WriteDiffJSON(baseID, headID, outDir string, base, head *ir.Run) (string, error) {
	path := filepath.Join(outDir, "diff_"+baseID+"__"+headID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	bm := map[string]ir.Violation{}
	hm := map[string]ir.Violation{}
	for _, v := range base.Violations {
		bm[keyOf(v)] = v
	}
	for _, v := range head.Violations {
		hm[keyOf(v)] = v
	}

	var added []diffViolation
	var removed []diffViolation
	var changed []diffChanged

	for k, hv := range hm {
		bv, ok := bm[k]
		if !ok {
			added = append(added, asDiff(hv))
			continue
		}
		var fields []string
		if norm(string(bv.Severity)) != norm(string(hv.Severity)) {
			fields = append(fields, "severity")
		}
		if strings.TrimSpace(bv.Message) != strings.TrimSpace(hv.Message) {
			fields = append(fields, "message")
		}
		if bv.Line != hv.Line {
			fields = append(fields, "line")
		}
		if len(fields) > 0 {
			changed = append(changed, diffChanged{
				Key:     k,
				Base:    asDiff(bv),
				Head:    asDiff(hv),
				Changed: fields,
			})
		}
	}
	for k, bv := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(bv))
		}
	}

	// stable sort
	sort.Slice(added, func(i, j int) bool { return lessDiff(added[i], added[j]) })
	sort.Slice(removed, func(i, j int) bool { return lessDiff(removed[i], removed[j]) })
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	payload := diffPayload{
		BaseID: baseID, HeadID: headID,
		Summary: diffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func keyOf(v ir.Violation) string {
	sb := strings.Builder{}
	sb.WriteString(norm(v.RuleID))
	sb.WriteByte('|')
	sb.WriteString(norm(v.File))
	sb.WriteByte('|')
	// the snippet drives logical identity; line numbers shift too easily
	sb.WriteString(norm(v.Snippet))
	sb.WriteByte('|')
	sb.WriteString(norm(v.Message))
	return sb.String()
}

func asDiff(v ir.Violation) diffViolation {
	return diffViolation{
		RuleID:   v.RuleID,
		File:     v.File,
		Line:     v.Line,
		Severity: string(v.Severity),
		Message:  v.Message,
	}
}

func lessDiff(a, b diffViolation) bool {
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	if a.File != b.File {
		return a.File < b.File
	}
	return a.Line < b.Line
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
