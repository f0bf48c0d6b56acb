package api

import (
	"net/http"

	"github.com/mojoatomic/triton/internal/ruledocs"
	"github.com/mojoatomic/triton/internal/rules"
)

// GET /api/v1/rules: IDs, summaries and rendered docs; read-only, no auth.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
		Title   string `json:"title,omitempty"`
		DocHTML string `json:"doc_html,omitempty"`
	}
	var out []R
	for _, rr := range rules.List(s.RuleConfig) {
		item := R{ID: rr.ID, Summary: rr.Summary}
		if doc, ok := ruledocs.Get(rr.ID); ok {
			item.Title = doc.Title
			item.DocHTML = doc.HTML
		}
		out = append(out, item)
	}
	// stable order already guaranteed by rules.List()
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}
