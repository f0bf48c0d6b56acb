package storage

import (
	"database/sql"
	"time"

	"github.com/mojoatomic/triton/internal/ir"
)

// ListRuns returns a lightweight list of runs with violation counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.source, r.ir_version,
		       (SELECT COUNT(1) FROM violations v WHERE v.run_id = r.id) AS violations
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.Source, &rr.IRVersion, &rr.Violations); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListViolations returns violations for a run at or above a minimum severity.
func (db *DB) ListViolations(runID, minSeverity string) ([]ir.Violation, error) {
	const q = `
		SELECT id, file, line, rule_id, severity, message, snippet
		  FROM violations
		 WHERE run_id = ?
		   AND (CASE severity WHEN 'ERROR' THEN 3 WHEN 'WARNING' THEN 2 ELSE 1 END)
		       >= (CASE ? WHEN 'ERROR' THEN 3 WHEN 'WARNING' THEN 2 ELSE 1 END)
		 ORDER BY
		       (CASE severity WHEN 'ERROR' THEN 3 WHEN 'WARNING' THEN 2 ELSE 1 END) DESC,
		       rule_id, file, line, id`
	rows, err := db.conn.Query(q, runID, minSeverity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ir.Violation
	for rows.Next() {
		var v ir.Violation
		var sev string
		if err := rows.Scan(&v.ID, &v.File, &v.Line, &v.RuleID, &sev, &v.Message, &v.Snippet); err != nil {
			return nil, err
		}
		v.Severity = ir.Severity(sev)
		out = append(out, v)
	}
	return out, rows.Err()
}

// HasRun reports whether a run id exists.
func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
