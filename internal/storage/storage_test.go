package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/mojoatomic/triton/internal/ir"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "triton.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.CreateSchema(); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func testRun(id string, startedAt time.Time) *ir.Run {
	return &ir.Run{
		ID:        id,
		StartedAt: startedAt,
		Source:    "src",
		IRVersion: ir.Version,
		Files: []ir.FileAnalysis{
			{Path: "src/a.c", Violations: []ir.Violation{
				{ID: "P10-1-00000001", File: "src/a.c", Line: 3, RuleID: "P10-1",
					Severity: ir.SeverityError,
					Message:  "Dynamic memory function 'malloc': Use static allocation instead",
					Snippet:  "p = malloc(4);"},
				{ID: "P10-5-00000002", File: "src/a.c", Line: 1, RuleID: "P10-5",
					Severity: ir.SeverityWarning,
					Message:  "Function 'f' has 0 assertions (need 1)"},
			}},
		},
	}
}

func TestSaveLoadRun_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	run := testRun("run-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	for _, f := range run.Files {
		run.Violations = append(run.Violations, f.Violations...)
	}
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.LoadRun("run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := deep.Equal(got.Violations, run.Violations); diff != nil {
		t.Fatalf("round trip mismatch: %v", diff)
	}
	if got.Source != "src" || got.IRVersion != ir.Version {
		t.Errorf("got source=%q ir=%q", got.Source, got.IRVersion)
	}
}

func TestSaveRun_UpsertRewritesViolations(t *testing.T) {
	db := openTestDB(t)

	run := testRun("run-1", time.Now().UTC())
	run.Violations = run.Files[0].Violations
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Second save of the same id with fewer violations replaces, not appends.
	run.Violations = run.Violations[:1]
	run.Files[0].Violations = run.Files[0].Violations[:1]
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("resave: %v", err)
	}

	vs, err := db.ListViolations("run-1", "")
	if err != nil {
		t.Fatalf("list violations: %v", err)
	}
	if len(vs) != 1 {
		t.Fatalf("got %d violations after upsert, want 1", len(vs))
	}
}

func TestListRuns_And_Latest(t *testing.T) {
	db := openTestDB(t)

	early := testRun("run-early", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	late := testRun("run-late", time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	for _, r := range []*ir.Run{early, late} {
		r.Violations = r.Files[0].Violations
		if err := db.SaveRun(r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	rows, err := db.ListRuns(10, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "run-late" {
		t.Fatalf("rows = %+v, want run-late first", rows)
	}
	if rows[0].Violations != 2 {
		t.Errorf("violation count = %d, want 2", rows[0].Violations)
	}

	latest, err := db.LoadLatestRun()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != "run-late" {
		t.Errorf("latest = %s, want run-late", latest.ID)
	}

	ok, err := db.HasRun("run-early")
	if err != nil || !ok {
		t.Errorf("HasRun(run-early) = %v, %v", ok, err)
	}
	ok, _ = db.HasRun("run-none")
	if ok {
		t.Error("HasRun(run-none) = true")
	}
}

func TestListViolations_SeverityFloor(t *testing.T) {
	db := openTestDB(t)
	run := testRun("run-1", time.Now().UTC())
	run.Violations = run.Files[0].Violations
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("save: %v", err)
	}

	vs, err := db.ListViolations("run-1", "ERROR")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vs) != 1 || vs[0].Severity != ir.SeverityError {
		t.Fatalf("got %v, want only the ERROR", vs)
	}
}

func TestWaivers_Lifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.CreateWaiver("P10-5", "src/a.c", "", "legacy driver, tracked in backlog", "alice",
		time.Now().UTC().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	expID, err := db.CreateWaiver("P10-1", "", "malloc", "expired", "alice",
		time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("create expired: %v", err)
	}

	active, err := db.ListWaivers(true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != id {
		t.Fatalf("active = %+v, want just waiver %d", active, id)
	}
	if active[0].RuleID != "P10-5" || active[0].File != "src/a.c" {
		t.Errorf("waiver fields: %+v", active[0])
	}

	all, err := db.ListWaivers(false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d waivers, want 2", len(all))
	}
	_ = expID

	if err := db.RevokeWaiver(id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	active, _ = db.ListWaivers(true)
	if len(active) != 0 {
		t.Fatalf("active after revoke = %+v, want none", active)
	}
}

func TestUsersAndSessions(t *testing.T) {
	db := openTestDB(t)

	uid, err := db.CreateUser("alice", "$2a$10$hash", "admin")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, hash, err := db.GetUserByUsername("alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.ID != uid || u.Role != "admin" || hash != "$2a$10$hash" {
		t.Errorf("user = %+v hash=%q", u, hash)
	}

	if err := db.CreateSession(uid, "tok-1", time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}
	su, err := db.GetSession("tok-1")
	if err != nil || su.Username != "alice" {
		t.Fatalf("get session = %+v, %v", su, err)
	}

	if err := db.CreateSession(uid, "tok-old", time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("create expired session: %v", err)
	}
	if _, err := db.GetSession("tok-old"); err == nil {
		t.Error("expired session accepted")
	}

	if err := db.DeleteSession("tok-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := db.GetSession("tok-1"); err == nil {
		t.Error("deleted session accepted")
	}

	if _, err := db.CreateUser("alice", "x", "viewer"); err == nil {
		t.Error("duplicate username accepted")
	}
}
