package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Database.DSN != "./triton.db" {
		t.Errorf("dsn = %q", c.Database.DSN)
	}
	if c.Reporting.OutDir != "./reports" || c.Reporting.MinSeverity != "INFO" {
		t.Errorf("reporting = %+v", c.Reporting)
	}
	if c.API.Addr != ":8787" || c.API.SessionHours != 12 {
		t.Errorf("api = %+v", c.API)
	}
	if c.Logging.Format != "json" || c.Logging.Level != "info" {
		t.Errorf("logging = %+v", c.Logging)
	}
}

func TestLoadConfig_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "triton.yaml")
	body := `
database:
  dsn: /var/lib/triton/ci.db
analysis:
  sources: ["./firmware"]
  strict: true
  rules:
    max_function_lines: 80
    disabled: [P10-6]
reporting:
  out_dir: ./out
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Database.DSN != "/var/lib/triton/ci.db" {
		t.Errorf("dsn = %q", c.Database.DSN)
	}
	if !c.Analysis.Strict || len(c.Analysis.Sources) != 1 {
		t.Errorf("analysis = %+v", c.Analysis)
	}
	if c.Analysis.Rules.MaxFunctionLines != 80 {
		t.Errorf("max_function_lines = %d", c.Analysis.Rules.MaxFunctionLines)
	}
	if len(c.Analysis.Rules.Disabled) != 1 || c.Analysis.Rules.Disabled[0] != "P10-6" {
		t.Errorf("disabled = %v", c.Analysis.Rules.Disabled)
	}
	// untouched keys keep their defaults
	if c.API.Addr != ":8787" {
		t.Errorf("api addr = %q", c.API.Addr)
	}
	if c.Reporting.MinSeverity != "INFO" {
		t.Errorf("min severity = %q", c.Reporting.MinSeverity)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRITON_DB_DSN", "/tmp/env.db")
	t.Setenv("TRITON_LOG_LEVEL", "debug")
	t.Setenv("TRITON_STRICT", "true")

	c, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Database.DSN != "/tmp/env.db" {
		t.Errorf("dsn = %q", c.Database.DSN)
	}
	if c.Logging.Level != "debug" {
		t.Errorf("level = %q", c.Logging.Level)
	}
	if !c.Analysis.Strict {
		t.Error("TRITON_STRICT not applied")
	}
}
