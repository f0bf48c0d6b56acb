package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mojoatomic/triton/internal/api"
	"github.com/mojoatomic/triton/internal/ir"
	"github.com/mojoatomic/triton/internal/metrics"
	"github.com/mojoatomic/triton/internal/parser"
	"github.com/mojoatomic/triton/internal/reporting"
	"github.com/mojoatomic/triton/internal/rules"
	"github.com/mojoatomic/triton/internal/rulesdsl"
	"github.com/mojoatomic/triton/internal/security"
	"github.com/mojoatomic/triton/internal/shared"
	"github.com/mojoatomic/triton/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "check":
		checkCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user-add":
		userAddCmd(os.Args[2:])
	case "version":
		fmt.Println("triton compliance checker IR:", ir.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `triton – Power of 10 compliance checker for embedded C

Usage:
  triton check    --path <src-dir> [--out <reports-dir>] [--db ./triton.db] [--strict] [--verbose] [--config ./configs/triton.yaml]
  triton report   --run <run-id>   --out <reports-dir>   [--db ./triton.db] [--config ./configs/triton.yaml]
  triton diff     --base <run-id> --head <run-id> --out <reports-dir> [--db ./triton.db]
  triton serve    [--addr :8787] [--db ./triton.db] [--config ./configs/triton.yaml]
  triton user-add --username <name> [--role viewer|admin] [--db ./triton.db]   (password via TRITON_PASSWORD)
  triton version

Rules checked:
  P10-1:      No dynamic memory allocation
  P10-2:      All loops must have fixed bounds
  P10-3:      No recursion
  P10-4:      Functions within the line budget
  P10-PARAMS: Bounded parameter count
  P10-5:      Assertions in functions
  P10-6:      Global variable budget
  P10-7:      Check return values
  P10-8:      Limited pointer depth
  P10-GOTO:   No unstructured jumps
`)
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	inPath := fs.String("path", "", "Path to C source file or directory")
	outDir := fs.String("out", "", "Output directory for reports")
	dbPath := fs.String("db", "", "SQLite database path")
	strict := fs.Bool("strict", false, "Treat warnings as errors")
	verbose := fs.Bool("verbose", false, "Verbose output (snippets, clean files, INFO)")
	noColor := fs.Bool("no-color", false, "Disable ANSI colors")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *inPath == "" && len(cfg.Analysis.Sources) > 0 {
		*inPath = cfg.Analysis.Sources[0]
	}
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if cfg.Analysis.Strict {
		*strict = true
	}

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "check: --path (or analysis.sources in config) is required")
		os.Exit(2)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "check: cannot create out dir:", err)
		os.Exit(1)
	}

	rcfg := ruleConfigFrom(cfg)
	for _, pack := range cfg.Analysis.Rules.Packs {
		n, err := rulesdsl.LoadAndRegister(pack)
		if err != nil {
			slog.Error("rules pack error", "pack", pack, "err", err)
			os.Exit(1)
		}
		slog.Info("rules pack loaded", "pack", pack, "rules", n)
	}

	// Parse
	run, diags := parser.Parse(*inPath)
	if len(diags.Warnings) > 0 {
		slog.Warn("parse warnings", "warnings", diags.Warnings)
	}
	run.ID = fmt.Sprintf("run-%d", time.Now().Unix())
	run.StartedAt = time.Now().UTC()
	run.Context.MinSeverity = cfg.Reporting.MinSeverity
	run.Context.DisabledRules = cfg.Analysis.Rules.Disabled
	run.Context.Strict = *strict

	// Metrics annotate
	metrics.Annotate(&run)

	// Rules
	rules.Evaluate(&rcfg, &run)

	// Persist & report
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	// Waivers suppress matching violations before persistence and gating.
	waived := 0
	if ws, werr := db.ListWaivers(true); werr == nil && len(ws) > 0 {
		for i := range run.Files {
			kept, n := rules.ApplyWaivers(run.Files[i].Violations, ws)
			run.Files[i].Violations = kept
			waived += n
		}
	}
	for i := range run.Files {
		run.Violations = append(run.Violations, run.Files[i].Violations...)
	}
	if waived > 0 {
		slog.Info("waivers applied", "suppressed", waived)
	}

	if err := db.SaveRun(&run); err != nil {
		slog.Error("db save run error", "err", err)
		os.Exit(1)
	}

	jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, &run)
	htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, &run)
	slog.Info("check complete",
		"run", run.ID,
		"json", jsonPath,
		"html", htmlPath,
		"db", filepath.Clean(*dbPath),
	)

	totals := reporting.WriteText(os.Stdout, &run, *verbose, !*noColor)
	reporting.WriteSummary(os.Stdout, &run, totals)

	// Gate policy: errors always fail; warnings fail only under --strict.
	switch {
	case totals.Errors > 0:
		fmt.Println("\n✗ FAILED: Errors found")
		os.Exit(1)
	case *strict && totals.Warnings > 0:
		fmt.Println("\n✗ FAILED: Warnings found (strict mode)")
		os.Exit(1)
	default:
		fmt.Println("\n✓ PASSED")
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	runID := fs.String("run", "", "Run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *runID == "" {
		fmt.Fprintln(os.Stderr, "report: --run is required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	run, err := db.LoadRun(*runID)
	if err != nil {
		slog.Error("load run error", "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(1)
	}
	jsonPath, _ := reporting.WriteJSON(run.ID, *outDir, &run)
	htmlPath, _ := reporting.WriteHTML(run.ID, *outDir, &run)
	fmt.Printf("Report OK\n  Run: %s\n  JSON: %s\n  HTML: %s\n", run.ID, jsonPath, htmlPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}
	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(1)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("cannot create out dir", "err", err)
		os.Exit(1)
	}
	path, _ := reporting.WriteDiffJSON(*base, *head, *outDir, &br, &hr)
	fmt.Printf("Diff OK\n  %s\n", path)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *addr == "" {
		*addr = cfg.API.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	rcfg := ruleConfigFrom(cfg)
	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Logger:          logger,
		RuleConfig:      &rcfg,
		AllowedOrigins:  cfg.API.AllowedOrigins,
		SessionDuration: time.Duration(cfg.API.SessionHours) * time.Hour,
	}
	slog.Info("api listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("api server error", "err", err)
		os.Exit(1)
	}
}

func userAddCmd(args []string) {
	fs := flag.NewFlagSet("user-add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	dbPath := fs.String("db", "", "SQLite database path")
	username := fs.String("username", "", "Username")
	role := fs.String("role", "viewer", "Role: viewer|admin")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}

	password := os.Getenv("TRITON_PASSWORD")
	if *username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "user-add: --username and TRITON_PASSWORD are required")
		os.Exit(2)
	}
	if *role != "viewer" && *role != "admin" {
		fmt.Fprintln(os.Stderr, "user-add: role must be viewer or admin")
		os.Exit(2)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "user-add:", err)
		os.Exit(1)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	id, err := db.CreateUser(*username, hash, *role)
	if err != nil {
		slog.Error("create user error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("User created\n  ID: %d\n  Username: %s\n  Role: %s\n", id, *username, *role)
}

// ruleConfigFrom maps the YAML config onto the engine defaults; zero values
// keep the default.
func ruleConfigFrom(cfg shared.Config) rules.Config {
	rcfg := rules.DefaultConfig()
	rc := cfg.Analysis.Rules
	if rc.MinAsserts > 0 {
		rcfg.MinAsserts = rc.MinAsserts
	}
	if rc.MaxFunctionLines > 0 {
		rcfg.MaxFunctionLines = rc.MaxFunctionLines
	}
	if rc.MaxParams > 0 {
		rcfg.MaxParams = rc.MaxParams
	}
	if rc.MaxPointerDepth > 0 {
		rcfg.MaxPointerDepth = rc.MaxPointerDepth
	}
	if rc.MaxGlobals > 0 {
		rcfg.MaxGlobals = rc.MaxGlobals
	}
	if len(rc.MainLoops) > 0 {
		rcfg.MainLoops = rc.MainLoops
	}
	for _, id := range rc.Disabled {
		rcfg.Disabled[strings.ToUpper(strings.TrimSpace(id))] = true
	}
	return rcfg
}
