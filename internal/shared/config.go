package shared

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./triton.db"
	} `yaml:"database"`

	Analysis struct {
		Sources []string `yaml:"sources"` // ["./src"]
		Strict  bool     `yaml:"strict"`  // warnings fail the gate

		Rules struct {
			MinAsserts       int      `yaml:"min_asserts"`        // 1
			MaxFunctionLines int      `yaml:"max_function_lines"` // 60
			MaxParams        int      `yaml:"max_params"`         // 7
			MaxPointerDepth  int      `yaml:"max_pointer_depth"`  // 2
			MaxGlobals       int      `yaml:"max_globals"`        // 10
			MainLoops        []string `yaml:"main_loops"`
			Disabled         []string `yaml:"disabled"`
			Packs            []string `yaml:"packs"` // extra YAML rule packs
		} `yaml:"rules"`
	} `yaml:"analysis"`

	Reporting struct {
		OutDir      string `yaml:"out_dir"`      // "./reports"
		MinSeverity string `yaml:"min_severity"` // "INFO"
	} `yaml:"reporting"`

	API struct {
		Addr           string   `yaml:"addr"` // ":8787"
		AllowedOrigins []string `yaml:"allowed_origins"`
		SessionHours   int      `yaml:"session_hours"` // 12
	} `yaml:"api"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./triton.db"
	c.Reporting.OutDir = "./reports"
	c.Reporting.MinSeverity = "INFO"
	c.API.Addr = ":8787"
	c.API.SessionHours = 12
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("TRITON_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("TRITON_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("TRITON_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("TRITON_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TRITON_API_ADDR"); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("TRITON_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Analysis.Strict = b
		}
	}
	return c, nil
}
