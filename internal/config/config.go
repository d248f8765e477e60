package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Notice backends.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// DefaultConfigFile is read when SIDEBAR_CONFIG is unset.
const DefaultConfigFile = "sidebar.yml"

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level `koanf:"log_level"`
	LogFormat string     `koanf:"log_format"`
	APIPort   string     `koanf:"api_port"`
	DBPath    string     `koanf:"db_path"`

	// AdminPassword signs admin tokens. Without it login answers
	// missing_env:ADMIN_PASSWORD.
	AdminPassword string `koanf:"admin_password"`

	NoticeBackend      string `koanf:"notice_backend"`
	SupabaseURL        string `koanf:"supabase_url"`
	SupabaseAnonKey    string `koanf:"supabase_anon_key"`
	SupabaseServiceKey string `koanf:"supabase_service_role_key"`

	// NoticeAPIBase is where the sidebar fetches the latest announcement.
	// Empty means this server.
	NoticeAPIBase string `koanf:"notice_api_base"`

	AllowedOrigins []string `koanf:"allowed_origins"`

	DiffCompareDelay time.Duration `koanf:"diff_compare_delay"`
	DiffSelectDelay  time.Duration `koanf:"diff_select_delay"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		LogLevel:         slog.LevelInfo,
		LogFormat:        "text",
		APIPort:          "9000",
		DBPath:           "./data/sidebar-toolkit.db",
		NoticeBackend:    BackendSQLite,
		DiffCompareDelay: 300 * time.Millisecond,
		DiffSelectDelay:  200 * time.Millisecond,
	}
}

// envKeys maps the environment variables read by Load to config keys.
var envKeys = map[string]string{
	"LOG_LEVEL":                 "log_level",
	"LOG_FORMAT":                "log_format",
	"API_PORT":                  "api_port",
	"DB_PATH":                   "db_path",
	"ADMIN_PASSWORD":            "admin_password",
	"NOTICE_BACKEND":            "notice_backend",
	"SUPABASE_URL":              "supabase_url",
	"SUPABASE_ANON_KEY":         "supabase_anon_key",
	"SUPABASE_SERVICE_ROLE_KEY": "supabase_service_role_key",
	"NOTICE_API_BASE":           "notice_api_base",
	"ALLOWED_ORIGINS":           "allowed_origins",
	"DIFF_COMPARE_DELAY":        "diff_compare_delay",
	"DIFF_SELECT_DELAY":         "diff_select_delay",
}

// Load reads configuration and returns a validated Config.
// Defaults are overlaid by the YAML file named by SIDEBAR_CONFIG (sidebar.yml
// when unset, skipped when missing) and then by environment variables.
// If a .env file exists in the current directory or a parent, it is loaded
// first. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	k := koanf.New(".")

	path := os.Getenv("SIDEBAR_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		// Unknown and empty variables are skipped.
		if os.Getenv(s) == "" {
			return ""
		}
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env from the working directory or the nearest parent
// that has one.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (c *Config) normalize() {
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.NoticeBackend = strings.ToLower(strings.TrimSpace(c.NoticeBackend))
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")
	c.NoticeAPIBase = strings.TrimRight(strings.TrimSpace(c.NoticeAPIBase), "/")

	// ALLOWED_ORIGINS arrives from the environment as one comma-separated value.
	var origins []string
	for _, entry := range c.AllowedOrigins {
		for _, o := range strings.Split(entry, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	c.AllowedOrigins = origins
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.APIPort == "" {
		return fmt.Errorf("API_PORT is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", c.LogFormat)
	}

	switch c.NoticeBackend {
	case BackendSQLite:
	case BackendSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required for the supabase notice backend")
		}
		if c.SupabaseAnonKey == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY and SUPABASE_SERVICE_ROLE_KEY are required for the supabase notice backend")
		}
	default:
		return fmt.Errorf("invalid NOTICE_BACKEND %q: must be sqlite or supabase", c.NoticeBackend)
	}

	if c.DiffCompareDelay < 0 || c.DiffSelectDelay < 0 {
		return fmt.Errorf("diff delays must be non-negative")
	}
	return nil
}

// NoticeBase returns the base URL the sidebar fetches announcements from.
func (c *Config) NoticeBase() string {
	if c.NoticeAPIBase != "" {
		return c.NoticeAPIBase
	}
	return "http://localhost:" + c.APIPort
}
