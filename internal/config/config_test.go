package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"SIDEBAR_CONFIG", "LOG_LEVEL", "LOG_FORMAT", "API_PORT", "DB_PATH",
	"ADMIN_PASSWORD", "NOTICE_BACKEND", "SUPABASE_URL", "SUPABASE_ANON_KEY",
	"SUPABASE_SERVICE_ROLE_KEY", "NOTICE_API_BASE", "ALLOWED_ORIGINS",
	"DIFF_COMPARE_DELAY", "DIFF_SELECT_DELAY",
}

// isolate runs the test in an empty directory with every config variable cleared.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	t.Setenv("DB_PATH", filepath.Join(dir, "data", "test.db"))
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name:     "defaults",
			setupEnv: func(t *testing.T) {},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.APIPort != "9000" || cfg.LogFormat != "text" || cfg.LogLevel != slog.LevelInfo {
					t.Errorf("unexpected defaults: %+v", cfg)
				}
				if cfg.NoticeBackend != BackendSQLite {
					t.Errorf("NoticeBackend = %q, want sqlite", cfg.NoticeBackend)
				}
				if cfg.DiffCompareDelay != 300*time.Millisecond || cfg.DiffSelectDelay != 200*time.Millisecond {
					t.Errorf("delays = %v/%v", cfg.DiffCompareDelay, cfg.DiffSelectDelay)
				}
			},
		},
		{
			name: "environment overrides",
			setupEnv: func(t *testing.T) {
				t.Setenv("API_PORT", "8123")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("LOG_FORMAT", "JSON")
				t.Setenv("ADMIN_PASSWORD", "s3cret")
				t.Setenv("DIFF_COMPARE_DELAY", "1s")
				t.Setenv("ALLOWED_ORIGINS", "chrome-extension://abc, http://localhost:3000")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.APIPort != "8123" || cfg.AdminPassword != "s3cret" {
					t.Errorf("env not applied: %+v", cfg)
				}
				if cfg.LogLevel != slog.LevelDebug {
					t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
				}
				if cfg.LogFormat != "json" {
					t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
				}
				if cfg.DiffCompareDelay != time.Second {
					t.Errorf("DiffCompareDelay = %v, want 1s", cfg.DiffCompareDelay)
				}
				want := []string{"chrome-extension://abc", "http://localhost:3000"}
				if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != want[0] || cfg.AllowedOrigins[1] != want[1] {
					t.Errorf("AllowedOrigins = %q, want %q", cfg.AllowedOrigins, want)
				}
			},
		},
		{
			name: "supabase backend",
			setupEnv: func(t *testing.T) {
				t.Setenv("NOTICE_BACKEND", "supabase")
				t.Setenv("SUPABASE_URL", "https://x.supabase.co/")
				t.Setenv("SUPABASE_ANON_KEY", "anon")
				t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.SupabaseURL != "https://x.supabase.co" {
					t.Errorf("SupabaseURL = %q", cfg.SupabaseURL)
				}
			},
		},
		{
			name: "supabase backend without url",
			setupEnv: func(t *testing.T) {
				t.Setenv("NOTICE_BACKEND", "supabase")
				t.Setenv("SUPABASE_ANON_KEY", "anon")
				t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
			},
			wantErr: true,
		},
		{
			name: "supabase backend without keys",
			setupEnv: func(t *testing.T) {
				t.Setenv("NOTICE_BACKEND", "supabase")
				t.Setenv("SUPABASE_URL", "https://x.supabase.co")
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			setupEnv: func(t *testing.T) {
				t.Setenv("NOTICE_BACKEND", "redis")
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
		{
			name: "invalid duration",
			setupEnv: func(t *testing.T) {
				t.Setenv("DIFF_SELECT_DELAY", "soon")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := isolate(t)

	yml := "api_port: \"7000\"\n" +
		"notice_api_base: https://notice.example.com/\n" +
		"diff_select_delay: 50ms\n" +
		"allowed_origins:\n  - chrome-extension://abc\n"
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	// Environment wins over the file.
	t.Setenv("API_PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "7001" {
		t.Errorf("APIPort = %q, want 7001", cfg.APIPort)
	}
	if cfg.NoticeBase() != "https://notice.example.com" {
		t.Errorf("NoticeBase() = %q", cfg.NoticeBase())
	}
	if cfg.DiffSelectDelay != 50*time.Millisecond {
		t.Errorf("DiffSelectDelay = %v, want 50ms", cfg.DiffSelectDelay)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "chrome-extension://abc" {
		t.Errorf("AllowedOrigins = %q", cfg.AllowedOrigins)
	}
}

func TestLoad_ExplicitConfigPath(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(path, []byte("log_format: json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIDEBAR_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	_ = os.Unsetenv("ADMIN_PASSWORD")
	t.Cleanup(func() { _ = os.Unsetenv("ADMIN_PASSWORD") })

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ADMIN_PASSWORD=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AdminPassword != "from-dotenv" {
		t.Errorf("AdminPassword = %q, want from-dotenv", cfg.AdminPassword)
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "nested", "dir", "db.db")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, dbPath)
	}
	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestConfig_NoticeBase(t *testing.T) {
	cfg := Default()
	if got := cfg.NoticeBase(); got != "http://localhost:9000" {
		t.Errorf("NoticeBase() = %q", got)
	}
}

func TestConfig_NormalizeSplitsOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		want    []string
	}{
		{name: "nil", origins: nil, want: nil},
		{name: "comma separated", origins: []string{"chrome-extension://abc, http://localhost:3000"}, want: []string{"chrome-extension://abc", "http://localhost:3000"}},
		{name: "mixed entries", origins: []string{" a ", "b,,c", ""}, want: []string{"a", "b", "c"}},
		{name: "only separators", origins: []string{" , ,"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AllowedOrigins = tt.origins
			cfg.normalize()
			if len(cfg.AllowedOrigins) != len(tt.want) {
				t.Fatalf("AllowedOrigins = %q, want %q", cfg.AllowedOrigins, tt.want)
			}
			for i := range tt.want {
				if cfg.AllowedOrigins[i] != tt.want[i] {
					t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], tt.want[i])
				}
			}
		})
	}
}
