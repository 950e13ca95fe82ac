package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "pipex"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected logging level 'info', got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "pipex", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected 'debug', got %q", cfg.Logging.Level)
		}
	})

	t.Run("explicit level wins over debug", func(t *testing.T) {
		cfg := ServiceConfig{Name: "pipex", Debug: true}
		cfg.Logging.Level = "warn"
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "warn" {
			t.Errorf("expected 'warn', got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		cfg := ServiceConfig{Name: "svc", Environment: env}
		cfg.Logging.ApplyDefaults()
		return cfg
	}
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", valid("development"), false, ""},
		{"valid production", valid("production"), false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "config.environment must be one of"},
		{"invalid logging", ServiceConfig{Name: "svc", Environment: "staging"}, true, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// color exercises the TextUnmarshaler decode hook.
type color string

func (c *color) UnmarshalText(text []byte) error {
	switch s := strings.ToLower(string(text)); s {
	case "red", "blue":
		*c = color(s)
		return nil
	default:
		return fmt.Errorf("unknown color %q", s)
	}
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Color         color         `mapstructure:"color"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Stages        []string      `mapstructure:"stages"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "pipex.yml", `
name: pipex
environment: staging
color: RED
timeout: 2s
stages: [echo, tr]
logging:
  level: debug
  format: json
`)

	var cfg testConfig
	err := LoadConfig("pipex", &cfg, WithConfigFile(configPath), WithEnvPrefix("PIPEKIT_TEST_UNUSED"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "pipex" {
		t.Errorf("expected name 'pipex', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Color != "red" {
		t.Errorf("expected color decoded via UnmarshalText, got %q", cfg.Color)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s, got %v", cfg.Timeout)
	}
	if len(cfg.Stages) != 2 || cfg.Stages[1] != "tr" {
		t.Errorf("unexpected stages %v", cfg.Stages)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging format json, got %q", cfg.Logging.Format)
	}
}

func TestLoadConfigDecodeError(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "pipex.yml", "color: green\n")

	var cfg testConfig
	err := LoadConfig("pipex", &cfg, WithConfigFile(configPath), WithEnvPrefix("PIPEKIT_TEST_UNUSED"))
	if err == nil {
		t.Fatal("expected decode error for unknown color")
	}
}

func TestLoadConfigEnvPrefixOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "pipex.yml", "name: from-file\nenvironment: staging\n")
	t.Setenv("PIPEKITTEST_NAME", "from-env")
	t.Setenv("NAME", "unprefixed-should-be-ignored")

	var cfg testConfig
	err := LoadConfig("pipex", &cfg, WithConfigFile(configPath), WithEnvPrefix("PIPEKITTEST"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("expected prefixed env override, got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected file value to survive, got %q", cfg.Environment)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "PIPEKITDOTENV_ENVIRONMENT=production\n")
	t.Cleanup(func() { os.Unsetenv("PIPEKITDOTENV_ENVIRONMENT") })

	var cfg testConfig
	err := LoadConfig("pipex", &cfg,
		WithConfigFile(filepath.Join(dir, "missing.yml")),
		WithEnvFile(envPath),
		WithEnvPrefix("PIPEKITDOTENV"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected environment from .env, got %q", cfg.Environment)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	// With no config file found, LoadConfig should still succeed (just empty config)
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvPrefix("PIPEKIT_TEST_UNUSED"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	t.Run("service file first", func(t *testing.T) {
		fs := &mockFS{files: map[string]bool{
			"./pipex.yml":            true,
			"./cmd/pipex/config.yml": true,
		}}
		resolver := &Resolver{FileSystem: fs}
		files := resolver.ResolveFiles("pipex", LoaderConfig{})
		if files.ConfigFile != "./pipex.yml" {
			t.Errorf("expected ./pipex.yml, got %q", files.ConfigFile)
		}
	})

	t.Run("cmd directory", func(t *testing.T) {
		fs := &mockFS{files: map[string]bool{
			"./cmd/pipex/config.yml": true,
		}}
		resolver := &Resolver{FileSystem: fs}
		files := resolver.ResolveFiles("pipex", LoaderConfig{})
		if files.ConfigFile != "./cmd/pipex/config.yml" {
			t.Errorf("expected config file at ./cmd/pipex/config.yml, got %q", files.ConfigFile)
		}
	})

	t.Run("explicit paths win", func(t *testing.T) {
		resolver := &Resolver{FileSystem: &mockFS{}}
		files := resolver.ResolveFiles("pipex", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
		if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
			t.Errorf("unexpected resolution %+v", files)
		}
	})
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) Getwd() (string, error)    { return "/mock", nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("LOGGING_NO_COLOR")
	want := map[string]bool{"logging_no_color": false, "logging.no_color": false, "logging.no.color": false}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("expected variant %q in %v", k, variants)
		}
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("pipex_")(&lc)
	WithDecodeHook(DefaultDecodeHook())(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
	if lc.EnvPrefix != "PIPEX" {
		t.Errorf("expected normalized prefix PIPEX, got %q", lc.EnvPrefix)
	}
	if lc.DecodeHook == nil {
		t.Error("expected decode hook to be set")
	}
}
