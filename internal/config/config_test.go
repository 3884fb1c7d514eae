package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lapas/keepengine/internal/rules"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
rules_file: "/etc/lapas/home.keep"

clean:
  mode: "user"
  root: "/srv/lapas/homes/alice"
  dry_run: true
  workers: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.RulesFile != "/etc/lapas/home.keep" {
		t.Errorf("expected rules file /etc/lapas/home.keep, got %s", cfg.RulesFile)
	}
	if cfg.Clean.Mode != rules.ModeUser {
		t.Errorf("expected mode user, got %s", cfg.Clean.Mode)
	}
	if cfg.Clean.Root != "/srv/lapas/homes/alice" {
		t.Errorf("expected root /srv/lapas/homes/alice, got %s", cfg.Clean.Root)
	}
	if !cfg.Clean.DryRun {
		t.Error("expected dry_run to be true")
	}
	if cfg.Clean.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Clean.Workers)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "rules_file: /etc/lapas/home.keep\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Clean.Workers != 1 {
		t.Errorf("expected default of 1 worker, got %d", cfg.Clean.Workers)
	}
	if cfg.Clean.Mode != "" {
		t.Errorf("expected no default mode, got %s", cfg.Clean.Mode)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("KEEPENGINE_TEST_DIR", "/srv/lapas")
	path := writeConfig(t, `
rules_file: "$KEEPENGINE_TEST_DIR/home.keep"
clean:
  root: "${KEEPENGINE_TEST_DIR}/homes/base"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.RulesFile != "/srv/lapas/home.keep" {
		t.Errorf("rules file not expanded: %s", cfg.RulesFile)
	}
	if cfg.Clean.Root != "/srv/lapas/homes/base" {
		t.Errorf("root not expanded: %s", cfg.Clean.Root)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "clean: [",
			wantErr: "failed to parse config file",
		},
		{
			name:    "invalid mode",
			content: "clean:\n  mode: admin\n",
			wantErr: "clean.mode",
		},
		{
			name:    "relative root",
			content: "clean:\n  root: homes/base\n",
			wantErr: "absolute path",
		},
		{
			name:    "negative workers",
			content: "clean:\n  workers: -2\n",
			wantErr: "clean.workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOptional failed for missing file: %v", err)
	}
	if cfg.Clean.Workers != 1 {
		t.Errorf("expected defaults to be applied, got %d workers", cfg.Clean.Workers)
	}

	if _, err := LoadOptional(writeConfig(t, "clean: [")); err == nil {
		t.Error("expected parse errors to be returned")
	}
}

func TestValidateClean(t *testing.T) {
	valid := Config{
		RulesFile: "/etc/lapas/home.keep",
		Clean: CleanConfig{
			Mode:    rules.ModeBase,
			Root:    "/srv/lapas/homes/base",
			Workers: 1,
		},
	}

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:    "missing mode",
			modify:  func(c *Config) { c.Clean.Mode = "" },
			wantErr: true,
		},
		{
			name:    "missing rules file",
			modify:  func(c *Config) { c.RulesFile = "" },
			wantErr: true,
		},
		{
			name:    "missing root",
			modify:  func(c *Config) { c.Clean.Root = "" },
			wantErr: true,
		},
		{
			name:    "relative root",
			modify:  func(c *Config) { c.Clean.Root = "homes" },
			wantErr: true,
		},
		{
			name:    "zero workers",
			modify:  func(c *Config) { c.Clean.Workers = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			err := cfg.ValidateClean()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClean() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := DefaultPath(); got != "/home/tester/.config/keepengine/config.yaml" {
		t.Errorf("DefaultPath() = %s", got)
	}
}
