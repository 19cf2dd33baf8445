package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "ADMIN_EMAIL", "ADMIN_PASSWORD", "SESSION_SECRET", "DB_PATH", "PORT", "LOG_LEVEL", "RECALC_WORKERS"} {
		t.Setenv(k, "")
	}
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadFrom_LoadsValuesAndIgnoresNoise(t *testing.T) {
	clearEnv(t)
	path := writeDotEnv(t, `
# comment

DB_PATH=/data/tenders.db
export PORT=9090
LOG_LEVEL="debug"
SESSION_SECRET='hello world'
RECALC_WORKERS=8
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.DBPath != "/data/tenders.db" {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, "/data/tenders.db")
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "9090")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel=%q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.SessionSecret != "hello world" {
		t.Fatalf("SessionSecret=%q, want %q", cfg.SessionSecret, "hello world")
	}
	if cfg.RecalcWorkers != 8 {
		t.Fatalf("RecalcWorkers=%d, want 8", cfg.RecalcWorkers)
	}
}

func TestLoadFrom_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	path := writeDotEnv(t, "PORT=9090\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("Port=%q, want %q", cfg.Port, "7070")
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RecalcWorkers != defaultRecalcWorkers {
		t.Fatalf("RecalcWorkers=%d, want %d", cfg.RecalcWorkers, defaultRecalcWorkers)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev environment by default")
	}
}

func TestLoadFrom_NonPositiveWorkersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECALC_WORKERS", "0")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.RecalcWorkers != defaultRecalcWorkers {
		t.Fatalf("RecalcWorkers=%d, want %d", cfg.RecalcWorkers, defaultRecalcWorkers)
	}
	if cfg.IsDev() {
		t.Fatalf("production must not be treated as dev")
	}
}
