package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COCO2YOLO_LEDGER", "")
	t.Setenv("COCO2YOLO_LOG_LEVEL", "")
	t.Setenv("COCO2YOLO_NO_ARCHIVE", "")

	cfg := Load()
	if cfg.LedgerPath != "" || cfg.LogLevel != "info" || cfg.NoArchive {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COCO2YOLO_LEDGER", "/tmp/runs.db")
	t.Setenv("COCO2YOLO_LOG_LEVEL", "debug")
	t.Setenv("COCO2YOLO_NO_ARCHIVE", "true")

	cfg := Load()
	if cfg.LedgerPath != "/tmp/runs.db" || cfg.LogLevel != "debug" || !cfg.NoArchive {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadInvalidBool(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COCO2YOLO_NO_ARCHIVE", "maybe")

	if Load().NoArchive {
		t.Fatal("invalid bool should fall back to default")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// godotenv does not override variables that are already set
	t.Setenv("COCO2YOLO_LOG_LEVEL", "warn")
	t.Setenv("COCO2YOLO_LEDGER", "")
	os.Unsetenv("COCO2YOLO_LEDGER")

	env := "COCO2YOLO_LEDGER=runs.db\nCOCO2YOLO_LOG_LEVEL=debug\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.LedgerPath != "runs.db" {
		t.Fatalf("expected ledger from .env, got %q", cfg.LedgerPath)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected environment to win over .env, got %q", cfg.LogLevel)
	}
}
