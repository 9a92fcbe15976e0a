package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
store:
  root: /var/lib/localfs
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default logging level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Store.ReaderBufferSize != defaultReaderBufferSize {
		t.Errorf("expected default reader buffer size %d, got %d", defaultReaderBufferSize, cfg.Store.ReaderBufferSize)
	}
	if !cfg.Store.HardlinkOnCopy {
		t.Errorf("expected hardlink_on_copy to default true")
	}
	if !cfg.Store.Synced {
		t.Errorf("expected synced to default true")
	}
	if cfg.Store.TempDir != defaultTempDir {
		t.Errorf("expected default temp dir %q, got %q", defaultTempDir, cfg.Store.TempDir)
	}
}

func TestLoad_MissingRootFailsValidation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("logging:\n  level: DEBUG\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatalf("expected validation error for missing store.root")
	}
}

func TestLoad_NoConfigFileUsesDefaultsPlusEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("LOCALFS_STORE_ROOT", filepath.Join(t.TempDir(), "data"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config from env only: %v", err)
	}
	if cfg.Store.Root == "" {
		t.Fatalf("expected store.root to be populated from LOCALFS_STORE_ROOT")
	}
}

func TestApplyDefaults_ProcessWideSyncedDefault(t *testing.T) {
	t.Setenv(envDefaultSynced, "false")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("store:\n  root: /data\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Store.Synced {
		t.Errorf("expected process-wide LOCALFS_DEFAULT_SYNCED=false to suppress the built-in synced default")
	}
}

func TestApplyDefaults_ExplicitSyncedOverridesProcessWideDefault(t *testing.T) {
	t.Setenv(envDefaultSynced, "false")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "store:\n  root: /data\n  synced: true\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Store.Synced {
		t.Errorf("expected an explicit store.synced: true to win over the process-wide default")
	}
}
