package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingReturnsDefault(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := Default()
	if len(cfg.UseNamespaces) != len(want.UseNamespaces) {
		t.Fatalf("expected default namespaces %v, got %v", want.UseNamespaces, cfg.UseNamespaces)
	}
	if cfg.ChannelCapacity != defaultChannelCapacity {
		t.Fatalf("expected default channel capacity %d, got %d", defaultChannelCapacity, cfg.ChannelCapacity)
	}
}

func TestLoadFileScalarUse(t *testing.T) {
	path := writeConfig(t, "use: io\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.UseNamespaces) != 1 || cfg.UseNamespaces[0] != "io" {
		t.Fatalf("expected [\"io\"], got %v", cfg.UseNamespaces)
	}
}

func TestLoadFileSequenceUse(t *testing.T) {
	path := writeConfig(t, "use: [io, var]\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.UseNamespaces) != 2 || cfg.UseNamespaces[0] != "io" || cfg.UseNamespaces[1] != "var" {
		t.Fatalf("expected [\"io\", \"var\"], got %v", cfg.UseNamespaces)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "history_file: /tmp/crush_history\nchannel_capacity: 128\nlog_level: debug\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HistoryFile != "/tmp/crush_history" {
		t.Fatalf("unexpected history file: %q", cfg.HistoryFile)
	}
	if cfg.ChannelCapacity != 128 {
		t.Fatalf("unexpected channel capacity: %d", cfg.ChannelCapacity)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
}

func TestLoadFileRejectsBadUseKind(t *testing.T) {
	path := writeConfig(t, "use: {a: b}\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected an error for a mapping-valued use field")
	}
}

func TestResolveConfigDirPrefersEnvVar(t *testing.T) {
	t.Setenv(envConfigDir, "/custom/crush/dir")
	dir, err := resolveConfigDir()
	if err != nil {
		t.Fatalf("resolveConfigDir: %v", err)
	}
	if dir != "/custom/crush/dir" {
		t.Fatalf("expected /custom/crush/dir, got %q", dir)
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}
