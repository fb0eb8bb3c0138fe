package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samaelod/enlil/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if cfg.PayloadSize != 32 {
		t.Errorf("payload size = %d, want 32", cfg.PayloadSize)
	}
	if cfg.CommandWaitMs != 500 || cfg.SettleMs != 500 {
		t.Errorf("command wait %d settle %d, want 500 500", cfg.CommandWaitMs, cfg.SettleMs)
	}
	if cfg.FailLimit != 100 {
		t.Errorf("fail limit = %d, want 100", cfg.FailLimit)
	}
	if cfg.LogLines != 1000 {
		t.Errorf("log lines = %d, want 1000", cfg.LogLines)
	}
	if cfg.LogsDir != "logs" || cfg.RecentDir != "recent" {
		t.Errorf("dirs = %q %q, want logs recent", cfg.LogsDir, cfg.RecentDir)
	}
}

func TestLoadNoConfigFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *config.Default() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestLoadMissingPath(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PayloadSize != 32 {
		t.Errorf("payload size = %d, want the default", cfg.PayloadSize)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enlil.json")
	body := `{"payload_size": 16, "command_wait_ms": 100, "logs_dir": "mylogs"}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PayloadSize != 16 || cfg.CommandWaitMs != 100 || cfg.LogsDir != "mylogs" {
		t.Errorf("config = %+v", cfg)
	}
	// Omitted fields take the defaults
	if cfg.FailLimit != 100 || cfg.RecentDir != "recent" {
		t.Errorf("unset fields not defaulted: %+v", cfg)
	}
}

func TestLoadClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enlil.json")
	body := `{"payload_size": 64, "fail_limit": -1, "log_lines": 0, "command_wait_ms": -5}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.PayloadSize != 32 {
		t.Errorf("payload size = %d, want clamped to 32", cfg.PayloadSize)
	}
	if cfg.FailLimit != 100 || cfg.LogLines != 1000 || cfg.CommandWaitMs != 500 {
		t.Errorf("out-of-range fields not reset: %+v", cfg)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enlil.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("malformed config accepted")
	}
}
