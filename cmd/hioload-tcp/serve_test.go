package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/momentics/hioload-tcp/internal/config"
)

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "port = 7000\nbacklog = 8\npoll_timeout = \"1ms\"\nframing = \"delimiter\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HIOLOAD_TCP_BACKLOG", "16")

	cfg := config.DefaultConfig()
	cfg.Port = 7100
	changed := map[string]bool{"port": true}
	if err := loadConfig(&cfg, path, changed); err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7100 {
		t.Errorf("port = %d, flag should win", cfg.Port)
	}
	if cfg.Backlog != 16 {
		t.Errorf("backlog = %d, env should win over file", cfg.Backlog)
	}
	if cfg.PollTimeout != time.Millisecond || cfg.Framing != "delimiter" {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("HIOLOAD_TCP_PORT", "70000")
	cfg := config.DefaultConfig()
	if err := loadConfig(&cfg, "", map[string]bool{}); err == nil {
		t.Fatal("out of range port accepted")
	}
}
