package config

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestHolderGetAndReload(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 7001\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	if got := h.Get().Server.Port; got != 7001 {
		t.Fatalf("port = %d, want 7001", got)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: 7002\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := h.Get().Server.Port; got != 7002 {
		t.Errorf("port after reload = %d, want 7002", got)
	}
}

func TestHolderKeepsOldConfigOnBadReload(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 7001\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("Reload of invalid config should fail")
	}
	if got := h.Get().Server.Port; got != 7001 {
		t.Errorf("port = %d, want previous 7001 after failed reload", got)
	}
}

func TestHolderOnChange(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	h, err := NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder: %v", err)
	}
	defer h.Stop()

	var gotLevel string
	h.OnChange(func(cfg *Config) { gotLevel = cfg.Logging.Level })

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if gotLevel != "debug" {
		t.Errorf("callback saw level %q, want debug", gotLevel)
	}
}

func TestHolderRejectsBadInitialConfig(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: postgres\n")
	if _, err := NewHolder(path, zerolog.Nop()); err == nil {
		t.Error("NewHolder should reject invalid config")
	}
}
