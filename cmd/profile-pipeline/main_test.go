package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("profile-pipeline", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Model == "" {
		t.Fatalf("expected default Model")
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("Timeout=%v, want 45s", cfg.Timeout)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("profile-pipeline", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "export.zip",
		"-out", "out",
		"-model", "gpt-5",
		"-user", "u-123",
		"-timeout", "20s",
		"-verbose",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Model != "gpt-5" || cfg.UserID != "u-123" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.Timeout != 20*time.Second {
		t.Fatalf("Timeout=%v", cfg.Timeout)
	}
	if !cfg.Verbose {
		t.Fatalf("Verbose=false, want true")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	cfg := defaultConfig()
	cfg.InputPath = "export.zip"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestFileStore_Save(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := newFileStore(dir)
	fields := map[string]string{"profile_text": "## Identity\n**Name:** Sam"}

	if err := store.Save(context.Background(), "u-123", fields); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "u-123", "fields.json"))
	if err != nil {
		t.Fatalf("read fields.json: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal fields.json: %v", err)
	}
	if got["profile_text"] != fields["profile_text"] {
		t.Fatalf("profile_text mismatch: %q", got["profile_text"])
	}
}

func TestFileStore_SaveCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := newFileStore(t.TempDir()).Save(ctx, "u", nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestPlaceholderFields(t *testing.T) {
	t.Parallel()

	fields := placeholderFields()
	if fields["profile_text"] == "" {
		t.Fatalf("placeholder must carry a readable profile_text")
	}
}
