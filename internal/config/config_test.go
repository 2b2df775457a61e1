package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/fixctl/internal/protocol"
	"github.com/danmuck/fixctl/internal/testutil/testlog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixctl.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
dictionary = "fix.xml"
delimiter = "soh"
format = "YAML"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Dictionary != "fix.xml" || cfg.Delimiter != "soh" || cfg.Format != "yaml" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Listen != DefaultListen || cfg.MaxMessageBytes != DefaultMaxMessageBytes || cfg.Name != "fixctl" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.CorsOrigins) != 1 {
		t.Fatalf("unexpected cors defaults: %+v", cfg.CorsOrigins)
	}
}

func TestLoadTemplateValidates(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "fixctl.toml")
	if err := WriteTemplate(path, "config", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Dictionary != "fix.xml" || cfg.MaxMessageBytes != 65536 {
		t.Fatalf("unexpected template config: %+v", cfg)
	}
	if err := WriteTemplate(path, "config", false); err == nil {
		t.Fatalf("expected existing file to be protected")
	}
	if err := WriteTemplate(path, "dictionary", true); err != nil {
		t.Fatalf("overwrite template: %v", err)
	}
	if _, err := Template("session"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"delimiter": `delimiter = "=="`,
		"format":    `format = "xml"`,
		"size":      `max_message_bytes = 0`,
		"strict":    `strict_dictionary = true`,
		"unknown":   `listen_addr = ":1"`,
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]byte{
		"^":     protocol.Caret,
		"|":     protocol.Pipe,
		"pipe":  protocol.Pipe,
		"SOH":   protocol.SOH,
		"\\x01": protocol.SOH,
		"\x01":  protocol.SOH,
		"caret": protocol.Caret,
		";":     ';',
	}
	for raw, want := range cases {
		got, err := ParseDelimiter(raw)
		if err != nil || got != want {
			t.Fatalf("ParseDelimiter(%q) = %q err=%v, want %q", raw, got, err, want)
		}
	}
	for _, raw := range []string{"", "=", "7", "^^", "\n", "\r"} {
		if _, err := ParseDelimiter(raw); err == nil {
			t.Fatalf("ParseDelimiter(%q): expected error", raw)
		}
	}
}

func TestNewDecoderDegradesWithoutStrict(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.Dictionary = filepath.Join(t.TempDir(), "absent.xml")
	cfg.Delimiter = "|"

	d, tables, err := NewDecoder(cfg)
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	if tables.Fields.Len() != 0 || d.Delimiter() != '|' {
		t.Fatalf("expected empty tables and pipe delimiter")
	}
	msg, err := d.Decode([]byte("35=D|"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v, _ := msg.String("UnknownTag(35)"); v != "D" {
		t.Fatalf("unexpected message: %+v", msg.Fields)
	}

	cfg.StrictDictionary = true
	if _, _, err := NewDecoder(cfg); err == nil || !strings.Contains(err.Error(), "absent.xml") {
		t.Fatalf("expected strict load failure, got %v", err)
	}
}
