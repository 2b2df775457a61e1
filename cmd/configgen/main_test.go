package main

import (
	"path/filepath"
	"testing"

	"github.com/danmuck/fixctl/internal/testutil/testlog"
)

func TestWriteThenValidateTemplates(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	for _, kind := range []string{"config", "dictionary"} {
		path := filepath.Join(dir, kind+".out")
		if kind == "dictionary" {
			path = filepath.Join(dir, "fix.xml")
		}
		if err := run(kind, path, "", false, false); err != nil {
			t.Fatalf("%s: write: %v", kind, err)
		}
		if err := run(kind, "", path, true, false); err != nil {
			t.Fatalf("%s: validate: %v", kind, err)
		}
		if err := run(kind, path, "", false, false); err == nil {
			t.Fatalf("%s: expected existing file to be protected", kind)
		}
		if err := run(kind, path, "", false, true); err != nil {
			t.Fatalf("%s: forced overwrite: %v", kind, err)
		}
	}
	if err := run("session", filepath.Join(dir, "x"), "", false, false); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
