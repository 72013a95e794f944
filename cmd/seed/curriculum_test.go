package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, "good.yaml", "modules:\n  - title: Roma\n    sessions:\n      - title: Pasal 1\n        timestamps:\n          - time: \"0:00\"\n")
	bad := writeFile(t, "bad.yaml", "modules:\n  - title: \"\"\n")

	var out, errOut bytes.Buffer
	validateCmd.SetOut(&out)
	validateCmd.SetErr(&errOut)
	if err := validateCmd.RunE(validateCmd, []string{good}); err != nil {
		t.Fatalf("good file: %v", err)
	}
	if !strings.Contains(out.String(), "1 modules, 1 sessions, 1 timestamps") {
		t.Fatalf("output: %q", out.String())
	}

	err := validateCmd.RunE(validateCmd, []string{good, bad})
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("mixed files: %v", err)
	}
	if !strings.Contains(errOut.String(), "modules[0]: title is required") {
		t.Fatalf("stderr: %q", errOut.String())
	}
}

func TestImportDryRunDoesNotNeedTheApp(t *testing.T) {
	path := writeFile(t, "c.yaml", "modules:\n  - title: Roma\n  - title: Galatia\n")
	var out bytes.Buffer
	importCmd.SetOut(&out)
	importOpts.dryRun = true
	t.Cleanup(func() { importOpts.dryRun = false })

	if err := importCmd.RunE(importCmd, []string{path}); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(out.String(), "would import 2 modules") {
		t.Fatalf("output: %q", out.String())
	}
}

func TestParseUserID(t *testing.T) {
	if _, err := parseUserID("00000000-0000-0000-0000-000000000000"); err == nil {
		t.Fatalf("nil uuid should be rejected")
	}
	if _, err := parseUserID(" 5f0c7c1e-8d7a-4f5e-9a59-0a51d7c1e111 "); err != nil {
		t.Fatalf("valid id: %v", err)
	}
}
