package envutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDurationParsesBothForms(t *testing.T) {
	t.Setenv("BA_TIMEOUT", "20s")
	if got := Duration("BA_TIMEOUT", time.Second); got != 20*time.Second {
		t.Fatalf("Duration(20s)=%v", got)
	}
	t.Setenv("BA_TIMEOUT", "7")
	if got := Duration("BA_TIMEOUT", time.Second); got != 7*time.Second {
		t.Fatalf("Duration(7)=%v", got)
	}
	t.Setenv("BA_TIMEOUT", "soon")
	if got := Duration("BA_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("Duration(bad)=%v want default", got)
	}
}

func TestListBoolInt(t *testing.T) {
	t.Setenv("BA_ORIGINS", " http://a , ,http://b ")
	got := List("BA_ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("List=%v", got)
	}
	t.Setenv("BA_FLAG", "off")
	if Bool("BA_FLAG", true) {
		t.Fatalf("Bool(off) should be false")
	}
	t.Setenv("BA_N", "x")
	if Int("BA_N", 3) != 3 {
		t.Fatalf("Int(bad) should fall back")
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("BA_DOTENV_A=fromfile\nBA_DOTENV_B=fromfile\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BA_DOTENV_A", "fromenv")
	t.Cleanup(func() { _ = os.Unsetenv("BA_DOTENV_B") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("BA_DOTENV_A"); got != "fromenv" {
		t.Fatalf("A=%q want fromenv", got)
	}
	if got := os.Getenv("BA_DOTENV_B"); got != "fromfile" {
		t.Fatalf("B=%q want fromfile", got)
	}
}
