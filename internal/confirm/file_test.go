package confirm

import (
	"os"
	"path/filepath"
	"testing"
)

func testMailbox(t *testing.T) *FileMailbox {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	return NewFileMailbox()
}

func TestTryReceiveConsumesTokenOnce(t *testing.T) {
	m := testMailbox(t)
	path := filepath.Join(m.dir, "sottod-confirm-abc123")
	if err := os.WriteFile(path, []byte("yes\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	token, ok := m.TryReceive("abc123")
	if !ok || token != "yes" {
		t.Fatalf("TryReceive = %q, %v", token, ok)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("token file not removed")
	}
	if _, ok := m.TryReceive("abc123"); ok {
		t.Fatal("second receive must find nothing")
	}
}

func TestTryReceiveMissingFile(t *testing.T) {
	m := testMailbox(t)
	if _, ok := m.TryReceive("nothing-here"); ok {
		t.Fatal("expected no token")
	}
}

func TestTryReceiveEmptyFile(t *testing.T) {
	m := testMailbox(t)
	path := filepath.Join(m.dir, "sottod-confirm-empty")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.TryReceive("empty"); ok {
		t.Fatal("blank token must not be delivered")
	}
}

func TestClearRemovesStaleToken(t *testing.T) {
	m := testMailbox(t)
	path := filepath.Join(m.dir, "sottod-confirm-stale")
	if err := os.WriteFile(path, []byte("no"), 0o600); err != nil {
		t.Fatal(err)
	}
	m.Clear("stale")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("Clear did not remove the token file")
	}
}
