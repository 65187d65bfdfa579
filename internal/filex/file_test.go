package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestWritePrivate_CreatesParentsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "token")

	if err := WritePrivate(path, []byte("secret")); err != nil {
		t.Fatalf("WritePrivate: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "secret" {
		t.Fatalf("content = %q", got)
	}

	if runtime.GOOS != "windows" {
		st, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat: %v", err)
		}
		if perm := st.Mode().Perm(); perm != 0o600 {
			t.Fatalf("perm = %o, want 600", perm)
		}
	}
}

func TestWritePrivate_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")

	if err := WritePrivate(path, []byte("old-longer-value")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WritePrivate(path, []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Fatalf("content = %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, got %d entries", len(entries))
	}
}

func TestWritePrivate_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WritePrivate(filepath.Join(blocker, "token"), []byte("x")); err == nil {
		t.Fatal("expected error when parent is a regular file")
	}
}
