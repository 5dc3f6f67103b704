package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "zonecam.yaml")

	if err := fs.WriteFile(path, []byte("zones: 3\n")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "zones: 3\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFileSystem_WriteFileCreatesParentDirs(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "snapshots", "2024", "frame.jpg")

	if err := fs.WriteFile(path, []byte{0xFF, 0xD8}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if ok, err := fs.Exists(path); err != nil || !ok {
		t.Errorf("expected file to exist, ok=%v err=%v", ok, err)
	}
}

func TestFileSystem_WriteFileLeavesNoTempFiles(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.md")

	for i := 0; i < 3; i++ {
		if err := fs.WriteFile(path, []byte("x")); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "summary.md" {
		t.Errorf("expected only summary.md, got %v", entries)
	}
}

func TestFileSystem_ExistsAndRemove(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	if ok, _ := fs.Exists(path); ok {
		t.Error("expected file to not exist")
	}
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := fs.Exists(path); !ok {
		t.Error("expected file to exist")
	}
	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, _ := fs.Exists(path); ok {
		t.Error("expected file to be removed")
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "a", "b")

	if err := fs.MkdirAll(path); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if ok, _ := fs.Exists(path); !ok {
		t.Error("expected directory to exist")
	}
}
