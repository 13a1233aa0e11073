package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeArchive(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListReportFiles(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "20260206.json", "20260208.json", "20260207.json",
		"manifest.json", "notes.txt", "2026.json")

	got, err := listReportFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"20260208.json", "20260207.json", "20260206.json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "20260206.json", "20260208.json")

	m, err := WriteManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Latest != "20260208.json" || m.Count != 2 {
		t.Errorf("manifest = %+v", m)
	}

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var onDisk reportManifest
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(onDisk, m) {
		t.Errorf("on disk %+v, want %+v", onDisk, m)
	}
}

func TestWriteManifestEmptyDir(t *testing.T) {
	if _, err := WriteManifest(t.TempDir()); err == nil {
		t.Error("expected an error for an empty archive")
	}
}

func TestWriteManifestIgnoresItself(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, "20260208.json")

	if _, err := WriteManifest(dir); err != nil {
		t.Fatal(err)
	}
	// A second run must not pick up the manifest it just wrote.
	m, err := WriteManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Count != 1 {
		t.Errorf("Count = %d, want 1", m.Count)
	}
}
