package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if *cfg != (FileConfig{}) {
		t.Errorf("missing file should yield zero defaults, got %+v", cfg)
	}
}

func TestSaveLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := &FileConfig{
		Target: TargetSection{BaseURL: "https://n8n.example.com"},
		Import: ImportSection{
			MinWorkflows:      3,
			MinCredentials:    1,
			WaitReadySeconds:  60,
			ReadyIntervalSecs: 5,
		},
		Export: ExportSection{Prune: true},
	}

	if err := SaveFile(dir, want); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	got, err := LoadFile(dir)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip got %+v, want %+v", got, want)
	}
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("this is [not toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(dir); err == nil {
		t.Error("expected an error for malformed TOML")
	}
}
