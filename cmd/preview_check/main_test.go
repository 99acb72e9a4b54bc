package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")
	content := "scenarios:\n  - input: Hola\n    expected: Saludo en personaje\n  - input: Chau\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := loadScenarios(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].Input != "Hola" || got[0].Expected != "Saludo en personaje" {
		t.Fatalf("unexpected scenarios %+v", got)
	}
}

func TestLoadScenariosErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("scenarios: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadScenarios(empty); err == nil {
		t.Fatalf("expected error for empty scenarios")
	}
	if _, err := loadScenarios(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
