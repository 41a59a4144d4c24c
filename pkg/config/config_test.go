package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "fake-news")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\n")

	s := sample{Count: 3}
	if err := Load(p, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "fake-news" {
		t.Errorf("name = %q, want %q", s.Name, "fake-news")
	}
	if s.Count != 3 {
		t.Errorf("count = %d, default should be kept", s.Count)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "count: -1\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	p := writeConfig(t, "name: [unterminated\n")
	var s sample
	if err := Load(p, &s); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	s := sample{Name: "default"}
	found, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"), &s)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if found {
		t.Error("found = true for missing file")
	}
	if s.Name != "default" {
		t.Errorf("name = %q, want default kept", s.Name)
	}
}

func TestLoadOrDefault_MissingFileStillValidates(t *testing.T) {
	s := sample{Count: -5}
	if _, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("expected validation error for invalid defaults")
	}
}

func TestLoadOrDefault_ExistingFile(t *testing.T) {
	p := writeConfig(t, "name: loaded\n")
	var s sample
	found, err := LoadOrDefault(p, &s)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if !found || s.Name != "loaded" {
		t.Errorf("found = %v, name = %q", found, s.Name)
	}
}
