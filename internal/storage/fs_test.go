package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/newsledger/internal/apperr"
	"github.com/starford/newsledger/internal/checksum"
)

func tempData(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenAndRead(t *testing.T) {
	s, dir := tempData(t)
	content := "title,text,subject,date\nA,t,News,01-Jan-16\n"
	writeFile(t, dir, "true.csv", content)

	rc, err := s.Open("true.csv")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != content {
		t.Errorf("content mismatch: got %q", got)
	}

	data, err := s.Read("true.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != content {
		t.Errorf("read mismatch: got %q", data)
	}
}

func TestOpenMissingIsSourceUnavailable(t *testing.T) {
	s, _ := tempData(t)
	_, err := s.Open("fake.csv")
	if !errors.Is(err, apperr.ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
	_, err = s.Read("fake.csv")
	if !errors.Is(err, apperr.ErrSourceUnavailable) {
		t.Errorf("read err = %v, want ErrSourceUnavailable", err)
	}
}

func TestList(t *testing.T) {
	s, dir := tempData(t)
	writeFile(t, dir, "true.csv", "a")
	writeFile(t, dir, "fake.CSV", "b")
	writeFile(t, dir, "readme.txt", "not csv")
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Path == "true.csv" && it.Checksum != checksum.Sum([]byte("a")) {
			t.Errorf("checksum = %q", it.Checksum)
		}
		if it.Size != 1 {
			t.Errorf("size of %s = %d, want 1", it.Path, it.Size)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s, _ := tempData(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.csv",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if _, err := s.Open(p); err == nil {
			t.Errorf("expected error for open of %q", p)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/newsledger-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "newsledger-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestList_ChecksumMatchesRead(t *testing.T) {
	s, dir := tempData(t)
	writeFile(t, dir, "true.csv", "title,text,subject,date\nA,b,c,01-Jan-16\n")
	writeFile(t, dir, "fake.CSV", "title,text,subject,date\n")

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		data, err := s.Read(it.Path)
		if err != nil {
			t.Fatalf("Read(%s): %v", it.Path, err)
		}
		if want := checksum.Sum(data); it.Checksum != want {
			t.Errorf("checksum of %s = %q, want %q", it.Path, it.Checksum, want)
		}
		if it.Size != int64(len(data)) {
			t.Errorf("size of %s = %d, want %d", it.Path, it.Size, len(data))
		}
	}
}
