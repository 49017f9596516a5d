package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCleanName(t *testing.T) {
	good := []string{"shop_1772357400.docx", " report.md "}
	for _, n := range good {
		if _, err := CleanName(n); err != nil {
			t.Errorf("CleanName(%q): unexpected error %v", n, err)
		}
	}
	bad := []string{"", ".", "..", "../etc/passwd", "a/b.docx", `a\b.docx`, ".env"}
	for _, n := range bad {
		if _, err := CleanName(n); !errors.Is(err, ErrInvalidName) {
			t.Errorf("CleanName(%q): expected ErrInvalidName, got %v", n, err)
		}
	}
}

func TestLocalStore_PutOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "shop_1.md", "text/markdown", []byte("# Shop\n")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, size, err := s.Open(ctx, "shop_1.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "# Shop\n" || size != int64(len(data)) {
		t.Errorf("got %q (size %d)", data, size)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestLocalStore_PutNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "shop_1.md", "", []byte("first")); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := s.Put(ctx, "shop_1.md", "", []byte("second")); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	rc, _, err := s.Open(ctx, "shop_1.md")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	if data, _ := io.ReadAll(rc); string(data) != "first" {
		t.Errorf("stored report was overwritten: %q", data)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestLocalStore_Errors(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	if _, _, err := s.Open(ctx, "missing.docx"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Open(ctx, "../x"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if err := s.Put(ctx, "../x", "", nil); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName on put, got %v", err)
	}
	if err := s.Check(ctx); err != nil {
		t.Errorf("Check on writable dir: %v", err)
	}
	if s.Kind() != "local" {
		t.Errorf("unexpected kind %q", s.Kind())
	}
}

func TestNewS3Store_RequiresSettings(t *testing.T) {
	cases := []S3Config{
		{},
		{Endpoint: "localhost:9000"},
		{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	for _, cfg := range cases {
		if _, err := NewS3Store(cfg); err == nil {
			t.Errorf("NewS3Store(%+v): expected error", cfg)
		}
	}
	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "reports", Prefix: "/figdoc/"})
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	if s.prefix != "figdoc/" || s.region != "us-east-1" {
		t.Errorf("unexpected prefix %q region %q", s.prefix, s.region)
	}
}
