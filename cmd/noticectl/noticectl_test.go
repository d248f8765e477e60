package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sidebar-toolkit/internal/notice"
)

func TestPrintItems(t *testing.T) {
	var buf bytes.Buffer
	items := []notice.Item{
		{ID: "1", Title: "Release", Content: "line one\nline two", CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{ID: "2", Content: strings.Repeat("x", 80)},
	}

	if err := printItems(&buf, items, time.UTC); err != nil {
		t.Fatalf("printItems() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"PUBLISHED", "2024-05-01 12:30:00", "Release", "line one line two", "Notice"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 60)) {
		t.Errorf("long content not truncated:\n%s", out)
	}
}

func TestPrintItems_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := printItems(&buf, nil, time.UTC); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No announcements.\n" {
		t.Errorf("printItems(nil) = %q", buf.String())
	}
}

func TestPreview(t *testing.T) {
	if got := preview("  a \n b  ", 10); got != "a b" {
		t.Errorf("preview() = %q", got)
	}
	if got := preview("abcdef", 4); got != "abc…" {
		t.Errorf("preview() = %q", got)
	}
}

func TestReadContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.html")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		flag    string
		file    string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "flag", flag: "text", want: "text"},
		{name: "file", file: path, want: "<p>hi</p>"},
		{name: "stdin", file: "-", stdin: "piped", want: "piped"},
		{name: "both", flag: "a", file: path, wantErr: true},
		{name: "missing file", file: filepath.Join(t.TempDir(), "nope"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readContent(tt.flag, tt.file, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readContent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readContent() = %q, want %q", got, tt.want)
			}
		})
	}
}
