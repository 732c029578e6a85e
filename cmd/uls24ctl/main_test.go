//go:build linux

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adam-cm/ULS24-Device-Interface/internal/frame"
)

func TestFormatFrame(t *testing.T) {
	fr := frame.NewSensor(frame.Dim12)
	fr.Grid[0][0] = 5
	fr.Grid[0][11] = 100
	fr.Grid[11][0] = 7

	out := formatFrame(fr)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	first := strings.Fields(lines[0])
	if len(first) != 12 || first[0] != "5" || first[11] != "100" {
		t.Fatalf("first row mismatch: %v", first)
	}
	if strings.Fields(lines[11])[0] != "7" {
		t.Fatalf("last row mismatch: %v", lines[11])
	}
}

func TestAppendFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.txt")
	fr := frame.NewSensor(frame.Dim12)
	fr.Grid[0][0] = 1

	if err := appendFrame(path, fr); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := appendFrame(path, fr); err != nil {
		t.Fatalf("second append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	// Two frames of 12 rows each, blank line after each frame.
	if got := strings.Count(string(data), "\n"); got != 26 {
		t.Fatalf("expected 26 newlines, got %d", got)
	}
}

func TestIntArg(t *testing.T) {
	if v, err := intArg([]string{"3"}, 0); err != nil || v != 3 {
		t.Fatalf("intArg = %d, %v", v, err)
	}
	if _, err := intArg(nil, 0); err == nil {
		t.Fatalf("expected missing argument error")
	}
	if _, err := intArg([]string{"x"}, 0); err == nil {
		t.Fatalf("expected bad argument error")
	}
}
