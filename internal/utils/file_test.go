package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIsThermalFrame(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"DJI_20240612093045_0001_T.JPG", true},
		{"DJI_20240612093045_0001_t.jpg", true},
		{"dji_0042_T.jpeg", true},
		{"DJI_20240612093045_0001_W.JPG", false}, // wide-angle sibling
		{"DJI_20240612093045_0001_T.tif", false},
		{"report.pdf", false},
		{"frame_T.png", false},
	}

	for _, tt := range tests {
		if got := IsThermalFrame(tt.name); got != tt.want {
			t.Errorf("IsThermalFrame(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestListFrameFilesSorted(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"DJI_20240612093050_0002_T.JPG",
		"DJI_20240612093045_0001_T.JPG",
		"DJI_20240612093045_0001_W.JPG",
		"notes.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListFrameFiles(dir)
	if err != nil {
		t.Fatalf("ListFrameFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 frames, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "DJI_20240612093045_0001_T.JPG" {
		t.Errorf("Expected capture-order sorting, got %v", files)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		input  string
		suffix string
		format string
		want   string
	}{
		{"/in/DJI_0001_T.JPG", "_basic", "jpg", "out/DJI_0001_T_basic.jpg"},
		{"/in/DJI_0001_T.JPG", "_zones", "png", "out/DJI_0001_T_zones.png"},
		{"/in/DJI_0001_T.JPG", "", "tif", "out/DJI_0001_T.tif"},
	}

	for _, tt := range tests {
		got := OutputName(tt.input, "out", tt.suffix, tt.format)
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputName(%q, %q, %q) = %q, want %q", tt.input, tt.suffix, tt.format, got, tt.want)
		}
	}
}

func TestParseCaptureTime(t *testing.T) {
	got, ok := ParseCaptureTime("DJI_20240612093045_0001_T.JPG")
	if !ok {
		t.Fatal("Expected a capture time")
	}
	want := time.Date(2024, 6, 12, 9, 30, 45, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if _, ok := ParseCaptureTime("IMG_0001_T.JPG"); ok {
		t.Error("Expected no capture time for a name without timestamp")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !DirExists(dir) {
		t.Error("Expected directory to exist")
	}
	// Idempotent on existing directories.
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}
