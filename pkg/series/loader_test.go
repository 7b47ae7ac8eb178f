package series

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writeFrame(t *testing.T, path string, value uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}
	img.SetGray(3, 2, color.Gray{Y: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFrame(t, filepath.Join(dir, "frame_002.png"), 20)
	writeFrame(t, filepath.Join(dir, "frame_001.png"), 10)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteMetadata(dir, Metadata{Name: "left hand", PixelSpacing: &PixelSpacing{Row: 0.2, Col: 0.3}}); err != nil {
		t.Fatal(err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if s.FrameCount() != 2 {
		t.Fatalf("FrameCount failed: expected 2, got %d", s.FrameCount())
	}
	if s.Name() != "left hand" {
		t.Errorf("Name failed: expected %q, got %q", "left hand", s.Name())
	}
	if sp := s.PixelSpacing(); sp.Row != 0.2 || sp.Col != 0.3 {
		t.Errorf("PixelSpacing failed: got %+v", sp)
	}
	if filepath.Base(s.FramePath(0)) != "frame_001.png" {
		t.Errorf("frames not sorted: %s", s.FramePath(0))
	}

	grid, err := s.Frame(0)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if grid.Width != 4 || grid.Height != 3 {
		t.Errorf("Frame size failed: expected 4x3, got %dx%d", grid.Width, grid.Height)
	}
	if grid.At(0, 0) != 10*257 {
		t.Errorf("Frame sample failed: expected %d, got %v", 10*257, grid.At(0, 0))
	}
	lo, hi := grid.Range()
	if lo != 10*257 || hi != 65535 {
		t.Errorf("Range failed: got %v..%v", lo, hi)
	}

	if _, err := s.Frame(2); err == nil {
		t.Error("Frame out of range should fail")
	}
}

func TestOpenSingleFileDefaultsSpacing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "single.png")
	writeFrame(t, path, 50)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s.FrameCount() != 1 {
		t.Errorf("FrameCount failed: expected 1, got %d", s.FrameCount())
	}
	if s.PixelSpacing() != DefaultSpacing {
		t.Errorf("PixelSpacing failed: expected default, got %+v", s.PixelSpacing())
	}
}

func TestOpenEmptyDirectory(t *testing.T) {
	_, err := Open(t.TempDir())
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("Open of empty dir: expected ErrNoFrames, got %v", err)
	}
}

func TestSpacingHelpers(t *testing.T) {
	if got := (PixelSpacing{Row: 0, Col: 0.5}).OrDefault(); got != (PixelSpacing{Row: 1, Col: 0.5}) {
		t.Errorf("OrDefault failed: got %+v", got)
	}
	avg := Average(PixelSpacing{Row: 0.2, Col: 0.4}, PixelSpacing{Row: 0.4, Col: 0.6})
	if avg.Row != 0.30000000000000004 && avg.Row != 0.3 {
		t.Errorf("Average row failed: got %v", avg.Row)
	}
	if avg.Col != 0.5 {
		t.Errorf("Average col failed: got %v", avg.Col)
	}
}

func TestMemorySeries(t *testing.T) {
	m := NewMemory("mem", []*Grid{NewGrid(2, 2)}, PixelSpacing{})
	if m.PixelSpacing() != DefaultSpacing {
		t.Errorf("Memory spacing failed: got %+v", m.PixelSpacing())
	}
	if _, err := m.Frame(-1); err == nil {
		t.Error("Memory Frame(-1) should fail")
	}
}
