package raster

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/philipparndt/goratio/pkg/geometry"
	"github.com/philipparndt/goratio/pkg/series"
	"github.com/philipparndt/goratio/pkg/viewport"
)

func TestRenderAppliesWindow(t *testing.T) {
	grid := series.NewGrid(3, 1)
	grid.Set(0, 0, 0)
	grid.Set(1, 0, 500)
	grid.Set(2, 0, 1000)

	img := Render(grid, viewport.WindowLevel{Center: 500, Width: 500})

	expected := []uint8{0, 127, 255}
	for x, want := range expected {
		got := img.RGBAAt(x, 0)
		if got.R != want || got.G != want || got.B != want || got.A != 255 {
			t.Errorf("Render failed at x=%d: expected gray %d, got %v", x, want, got)
		}
	}
}

func TestDrawLineDashed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 1))
	col := color.RGBA{255, 0, 0, 255}
	drawLine(img, 0, 0, 7, 0, col, 2)

	expected := []bool{true, true, false, false, true, true, false, false}
	for x, want := range expected {
		got := img.RGBAAt(x, 0) == col
		if got != want {
			t.Errorf("drawLine failed at x=%d: expected drawn=%v, got %v", x, want, got)
		}
	}
}

func TestDrawLineClipsToBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	drawLine(img, -5, 1, 10, 1, PrimaryColor, 0)

	for x := 0; x < 4; x++ {
		if img.RGBAAt(x, 1) != PrimaryColor {
			t.Errorf("drawLine failed: expected pixel (%d,1) drawn", x)
		}
	}
}

func TestAnnotateShiftsSegmentsOffBone(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	bone := geometry.NewSegment(geometry.NewPoint(0, 10), geometry.NewPoint(20, 10))
	h := geometry.NewSegment(geometry.NewPoint(5, 10), geometry.NewPoint(15, 10))
	bigH := geometry.NewSegment(geometry.NewPoint(5, 10), geometry.NewPoint(15, 10))

	Annotate(img, Overlay{Bone: &bone, Primary: &h, Secondary: &bigH, Offset: 3})

	if got := img.RGBAAt(10, 7); got != PrimaryColor {
		t.Errorf("Annotate failed: expected h drawn at y=7, got %v", got)
	}
	if got := img.RGBAAt(10, 13); got != SecondaryColor {
		t.Errorf("Annotate failed: expected H drawn at y=13, got %v", got)
	}
	if got := img.RGBAAt(0, 10); got != BoneColor {
		t.Errorf("Annotate failed: expected bone start drawn, got %v", got)
	}
}

func TestAnnotateWithoutBoneKeepsPosition(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	h := geometry.NewSegment(geometry.NewPoint(2, 5), geometry.NewPoint(12, 5))

	Annotate(img, Overlay{Primary: &h, Offset: 8, Pending: []geometry.Point{geometry.NewPoint(15, 15)}})

	if got := img.RGBAAt(7, 5); got != PrimaryColor {
		t.Errorf("Annotate failed: expected h at y=5, got %v", got)
	}
	if got := img.RGBAAt(15, 15); got != PendingColor {
		t.Errorf("Annotate failed: expected pending marker, got %v", got)
	}
}

func TestExportFrame(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hand_images")
	grid := series.NewGrid(40, 20)

	path, err := ExportFrame(dir, 3, grid, viewport.WindowLevel{Center: 128, Width: 256}, Overlay{Caption: "PP3"}, 0)
	if err != nil {
		t.Fatalf("ExportFrame failed: %v", err)
	}
	if filepath.Base(path) != "frame_003.png" {
		t.Errorf("ExportFrame failed: expected frame_003.png, got %s", filepath.Base(path))
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("ExportFrame failed: expected 40x20, got %v", img.Bounds())
	}

	path, err = ExportFrame(dir, 12, grid, viewport.WindowLevel{Center: 128, Width: 256}, Overlay{}, 10)
	if err != nil {
		t.Fatalf("ExportFrame failed: %v", err)
	}
	img, err = imaging.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if img.Bounds().Dx() != 10 || img.Bounds().Dy() != 5 {
		t.Errorf("ExportFrame failed: expected 10x5 after fit, got %v", img.Bounds())
	}
}
