package series

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gopkg.in/yaml.v3"
)

// SidecarName is the metadata file looked up inside a series directory
const SidecarName = "series.yaml"

// ErrNoFrames is returned when a directory contains no decodable images
var ErrNoFrames = errors.New("no image frames found")

// Metadata is the optional YAML sidecar describing a series
type Metadata struct {
	Name         string        `yaml:"name"`
	PixelSpacing *PixelSpacing `yaml:"pixel_spacing"`
	Modality     string        `yaml:"modality,omitempty"`
}

// SupportedExtensions returns the frame file extensions the loader decodes
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp"}
}

func isSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// Files is a series backed by one image file per frame. Frames are decoded
// lazily and the most recent one is cached.
type Files struct {
	name     string
	path     string
	frames   []string
	spacing  PixelSpacing
	metadata Metadata

	cachedIndex int
	cached      *Grid
}

// Open loads a series from a directory of frame images (sorted by file name)
// or from a single image file, which becomes a one-frame series.
func Open(path string) (*Files, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open series: %w", err)
	}

	s := &Files{path: path, cachedIndex: -1}
	var sidecar string

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read series directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isSupported(entry.Name()) {
				continue
			}
			s.frames = append(s.frames, filepath.Join(path, entry.Name()))
		}
		sort.Strings(s.frames)
		sidecar = filepath.Join(path, SidecarName)
		s.name = filepath.Base(path)
	} else {
		if !isSupported(path) {
			return nil, fmt.Errorf("unsupported frame format: %s", filepath.Ext(path))
		}
		s.frames = []string{path}
		sidecar = strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
		s.name = filepath.Base(path)
	}

	if len(s.frames) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoFrames)
	}

	meta, err := readMetadata(sidecar)
	if err != nil {
		return nil, err
	}
	s.metadata = meta
	if meta.Name != "" {
		s.name = meta.Name
	}
	s.spacing = DefaultSpacing
	if meta.PixelSpacing != nil {
		s.spacing = meta.PixelSpacing.OrDefault()
	}

	return s, nil
}

func readMetadata(path string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("failed to read series metadata: %w", err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse series metadata %s: %w", path, err)
	}
	return meta, nil
}

func (s *Files) Name() string               { return s.name }
func (s *Files) Path() string               { return s.path }
func (s *Files) FrameCount() int            { return len(s.frames) }
func (s *Files) PixelSpacing() PixelSpacing { return s.spacing }

// Metadata returns the sidecar metadata, empty when there was none
func (s *Files) Metadata() Metadata { return s.metadata }

// FramePath returns the file backing frame i
func (s *Files) FramePath(i int) string {
	if i < 0 || i >= len(s.frames) {
		return ""
	}
	return s.frames[i]
}

// Frame decodes frame i into a sample grid
func (s *Files) Frame(i int) (*Grid, error) {
	if i < 0 || i >= len(s.frames) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(s.frames))
	}
	if i == s.cachedIndex {
		return s.cached, nil
	}

	img, err := imaging.Open(s.frames[i])
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %d: %w", i+1, err)
	}

	grid := FromImage(img)
	s.cachedIndex = i
	s.cached = grid
	return grid, nil
}

// FromImage converts an image to a grid of 16-bit luminance samples
func FromImage(img image.Image) *Grid {
	bounds := img.Bounds()
	grid := NewGrid(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			grid.Set(x-bounds.Min.X, y-bounds.Min.Y, float64(g.Y))
		}
	}
	return grid
}

// WriteMetadata stores a sidecar next to a series directory
func WriteMetadata(dir string, meta Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal series metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SidecarName), data, 0644); err != nil {
		return fmt.Errorf("failed to write series metadata: %w", err)
	}
	return nil
}
