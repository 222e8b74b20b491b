package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

// createTestImage writes a solid-colour PNG into dir and returns its path.
func createTestImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := createTestImage(t, t.TempDir(), "red.png", 100, 80, color.RGBA{255, 0, 0, 255})

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 80 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x80", bounds.Dx(), bounds.Dy())
	}
}

func TestLoad_NonExistent(t *testing.T) {
	_, err := Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Fatal("Load should fail for non-existent file")
	}
	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("expected not-exist cause, got %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Error("missing file should not be reported as a decode failure")
	}
}

func TestLoad_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load should fail for invalid image data")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	path := createTestImage(t, t.TempDir(), "info.png", 200, 150, color.RGBA{255, 128, 64, 255})
	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	info, err := Describe(path, img)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if info.Width != 200 {
		t.Errorf("Width: got %d, want 200", info.Width)
	}
	if info.Height != 150 {
		t.Errorf("Height: got %d, want 150", info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestDescribe_FormatDetection(t *testing.T) {
	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".PNG", "png"},
		{".jpg", "jpeg"},
		{".jpeg", "jpeg"},
		{".gif", "gif"},
		{".bmp", "bmp"},
		{".tif", "tiff"},
		{".xyz", "unknown"},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// A valid PNG regardless of extension; detection is by name only.
			path := createTestImage(t, dir, "format"+tt.ext, 10, 10, color.Black)
			img, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			info, err := Describe(path, img)
			if err != nil {
				t.Fatalf("Describe failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
		})
	}
}

func TestDescribe_ColorDepth(t *testing.T) {
	path := createTestImage(t, t.TempDir(), "depth.png", 4, 4, color.White)

	tests := []struct {
		name      string
		img       image.Image
		wantDepth string
		wantAlpha bool
	}{
		{"gray", image.NewGray(image.Rect(0, 0, 4, 4)), "8-bit", false},
		{"gray16", image.NewGray16(image.Rect(0, 0, 4, 4)), "16-bit", false},
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 4, 4)), "8-bit", true},
		{"rgba64", image.NewRGBA64(image.Rect(0, 0, 4, 4)), "16-bit", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Describe(path, tt.img)
			if err != nil {
				t.Fatalf("Describe failed: %v", err)
			}
			if info.ColorDepth != tt.wantDepth {
				t.Errorf("ColorDepth: got %s, want %s", info.ColorDepth, tt.wantDepth)
			}
			if info.HasAlpha != tt.wantAlpha {
				t.Errorf("HasAlpha: got %v, want %v", info.HasAlpha, tt.wantAlpha)
			}
		})
	}
}
