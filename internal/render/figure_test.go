package render

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/image-contours/internal/detection"
)

// blobField returns a 60x100 field with two bright squares and their contours.
func blobField(t *testing.T) (*mat.Dense, detection.ContourSet) {
	t.Helper()
	field := mat.NewDense(60, 100, nil)
	for r := 10; r < 20; r++ {
		for c := 10; c < 20; c++ {
			field.Set(r, c, 1)
		}
	}
	for r := 35; r < 50; r++ {
		for c := 60; c < 80; c++ {
			field.Set(r, c, 1)
		}
	}
	set := detection.Extract(field)
	if len(set) != 2 {
		t.Fatalf("fixture produced %d contours, want 2", len(set))
	}
	return field, set
}

func hasRed(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 > 200 && g>>8 < 60 && bl>>8 < 60 {
				return true
			}
		}
	}
	return false
}

func TestRender_EmptyField(t *testing.T) {
	// mat.NewDense panics on zero dimensions; the zero Dense is 0x0.
	if _, err := Render(&mat.Dense{}, nil); err == nil {
		t.Error("expected error for empty field")
	}
}

func TestRender_Labels(t *testing.T) {
	field, set := blobField(t)

	fig, err := Render(field, set)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if fig.Labels() != 2 {
		t.Errorf("Labels() = %d, want 2", fig.Labels())
	}

	fig, err = Render(field, nil)
	if err != nil {
		t.Fatalf("Render without contours failed: %v", err)
	}
	if fig.Labels() != 0 {
		t.Errorf("Labels() = %d, want 0", fig.Labels())
	}
}

func TestRasterize_FigureSize(t *testing.T) {
	field, set := blobField(t)
	fig, err := Render(field, set)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	tests := []struct {
		dpi        int
		wantWidth  int
		wantHeight int
	}{
		{80, 1280, 720},
		{40, 640, 360},
		{0, 1280, 720}, // default
	}
	for _, tt := range tests {
		b := fig.Rasterize(tt.dpi).Bounds()
		if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
			t.Errorf("dpi %d: got %dx%d, want %dx%d", tt.dpi, b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
		}
	}
}

func TestRasterize_Markers(t *testing.T) {
	field, set := blobField(t)

	withMarkers, err := Render(field, set)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !hasRed(withMarkers.Rasterize(80)) {
		t.Error("expected red centroid markers in the figure")
	}

	bare, err := Render(field, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if hasRed(bare.Rasterize(80)) {
		t.Error("figure without contours should contain no red pixels")
	}
}

func TestSave_PNG(t *testing.T) {
	field, set := blobField(t)
	fig, err := Render(field, set)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	dir := t.TempDir()
	tests := []struct {
		name  string
		tight bool
	}{
		{"full.png", false},
		{"tight.png", true},
	}

	sizes := make(map[bool]image.Rectangle)
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		if err := fig.Save(path, SaveOptions{DPI: 80, Tight: tt.tight}); err != nil {
			t.Fatalf("Save(%s) failed: %v", tt.name, err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("failed to open %s: %v", tt.name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s is not a valid PNG: %v", tt.name, err)
		}
		sizes[tt.tight] = img.Bounds()
	}

	full, tight := sizes[false], sizes[true]
	if full.Dx() != 1280 || full.Dy() != 720 {
		t.Errorf("untrimmed figure is %dx%d, want 1280x720", full.Dx(), full.Dy())
	}
	if tight.Dx() >= full.Dx() || tight.Dy() >= full.Dy() {
		t.Errorf("tight figure %v should be smaller than %v", tight, full)
	}
}

func TestSave_BadPath(t *testing.T) {
	field, set := blobField(t)
	fig, err := Render(field, set)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "missing", "out.png")
	if err := fig.Save(path, SaveOptions{DPI: 80}); err == nil {
		t.Error("expected error when the directory does not exist")
	}
}

func TestGrayImage_Stretch(t *testing.T) {
	field := mat.NewDense(1, 3, []float64{0.25, 0.5, 0.75})
	img := grayImage(field)

	want := []uint16{0, 0x8000, 0xffff}
	for c, w := range want {
		got := img.Gray16At(c, 0).Y
		if math.Abs(float64(got)-float64(w)) > 1 {
			t.Errorf("pixel %d = %#x, want %#x", c, got, w)
		}
	}

	flat := grayImage(mat.NewDense(2, 2, []float64{0.4, 0.4, 0.4, 0.4}))
	for _, v := range flat.Pix {
		if v != 0 {
			t.Fatal("constant field should render black")
		}
	}
}

func TestRowTicks_Flipped(t *testing.T) {
	ticks := rowTicks{rows: 11}.Ticks(-0.5, 10.5)
	if len(ticks) == 0 {
		t.Fatal("no ticks")
	}
	for _, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		// The label names the image row; Value is its plot coordinate.
		if tk.Label == "0" && tk.Value != 10 {
			t.Errorf("row 0 tick at %v, want 10", tk.Value)
		}
		if tk.Label == "10" && tk.Value != 0 {
			t.Errorf("row 10 tick at %v, want 0", tk.Value)
		}
	}
}
