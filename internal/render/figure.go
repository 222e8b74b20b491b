package render

import (
	"image"
	"image/color"
	"math"
	"os"
	"strconv"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ironsheep/image-contours/internal/detection"
	cropping "github.com/ironsheep/image-contours/internal/imaging"
)

// Renderable is a finished drawing that can be written to an image file.
type Renderable interface {
	Save(path string, opts SaveOptions) error
}

// SaveOptions controls rasterization when a Renderable is saved.
type SaveOptions struct {
	// DPI is the output resolution. Values <= 0 select DefaultDPI.
	DPI int

	// Tight trims the blank figure margin down to the drawn content plus a
	// small fixed padding.
	Tight bool
}

// DefaultDPI is used when SaveOptions.DPI is not positive.
const DefaultDPI = 80

// Figure geometry.
const (
	FigureWidth  = 16 * vg.Inch
	FigureHeight = 9 * vg.Inch

	// Axes region as fractions of the figure size.
	axesLeft   = 0.01
	axesRight  = 0.9
	axesBottom = 0.0001
	axesTop    = 0.9

	// tightPadInches surrounds trimmed content when saving with Tight.
	tightPadInches = 0.1
)

var (
	markerColor = mustHex("#ff0000")
	labelColor  = mustHex("#000000")

	// Markers cover 10 square points, like a scatter of size 10.
	markerRadius = vg.Points(math.Sqrt(10) / 2)
	labelSize    = vg.Points(10)
)

func mustHex(s string) color.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Figure is the annotated visualization of one analysed image.
type Figure struct {
	plot       *plot.Plot
	rows, cols int
	labels     int
}

// Render builds a Figure showing field in grayscale with one red marker and
// one index label at the centroid of every contour in set.
//
// The intensity range is stretched to the field's own minimum and maximum.
// Nothing is rasterized or written until Save is called.
func Render(field mat.Matrix, set detection.ContourSet) (*Figure, error) {
	rows, cols := field.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New("cannot render an empty field")
	}

	p := plot.New()
	p.X.Padding = 0
	p.Y.Padding = 0
	p.Y.Tick.Marker = rowTicks{rows: rows}

	// Pixel centres sit on integer coordinates, as with imshow.
	xmin, xmax := -0.5, float64(cols)-0.5
	ymin, ymax := -0.5, float64(rows)-0.5
	p.Add(plotter.NewImage(grayImage(field), xmin, ymin, xmax, ymax))

	if len(set) > 0 {
		xys := make(plotter.XYs, len(set))
		labels := make([]string, len(set))
		for i, c := range set.Centroids() {
			xys[i] = plotter.XY{X: c.Col, Y: float64(rows-1) - c.Row}
			labels[i] = strconv.Itoa(i)
		}

		markers, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build centroid markers")
		}
		markers.GlyphStyle = draw.GlyphStyle{
			Color:  markerColor,
			Radius: markerRadius,
			Shape:  draw.CircleGlyph{},
		}

		text, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, errors.Wrap(err, "failed to build contour labels")
		}
		for i := range text.TextStyle {
			text.TextStyle[i].Color = labelColor
			text.TextStyle[i].Font.Size = labelSize
		}

		p.Add(markers, text)
	}

	// Labels near the border would otherwise widen the axes.
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax

	return &Figure{plot: p, rows: rows, cols: cols, labels: len(set)}, nil
}

// Labels returns the number of labelled contours on the figure.
func (f *Figure) Labels() int {
	return f.labels
}

// Rasterize draws the full, untrimmed figure at the given resolution.
func (f *Figure) Rasterize(dpi int) image.Image {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	canvas := vgimg.NewWith(vgimg.UseWH(FigureWidth, FigureHeight), vgimg.UseDPI(dpi))
	f.plot.Draw(f.axesCanvas(draw.New(canvas)))
	return canvas.Image()
}

// Save rasterizes the figure and writes it to path as PNG.
func (f *Figure) Save(path string, opts SaveOptions) error {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	var img image.Image = f.Rasterize(dpi)
	if opts.Tight {
		pad := int(math.Round(tightPadInches * float64(dpi)))
		img = cropping.TightCrop(img, color.White, pad)
	}

	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create figure file")
	}
	if err := imaging.Encode(out, img, imaging.PNG); err != nil {
		out.Close()
		return errors.Wrap(err, "failed to encode figure")
	}
	return errors.Wrap(out.Close(), "failed to close figure file")
}

// axesCanvas returns the part of c reserved for the axes: the fixed figure
// fractions, shrunk and centred so the image keeps square pixels.
func (f *Figure) axesCanvas(c draw.Canvas) draw.Canvas {
	w, h := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y

	left, right := w*axesLeft, w*axesRight
	bottom, top := h*axesBottom, h*axesTop

	boxW, boxH := right-left, top-bottom
	aspect := float64(f.cols) / float64(f.rows)
	if float64(boxW)/float64(boxH) > aspect {
		fit := vg.Length(float64(boxH) * aspect)
		left += (boxW - fit) / 2
		right = left + fit
	} else {
		fit := vg.Length(float64(boxW) / aspect)
		bottom += (boxH - fit) / 2
		top = bottom + fit
	}

	return draw.Crop(c, left, right-w, bottom, top-h)
}

// grayImage maps field onto 16-bit gray, stretching its value range to full
// scale. A constant field renders black.
func grayImage(field mat.Matrix) *image.Gray16 {
	rows, cols := field.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := field.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	span := hi - lo
	if !(span > 0) {
		return img
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := field.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			img.SetGray16(c, r, color.Gray16{Y: uint16(math.Round((v - lo) / span * 0xffff))})
		}
	}
	return img
}

// rowTicks labels the vertical axis with image row numbers, which grow
// downward while plot coordinates grow upward.
type rowTicks struct {
	rows int
}

func (t rowTicks) Ticks(min, max float64) []plot.Tick {
	flip := func(v float64) float64 { return float64(t.rows-1) - v }
	ticks := plot.DefaultTicks{}.Ticks(flip(max), flip(min))
	for i := range ticks {
		ticks[i].Value = flip(ticks[i].Value)
	}
	return ticks
}
