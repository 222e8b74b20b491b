package imaging

import (
	"image"

	"github.com/disintegration/gift"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrMalformedImage is returned for images that cannot be treated as a
// two-dimensional intensity grid (for example an empty bounds rectangle).
var ErrMalformedImage = errors.New("malformed image")

const (
	// BlurSigma is the standard deviation of the noise-reducing Gaussian blur.
	BlurSigma = 1.0

	// StructuringElementSize is the side length of the square neighbourhood
	// used by every morphological pass.
	StructuringElementSize = 3

	// MorphIterations is how many times opening and closing repeat each of
	// their erosion and dilation steps.
	MorphIterations = 2
)

// Rec.709 luma weights.
const (
	lumaR = 0.2125
	lumaG = 0.7154
	lumaB = 0.0721
)

// The 3x3 square structuring element. Rank filters are stateless, so these
// are shared by every Preprocess call.
var (
	erode  = gift.Minimum(StructuringElementSize, false)
	dilate = gift.Maximum(StructuringElementSize, false)
)

// preprocessFilters is the fixed preprocessing chain in application order.
var preprocessFilters = buildPreprocessFilters()

func buildPreprocessFilters() []gift.Filter {
	filters := []gift.Filter{
		gift.ColorFunc(luminance),
		gift.GaussianBlur(BlurSigma),
	}
	// Opening: erosion then dilation.
	filters = append(filters, repeat(erode, MorphIterations)...)
	filters = append(filters, repeat(dilate, MorphIterations)...)
	// Closing: dilation then erosion.
	filters = append(filters, repeat(dilate, MorphIterations)...)
	filters = append(filters, repeat(erode, MorphIterations)...)
	// Final separating erosion.
	return append(filters, erode)
}

func repeat(f gift.Filter, n int) []gift.Filter {
	out := make([]gift.Filter, n)
	for i := range out {
		out[i] = f
	}
	return out
}

// luminance collapses a pixel to its Rec.709 luma and drops transparency.
func luminance(r, g, b, _ float32) (float32, float32, float32, float32) {
	y := lumaR*r + lumaG*g + lumaB*b
	return y, y, y, 1
}

// Preprocess prepares an image for contour extraction.
//
// The input may be colour or grayscale. The returned matrix has one row per
// image row and one column per image column, with intensities on the [0, 1]
// scale.
//
// # Pipeline
//
//  1. Grayscale conversion with Rec.709 luma weights
//  2. Gaussian blur, sigma = 1
//  3. Opening (3x3 square, 2 iterations) removes small bright specks
//  4. Closing (3x3 square, 2 iterations) fills small dark gaps
//  5. One erosion separates touching regions
//
// Borders replicate the nearest edge pixel. Intermediate results are kept at
// 16 bits per channel.
func Preprocess(img image.Image) (*mat.Dense, error) {
	if img == nil {
		return nil, errors.Wrap(ErrMalformedImage, "nil image")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.Wrapf(ErrMalformedImage, "empty bounds %v", bounds)
	}

	g := gift.New(preprocessFilters...)
	dst := image.NewGray16(g.Bounds(bounds))
	g.Draw(dst, img)

	return grayToDense(dst), nil
}

// grayToDense converts a 16-bit grayscale image to a normalized matrix.
func grayToDense(img *image.Gray16) *mat.Dense {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	data := make([]float64, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			data[y*cols+x] = float64(img.Gray16At(b.Min.X+x, b.Min.Y+y).Y) / 0xffff
		}
	}
	return mat.NewDense(rows, cols, data)
}
