// Package imaging loads images and turns them into the intensity grids the
// contour detector works on.
//
// # Pipeline
//
// Load decodes a file into a standard image.Image. Preprocess converts any
// colour model to a single-channel intensity matrix (gonum mat.Dense, values
// in [0, 1]) by applying a fixed chain: Rec.709 grayscale, Gaussian blur,
// morphological opening, closing and a final erosion, all with a 3x3 square
// structuring element. Nothing in the chain is configurable.
//
// # Coordinate System
//
// Matrix element (r, c) corresponds to image pixel (x = c, y = r) relative to
// the image's bounds minimum. Row 0 is the top of the image.
//
// # Thread Safety
//
// All functions are stateless and may be called concurrently on different
// images. The filter chain and structuring element are package-level values
// that are never mutated.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during loading
//   - Content that no registered decoder accepts (ErrDecode)
//   - Images with empty bounds (ErrMalformedImage)
package imaging
