package detection

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Level is the iso-intensity threshold, on the normalized [0, 1] scale, at
// which region boundaries are traced.
const Level = 0.2

// Point is a sub-pixel position in matrix coordinates.
//
// Row grows downward and Col grows rightward; integer values fall on pixel
// centres.
type Point struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// Contour is an ordered sequence of boundary points. A closed contour repeats
// its first point at the end.
type Contour []Point

// Closed reports whether the contour ends where it starts.
func (c Contour) Closed() bool {
	return len(c) > 1 && c[0] == c[len(c)-1]
}

// Centroid returns the arithmetic mean of the contour's points, with rows and
// columns averaged independently. Every point counts, so the repeated end
// point of a closed contour is weighted twice.
func (c Contour) Centroid() Point {
	if len(c) == 0 {
		return Point{}
	}
	rows := make([]float64, len(c))
	cols := make([]float64, len(c))
	for i, p := range c {
		rows[i] = p.Row
		cols[i] = p.Col
	}
	return Point{Row: stat.Mean(rows, nil), Col: stat.Mean(cols, nil)}
}

// ContourSet holds every contour found in one image in detection order.
// A contour's index in the set is its label.
type ContourSet []Contour

// Centroids returns the centroid of each contour, index-aligned with the set.
func (s ContourSet) Centroids() []Point {
	out := make([]Point, len(s))
	for i, c := range s {
		out[i] = c.Centroid()
	}
	return out
}

// Extract finds the contours of a preprocessed intensity field at Level.
func Extract(field mat.Matrix) ContourSet {
	return FindContours(field, Level)
}

// FindContours traces iso-valued contours of field at the given level using
// marching squares.
//
// Cells whose corners straddle the level emit line segments with end points
// linearly interpolated along the cell edges; segments are then chained into
// contours. Contours are returned in the order their first segment was found
// in a row-major scan, which is the order used for labelling.
//
// # Conventions
//
//   - Values strictly greater than level are inside.
//   - Ambiguous saddle cells join the low-valued corners, so diagonally
//     touching bright pixels form separate contours.
//   - Cells touching a NaN are skipped, which may leave contours open.
//   - A field with fewer than two rows or columns has no contours.
func FindContours(field mat.Matrix, level float64) ContourSet {
	segments := contourSegments(field, level)
	chains := assembleContours(segments)

	set := make(ContourSet, 0, len(chains))
	for _, c := range chains {
		if len(c) < 2 {
			continue
		}
		set = append(set, c)
	}
	return set
}
