// Package detection finds and describes iso-intensity contours in a
// preprocessed intensity field.
//
// # Algorithm Overview
//
//  1. Marching squares: every 2x2 cell whose corners straddle the level emits
//     one or two boundary segments, with end points interpolated linearly
//     along the cell edges (sub-pixel precision).
//  2. Assembly: segments sharing end points are chained into contours. Closed
//     regions produce closed contours; regions cut by the image border
//     produce open ones.
//  3. Labelling: contours keep the raster order in which they were first
//     discovered, and that index is the label shown in rendered output.
//
// # Coordinate System
//
// Points use matrix coordinates: Row increases downward, Col increases
// rightward, and integral values are pixel centres. This matches the field
// returned by imaging.Preprocess.
//
// # Limitations
//
// The level is fixed (Level). Nested regions (holes) produce their own
// contours, which count towards the total like any other.
package detection
