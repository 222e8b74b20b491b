// Package results persists the outcome of analysing one image.
package results

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ironsheep/image-contours/internal/detection"
	"github.com/ironsheep/image-contours/internal/render"
)

// Output file names inside an image's output directory.
const (
	DataFile   = "data.txt"
	FigureFile = "contours.png"

	dirPrefix = "out_"
)

// FileMode is the permission of published result files.
const FileMode os.FileMode = 0o644

// FigureOptions are the settings the figure is saved with.
var FigureOptions = render.SaveOptions{DPI: 80, Tight: true}

// Dir returns the output directory for imageName under outputRoot.
func Dir(outputRoot, imageName string) string {
	return filepath.Join(outputRoot, dirPrefix+imageName)
}

// Summary returns the text recorded in DataFile for set.
func Summary(set detection.ContourSet) string {
	return fmt.Sprintf("Contour count: %d\n", len(set))
}

// Write stores the contour summary and the rendered figure for one image in
// Dir(outputRoot, imageName), creating directories as needed and replacing
// any previous results.
//
// Both files are staged next to their destination and renamed into place
// only after both have been written, so a failure leaves earlier results
// untouched and no partial files behind. An output directory created by a
// failed call is removed again.
func Write(set detection.ContourSet, imageName, outputRoot string, fig render.Renderable) (err error) {
	dir := Dir(outputRoot, imageName)
	_, statErr := os.Stat(dir)
	created := os.IsNotExist(statErr)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	if created {
		// Runs after the staged files below are removed.
		defer func() {
			if err != nil {
				os.Remove(dir)
			}
		}()
	}

	dataTmp, err := stage(dir, DataFile, func(path string) error {
		return os.WriteFile(path, []byte(Summary(set)), FileMode)
	})
	if err != nil {
		return errors.Wrap(err, "failed to write contour summary")
	}
	defer os.Remove(dataTmp)

	figTmp, err := stage(dir, FigureFile, func(path string) error {
		return fig.Save(path, FigureOptions)
	})
	if err != nil {
		return errors.Wrap(err, "failed to save figure")
	}
	defer os.Remove(figTmp)

	if err := os.Rename(dataTmp, filepath.Join(dir, DataFile)); err != nil {
		return errors.Wrap(err, "failed to publish contour summary")
	}
	if err := os.Rename(figTmp, filepath.Join(dir, FigureFile)); err != nil {
		return errors.Wrap(err, "failed to publish figure")
	}
	return nil
}

// stage reserves a temporary file in dir, fills it with fill and returns its
// path. The file is removed if fill fails.
func stage(dir, name string, fill func(path string) error) (string, error) {
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	if err := fill(path); err != nil {
		os.Remove(path)
		return "", err
	}
	// Temporary files start out owner-only.
	if err := os.Chmod(path, FileMode); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
