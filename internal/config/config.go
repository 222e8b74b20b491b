// Package config holds the settings for one image-contours run.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultResultsDir is the name of the output directory created next to the
// input when no output root is given.
const DefaultResultsDir = "results"

// Config is the validated input to a run.
type Config struct {
	// InputPath is an image file or a directory of images.
	InputPath string

	// OutputRoot receives one out_<name> directory per image. Empty selects
	// DefaultOutputRoot(InputPath).
	OutputRoot string

	// Workers bounds how many images are analysed at once.
	Workers int

	// LogLevel is a logrus level name.
	LogLevel string
}

// DefaultOutputRoot returns the results directory beside path.
func DefaultOutputRoot(path string) string {
	return filepath.Join(filepath.Dir(path), DefaultResultsDir)
}

// Validate checks the configuration and fills in the output root.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("an input path is required")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return errors.Wrapf(err, "cannot use input path %s", c.InputPath)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.OutputRoot == "" {
		c.OutputRoot = DefaultOutputRoot(c.InputPath)
	}
	return nil
}
