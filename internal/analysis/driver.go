// Package analysis drives contour analysis over a single image or a
// directory of images.
//
// Each image runs through decode, preprocess, extract, render and write in
// isolation; nothing is shared between images. A failing image never stops
// a batch: its error is logged, recorded, and returned together with any
// other failures once every image has been tried.
package analysis

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-contours/internal/detection"
	"github.com/ironsheep/image-contours/internal/imaging"
	"github.com/ironsheep/image-contours/internal/logger"
	"github.com/ironsheep/image-contours/internal/render"
	"github.com/ironsheep/image-contours/internal/results"
)

// Analyser runs the contour pipeline over input paths.
type Analyser struct {
	workers int
	log     *logrus.Logger
}

// Option configures an Analyser.
type Option func(*Analyser)

// WithWorkers sets how many images of a directory are analysed at once.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(a *Analyser) {
		if n >= 1 {
			a.workers = n
		}
	}
}

// WithLogger replaces the shared logger.
func WithLogger(l *logrus.Logger) Option {
	return func(a *Analyser) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an Analyser that processes one image at a time and logs to
// logger.Logger unless configured otherwise.
func New(opts ...Option) *Analyser {
	a := &Analyser{workers: 1, log: logger.Logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyse processes path, which must be an image file or a directory of
// image files, writing results under outputRoot.
//
// Directories are not descended into: only their regular files are
// analysed, in name order. The returned error combines every per-image
// failure; use multierr.Errors to inspect them individually.
func (a *Analyser) Analyse(path, outputRoot string) error {
	info, err := os.Stat(path)
	if err != nil {
		return newError(KindInvalidInputPath, path, err)
	}

	switch {
	case info.Mode().IsRegular():
		return a.AnalyseImage(path, outputRoot)
	case info.IsDir():
		return a.analyseDir(path, outputRoot)
	default:
		return newError(KindInvalidInputPath, path, errors.New("not a regular file or directory"))
	}
}

func (a *Analyser) analyseDir(dir, outputRoot string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return newError(KindFilesystem, dir, errors.Wrap(err, "failed to list directory"))
	}

	var (
		paths []string
		errs  error
	)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat follows symlinks, so linked files count as images.
		info, err := os.Stat(path)
		if err != nil {
			errs = multierr.Append(errs, newError(KindFilesystem, path, err))
			continue
		}
		if !info.Mode().IsRegular() {
			a.log.WithField("path", path).Debug("skipping non-file entry")
			continue
		}
		paths = append(paths, path)
	}

	a.log.WithFields(logrus.Fields{
		"dir":     dir,
		"images":  len(paths),
		"workers": a.workers,
	}).Info("analysing directory")

	failures := make([]error, len(paths))
	if a.workers <= 1 {
		for i, path := range paths {
			failures[i] = a.AnalyseImage(path, outputRoot)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(a.workers)
		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				failures[i] = a.AnalyseImage(path, outputRoot)
				return nil
			})
		}
		_ = g.Wait()
	}

	return multierr.Combine(append([]error{errs}, failures...)...)
}

// AnalyseImage runs the full pipeline for the single image at path and
// writes its results to results.Dir(outputRoot, ImageName(path)).
func (a *Analyser) AnalyseImage(path, outputRoot string) error {
	name := ImageName(path)
	log := a.log.WithFields(logrus.Fields{"path": path, "name": name})

	count, err := a.analyseImage(path, name, outputRoot, log)
	if err != nil {
		log.WithError(err).Error("image analysis failed")
		return err
	}

	log.WithFields(logrus.Fields{
		"contours": count,
		"output":   results.Dir(outputRoot, name),
	}).Info("image analysed")
	return nil
}

func (a *Analyser) analyseImage(path, name, outputRoot string, log *logrus.Entry) (int, error) {
	img, err := imaging.Load(path)
	if err != nil {
		if errors.Is(err, imaging.ErrDecode) {
			return 0, newError(KindDecode, path, err)
		}
		return 0, newError(KindFilesystem, path, err)
	}

	if a.log.IsLevelEnabled(logrus.DebugLevel) {
		if info, err := imaging.Describe(path, img); err == nil {
			log.WithFields(logrus.Fields{
				"width":  info.Width,
				"height": info.Height,
				"format": info.Format,
				"depth":  info.ColorDepth,
				"alpha":  info.HasAlpha,
				"bytes":  info.FileSizeBytes,
			}).Debug("image decoded")
		}
	}

	field, err := imaging.Preprocess(img)
	if err != nil {
		return 0, newError(KindMalformedImage, path, err)
	}

	set := detection.Extract(field)
	open := 0
	for _, c := range set {
		if !c.Closed() {
			open++
		}
	}
	log.WithFields(logrus.Fields{
		"contours": len(set),
		"open":     open,
	}).Debug("contours extracted")

	fig, err := render.Render(field, set)
	if err != nil {
		return 0, newError(KindRender, path, err)
	}

	if err := results.Write(set, name, outputRoot, fig); err != nil {
		return 0, newError(KindFilesystem, path, err)
	}
	return len(set), nil
}

// ImageName returns the name results for path are stored under: the base
// file name up to its first dot, so "dir/a.b.png" becomes "a".
func ImageName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}
