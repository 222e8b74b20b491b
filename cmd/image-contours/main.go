package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/ironsheep/image-contours/internal/analysis"
	"github.com/ironsheep/image-contours/internal/config"
	"github.com/ironsheep/image-contours/internal/logger"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	flagOutput   = "output"
	flagWorkers  = "workers"
	flagLogLevel = "log-level"
)

func init() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "image-contours %s\n", c.App.Version)
		fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "image-contours",
		Usage:           "detect and label contour regions in images",
		ArgsUsage:       "PATH",
		Version:         Version,
		HideHelpCommand: true,
		Description: "PATH is an image file or a directory of images (not searched recursively).\n" +
			"Each image <name>.<ext> produces <output>/out_<name>/data.txt and contours.png.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "write results under `DIR` (default: a results directory beside PATH)",
			},
			&cli.IntFlag{
				Name:  flagWorkers,
				Value: 1,
				Usage: "analyse up to `N` images of a directory at once",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "log `LEVEL`: debug, info, warn or error",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one PATH is required (see --help)", 1)
	}

	if err := logger.SetLevel(c.String(flagLogLevel)); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	cfg := config.Config{
		InputPath:  c.Args().First(),
		OutputRoot: c.String(flagOutput),
		Workers:    c.Int(flagWorkers),
		LogLevel:   c.String(flagLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger.WithFields(logrus.Fields{
		"input":   cfg.InputPath,
		"output":  cfg.OutputRoot,
		"workers": cfg.Workers,
		"version": Version,
	}).Debug("starting analysis")

	analyser := analysis.New(analysis.WithWorkers(cfg.Workers))
	if err := analyser.Analyse(cfg.InputPath, cfg.OutputRoot); err != nil {
		failures := multierr.Errors(err)
		if len(failures) == 1 {
			return cli.Exit(err.Error(), 1)
		}
		return cli.Exit(fmt.Sprintf("%d images failed", len(failures)), 1)
	}
	logger.WithField("output", cfg.OutputRoot).Info("analysis complete")
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.WithError(err).Error("image-contours failed")
		os.Exit(1)
	}
}
