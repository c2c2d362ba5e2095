package io

import (
	"fmt"
	"math"

	"gopkg.in/gcfg.v1"
)

const (
	ExampleCalibrateFile = `[Calibrate]

#######################
# Required Parameters #
#######################

# Text file containing the picked stars and plumb line endpoints. Each line
# has four whitespace-separated columns:
#     kind id x y
# kind is 0 for a star and 1 for a plumb line endpoint. For stars, id is the
# star's label. Each plumb line is given as two endpoint rows sharing an id.
# x and y are image pixels, with y increasing downwards.
Picks = path/to/picks.txt

# Focal length of the camera, in pixels. If you know the focal length in mm,
# this is FocalLengthMM * ImageWidthPixels / SensorWidthMM.
FocalLength = 3000

#######################
# Optional Parameters #
#######################

# Principal point of the image, in pixels. Defaults to the origin, so you
# almost certainly want to set these to half the image width and height.
# CenterX = 2000
# CenterY = 1500

# Plumb lines whose planes miss the consensus vertical by more than Sigma
# standard deviations are thrown out. Default is 2.
# Sigma = 2

# If set, a plot of each plumb line's residual is saved here.
# PlotFile = residuals.png

# If set, log messages are written here instead of stderr.
# LogFile = log.out`
)

type CalibrateConfig struct {
	// Required
	Picks       string
	FocalLength float64

	// Optional
	CenterX, CenterY float64
	Sigma            float64
	PlotFile         string
	LogFile          string
}

type CalibrateWrapper struct {
	Calibrate CalibrateConfig
}

func DefaultCalibrateWrapper() *CalibrateWrapper {
	cfg := CalibrateConfig{Sigma: 2}
	return &CalibrateWrapper{cfg}
}

func (con *CalibrateConfig) ValidPicks() bool {
	return con.Picks != ""
}

func (con *CalibrateConfig) ValidFocalLength() bool {
	return con.FocalLength > 0 && !math.IsInf(con.FocalLength, 0)
}

func (con *CalibrateConfig) ValidSigma() bool {
	return con.Sigma > 0 && !math.IsInf(con.Sigma, 0)
}

func (con *CalibrateConfig) ValidCenter() bool {
	return !math.IsNaN(con.CenterX) && !math.IsInf(con.CenterX, 0) &&
		!math.IsNaN(con.CenterY) && !math.IsInf(con.CenterY, 0)
}

func (con *CalibrateConfig) ValidPlotFile() bool {
	return con.PlotFile != ""
}

func (con *CalibrateConfig) ValidLogFile() bool {
	return con.LogFile != ""
}

// CheckInit returns a descriptive error if any required parameter is missing
// or any parameter has an invalid value.
func (con *CalibrateConfig) CheckInit() error {
	if !con.ValidPicks() {
		return fmt.Errorf("Invalid/non-existent 'Picks' value.")
	} else if !con.ValidFocalLength() {
		return fmt.Errorf(
			"'FocalLength' must be positive, but is %g.", con.FocalLength,
		)
	} else if !con.ValidSigma() {
		return fmt.Errorf("'Sigma' must be positive, but is %g.", con.Sigma)
	} else if !con.ValidCenter() {
		return fmt.Errorf(
			"'CenterX' and 'CenterY' must be finite, but are %g and %g.",
			con.CenterX, con.CenterY,
		)
	}
	return nil
}

// ReadCalibrateConfig reads and checks the [Calibrate] section of the given
// config file.
func ReadCalibrateConfig(fname string) (*CalibrateConfig, error) {
	wrap := DefaultCalibrateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.Calibrate.CheckInit(); err != nil {
		return nil, err
	}
	return &wrap.Calibrate, nil
}
