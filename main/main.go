package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	plt "github.com/phil-mansfield/pyplot"
	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/plumb/calib"
	"github.com/phil-mansfield/plumb/io"
)

// mode is a mutually exclusive run mode, selected by setting its flag.
type mode struct {
	name, usage string
	arg         string
}

func main() {
	modes := []*mode{
		{name: "Calibrate", usage: "Configuration file for [Calibrate] mode."},
		{
			name: "ExampleConfig",
			usage: "Prints an example configuration file of the specified " +
				"type to stdout. The only accepted argument is 'Calibrate'.",
		},
	}
	for _, m := range modes {
		flag.StringVar(&m.arg, m.name, "", m.usage)
	}
	flag.Parse()

	m, err := selectMode(modes)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch m.name {
	case "Calibrate":
		con, err := io.ReadCalibrateConfig(m.arg)
		if err != nil {
			log.Fatal(err.Error())
		}
		if con.ValidLogFile() {
			f, err := os.Create(con.LogFile)
			if err != nil {
				log.Fatal(err.Error())
			}
			defer f.Close()
			log.SetOutput(f)
		}
		calibrateMain(con)

	case "ExampleConfig":
		switch m.arg {
		case "Calibrate":
			fmt.Println(io.ExampleCalibrateFile)
		default:
			log.Fatalf(
				"Unrecognized 'ExampleConfig' argument '%s'. The only "+
					"recognized argument is 'Calibrate'.", m.arg,
			)
		}
	default:
		panic("Impossible")
	}
}

// selectMode returns the single mode whose flag was set, or a descriptive
// error naming every mode if none or several were.
func selectMode(modes []*mode) (*mode, error) {
	var set []*mode
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = "-" + m.name
		if m.arg != "" {
			set = append(set, m)
		}
	}

	switch len(set) {
	case 1:
		return set[0], nil
	case 0:
		return nil, fmt.Errorf(
			"No mode given. Set exactly one of %s.", strings.Join(names, ", "),
		)
	}

	setNames := make([]string, len(set))
	for i, m := range set {
		setNames[i] = "-" + m.name
	}
	sort.Strings(setNames)
	return nil, fmt.Errorf(
		"%s were all set, but plumb runs one mode at a time.",
		strings.Join(setNames, " and "),
	)
}

// calibrateMain reads picks, calibrates them, and prints one line per star.
func calibrateMain(con *io.CalibrateConfig) {
	stars, lines, err := io.ReadPicks(con.Picks)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.WithFields(log.Fields{
		"stars": len(stars), "plumb_lines": len(lines),
	}).Info("Read picks")

	cam := &calib.Camera{
		FocalLength: con.FocalLength,
		CenterX:     con.CenterX, CenterY: con.CenterY,
	}
	res, err := calib.Calibrate(cam, stars, lines, con.Sigma)
	if err != nil {
		log.Fatal(err.Error())
	}

	v := res.Vertical
	log.WithFields(log.Fields{
		"vertical": fmt.Sprintf("%.6f %.6f %.6f",
			v.Direction.X, v.Direction.Y, v.Direction.Z),
		"scatter_deg": v.Scatter,
		"rejected":    v.Rejected(),
	}).Info("Estimated vertical")
	log.WithFields(log.Fields{
		"phi_deg": res.Camera.Phi, "theta_deg": res.Camera.Theta,
		"psi_deg": res.Camera.Psi,
	}).Info("Camera orientation in the plumb frame")
	for i, ok := range v.Kept {
		if !ok {
			log.Warnf(
				"Rejected plumb line %d, which misses the vertical by %.3g "+
					"degrees.", lines[i].ID, v.Residuals[i],
			)
		}
	}

	for _, line := range formatStars(res.Stars) {
		fmt.Println(line)
	}

	if con.ValidPlotFile() {
		plotResiduals(lines, v, con.PlotFile)
		plt.Execute()
	}
}

// formatStars returns the output table: a header and one line per star.
func formatStars(stars []calib.StarDirection) []string {
	out := []string{"# ID Altitude(deg) Dx Dy Dz"}
	for _, s := range stars {
		out = append(out, fmt.Sprintf(
			"%4d %10.5f %9.6f %9.6f %9.6f", s.ID, s.Altitude,
			s.Direction.X, s.Direction.Y, s.Direction.Z,
		))
	}
	return out
}

// plotResiduals plots the residual of every plumb line against its ID, with
// rejected lines in red.
func plotResiduals(lines []calib.PlumbLine, v *calib.Vertical, fname string) {
	keptIDs, keptRes := []float64{}, []float64{}
	rejIDs, rejRes := []float64{}, []float64{}
	for i := range lines {
		if v.Kept[i] {
			keptIDs = append(keptIDs, float64(lines[i].ID))
			keptRes = append(keptRes, v.Residuals[i])
		} else {
			rejIDs = append(rejIDs, float64(lines[i].ID))
			rejRes = append(rejRes, v.Residuals[i])
		}
	}

	plt.Figure()
	plt.Plot(keptIDs, keptRes, "ok")
	if len(rejIDs) > 0 {
		plt.Plot(rejIDs, rejRes, "or")
	}
	if len(lines) > 0 {
		lo, hi := float64(lines[0].ID), float64(lines[len(lines)-1].ID)
		plt.Plot(
			[]float64{lo, hi}, []float64{v.Scatter, v.Scatter},
			"b", plt.LW(2),
		)
	}

	plt.Title(fmt.Sprintf("%d of %d plumb lines rejected",
		v.Rejected(), len(lines)))
	plt.XLabel("Plumb line ID", plt.FontSize(16))
	plt.YLabel("Residual [deg]", plt.FontSize(16))
	plt.SaveFig(fname)
}
