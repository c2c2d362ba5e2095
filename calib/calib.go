/*package calib calibrates the directions of stars picked out of a photograph
against plumb lines picked out of the same photograph.

The camera is modeled as a pinhole. A picked pixel defines a ray out of the
camera. The two endpoints of a plumb line define a plane through the camera
which contains the local vertical, so any two non-parallel plumb planes
intersect along the vertical. Every pair of plumb lines gives one estimate of
the vertical. Lines whose planes disagree with the consensus are rejected
before the final estimate is made.
*/
package calib

import (
	"errors"
	"fmt"
	"math"

	"github.com/phil-mansfield/plumb/geom"
	"github.com/phil-mansfield/plumb/stats"
)

// ErrTooFewPlumbLines is returned when the plumb lines cannot constrain the
// vertical: there are fewer than two, or all of their planes are parallel.
var ErrTooFewPlumbLines = errors.New("too few independent plumb lines")

// residualFloor is the residual, in degrees, below which a plumb line is
// never rejected. Anything smaller is rounding error.
const residualFloor = 1e-6

// degenerateEps is the sine of the angle between two plumb planes below which
// they are treated as parallel.
const degenerateEps = 1e-9

var (
	cameraUp   = geom.Direction3{Y: 1}
	cameraAxis = geom.Direction3{Z: 1}
)

// Pixel is a position on the image. Y increases downwards.
type Pixel struct {
	X, Y float64
}

// Star is a picked star.
type Star struct {
	ID int
	Pixel
}

// PlumbLine is a picked line segment known to be vertical.
type PlumbLine struct {
	ID   int
	A, B Pixel
}

// Camera is a pinhole camera. FocalLength and the principal point are in
// pixels.
type Camera struct {
	FocalLength      float64
	CenterX, CenterY float64
}

// Check returns an error if the camera cannot map pixels to rays.
func (cam *Camera) Check() error {
	if !(cam.FocalLength > 0) || math.IsInf(cam.FocalLength, 0) {
		return fmt.Errorf(
			"calib: focal length must be positive, but is %g: %w",
			cam.FocalLength, geom.ErrInvalidArgument,
		)
	}
	return nil
}

// Ray returns the direction, in the camera frame, of the ray through px. The
// camera frame has x to the right, y up, and z along the optical axis.
func (cam *Camera) Ray(px Pixel) geom.Direction3 {
	onImage := geom.Point3{
		X: px.X - cam.CenterX, Y: cam.CenterY - px.Y, Z: cam.FocalLength,
	}
	return onImage.Sub(geom.Point3{})
}

// PlumbNormal returns the unit normal of the plane containing the camera and
// both endpoints of l.
func (cam *Camera) PlumbNormal(l PlumbLine) (geom.Direction3, error) {
	n, err := geom.Normalize(geom.Cross(cam.Ray(l.A), cam.Ray(l.B)))
	if err != nil {
		return geom.Direction3{}, fmt.Errorf(
			"calib: plumb line %d endpoints %v and %v coincide: %w",
			l.ID, l.A, l.B, err,
		)
	}
	return n, nil
}

// orient flips d so that it lies in the same hemisphere as ref. Directions
// perpendicular to ref are oriented along the optical axis instead.
func orient(d, ref geom.Direction3) geom.Direction3 {
	dot := geom.Dot(d, ref)
	if dot == 0 {
		dot = geom.Dot(d, cameraAxis)
	}
	if dot < 0 {
		return geom.Multiply(-1, d)
	}
	return d
}

func plumbNormals(cam *Camera, lines []PlumbLine) ([]geom.Direction3, error) {
	if err := cam.Check(); err != nil {
		return nil, err
	}

	ns := make([]geom.Direction3, len(lines))
	for i := range lines {
		var err error
		if ns[i], err = cam.PlumbNormal(lines[i]); err != nil {
			return nil, err
		}
	}
	return ns, nil
}

// pairCandidates returns the vertical implied by every non-parallel pair of
// planes with use[i] set, oriented toward ref.
func pairCandidates(
	ns []geom.Direction3, use []bool, ref geom.Direction3,
) []geom.Direction3 {
	cands := []geom.Direction3{}
	for i := range ns {
		if !use[i] {
			continue
		}
		for j := i + 1; j < len(ns); j++ {
			if !use[j] {
				continue
			}
			c := geom.Cross(ns[i], ns[j])
			if geom.Length(c) < degenerateEps {
				continue
			}
			c, err := geom.Normalize(c)
			if err != nil {
				continue
			}
			cands = append(cands, orient(c, ref))
		}
	}
	return cands
}

func allTrue(n int) []bool {
	bs := make([]bool, n)
	for i := range bs {
		bs[i] = true
	}
	return bs
}

// VerticalCandidates returns one unit estimate of the vertical, in the camera
// frame, for every pair of plumb lines whose planes are not parallel. Each is
// oriented toward the top of the image.
func VerticalCandidates(cam *Camera, lines []PlumbLine) ([]geom.Direction3, error) {
	if len(lines) < 2 {
		return nil, fmt.Errorf(
			"calib: %d plumb line(s) given, need at least 2: %w",
			len(lines), ErrTooFewPlumbLines,
		)
	}

	ns, err := plumbNormals(cam, lines)
	if err != nil {
		return nil, err
	}

	cands := pairCandidates(ns, allTrue(len(ns)), cameraUp)
	if len(cands) == 0 {
		return nil, fmt.Errorf(
			"calib: all %d plumb lines lie in parallel planes: %w",
			len(lines), ErrTooFewPlumbLines,
		)
	}
	return cands, nil
}

// Vertical is a robust estimate of the vertical direction.
type Vertical struct {
	// Direction is the unit vertical in the camera frame.
	Direction geom.Direction3
	// Candidates are the pairwise estimates the median was taken over.
	Candidates []geom.Direction3
	// Residuals is the angle, in degrees, by which each plumb line's plane
	// misses Direction.
	Residuals []float64
	// Kept reports which plumb lines were used for Direction.
	Kept []bool
	// Scatter is the median residual of the kept lines, in degrees.
	Scatter float64
}

// Rejected returns the number of plumb lines that were thrown out.
func (v *Vertical) Rejected() int {
	n := 0
	for _, ok := range v.Kept {
		if !ok {
			n++
		}
	}
	return n
}

// medianDirection returns the normalized component-wise median of ds.
func medianDirection(ds []geom.Direction3) (geom.Direction3, error) {
	xs, ys, zs := make([]float64, len(ds)), make([]float64, len(ds)),
		make([]float64, len(ds))
	for i, d := range ds {
		xs[i], ys[i], zs[i] = d.X, d.Y, d.Z
	}

	var m geom.Direction3
	var err error
	if m.X, err = stats.Median(xs); err != nil {
		return geom.Direction3{}, err
	}
	if m.Y, err = stats.Median(ys); err != nil {
		return geom.Direction3{}, err
	}
	if m.Z, err = stats.Median(zs); err != nil {
		return geom.Direction3{}, err
	}
	return geom.Normalize(m)
}

// meanDirection returns the normalized sum of ds.
func meanDirection(ds []geom.Direction3) (geom.Direction3, error) {
	var sum geom.Direction3
	for _, d := range ds {
		sum = geom.Add(sum, d)
	}
	return geom.Normalize(geom.Multiply(1/float64(len(ds)), sum))
}

func residuals(ns []geom.Direction3, v geom.Direction3) []float64 {
	res := make([]float64, len(ns))
	for i := range ns {
		angle := geom.Rad2Deg(geom.AngleBetween(ns[i], v).Radians())
		res[i] = math.Abs(90 - angle)
	}
	return res
}

// EstimateVertical finds the vertical direction implied by lines. A first
// estimate is the component-wise median over all pairwise candidates. Lines
// whose planes miss it by an outlying angle, at the given sigma threshold,
// are dropped and the vertical is re-estimated as the mean of the remaining
// candidates. If fewer than two lines survive, none are dropped.
func EstimateVertical(
	cam *Camera, lines []PlumbLine, sigma float64,
) (*Vertical, error) {
	cands, err := VerticalCandidates(cam, lines)
	if err != nil {
		return nil, err
	}
	ns, err := plumbNormals(cam, lines)
	if err != nil {
		return nil, err
	}

	center, err := medianDirection(cands)
	if err != nil {
		return nil, fmt.Errorf("calib: no consensus vertical: %w", err)
	}

	res := residuals(ns, center)
	kept, err := stats.OutlierMask(res, sigma)
	if err != nil {
		return nil, err
	}
	nKept := 0
	for i := range kept {
		kept[i] = kept[i] || res[i] < residualFloor
		if kept[i] {
			nKept++
		}
	}
	if nKept < 2 {
		kept = allTrue(len(ns))
	}

	dir := center
	if keptCands := pairCandidates(ns, kept, center); len(keptCands) > 0 {
		if dir, err = meanDirection(keptCands); err != nil {
			return nil, fmt.Errorf("calib: kept plumb lines cancel out: %w", err)
		}
	}

	v := &Vertical{
		Direction: dir, Candidates: cands,
		Residuals: residuals(ns, dir), Kept: kept,
	}

	keptRes := []float64{}
	for i, ok := range kept {
		if ok {
			keptRes = append(keptRes, v.Residuals[i])
		}
	}
	if v.Scatter, err = stats.Median(keptRes); err != nil {
		return nil, err
	}

	return v, nil
}

// StarDirection is the calibrated direction toward a star.
type StarDirection struct {
	ID int
	// Ray is the unit direction in the camera frame.
	Ray geom.Direction3
	// Direction is the unit direction in the plumb frame, where +Z is up.
	Direction geom.Direction3
	// Altitude is the angle above the horizontal plane, in degrees.
	Altitude float64
}

// Orientation gives the rotation from the camera frame into the plumb frame
// as the Euler angles of geom.EulerMatrix, in degrees.
type Orientation struct {
	Phi, Theta, Psi float64
}

// Matrix returns the rotation described by o.
func (o Orientation) Matrix() geom.Matrix {
	return geom.EulerMatrix(
		geom.Deg2Rad(o.Phi), geom.Deg2Rad(o.Theta), geom.Deg2Rad(o.Psi),
	)
}

func orientation(m geom.Matrix) Orientation {
	phi, theta, psi := geom.EulerAngles(m)
	return Orientation{geom.Rad2Deg(phi), geom.Rad2Deg(theta), geom.Rad2Deg(psi)}
}

// Result is the output of Calibrate.
type Result struct {
	Vertical *Vertical
	// Camera is the camera's orientation relative to the plumb frame.
	Camera Orientation
	Stars  []StarDirection
}

// Calibrate estimates the vertical from lines and uses it to find the
// direction and altitude of every star.
func Calibrate(
	cam *Camera, stars []Star, lines []PlumbLine, sigma float64,
) (*Result, error) {
	v, err := EstimateVertical(cam, lines, sigma)
	if err != nil {
		return nil, err
	}

	toPlumb, err := geom.AlignToZ(v.Direction)
	if err != nil {
		return nil, err
	}

	out := make([]StarDirection, len(stars))
	for i, s := range stars {
		ray, err := geom.Normalize(cam.Ray(s.Pixel))
		if err != nil {
			return nil, fmt.Errorf("calib: star %d: %w", s.ID, err)
		}

		zenithAngle := geom.AngleBetween(ray, v.Direction).Radians()
		out[i] = StarDirection{
			ID: s.ID, Ray: ray,
			Direction: ray.Rotate(toPlumb),
			Altitude:  90 - geom.Rad2Deg(zenithAngle),
		}
	}

	return &Result{Vertical: v, Camera: orientation(toPlumb), Stars: out}, nil
}

// Separation returns the angle between two calibrated stars, in degrees.
func Separation(s1, s2 *StarDirection) float64 {
	return geom.Rad2Deg(geom.AngleBetween(s1.Direction, s2.Direction).Radians())
}
