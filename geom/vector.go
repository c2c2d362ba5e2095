/*package geom contains the vector algebra used to turn picked image
coordinates into directions.

Positions and directions are separate types. Every operation which produces a
displacement, a sum of displacements, or a unit vector returns a Direction3,
and only Direction3 values can be normalized or crossed. A Point3 can only be
turned into a Direction3 by subtracting another Point3 from it.
*/
package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/s1"
)

// ErrInvalidArgument is wrapped by every error returned for inputs which
// violate a function's preconditions.
var ErrInvalidArgument = errors.New("invalid argument")

// Point3 is a located point in three dimensions.
type Point3 struct {
	X, Y, Z float64
}

// Direction3 is an orientation or displacement in three dimensions. It has no
// location.
type Direction3 struct {
	X, Y, Z float64
}

// Sub returns the displacement which takes p2 to p1.
func (p1 Point3) Sub(p2 Point3) Direction3 {
	return Direction3{p1.X - p2.X, p1.Y - p2.Y, p1.Z - p2.Z}
}

// Translate returns p moved along d.
func (p Point3) Translate(d Direction3) Point3 {
	return Point3{p.X + d.X, p.Y + d.Y, p.Z + d.Z}
}

// Point returns the position reached by moving along d from the origin.
func (d Direction3) Point() Point3 {
	return Point3{d.X, d.Y, d.Z}
}

// Add returns the component-wise sum of v1 and v2.
func Add(v1, v2 Direction3) Direction3 {
	return Direction3{v1.X + v2.X, v1.Y + v2.Y, v1.Z + v2.Z}
}

// Dot returns the scalar product of v1 and v2.
func Dot(v1, v2 Direction3) float64 {
	return v1.X*v2.X + v1.Y*v2.Y + v1.Z*v2.Z
}

// Multiply scales v by n.
func Multiply(n float64, v Direction3) Direction3 {
	return Direction3{n * v.X, n * v.Y, n * v.Z}
}

// Cross returns the right-handed cross product v1 x v2. The result is the
// zero vector if v1 and v2 are parallel or if either is zero.
func Cross(v1, v2 Direction3) Direction3 {
	return Direction3{
		v1.Y*v2.Z - v1.Z*v2.Y,
		v1.Z*v2.X - v1.X*v2.Z,
		v1.X*v2.Y - v1.Y*v2.X,
	}
}

// Length returns the Euclidean magnitude of v. It does not overflow or
// underflow unless the magnitude itself is out of range.
func Length(v Direction3) float64 {
	return math.Hypot(math.Hypot(v.X, v.Y), v.Z)
}

// Normalize returns the unit vector pointing along v. v must be finite and
// non-zero.
func Normalize(v Direction3) (Direction3, error) {
	scale := math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
	if math.IsInf(scale, 0) || math.IsNaN(v.X+v.Y+v.Z) {
		return Direction3{}, fmt.Errorf(
			"geom: cannot normalize non-finite direction %v: %w",
			v, ErrInvalidArgument,
		)
	} else if scale == 0 {
		return Direction3{}, fmt.Errorf(
			"geom: cannot normalize zero-length direction: %w",
			ErrInvalidArgument,
		)
	}

	// Dividing by the largest component first keeps the length in range.
	u := Direction3{v.X / scale, v.Y / scale, v.Z / scale}
	length := Length(u)
	return Direction3{u.X / length, u.Y / length, u.Z / length}, nil
}

// AngleBetween returns the angle between v1 and v2. It is accurate for nearly
// parallel vectors, where an arccos of the dot product is not. The angle
// between a zero vector and anything is zero.
func AngleBetween(v1, v2 Direction3) s1.Angle {
	return s1.Angle(math.Atan2(Length(Cross(v1, v2)), Dot(v1, v2))) * s1.Radian
}

// Deg2Rad converts an angle in degrees to radians.
func Deg2Rad(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

// Rad2Deg converts an angle in radians to degrees.
func Rad2Deg(rad float64) float64 {
	return (s1.Angle(rad) * s1.Radian).Degrees()
}
