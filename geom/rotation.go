package geom

import (
	"fmt"
	. "math"
)

// Matrix is a 3x3 matrix stored in row-major order.
type Matrix [9]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// EulerMatrix creates a 3D rotation matrix based off the Euler angles phi,
// theta, and psi. These represent three consecutive rotations around the x,
// y, and z axes, respectively.
func EulerMatrix(phi, theta, psi float64) Matrix {
	return Matrix{
		Cos(theta) * Cos(psi),
		Cos(phi)*Sin(psi) + Sin(phi)*Sin(theta)*Cos(psi),
		Sin(phi)*Sin(psi) - Cos(phi)*Sin(theta)*Cos(psi),
		-Cos(theta) * Sin(psi),
		Cos(phi)*Cos(psi) - Sin(phi)*Sin(theta)*Sin(psi),
		Sin(phi)*Cos(psi) + Cos(phi)*Sin(theta)*Sin(psi),
		Sin(theta),
		-Sin(phi) * Cos(theta),
		Cos(phi) * Cos(theta),
	}
}

// gimbalEps is how close |sin(theta)| must be to 1 before EulerAngles treats
// the matrix as gimbal locked.
const gimbalEps = 1e-12

// EulerAngles is the inverse of EulerMatrix: it returns angles which
// EulerMatrix maps back onto the rotation m. theta is in [-Pi/2, Pi/2]. When
// theta is +/-Pi/2 only one combination of phi and psi is meaningful, and psi
// is returned as 0.
func EulerAngles(m Matrix) (phi, theta, psi float64) {
	sinTheta := Max(-1, Min(1, m[6]))
	theta = Asin(sinTheta)

	if Abs(sinTheta) > 1-gimbalEps {
		return Atan2(m[1]*sinTheta, m[4]), theta, 0
	}
	return Atan2(-m[7], m[8]), theta, Atan2(-m[3], m[0])
}

// Mult returns the product m1 * m2.
func (m1 Matrix) Mult(m2 Matrix) Matrix {
	var out Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[3*i+j] += m1[3*i+k] * m2[3*k+j]
			}
		}
	}
	return out
}

// Transpose returns the transpose of m. For a rotation matrix this is its
// inverse.
func (m Matrix) Transpose() Matrix {
	return Matrix{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Rotate returns d rotated by the rotation matrix m.
func (d Direction3) Rotate(m Matrix) Direction3 {
	return Direction3{
		m[0]*d.X + m[1]*d.Y + m[2]*d.Z,
		m[3]*d.X + m[4]*d.Y + m[5]*d.Z,
		m[6]*d.X + m[7]*d.Y + m[8]*d.Z,
	}
}

// parallelEps is the sine below which two unit vectors are treated as
// parallel by AlignToZ.
const parallelEps = 1e-12

// AlignToZ returns the rotation which takes the direction of d onto the +Z
// axis, i.e. the rotation into a frame where d points "up."
func AlignToZ(d Direction3) (Matrix, error) {
	u, err := Normalize(d)
	if err != nil {
		return Matrix{}, fmt.Errorf("geom: cannot align to %v: %w", d, err)
	}

	z := Direction3{0, 0, 1}
	k := Cross(u, z)
	s, c := Length(k), Dot(u, z)

	if s < parallelEps {
		if c > 0 {
			return Identity(), nil
		}
		// Half turn around x.
		return Matrix{
			1, 0, 0,
			0, -1, 0,
			0, 0, -1,
		}, nil
	}

	// Rodrigues: R = I + [k]x + [k]x^2 (1 - c) / s^2.
	kx := Matrix{
		0, -k.Z, k.Y,
		k.Z, 0, -k.X,
		-k.Y, k.X, 0,
	}
	kx2 := kx.Mult(kx)
	f := (1 - c) / (s * s)

	r := Identity()
	for i := range r {
		r[i] += kx[i] + f*kx2[i]
	}
	return r, nil
}
