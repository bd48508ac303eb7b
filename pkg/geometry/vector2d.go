package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the precision used for approximate float64 comparisons.
const (
	Epsilon = 1e-9
)

// Vector2D represents a 2D vector or point in cartesian space.
// It shares its memory layout with gonum's r2.Vec, so converting between the
// two is free and the heavy lifting is delegated to the r2 package.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the null vector.
var Zero = Vector2D{}

// NewVector creates a new Vector2D.
func NewVector(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// NewVectorPolar creates a new Vector2D from polar coordinates.
// theta is in radians.
func NewVectorPolar(radius, theta float64) Vector2D {
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta)

	// Handle standard floating point precision issues near zero
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(y) < Epsilon {
		y = 0
	}

	return Vector2D{X: x, Y: y}
}

func (v Vector2D) vec() r2.Vec { return r2.Vec(v) }

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values: vectors are immutable.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D(r2.Add(v.vec(), other.vec()))
}

// Sub subtracts the other vector from the current vector.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D(r2.Sub(v.vec(), other.vec()))
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D(r2.Scale(scalar, v.vec()))
}

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return r2.Dot(v.vec(), other.vec())
}

// Cross calculates the 2D scalar cross product (z-component of 3D cross product).
func (v Vector2D) Cross(other Vector2D) float64 {
	return r2.Cross(v.vec(), other.vec())
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Cheaper than Len, use it for comparisons.
func (v Vector2D) LenSqr() float64 {
	return r2.Norm2(v.vec())
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return r2.Norm(v.vec())
}

// IsZero reports whether both components are exactly zero.
func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero; r2.Unit would
// return NaN components in that case.
func (v Vector2D) Normalize() Vector2D {
	if v.Len() < Epsilon {
		return Vector2D{}
	}
	return Vector2D(r2.Unit(v.vec()))
}

// ClampLength rescales v so that its length lies in [lo, hi].
// A zero vector has no direction: it is replaced by fallback (or the X axis
// when fallback is zero too) scaled to lo.
func (v Vector2D) ClampLength(lo, hi float64, fallback Vector2D) Vector2D {
	l := v.Len()
	switch {
	case l < Epsilon:
		dir := fallback.Normalize()
		if dir.IsZero() {
			dir = Vector2D{X: 1}
		}
		return dir.Mul(lo)
	case l < lo:
		return v.Mul(lo / l)
	case l > hi:
		return v.Mul(hi / l)
	}
	return v
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Angle returns the angle (in radians) of the vector relative to the X-axis.
// Range: [-Pi, Pi]
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleBetween returns the unsigned angle in [0, Pi] between two unit vectors.
// The dot product is clamped to [-1, 1] first so rounding never feeds acos
// a value outside its domain.
func (v Vector2D) AngleBetween(other Vector2D) float64 {
	dot := v.Dot(other)
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}

// Rotate rotates the vector by angle (in radians) around the origin (0,0).
func (v Vector2D) Rotate(angle float64) Vector2D {
	return Vector2D(r2.Rotate(v.vec(), angle, r2.Vec{}))
}

// RotateAround rotates the vector by angle (radians) around a specific center point.
func (v Vector2D) RotateAround(angle float64, center Vector2D) Vector2D {
	return Vector2D(r2.Rotate(v.vec(), angle, center.vec()))
}

// Lerp (Linear Interpolate) calculates a point between v and target based on t [0, 1].
func (v Vector2D) Lerp(target Vector2D, t float64) Vector2D {
	return v.Add(target.Sub(v).Mul(t))
}

// Slerp interpolates between the unit vectors v and to along the arc that
// separates them, t in [0, 1]. angle is the precomputed v.AngleBetween(to).
// Nearly parallel or anti-parallel inputs have no stable arc; to is returned.
func (v Vector2D) Slerp(to Vector2D, t, angle float64) Vector2D {
	if angle < SlerpMinAngle {
		return to
	}
	sinAngle := math.Sin(angle)
	if sinAngle < SlerpMinAngle {
		return to
	}
	s0 := math.Sin(angle*(1-t)) / sinAngle
	s1 := math.Sin(angle*t) / sinAngle
	return v.Mul(s0).Add(to.Mul(s1)).Normalize()
}

// SlerpMinAngle is the angle (and sine) below which Slerp snaps to its target.
const SlerpMinAngle = 0.001

// ---------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vector2D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
