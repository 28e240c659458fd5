// Package coords converts between scene space and X-Plane's coordinate
// convention and provides the fixed-precision float formatting used for
// OBJ8 serialization.
//
// Scene space is right-handed Z-up (Blender convention). X-Plane is Y-up
// with Z pointing toward the viewer, so a scene vector (x, y, z) maps to
// (x, z, -y). The mapping is a pure rotation and therefore applies to
// positions and direction vectors alike.
package coords

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Precision is the number of decimal places written for every float in an
// OBJ file. Rounding is round-to-nearest, ties-to-even (Go's FormatFloat).
// Changing this breaks fixture compatibility.
const Precision = 6

// ToExport remaps a scene-space vector into X-Plane space.
func ToExport(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), v.Z(), -v.Y()}
}

// FromExport is the inverse of ToExport.
func FromExport(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), -v.Z(), v.Y()}
}

// Compose builds a local transform matrix from translation, rotation and
// scale, in that application order (scale first).
func Compose(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// TransformPoint applies a 4x4 transform to a position.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m)
}

// TransformDirection applies the rotational part of a transform to a
// direction vector and renormalizes. Zero vectors pass through unchanged.
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	out := mgl32.TransformNormal(d, m)
	if l := out.Len(); l > 1e-8 {
		return out.Mul(1 / l)
	}
	return d
}

// EulerXYZ extracts XYZ-order Euler angles, in degrees, from the rotation
// part of a transform. The decomposition assumes R = Rz * Ry * Rx, which is
// the scene convention for authored rotations.
func EulerXYZ(m mgl32.Mat4) (x, y, z float32) {
	m00 := float64(m.At(0, 0))
	m10 := float64(m.At(1, 0))
	m20 := float64(m.At(2, 0))
	m21 := float64(m.At(2, 1))
	m22 := float64(m.At(2, 2))

	yr := math.Asin(clamp(-m20, -1, 1))
	var xr, zr float64
	if math.Abs(m20) < 0.9999999 {
		xr = math.Atan2(m21, m22)
		zr = math.Atan2(m10, m00)
	} else {
		// Gimbal lock: fold everything into x
		xr = math.Atan2(-float64(m.At(1, 2)), float64(m.At(1, 1)))
		zr = 0
	}
	const toDeg = 180 / math.Pi
	return float32(xr * toDeg), float32(yr * toDeg), float32(zr * toDeg)
}

// ExportAngles returns the phi/theta/psi angle triple, in degrees, that
// X-Plane expects for EMITTER, MAGNET and ATTR_landing_gear directives:
// phi is negated yaw (scene Z), theta is pitch (scene X), psi is roll
// (scene Y).
func ExportAngles(m mgl32.Mat4) (phi, theta, psi float32) {
	x, y, z := EulerXYZ(m)
	return -z, x, y
}

// FormatFloat renders a float with exactly Precision decimal places and no
// scientific notation. Negative zero is normalized so identical geometry
// always serializes identically.
func FormatFloat(f float32) string {
	v := float64(f)
	if v == 0 {
		v = 0 // collapses -0
	}
	s := strconv.FormatFloat(v, 'f', Precision, 64)
	if s == "-0.000000" {
		return "0.000000"
	}
	return s
}

// RoundKey quantizes a float to Precision decimals for use in dedup keys.
// Two floats that format identically always quantize identically.
func RoundKey(f float32) float64 {
	const scale = 1e6 // 10^Precision
	v := float64(f)
	if v == 0 {
		return 0
	}
	r := math.RoundToEven(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
