package systems

import "math"

// Vec3 is a small float32 vector used by the movement and festival systems.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// LenSq returns the squared length.
func (v Vec3) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len returns the length.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v.LenSq())))
}

// Normalized returns v scaled to unit length, or the zero vector if v is
// (near) zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l <= 1e-8 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Limit clamps the vector magnitude to max. Non-positive max zeroes it.
func (v Vec3) Limit(max float32) Vec3 {
	if max <= 0 {
		return Vec3{}
	}
	lsq := v.LenSq()
	if lsq <= max*max {
		return v
	}
	return v.Scale(max / float32(math.Sqrt(float64(lsq))))
}

// clamp returns x limited to [lo, hi].
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// clampUnit returns x limited to [-1, 1].
func clampUnit(x float32) float32 {
	return clamp(x, -1, 1)
}
