package math

// SoaWidth is the number of lanes in every SoA type.
const SoaWidth = 4

// SoaFloat3 holds four 3D vectors, one per lane, component-major.
type SoaFloat3 struct {
	X, Y, Z [SoaWidth]float32
}

// SoaQuat holds four quaternions, one per lane, component-major.
type SoaQuat struct {
	X, Y, Z, W [SoaWidth]float32
}

// SoaTransform holds four affine transforms, one per lane.
type SoaTransform struct {
	Translation SoaFloat3
	Rotation    SoaQuat
	Scale       SoaFloat3
}

// SoaFloat3Splat returns v replicated in every lane.
func SoaFloat3Splat(v Vec3) SoaFloat3 {
	var s SoaFloat3
	for i := 0; i < SoaWidth; i++ {
		s.Set(i, v)
	}
	return s
}

// Lane returns the vector stored in lane i.
func (s *SoaFloat3) Lane(i int) Vec3 {
	return Vec3{s.X[i], s.Y[i], s.Z[i]}
}

// Set stores v in lane i.
func (s *SoaFloat3) Set(i int, v Vec3) {
	s.X[i], s.Y[i], s.Z[i] = v.X, v.Y, v.Z
}

// Lerp interpolates every lane with its own factor.
func (s SoaFloat3) Lerp(other SoaFloat3, t [SoaWidth]float32) SoaFloat3 {
	var r SoaFloat3
	for i := 0; i < SoaWidth; i++ {
		r.X[i] = s.X[i] + t[i]*(other.X[i]-s.X[i])
		r.Y[i] = s.Y[i] + t[i]*(other.Y[i]-s.Y[i])
		r.Z[i] = s.Z[i] + t[i]*(other.Z[i]-s.Z[i])
	}
	return r
}

// SoaQuatSplat returns q replicated in every lane.
func SoaQuatSplat(q Quat) SoaQuat {
	var s SoaQuat
	for i := 0; i < SoaWidth; i++ {
		s.Set(i, q)
	}
	return s
}

// Lane returns the quaternion stored in lane i.
func (s *SoaQuat) Lane(i int) Quat {
	return Quat{X: s.X[i], Y: s.Y[i], Z: s.Z[i], W: s.W[i]}
}

// Set stores q in lane i.
func (s *SoaQuat) Set(i int, q Quat) {
	s.X[i], s.Y[i], s.Z[i], s.W[i] = q.X, q.Y, q.Z, q.W
}

// NLerp interpolates every lane along the shortest arc and renormalizes.
// Lane results match Quat.NLerp.
func (s SoaQuat) NLerp(other SoaQuat, t [SoaWidth]float32) SoaQuat {
	var r SoaQuat
	for i := 0; i < SoaWidth; i++ {
		r.Set(i, s.Lane(i).NLerp(other.Lane(i), t[i]))
	}
	return r
}

// SoaTransformIdentity returns identity in every lane.
func SoaTransformIdentity() SoaTransform {
	return SoaTransform{
		Translation: SoaFloat3Splat(Vec3Zero()),
		Rotation:    SoaQuatSplat(QuatIdentity()),
		Scale:       SoaFloat3Splat(Vec3One()),
	}
}

// Lane returns the transform stored in lane i.
func (s *SoaTransform) Lane(i int) Transform {
	return Transform{
		Translation: s.Translation.Lane(i),
		Rotation:    s.Rotation.Lane(i),
		Scale:       s.Scale.Lane(i),
	}
}

// Set stores t in lane i.
func (s *SoaTransform) Set(i int, t Transform) {
	s.Translation.Set(i, t.Translation)
	s.Rotation.Set(i, t.Rotation)
	s.Scale.Set(i, t.Scale)
}
