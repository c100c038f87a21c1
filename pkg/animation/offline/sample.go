package offline

import (
	"sort"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// SampleTranslation evaluates a translation channel at time t. Empty
// channels yield zero.
func SampleTranslation(keys []Keyframe[math.Vec3], t float32) math.Vec3 {
	return sampleChannel(keys, t, math.Vec3Zero(), lerpVec3)
}

// SampleRotation evaluates a rotation channel at time t along the shortest
// arc. Empty channels yield identity.
func SampleRotation(keys []Keyframe[math.Quat], t float32) math.Quat {
	return sampleChannel(keys, t, math.QuatIdentity(), nlerpQuat)
}

// SampleScale evaluates a scale channel at time t. Empty channels yield one.
func SampleScale(keys []Keyframe[math.Vec3], t float32) math.Vec3 {
	return sampleChannel(keys, t, math.Vec3One(), lerpVec3)
}

func lerpVec3(a, b math.Vec3, u float32) math.Vec3 { return a.Lerp(b, u) }

func nlerpQuat(a, b math.Quat, u float32) math.Quat { return a.NLerp(b, u) }

func sampleChannel[T any](keys []Keyframe[T], t float32, def T, lerp func(a, b T, u float32) T) T {
	if len(keys) == 0 {
		return def
	}
	// First key strictly after t.
	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	if i == 0 {
		return keys[0].Value
	}
	if i == len(keys) {
		return keys[len(keys)-1].Value
	}
	return interpolate(keys[i-1], keys[i], t, lerp)
}

// interpolate is shared by sampling and the optimizer so that both produce
// bit-identical values for the same bracketing keys.
func interpolate[T any](left, right Keyframe[T], t float32, lerp func(a, b T, u float32) T) T {
	span := right.Time - left.Time
	if span <= 0 {
		return left.Value
	}
	return lerp(left.Value, right.Value, (t-left.Time)/span)
}
