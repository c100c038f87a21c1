package animation

import (
	gomath "math"

	"github.com/x448/float16"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// RatioMax is the fixed-point value of a key at the end of the animation.
const RatioMax = 0xffff

// halfMax is the largest finite half-precision value.
const halfMax = 65504

// quatRange is the magnitude bound of the three stored quaternion
// components: none of them can exceed 1/sqrt(2) once the largest is dropped.
const quatRange = 0.70710678118654752440

const quatScale = 32767

// Largest-component bitfield of a QuatKey.
const (
	quatIndexMask = 0x3
	quatSignBit   = 0x4
)

// Float3Key is a compressed translation or scale keyframe: the time as a
// fixed-point ratio of the duration and the value as three half floats.
type Float3Key struct {
	Ratio uint16
	Value [3]uint16
}

// QuatKey is a compressed rotation keyframe. Largest holds the index (bits
// 0-1) and sign (bit 2) of the dropped largest component; Value holds the
// other three components in order, fixed-point over [-1/sqrt(2), 1/sqrt(2)].
type QuatKey struct {
	Ratio   uint16
	Largest uint8
	Value   [3]int16
}

// QuantizeRatio encodes t as a fraction of duration. t is clamped to
// [0, duration].
func QuantizeRatio(t, duration float32) uint16 {
	if duration <= 0 || t <= 0 {
		return 0
	}
	if t >= duration {
		return RatioMax
	}
	return uint16(gomath.Round(float64(t) / float64(duration) * RatioMax))
}

// EncodeFloat3 quantizes v to half precision. Out of range components are
// clamped to the largest finite half value.
func EncodeFloat3(ratio uint16, v math.Vec3) Float3Key {
	return Float3Key{
		Ratio: ratio,
		Value: [3]uint16{encodeHalf(v.X), encodeHalf(v.Y), encodeHalf(v.Z)},
	}
}

func encodeHalf(f float32) uint16 {
	if f > halfMax {
		f = halfMax
	} else if f < -halfMax {
		f = -halfMax
	}
	return float16.Fromfloat32(f).Bits()
}

// Decode returns the dequantized vector.
func (k Float3Key) Decode() math.Vec3 {
	return math.Vec3{
		X: float16.Frombits(k.Value[0]).Float32(),
		Y: float16.Frombits(k.Value[1]).Float32(),
		Z: float16.Frombits(k.Value[2]).Float32(),
	}
}

// EncodeQuat compresses a rotation by dropping its largest component. q is
// normalized first unless it already has unit length.
func EncodeQuat(ratio uint16, q math.Quat) QuatKey {
	if !q.IsNormalized(1e-6) {
		q = q.Normalize()
	}
	c := q.Array()

	largest := 0
	for i := 1; i < 4; i++ {
		if abs32(c[i]) > abs32(c[largest]) {
			largest = i
		}
	}

	k := QuatKey{Ratio: ratio, Largest: uint8(largest)}
	if c[largest] < 0 {
		k.Largest |= quatSignBit
	}

	n := 0
	for i := 0; i < 4; i++ {
		if i == largest {
			continue
		}
		v := gomath.Round(float64(c[i]) / quatRange * quatScale)
		if v > quatScale {
			v = quatScale
		} else if v < -quatScale {
			v = -quatScale
		}
		k.Value[n] = int16(v)
		n++
	}
	return k
}

// Decode rebuilds the quaternion, restoring the dropped component from the
// unit-norm constraint with its recorded sign.
func (k QuatKey) Decode() math.Quat {
	largest := int(k.Largest & quatIndexMask)

	var c [4]float32
	var sum float32
	n := 0
	for i := 0; i < 4; i++ {
		if i == largest {
			continue
		}
		c[i] = float32(k.Value[n]) * (quatRange / quatScale)
		sum += c[i] * c[i]
		n++
	}

	w := float32(0)
	if sum < 1 {
		w = float32(gomath.Sqrt(float64(1 - sum)))
	}
	if k.Largest&quatSignBit != 0 {
		w = -w
	}
	c[largest] = w

	return math.Quat{X: c[0], Y: c[1], Z: c[2], W: c[3]}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
