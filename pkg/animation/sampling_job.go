package animation

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// SamplingJob samples an animation at a given time and writes the local
// transforms of every track into Output, four tracks per SoA entry.
type SamplingJob struct {
	// Animation to sample.
	Animation *Animation
	// Cache of keyframe cursors, owned by the caller's playback stream.
	Cache *SamplingCache
	// Time in seconds. Clamped to [0, Animation.Duration()].
	Time float32
	// Output receives one SoA transform per track group. Entries past
	// Animation.NumSoaTracks() are left untouched.
	Output []math.SoaTransform
}

// Validate checks that the job inputs are bound consistently.
func (j *SamplingJob) Validate() error {
	if j.Animation == nil {
		return fmt.Errorf("%w: sampling job has no animation", ErrBinding)
	}
	if j.Cache == nil {
		return fmt.Errorf("%w: sampling job has no cache", ErrBinding)
	}
	if j.Cache.MaxTracks() < j.Animation.NumTracks() {
		return fmt.Errorf("%w: cache holds %d tracks, animation %q has %d",
			ErrBinding, j.Cache.MaxTracks(), j.Animation.Name(), j.Animation.NumTracks())
	}
	if len(j.Output) < j.Animation.NumSoaTracks() {
		return fmt.Errorf("%w: output holds %d SoA transforms, animation %q needs %d",
			ErrBinding, len(j.Output), j.Animation.Name(), j.Animation.NumSoaTracks())
	}
	return nil
}

// Run samples the animation. Nothing is written when validation fails.
func (j *SamplingJob) Run() error {
	if err := j.Validate(); err != nil {
		return err
	}

	a := j.Animation
	c := j.Cache
	c.bind(a)

	t := j.Time
	if t < 0 || t != t {
		t = 0
	} else if t > a.duration {
		t = a.duration
	}
	ratio := t / a.duration * RatioMax

	for g := 0; g < a.NumSoaTracks(); g++ {
		out := &j.Output[g]
		lanes := c.translations[g*math.SoaWidth : (g+1)*math.SoaWidth]
		out.Translation = sampleFloat3(&a.translations, g, lanes, ratio)
		lanes = c.scales[g*math.SoaWidth : (g+1)*math.SoaWidth]
		out.Scale = sampleFloat3(&a.scales, g, lanes, ratio)
		lanes = c.rotations[g*math.SoaWidth : (g+1)*math.SoaWidth]
		out.Rotation = sampleQuat(&a.rotations, g, lanes, ratio)
	}

	c.time = t
	return nil
}

func sampleFloat3(ch *Channel[Float3Key], g int, cursors []int, ratio float32) math.SoaFloat3 {
	var left, right math.SoaFloat3
	var u [math.SoaWidth]float32
	for lane := 0; lane < math.SoaWidth; lane++ {
		k := seek(ch, g, lane, cursors[lane], ratio)
		cursors[lane] = k
		l, r := ch.At(g, k, lane), ch.At(g, k+1, lane)
		left.Set(lane, l.Decode())
		right.Set(lane, r.Decode())
		u[lane] = interpolationRatio(l.Ratio, r.Ratio, ratio)
	}
	return left.Lerp(right, u)
}

func sampleQuat(ch *Channel[QuatKey], g int, cursors []int, ratio float32) math.SoaQuat {
	var left, right math.SoaQuat
	var u [math.SoaWidth]float32
	for lane := 0; lane < math.SoaWidth; lane++ {
		k := seek(ch, g, lane, cursors[lane], ratio)
		cursors[lane] = k
		l, r := ch.At(g, k, lane), ch.At(g, k+1, lane)
		left.Set(lane, l.Decode())
		right.Set(lane, r.Decode())
		u[lane] = interpolationRatio(l.Ratio, r.Ratio, ratio)
	}
	return left.NLerp(right, u)
}

// seek returns the largest entry k <= n-2 of a lane whose ratio does not
// exceed the query, starting from the cached cursor. The result does not
// depend on the starting cursor.
func seek[K Key](ch *Channel[K], g, lane, cursor int, ratio float32) int {
	last := ch.Entries(g) - 2
	k := cursor
	if k > last {
		k = last
	}
	if k < 0 {
		k = 0
	}
	for k < last && float32(ch.At(g, k+1, lane).KeyRatio()) <= ratio {
		k++
	}
	for k > 0 && float32(ch.At(g, k, lane).KeyRatio()) > ratio {
		k--
	}
	return k
}

func interpolationRatio(left, right uint16, ratio float32) float32 {
	if right <= left {
		return 0
	}
	u := (ratio - float32(left)) / float32(right-left)
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}
