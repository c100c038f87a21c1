package offline

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// AnimationBuilder compresses a RawAnimation into a runtime Animation.
type AnimationBuilder struct {
	// Skeleton, when set, must have exactly one joint per raw track.
	Skeleton *animation.Skeleton
}

// Build validates raw and produces the compressed animation in a single
// pass per channel: times become fixed-point ratios, translations and scales
// half floats, rotations drop their largest component. Tracks are then
// interleaved four at a time.
func (b *AnimationBuilder) Build(raw *RawAnimation) (*animation.Animation, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil raw animation", animation.ErrValidation)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if b.Skeleton != nil && raw.NumTracks() != b.Skeleton.NumJoints() {
		return nil, fmt.Errorf("%w: animation %q has %d tracks, skeleton has %d joints",
			animation.ErrValidation, raw.Name, raw.NumTracks(), b.Skeleton.NumJoints())
	}

	numTracks := raw.NumTracks()
	numSoa := (numTracks + math.SoaWidth - 1) / math.SoaWidth
	lanes := numSoa * math.SoaWidth

	translations := make([][]animation.Float3Key, lanes)
	rotations := make([][]animation.QuatKey, lanes)
	scales := make([][]animation.Float3Key, lanes)
	for i := 0; i < lanes; i++ {
		var tr JointTrack
		if i < numTracks {
			tr = raw.Tracks[i]
		}
		var err error
		if translations[i], err = compressChannel(tr.Translations, raw.Duration, math.Vec3Zero(), animation.EncodeFloat3); err != nil {
			return nil, fmt.Errorf("joint %d translations: %w", i, err)
		}
		if rotations[i], err = compressChannel(tr.Rotations, raw.Duration, math.QuatIdentity(), animation.EncodeQuat); err != nil {
			return nil, fmt.Errorf("joint %d rotations: %w", i, err)
		}
		if scales[i], err = compressChannel(tr.Scales, raw.Duration, math.Vec3One(), animation.EncodeFloat3); err != nil {
			return nil, fmt.Errorf("joint %d scales: %w", i, err)
		}
	}

	return animation.NewAnimation(animation.AnimationDesc{
		Name:         raw.Name,
		Duration:     raw.Duration,
		NumTracks:    numTracks,
		Translations: interleave(translations),
		Rotations:    interleave(rotations),
		Scales:       interleave(scales),
	})
}

// compressChannel quantizes one channel. Keys that land on the same ratio
// collapse only when they also quantize to the same value; two different
// values at one ratio would lose a keyframe and are rejected. Empty channels
// become two default keys.
func compressChannel[T any, K animation.Key](keys []Keyframe[T], duration float32, def T, encode func(uint16, T) K) ([]K, error) {
	if len(keys) == 0 {
		return []K{encode(0, def), encode(animation.RatioMax, def)}, nil
	}

	out := make([]K, 0, len(keys))
	for i, k := range keys {
		r := animation.QuantizeRatio(k.Time, duration)
		key := encode(r, k.Value)
		if n := len(out); n > 0 && out[n-1].KeyRatio() == r {
			if key != out[n-1] {
				return nil, fmt.Errorf("%w: keys at %vs and %vs share time ratio %d of a %vs animation",
					animation.ErrValidation, keys[i-1].Time, k.Time, r, duration)
			}
			continue
		}
		out = append(out, key)
	}
	return out, nil
}

// interleave lays out per-lane tracks group by group, entry-major. Lanes
// shorter than the longest lane of their group repeat their final key.
func interleave[K animation.Key](tracks [][]K) animation.Channel[K] {
	numSoa := len(tracks) / math.SoaWidth

	total := 0
	for g := 0; g < numSoa; g++ {
		total += groupEntries(tracks[g*math.SoaWidth:(g+1)*math.SoaWidth]) * math.SoaWidth
	}

	ch := animation.Channel[K]{
		Keys:    make([]K, 0, total),
		Offsets: make([]int, 0, numSoa+1),
	}
	for g := 0; g < numSoa; g++ {
		ch.Offsets = append(ch.Offsets, len(ch.Keys))
		group := tracks[g*math.SoaWidth : (g+1)*math.SoaWidth]
		n := groupEntries(group)
		for e := 0; e < n; e++ {
			for _, lane := range group {
				ch.Keys = append(ch.Keys, lane[min(e, len(lane)-1)])
			}
		}
	}
	ch.Offsets = append(ch.Offsets, len(ch.Keys))
	return ch
}

func groupEntries[K animation.Key](group [][]K) int {
	n := 0
	for _, lane := range group {
		n = max(n, len(lane))
	}
	return n
}
