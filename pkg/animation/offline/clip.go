package offline

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/animation"
)

// ExtractClip cuts the time range [start, end] out of raw as a new animation
// starting at 0 and lasting end-start. Keys inside the range are kept and
// rebased; keys at the range boundaries are interpolated from the source
// when no source key falls exactly on them.
func ExtractClip(raw *RawAnimation, name string, start, end float32) (*RawAnimation, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil raw animation", animation.ErrValidation)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if start < 0 || end > raw.Duration || !(end > start) {
		return nil, fmt.Errorf("%w: clip %q range [%v, %v] outside animation %q [0, %v]",
			animation.ErrValidation, name, start, end, raw.Name, raw.Duration)
	}

	clip := &RawAnimation{
		Name:     name,
		Duration: end - start,
		Tracks:   make([]JointTrack, raw.NumTracks()),
	}
	for j := range raw.Tracks {
		src := &raw.Tracks[j]
		clip.Tracks[j] = JointTrack{
			Translations: extractChannel(src.Translations, start, end, clip.Duration, SampleTranslation),
			Rotations:    extractChannel(src.Rotations, start, end, clip.Duration, SampleRotation),
			Scales:       extractChannel(src.Scales, start, end, clip.Duration, SampleScale),
		}
	}
	return clip, nil
}

func extractChannel[T any](keys []Keyframe[T], start, end, duration float32, sample func([]Keyframe[T], float32) T) []Keyframe[T] {
	if len(keys) == 0 {
		return nil
	}

	out := []Keyframe[T]{{Time: 0, Value: valueAt(keys, start, sample)}}
	for _, k := range keys {
		if k.Time <= start {
			continue
		}
		if k.Time >= end {
			break
		}
		t := k.Time - start
		if t <= out[len(out)-1].Time || t >= duration {
			continue
		}
		out = append(out, Keyframe[T]{Time: t, Value: k.Value})
	}
	return append(out, Keyframe[T]{Time: duration, Value: valueAt(keys, end, sample)})
}

// valueAt returns the value of the key at exactly t, or the interpolated
// value when there is none.
func valueAt[T any](keys []Keyframe[T], t float32, sample func([]Keyframe[T], float32) T) T {
	for _, k := range keys {
		if k.Time == t {
			return k.Value
		}
		if k.Time > t {
			break
		}
	}
	return sample(keys, t)
}

// SplitClips extracts every clip of descs. It stops at the first error.
func SplitClips(raw *RawAnimation, descs []ClipDesc) ([]*RawAnimation, error) {
	clips := make([]*RawAnimation, 0, len(descs))
	for _, d := range descs {
		c, err := ExtractClip(raw, d.Name, d.Start, d.End)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}

// ClipDesc names a time range of a longer animation.
type ClipDesc struct {
	Name  string
	Start float32
	End   float32
}

