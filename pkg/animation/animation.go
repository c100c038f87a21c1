package animation

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Key is implemented by the compressed keyframe types.
type Key interface {
	Float3Key | QuatKey
	KeyRatio() uint16
}

// KeyRatio returns the fixed-point time of the key.
func (k Float3Key) KeyRatio() uint16 { return k.Ratio }

// KeyRatio returns the fixed-point time of the key.
func (k QuatKey) KeyRatio() uint16 { return k.Ratio }

// Channel is one compressed channel (translation, rotation or scale) of all
// tracks. Group g owns Keys[Offsets[g]:Offsets[g+1]], stored entry-major and
// lane-minor: the key of lane l at entry e is Keys[Offsets[g]+e*4+l]. All
// lanes of a group have the same entry count; short lanes repeat their
// final key.
type Channel[K Key] struct {
	Keys    []K
	Offsets []int
}

// Entries returns the number of entries of group g.
func (c *Channel[K]) Entries(g int) int {
	return (c.Offsets[g+1] - c.Offsets[g]) / math.SoaWidth
}

// At returns the key of a lane at the given entry of group g.
func (c *Channel[K]) At(g, entry, lane int) K {
	return c.Keys[c.Offsets[g]+entry*math.SoaWidth+lane]
}

func (c *Channel[K]) validate(name string, numSoa int) error {
	if len(c.Offsets) != numSoa+1 {
		return fmt.Errorf("%w: %s channel has %d group offsets, want %d",
			ErrValidation, name, len(c.Offsets), numSoa+1)
	}
	if c.Offsets[0] != 0 || c.Offsets[numSoa] != len(c.Keys) {
		return fmt.Errorf("%w: %s channel offsets do not cover its %d keys",
			ErrValidation, name, len(c.Keys))
	}
	for g := 0; g < numSoa; g++ {
		span := c.Offsets[g+1] - c.Offsets[g]
		if span < 2*math.SoaWidth || span%math.SoaWidth != 0 {
			return fmt.Errorf("%w: %s channel group %d holds %d keys, want a multiple of %d and at least two entries",
				ErrValidation, name, g, span, math.SoaWidth)
		}
		n := c.Entries(g)
		for lane := 0; lane < math.SoaWidth; lane++ {
			if r := c.At(g, 0, lane).KeyRatio(); r != 0 {
				return fmt.Errorf("%w: %s track %d starts at ratio %d, want 0",
					ErrValidation, name, g*math.SoaWidth+lane, r)
			}
			if r := c.At(g, n-1, lane).KeyRatio(); r != RatioMax {
				return fmt.Errorf("%w: %s track %d ends at ratio %d, want %d",
					ErrValidation, name, g*math.SoaWidth+lane, r, RatioMax)
			}
			for e := 1; e < n; e++ {
				if c.At(g, e, lane).KeyRatio() < c.At(g, e-1, lane).KeyRatio() {
					return fmt.Errorf("%w: %s track %d keys are not sorted at entry %d",
						ErrValidation, name, g*math.SoaWidth+lane, e)
				}
			}
		}
	}
	return nil
}

// AnimationDesc carries the fields of a compressed animation. It is produced
// by the offline builder and by archive readers.
type AnimationDesc struct {
	Name         string
	Duration     float32
	NumTracks    int
	Translations Channel[Float3Key]
	Rotations    Channel[QuatKey]
	Scales       Channel[Float3Key]
}

// Animation is an immutable compressed keyframe track set, one track per
// joint, grouped four tracks at a time. It is safe for concurrent sampling
// as long as every goroutine uses its own SamplingCache.
type Animation struct {
	name         string
	duration     float32
	numTracks    int
	translations Channel[Float3Key]
	rotations    Channel[QuatKey]
	scales       Channel[Float3Key]
}

// NewAnimation validates the group layout of desc and takes ownership of its
// slices.
func NewAnimation(desc AnimationDesc) (*Animation, error) {
	if !(desc.Duration > 0) {
		return nil, fmt.Errorf("%w: animation duration %v must be positive", ErrValidation, desc.Duration)
	}
	if desc.NumTracks < 0 {
		return nil, fmt.Errorf("%w: negative track count %d", ErrValidation, desc.NumTracks)
	}
	numSoa := (desc.NumTracks + math.SoaWidth - 1) / math.SoaWidth
	if err := desc.Translations.validate("translation", numSoa); err != nil {
		return nil, err
	}
	if err := desc.Rotations.validate("rotation", numSoa); err != nil {
		return nil, err
	}
	if err := desc.Scales.validate("scale", numSoa); err != nil {
		return nil, err
	}

	return &Animation{
		name:         desc.Name,
		duration:     desc.Duration,
		numTracks:    desc.NumTracks,
		translations: desc.Translations,
		rotations:    desc.Rotations,
		scales:       desc.Scales,
	}, nil
}

// Name returns the animation name.
func (a *Animation) Name() string { return a.name }

// Duration returns the animation length in seconds.
func (a *Animation) Duration() float32 { return a.duration }

// NumTracks returns the number of joint tracks.
func (a *Animation) NumTracks() int { return a.numTracks }

// NumSoaTracks returns the number of four-track groups.
func (a *Animation) NumSoaTracks() int {
	return (a.numTracks + math.SoaWidth - 1) / math.SoaWidth
}

// Translations returns the translation channel. It must not be modified.
func (a *Animation) Translations() Channel[Float3Key] { return a.translations }

// Rotations returns the rotation channel. It must not be modified.
func (a *Animation) Rotations() Channel[QuatKey] { return a.rotations }

// Scales returns the scale channel. It must not be modified.
func (a *Animation) Scales() Channel[Float3Key] { return a.scales }

// KeyCounts returns the number of stored keys per channel, padding included.
func (a *Animation) KeyCounts() (translations, rotations, scales int) {
	return len(a.translations.Keys), len(a.rotations.Keys), len(a.scales.Keys)
}

// Size returns the approximate memory footprint of the key data in bytes.
func (a *Animation) Size() int {
	const float3KeySize = 8
	const quatKeySize = 10
	t, r, s := a.KeyCounts()
	return (t+s)*float3KeySize + r*quatKeySize
}
