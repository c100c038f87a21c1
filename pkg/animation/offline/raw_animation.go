// Package offline holds the uncompressed animation and skeleton formats and
// the tools that turn them into runtime data: the skeleton builder, the
// animation builder and the keyframe optimizer.
package offline

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Keyframe is a raw keyframe: a time in seconds and a value.
type Keyframe[T any] struct {
	Time  float32
	Value T
}

// JointTrack holds the three channels of one joint. An empty channel keeps
// the default value (zero translation, identity rotation, unit scale) for
// the whole animation.
type JointTrack struct {
	Translations []Keyframe[math.Vec3]
	Rotations    []Keyframe[math.Quat]
	Scales       []Keyframe[math.Vec3]
}

// Sample evaluates the three channels at time t.
func (tr *JointTrack) Sample(t float32) math.Transform {
	return math.Transform{
		Translation: SampleTranslation(tr.Translations, t),
		Rotation:    SampleRotation(tr.Rotations, t),
		Scale:       SampleScale(tr.Scales, t),
	}
}

// KeyCount returns the number of keyframes over all channels.
func (tr *JointTrack) KeyCount() int {
	return len(tr.Translations) + len(tr.Rotations) + len(tr.Scales)
}

// RawAnimation is an uncompressed animation, one track per joint.
// Every non-empty channel must start at time 0, end at Duration and have
// strictly increasing times.
type RawAnimation struct {
	Name     string
	Duration float32
	Tracks   []JointTrack
}

// NumTracks returns the number of joint tracks.
func (a *RawAnimation) NumTracks() int {
	return len(a.Tracks)
}

// KeyCount returns the number of keyframes over all tracks.
func (a *RawAnimation) KeyCount() int {
	n := 0
	for i := range a.Tracks {
		n += a.Tracks[i].KeyCount()
	}
	return n
}

// Validate reports every invariant violation, each wrapping
// animation.ErrValidation.
func (a *RawAnimation) Validate() error {
	if !(a.Duration > 0) {
		return fmt.Errorf("%w: animation %q duration %v must be positive",
			animation.ErrValidation, a.Name, a.Duration)
	}

	var err error
	for j := range a.Tracks {
		tr := &a.Tracks[j]
		err = multierr.Append(err, validateChannel(tr.Translations, a.Duration, j, "translation"))
		err = multierr.Append(err, validateChannel(tr.Rotations, a.Duration, j, "rotation"))
		err = multierr.Append(err, validateChannel(tr.Scales, a.Duration, j, "scale"))
	}
	return err
}

func validateChannel[T any](keys []Keyframe[T], duration float32, joint int, channel string) error {
	if len(keys) == 0 {
		return nil
	}

	var err error
	if first := keys[0].Time; first != 0 {
		err = multierr.Append(err, fmt.Errorf("%w: joint %d %s track starts at %v, want 0",
			animation.ErrValidation, joint, channel, first))
	}
	if last := keys[len(keys)-1].Time; last != duration {
		err = multierr.Append(err, fmt.Errorf("%w: joint %d %s track ends at %v, want duration %v",
			animation.ErrValidation, joint, channel, last, duration))
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i].Time > keys[i-1].Time) {
			err = multierr.Append(err, fmt.Errorf("%w: joint %d %s key %d at %v does not follow key at %v",
				animation.ErrValidation, joint, channel, i, keys[i].Time, keys[i-1].Time))
			break
		}
	}
	return err
}

// Clone returns a deep copy.
func (a *RawAnimation) Clone() *RawAnimation {
	c := &RawAnimation{
		Name:     a.Name,
		Duration: a.Duration,
		Tracks:   make([]JointTrack, len(a.Tracks)),
	}
	for i := range a.Tracks {
		c.Tracks[i] = JointTrack{
			Translations: slices.Clone(a.Tracks[i].Translations),
			Rotations:    slices.Clone(a.Tracks[i].Rotations),
			Scales:       slices.Clone(a.Tracks[i].Scales),
		}
	}
	return c
}
