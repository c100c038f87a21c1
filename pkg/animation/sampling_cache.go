package animation

import "github.com/Faultbox/midgard-anim/pkg/math"

// SamplingCache stores, per track and per channel, the entry index of the
// left keyframe found by the previous sample, so that sampling at a nearby
// time resumes the search from there. A cache belongs to one playback
// stream and must not be used by concurrent SamplingJobs.
type SamplingCache struct {
	maxTracks int

	animation *Animation
	time      float32

	translations []int
	rotations    []int
	scales       []int
}

// NewSamplingCache allocates a cache able to serve animations of up to
// maxTracks tracks.
func NewSamplingCache(maxTracks int) *SamplingCache {
	c := &SamplingCache{}
	c.Resize(maxTracks)
	return c
}

// Resize changes the track capacity. All cursors are invalidated.
func (c *SamplingCache) Resize(maxTracks int) {
	if maxTracks < 0 {
		maxTracks = 0
	}
	lanes := (maxTracks + math.SoaWidth - 1) / math.SoaWidth * math.SoaWidth
	c.maxTracks = maxTracks
	c.translations = make([]int, lanes)
	c.rotations = make([]int, lanes)
	c.scales = make([]int, lanes)
	c.Invalidate()
}

// MaxTracks returns the track capacity.
func (c *SamplingCache) MaxTracks() int {
	return c.maxTracks
}

// Time returns the time of the last sample.
func (c *SamplingCache) Time() float32 {
	return c.time
}

// Invalidate resets every cursor to the first keyframe. The next sample
// rebinds the cache to its animation.
func (c *SamplingCache) Invalidate() {
	c.animation = nil
	c.time = 0
	clear(c.translations)
	clear(c.rotations)
	clear(c.scales)
}

// bind attaches the cache to a, resetting cursors if it was bound to
// another animation.
func (c *SamplingCache) bind(a *Animation) {
	if c.animation == a {
		return
	}
	c.Invalidate()
	c.animation = a
}
