// Package playback drives animations over time: a Controller advances a
// playhead and an Instance samples and propagates one character per
// update.
package playback

import gomath "math"

// Controller advances a playhead over an animation of a given duration.
// Negative speeds play backwards.
type Controller struct {
	duration float32
	time     float32
	speed    float32
	loop     bool
	playing  bool
}

// NewController returns a playing controller at time 0.
func NewController(duration float32, speed float32, loop bool) *Controller {
	return &Controller{
		duration: duration,
		speed:    speed,
		loop:     loop,
		playing:  true,
	}
}

// Time returns the playhead in seconds, within [0, duration].
func (c *Controller) Time() float32 { return c.time }

// Ratio returns the playhead as a fraction of the duration.
func (c *Controller) Ratio() float32 {
	if c.duration <= 0 {
		return 0
	}
	return c.time / c.duration
}

// Playing reports whether Update advances the playhead.
func (c *Controller) Playing() bool { return c.playing }

// SetTime moves the playhead. Out of range times wrap when looping and are
// clamped otherwise.
func (c *Controller) SetTime(t float32) {
	c.time = c.fold(t)
}

// Update advances the playhead by dt seconds scaled by the speed. A
// non-looping controller pauses when it reaches either end.
func (c *Controller) Update(dt float32) {
	if !c.playing {
		return
	}
	step := dt * c.speed
	c.time = c.fold(c.time + step)
	if !c.loop && ((step > 0 && c.time >= c.duration) || (step < 0 && c.time <= 0)) {
		c.playing = false
	}
}

func (c *Controller) fold(t float32) float32 {
	if c.duration <= 0 || t != t {
		return 0
	}
	if c.loop {
		t = float32(gomath.Mod(float64(t), float64(c.duration)))
		if t < 0 {
			t += c.duration
		}
		return t
	}
	return min(max(t, 0), c.duration)
}
