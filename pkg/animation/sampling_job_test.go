package animation_test

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// twoJointRaw moves joint 1 from the origin to (1, 0, 0) over one second.
func twoJointRaw() *offline.RawAnimation {
	return &offline.RawAnimation{
		Name:     "slide",
		Duration: 1,
		Tracks: []offline.JointTrack{
			{},
			{
				Translations: []offline.Keyframe[math.Vec3]{
					{Time: 0, Value: math.Vec3{}},
					{Time: 1, Value: math.Vec3{X: 1}},
				},
			},
		},
	}
}

// wavyRaw has several tracks with uneven key counts so that lanes of the
// same group are padded differently.
func wavyRaw(tracks int) *offline.RawAnimation {
	raw := &offline.RawAnimation{Name: "wavy", Duration: 2, Tracks: make([]offline.JointTrack, tracks)}
	for j := range raw.Tracks {
		n := 3 + j*2
		tr := &raw.Tracks[j]
		for k := 0; k < n; k++ {
			t := raw.Duration * float32(k) / float32(n-1)
			s := float32(gomath.Sin(float64(t) * float64(j+1)))
			tr.Translations = append(tr.Translations, offline.Keyframe[math.Vec3]{
				Time: t, Value: math.Vec3{X: s, Y: float32(j), Z: -s},
			})
			tr.Rotations = append(tr.Rotations, offline.Keyframe[math.Quat]{
				Time: t, Value: math.QuatFromAxisAngle(math.Vec3{Y: 1}, s),
			})
		}
		tr.Scales = []offline.Keyframe[math.Vec3]{
			{Time: 0, Value: math.Vec3One()},
			{Time: raw.Duration, Value: math.Vec3{X: 2, Y: 2, Z: 2}},
		}
	}
	return raw
}

func build(t *testing.T, raw *offline.RawAnimation) *animation.Animation {
	t.Helper()
	b := offline.AnimationBuilder{}
	a, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

func sample(t *testing.T, a *animation.Animation, cache *animation.SamplingCache, time float32) []math.SoaTransform {
	t.Helper()
	out := make([]math.SoaTransform, a.NumSoaTracks())
	job := animation.SamplingJob{Animation: a, Cache: cache, Time: time, Output: out}
	if err := job.Run(); err != nil {
		t.Fatalf("Run at %v: %v", time, err)
	}
	return out
}

func vecNear(a, b math.Vec3, eps float32) bool {
	return a.Distance(b) <= eps
}

func TestSamplingJobMidpoint(t *testing.T) {
	a := build(t, twoJointRaw())
	out := sample(t, a, animation.NewSamplingCache(a.NumTracks()), 0.5)

	if got := out[0].Translation.Lane(1); !vecNear(got, math.Vec3{X: 0.5}, 1e-4) {
		t.Errorf("joint 1 translation = %v, want (0.5, 0, 0)", got)
	}
	if got := out[0].Lane(0); got != math.TransformIdentity() {
		t.Errorf("joint 0 = %v, want identity", got)
	}
	if got := out[0].Scale.Lane(1); got != math.Vec3One() {
		t.Errorf("joint 1 scale = %v, want one", got)
	}
}

func TestSamplingJobBoundaries(t *testing.T) {
	raw := wavyRaw(5)
	a := build(t, raw)
	cache := animation.NewSamplingCache(a.NumTracks())

	for _, time := range []float32{0, raw.Duration} {
		out := sample(t, a, cache, time)
		for j := range raw.Tracks {
			got := out[j/math.SoaWidth].Lane(j % math.SoaWidth)
			want := raw.Tracks[j].Sample(time)
			if !vecNear(got.Translation, want.Translation, 2e-3) {
				t.Errorf("t=%v joint %d translation = %v, want %v", time, j, got.Translation, want.Translation)
			}
			if d := got.Rotation.AngleTo(want.Rotation); d > 2e-3 {
				t.Errorf("t=%v joint %d rotation off by %v rad", time, j, d)
			}
		}
	}
}

func TestSamplingJobClampsTime(t *testing.T) {
	a := build(t, wavyRaw(3))
	cache := animation.NewSamplingCache(a.NumTracks())

	tests := []struct {
		name        string
		time, equiv float32
	}{
		{"before start", -1, 0},
		{"after end", 10, a.Duration()},
		{"not a number", float32(gomath.NaN()), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sample(t, a, cache, tt.time)
			want := sample(t, a, animation.NewSamplingCache(a.NumTracks()), tt.equiv)
			if got[0] != want[0] {
				t.Errorf("sample at %v = %v, want sample at %v = %v", tt.time, got[0], tt.equiv, want[0])
			}
		})
	}
}

func TestSamplingJobCacheIndependence(t *testing.T) {
	a := build(t, wavyRaw(6))
	shared := animation.NewSamplingCache(a.NumTracks())

	times := []float32{0, 0.1, 0.25, 0.3, 0.9, 1.2, 1.99, 2}
	// Forward, then backward (reverse playback), then jumping around.
	var seq []float32
	seq = append(seq, times...)
	for i := len(times) - 1; i >= 0; i-- {
		seq = append(seq, times[i])
	}
	seq = append(seq, 1.5, 0.05, 1.75, 0.5)

	for _, time := range seq {
		got := sample(t, a, shared, time)
		want := sample(t, a, animation.NewSamplingCache(a.NumTracks()), time)
		for g := range want {
			if got[g] != want[g] {
				t.Fatalf("t=%v group %d: cached %v, fresh %v", time, g, got[g], want[g])
			}
		}
		if shared.Time() != time {
			t.Errorf("cache time = %v, want %v", shared.Time(), time)
		}
	}
}

func TestSamplingJobReversePlayback(t *testing.T) {
	a := build(t, twoJointRaw())
	cache := animation.NewSamplingCache(a.NumTracks())

	for _, tc := range []struct{ time, x float32 }{{1, 1}, {0.5, 0.5}, {0, 0}} {
		out := sample(t, a, cache, tc.time)
		if got := out[0].Translation.Lane(1); !vecNear(got, math.Vec3{X: tc.x}, 1e-4) {
			t.Errorf("t=%v: translation = %v, want (%v, 0, 0)", tc.time, got, tc.x)
		}
	}
}

func TestSamplingJobCacheRebind(t *testing.T) {
	first := build(t, wavyRaw(4))
	second := build(t, wavyRaw(7))
	cache := animation.NewSamplingCache(8)

	sample(t, first, cache, 1.9)
	got := sample(t, second, cache, 0.3)
	want := sample(t, second, animation.NewSamplingCache(8), 0.3)
	for g := range want {
		if got[g] != want[g] {
			t.Errorf("group %d after rebind: %v, want %v", g, got[g], want[g])
		}
	}
}

func TestSamplingJobLeavesExtraOutput(t *testing.T) {
	a := build(t, twoJointRaw())
	marker := math.SoaTransformIdentity()
	marker.Translation = math.SoaFloat3Splat(math.Vec3{X: 42})

	out := []math.SoaTransform{marker, marker, marker}
	job := animation.SamplingJob{Animation: a, Cache: animation.NewSamplingCache(2), Time: 0.25, Output: out}
	if err := job.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i := 1; i < len(out); i++ {
		if out[i] != marker {
			t.Errorf("output[%d] was modified: %v", i, out[i])
		}
	}
}

func TestSamplingJobBindingErrors(t *testing.T) {
	a := build(t, wavyRaw(5))
	out := make([]math.SoaTransform, a.NumSoaTracks())

	tests := []struct {
		name string
		job  animation.SamplingJob
	}{
		{"no animation", animation.SamplingJob{Cache: animation.NewSamplingCache(5), Output: out}},
		{"no cache", animation.SamplingJob{Animation: a, Output: out}},
		{"cache too small", animation.SamplingJob{Animation: a, Cache: animation.NewSamplingCache(4), Output: out}},
		{"output too short", animation.SamplingJob{Animation: a, Cache: animation.NewSamplingCache(5), Output: out[:1]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.job.Run(); !errors.Is(err, animation.ErrBinding) {
				t.Errorf("Run() error = %v, want ErrBinding", err)
			}
		})
	}

	// A larger cache is fine.
	job := animation.SamplingJob{Animation: a, Cache: animation.NewSamplingCache(16), Output: out}
	if err := job.Run(); err != nil {
		t.Errorf("oversized cache: %v", err)
	}
}

func TestNewAnimationRejectsBadLayout(t *testing.T) {
	good := build(t, twoJointRaw())
	valid := animation.AnimationDesc{
		Name:         "copy",
		Duration:     1,
		NumTracks:    good.NumTracks(),
		Translations: good.Translations(),
		Rotations:    good.Rotations(),
		Scales:       good.Scales(),
	}
	if _, err := animation.NewAnimation(valid); err != nil {
		t.Fatalf("valid desc rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d *animation.AnimationDesc)
	}{
		{"zero duration", func(d *animation.AnimationDesc) { d.Duration = 0 }},
		{"too many tracks", func(d *animation.AnimationDesc) { d.NumTracks = 5 }},
		{"truncated keys", func(d *animation.AnimationDesc) {
			d.Translations.Keys = d.Translations.Keys[:len(d.Translations.Keys)-1]
		}},
		{"first ratio not zero", func(d *animation.AnimationDesc) {
			keys := append([]animation.QuatKey(nil), d.Rotations.Keys...)
			keys[0].Ratio = 7
			d.Rotations.Keys = keys
		}},
		{"last ratio not max", func(d *animation.AnimationDesc) {
			keys := append([]animation.Float3Key(nil), d.Scales.Keys...)
			keys[len(keys)-1].Ratio = 100
			d.Scales.Keys = keys
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			if _, err := animation.NewAnimation(d); !errors.Is(err, animation.ErrValidation) {
				t.Errorf("NewAnimation() error = %v, want ErrValidation", err)
			}
		})
	}
}
