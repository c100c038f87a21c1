package playback

import (
	"context"
	"errors"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func near(a, b float32) bool {
	d := a - b
	return d < 1e-5 && d > -1e-5
}

func TestControllerUpdate(t *testing.T) {
	tests := []struct {
		name        string
		speed       float32
		loop        bool
		steps       []float32
		wantTime    float32
		wantPlaying bool
	}{
		{"forward", 1, false, []float32{0.5, 0.25}, 0.75, true},
		{"double speed", 2, false, []float32{0.25}, 0.5, true},
		{"clamp at end", 1, false, []float32{1.5, 1}, 2, false},
		{"wrap", 1, true, []float32{1.5, 1}, 0.5, true},
		{"reverse clamp", -1, false, []float32{0.5}, 0, false},
		{"reverse wrap", -1, true, []float32{0.5}, 1.5, true},
		{"stopped", 0, false, []float32{1}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(2, tt.speed, tt.loop)
			for _, dt := range tt.steps {
				c.Update(dt)
			}
			if !near(c.Time(), tt.wantTime) {
				t.Errorf("Time() = %v, want %v", c.Time(), tt.wantTime)
			}
			if c.Playing() != tt.wantPlaying {
				t.Errorf("Playing() = %v, want %v", c.Playing(), tt.wantPlaying)
			}
		})
	}
}

func TestControllerSeek(t *testing.T) {
	c := NewController(4, 1, false)
	c.SetTime(10)
	if c.Time() != 4 || c.Ratio() != 1 {
		t.Errorf("SetTime(10) = %v (ratio %v), want clamp to 4 (1)", c.Time(), c.Ratio())
	}
	c.SetTime(-1)
	if c.Time() != 0 {
		t.Errorf("SetTime(-1) = %v, want 0", c.Time())
	}

	loop := NewController(4, 1, true)
	loop.SetTime(5)
	if !near(loop.Time(), 1) || !near(loop.Ratio(), 0.25) {
		t.Errorf("looping SetTime(5) = %v (ratio %v), want 1 (0.25)", loop.Time(), loop.Ratio())
	}
	if !loop.Playing() {
		t.Error("seeking should not stop playback")
	}

	if r := NewController(0, 1, true).Ratio(); r != 0 {
		t.Errorf("ratio of empty animation = %v, want 0", r)
	}
}

func walk(t *testing.T) (*animation.Skeleton, *animation.Animation) {
	t.Helper()
	bone := math.TransformIdentity()
	bone.Translation = math.Vec3{Y: 1}
	skel, err := offline.BuildSkeleton(&offline.RawSkeleton{Roots: []offline.RawJoint{{
		Name:      "pelvis",
		Transform: math.TransformIdentity(),
		Children:  []offline.RawJoint{{Name: "knee", Transform: bone}},
	}}})
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}

	raw := &offline.RawAnimation{Name: "walk", Duration: 1, Tracks: make([]offline.JointTrack, 2)}
	raw.Tracks[0].Translations = []offline.Keyframe[math.Vec3]{
		{Time: 0, Value: math.Vec3{}},
		{Time: 1, Value: math.Vec3{Z: 2}},
	}
	raw.Tracks[1].Translations = []offline.Keyframe[math.Vec3]{
		{Time: 0, Value: math.Vec3{Y: 1}},
		{Time: 1, Value: math.Vec3{Y: 1}},
	}
	b := offline.AnimationBuilder{Skeleton: skel}
	anim, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return skel, anim
}

func TestInstanceUpdate(t *testing.T) {
	skel, anim := walk(t)
	in, err := NewInstance(skel, anim, NewController(anim.Duration(), 1, true))
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	if err := in.Update(0.25); err != nil {
		t.Fatalf("Update: %v", err)
	}
	knee := in.Models()[1].Translation()
	if !near(knee.Y, 1) || !near(knee.Z, 0.5) {
		t.Errorf("knee at t=0.25 = %v, want (0, 1, 0.5)", knee)
	}

	root := math.Translate(10, 0, 0)
	in.Root = &root
	if err := in.Update(0.25); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := in.Models()[0].Translation(); !near(got.X, 10) || !near(got.Z, 1) {
		t.Errorf("pelvis at t=0.5 with root = %v, want (10, 0, 1)", got)
	}
}

func TestInstanceBinding(t *testing.T) {
	skel, anim := walk(t)
	if _, err := NewInstance(skel, nil, NewController(1, 1, true)); !errors.Is(err, animation.ErrBinding) {
		t.Errorf("nil animation: %v", err)
	}

	other, err := animation.NewSkeleton([]animation.Joint{{Name: "solo", Parent: animation.NoParent, BindPose: math.TransformIdentity()}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewInstance(other, anim, NewController(1, 1, true)); !errors.Is(err, animation.ErrBinding) {
		t.Errorf("mismatched skeleton: %v", err)
	}

	in, err := NewInstance(skel, anim, NewController(anim.Duration(), 1, true))
	if err != nil {
		t.Fatal(err)
	}
	if err := in.SetAnimation(nil); !errors.Is(err, animation.ErrBinding) {
		t.Errorf("SetAnimation(nil): %v", err)
	}
}

func TestCrowdMatchesSequential(t *testing.T) {
	skel, anim := walk(t)

	newCrowd := func() *Crowd {
		c := &Crowd{Workers: 3}
		for i := 0; i < 8; i++ {
			in, err := NewInstance(skel, anim, NewController(anim.Duration(), 0.5+float32(i)*0.25, true))
			if err != nil {
				t.Fatalf("NewInstance: %v", err)
			}
			c.Instances = append(c.Instances, in)
		}
		return c
	}

	parallel, sequential := newCrowd(), newCrowd()
	for frame := 0; frame < 20; frame++ {
		if err := parallel.Update(context.Background(), 1.0/30); err != nil {
			t.Fatalf("Crowd.Update: %v", err)
		}
		for _, in := range sequential.Instances {
			if err := in.Update(1.0 / 30); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
	}

	for i := range parallel.Instances {
		p, s := parallel.Instances[i].Models(), sequential.Instances[i].Models()
		for j := range p {
			if p[j] != s[j] {
				t.Errorf("instance %d joint %d differs between parallel and sequential updates", i, j)
			}
		}
	}
}

func TestCrowdCanceled(t *testing.T) {
	skel, anim := walk(t)
	in, err := NewInstance(skel, anim, NewController(anim.Duration(), 1, true))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Crowd{Instances: []*Instance{in}}
	if err := c.Update(ctx, 0.1); !errors.Is(err, context.Canceled) {
		t.Errorf("Update() error = %v, want context.Canceled", err)
	}
}
