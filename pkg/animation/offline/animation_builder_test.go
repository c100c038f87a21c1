package offline

import (
	"errors"
	"strings"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestAnimationBuilderLayout(t *testing.T) {
	raw := &RawAnimation{
		Name:     "layout",
		Duration: 1,
		Tracks: []JointTrack{
			{Translations: vkeys(0, 0, 0.25, 1, 0.5, 2, 1, 3)},
			{Translations: vkeys(0, 5, 1, 6)},
			{},
			{},
			{Translations: vkeys(0, 7, 0.5, 8, 1, 9)},
		},
	}

	b := AnimationBuilder{}
	a, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.NumTracks() != 5 || a.NumSoaTracks() != 2 {
		t.Fatalf("tracks = %d/%d, want 5/2", a.NumTracks(), a.NumSoaTracks())
	}

	ch := a.Translations()
	if got := ch.Entries(0); got != 4 {
		t.Errorf("group 0 entries = %d, want 4", got)
	}
	if got := ch.Entries(1); got != 3 {
		t.Errorf("group 1 entries = %d, want 3", got)
	}

	// Lane 1 has two keys and repeats its last key to fill the group.
	for e := 1; e < 4; e++ {
		k := ch.At(0, e, 1)
		if k.Ratio != animation.RatioMax || k.Decode().X != 6 {
			t.Errorf("lane 1 entry %d = ratio %d value %v, want padded last key", e, k.Ratio, k.Decode())
		}
	}
	// Empty channels hold default keys, padding lanes too.
	for _, lane := range []struct{ group, lane int }{{0, 2}, {1, 1}, {1, 3}} {
		k := ch.At(lane.group, 0, lane.lane)
		if k.Decode() != math.Vec3Zero() {
			t.Errorf("group %d lane %d = %v, want zero", lane.group, lane.lane, k.Decode())
		}
	}
	sc := a.Scales()
	if got := sc.At(1, 0, 3).Decode(); got != math.Vec3One() {
		t.Errorf("padding scale = %v, want one", got)
	}
	rc := a.Rotations()
	if got := rc.At(0, 1, 2).Decode(); got != math.QuatIdentity() {
		t.Errorf("default rotation = %v, want identity", got)
	}
}

func TestAnimationBuilderRatioCollision(t *testing.T) {
	// 1e-6 of a second quantizes to ratio 0 and 1 - 1e-6 to RatioMax.
	raw := &RawAnimation{
		Duration: 1,
		Tracks:   []JointTrack{{Translations: vkeys(0, 1, 1e-6, 1, 0.5, 3, 1-1e-6, 5, 1, 5)}},
	}
	b := AnimationBuilder{}
	a, err := b.Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ch := a.Translations()
	if got := ch.Entries(0); got != 3 {
		t.Fatalf("entries = %d, want 3 (identical keys collapse)", got)
	}
	if got := ch.At(0, 0, 0).Decode().X; got != 1 {
		t.Errorf("first key = %v, want 1", got)
	}
	if got := ch.At(0, 2, 0).Decode().X; got != 5 {
		t.Errorf("last key = %v, want 5", got)
	}

	raw.Tracks[0].Translations = vkeys(0, 1, 0.5, 3, 1-1e-6, 4, 1, 5)
	if _, err := b.Build(raw); !errors.Is(err, animation.ErrValidation) {
		t.Errorf("different values at one ratio: got %v, want ErrValidation", err)
	}
}

func TestAnimationBuilderRejectsDenseLongTrack(t *testing.T) {
	// 20 minutes at 60 keys per second is more keys than time ratios.
	const fps, seconds = 60, 1200
	keys := make([]Keyframe[math.Vec3], fps*seconds+1)
	for i := range keys {
		keys[i] = Keyframe[math.Vec3]{Time: float32(i) / fps, Value: math.Vec3{X: float32(i % 2)}}
	}
	raw := &RawAnimation{Duration: seconds, Tracks: []JointTrack{{Translations: keys}}}
	if err := raw.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	b := AnimationBuilder{}
	_, err := b.Build(raw)
	if !errors.Is(err, animation.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "joint 0 translations") {
		t.Errorf("error does not name the channel: %v", err)
	}
}

func TestAnimationBuilderErrors(t *testing.T) {
	skel, err := animation.NewSkeleton([]animation.Joint{
		{Name: "root", Parent: animation.NoParent, BindPose: math.TransformIdentity()},
	})
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}

	tests := []struct {
		name string
		b    AnimationBuilder
		raw  *RawAnimation
	}{
		{"nil", AnimationBuilder{}, nil},
		{"invalid", AnimationBuilder{}, &RawAnimation{Duration: 1, Tracks: []JointTrack{{Translations: vkeys(0.5, 0, 1, 0)}}}},
		{"skeleton mismatch", AnimationBuilder{Skeleton: skel}, &RawAnimation{Duration: 1, Tracks: make([]JointTrack, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.Build(tt.raw); !errors.Is(err, animation.ErrValidation) {
				t.Errorf("Build() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestAnimationBuilderZeroTracks(t *testing.T) {
	b := AnimationBuilder{}
	a, err := b.Build(&RawAnimation{Name: "empty", Duration: 2})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.NumSoaTracks() != 0 || a.Size() != 0 {
		t.Errorf("empty animation has %d groups, %d bytes", a.NumSoaTracks(), a.Size())
	}
}
