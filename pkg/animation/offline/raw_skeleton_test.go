package offline

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func TestBuildSkeletonDepthFirst(t *testing.T) {
	id := math.TransformIdentity()
	raw := &RawSkeleton{Roots: []RawJoint{
		{Name: "hips", Transform: id, Children: []RawJoint{
			{Name: "spine", Transform: id, Children: []RawJoint{
				{Name: "head", Transform: id},
			}},
			{Name: "leg", Transform: id},
		}},
		{Name: "prop", Transform: id},
	}}

	if raw.NumJoints() != 5 {
		t.Fatalf("NumJoints = %d, want 5", raw.NumJoints())
	}
	skel, err := BuildSkeleton(raw)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}

	wantNames := []string{"hips", "spine", "head", "leg", "prop"}
	wantParents := []int{animation.NoParent, 0, 1, 0, animation.NoParent}
	for i := range wantNames {
		if skel.Names()[i] != wantNames[i] || skel.Parent(i) != wantParents[i] {
			t.Errorf("joint %d = %q parent %d, want %q parent %d",
				i, skel.Names()[i], skel.Parent(i), wantNames[i], wantParents[i])
		}
	}
}

func TestBuildSkeletonErrors(t *testing.T) {
	id := math.TransformIdentity()
	tests := []struct {
		name string
		raw  *RawSkeleton
	}{
		{"nil", nil},
		{"no joints", &RawSkeleton{}},
		{"duplicate names", &RawSkeleton{Roots: []RawJoint{
			{Name: "a", Transform: id, Children: []RawJoint{{Name: "a", Transform: id}}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildSkeleton(tt.raw); !errors.Is(err, animation.ErrValidation) {
				t.Errorf("BuildSkeleton() error = %v, want ErrValidation", err)
			}
		})
	}
}
