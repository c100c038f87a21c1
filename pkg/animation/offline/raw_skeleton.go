package offline

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// RawJoint is a joint of an offline skeleton tree.
type RawJoint struct {
	Name      string
	Transform math.Transform
	Children  []RawJoint
}

// RawSkeleton is an offline joint hierarchy, possibly with several roots.
type RawSkeleton struct {
	Roots []RawJoint
}

// NumJoints returns the number of joints in the tree.
func (s *RawSkeleton) NumJoints() int {
	n := 0
	s.walk(func(*RawJoint, int) { n++ })
	return n
}

// walk visits joints depth-first, parents first, passing the flat index of
// each joint's parent.
func (s *RawSkeleton) walk(fn func(j *RawJoint, parent int)) {
	next := 0
	var visit func(j *RawJoint, parent int)
	visit = func(j *RawJoint, parent int) {
		self := next
		next++
		fn(j, parent)
		for i := range j.Children {
			visit(&j.Children[i], self)
		}
	}
	for i := range s.Roots {
		visit(&s.Roots[i], animation.NoParent)
	}
}

// BuildSkeleton flattens the tree in depth-first order into a runtime
// skeleton. Joint names must be unique.
func BuildSkeleton(raw *RawSkeleton) (*animation.Skeleton, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil raw skeleton", animation.ErrValidation)
	}

	var joints []animation.Joint
	seen := make(map[string]bool)
	var dup string
	raw.walk(func(j *RawJoint, parent int) {
		if j.Name != "" && seen[j.Name] && dup == "" {
			dup = j.Name
		}
		seen[j.Name] = true
		joints = append(joints, animation.Joint{
			Name:     j.Name,
			Parent:   parent,
			BindPose: j.Transform,
		})
	})
	if dup != "" {
		return nil, fmt.Errorf("%w: duplicate joint name %q", animation.ErrValidation, dup)
	}
	return animation.NewSkeleton(joints)
}
