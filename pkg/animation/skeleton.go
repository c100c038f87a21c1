// Package animation implements the skeletal animation runtime: the joint
// hierarchy, the compressed keyframe format, sampling and local-to-model
// propagation.
package animation

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// NoParent is the parent index of root joints.
const NoParent = -1

// Joint describes one joint handed to NewSkeleton.
type Joint struct {
	Name     string
	Parent   int
	BindPose math.Transform
}

// JointGroup holds four consecutive joints in SoA form. Lanes at or past
// Count are padding: identity bind pose, parent set to their own index.
type JointGroup struct {
	BindPose math.SoaTransform
	Parents  [math.SoaWidth]int
	Count    int
}

// Skeleton is an immutable joint hierarchy stored in depth-first,
// parent-before-child order.
type Skeleton struct {
	names   []string
	parents []int
	groups  []JointGroup
	byName  map[string]int
}

// NewSkeleton validates the joint order and builds the SoA layout.
// Every joint's parent must be NoParent or an ancestor on the current
// depth-first path, which implies parent < index.
func NewSkeleton(joints []Joint) (*Skeleton, error) {
	if len(joints) == 0 {
		return nil, fmt.Errorf("%w: skeleton has no joints", ErrValidation)
	}

	s := &Skeleton{
		names:   make([]string, len(joints)),
		parents: make([]int, len(joints)),
		groups:  make([]JointGroup, (len(joints)+math.SoaWidth-1)/math.SoaWidth),
		byName:  make(map[string]int, len(joints)),
	}

	// path holds the ancestors of the joint being visited.
	path := make([]int, 0, 16)
	for i, j := range joints {
		p := j.Parent
		if p < NoParent || p >= i {
			return nil, fmt.Errorf("%w: joint %d (%q) has parent %d, parents must precede children",
				ErrValidation, i, j.Name, p)
		}
		for len(path) > 0 && path[len(path)-1] != p {
			path = path[:len(path)-1]
		}
		if p != NoParent && len(path) == 0 {
			return nil, fmt.Errorf("%w: joint %d (%q) breaks depth-first order under parent %d",
				ErrValidation, i, j.Name, p)
		}
		path = append(path, i)

		s.names[i] = j.Name
		s.parents[i] = p
		if j.Name != "" {
			if _, dup := s.byName[j.Name]; !dup {
				s.byName[j.Name] = i
			}
		}
	}

	for g := range s.groups {
		group := &s.groups[g]
		group.BindPose = math.SoaTransformIdentity()
		for lane := 0; lane < math.SoaWidth; lane++ {
			idx := g*math.SoaWidth + lane
			if idx >= len(joints) {
				group.Parents[lane] = idx
				continue
			}
			group.Count++
			group.Parents[lane] = s.parents[idx]
			group.BindPose.Set(lane, joints[idx].BindPose)
		}
	}

	return s, nil
}

// NumJoints returns the number of joints.
func (s *Skeleton) NumJoints() int {
	return len(s.parents)
}

// NumSoaJoints returns the number of SoA groups.
func (s *Skeleton) NumSoaJoints() int {
	return len(s.groups)
}

// Parent returns the parent index of joint i, or NoParent.
func (s *Skeleton) Parent(i int) int {
	return s.parents[i]
}

// Parents returns the parent indices. The slice must not be modified.
func (s *Skeleton) Parents() []int {
	return s.parents
}

// Names returns the joint names. The slice must not be modified.
func (s *Skeleton) Names() []string {
	return s.names
}

// JointByName returns the index of the first joint with the given name.
func (s *Skeleton) JointByName(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Groups returns the SoA joint groups. The slice must not be modified.
func (s *Skeleton) Groups() []JointGroup {
	return s.groups
}

// BindPose returns the bind pose transform of joint i.
func (s *Skeleton) BindPose(i int) math.Transform {
	return s.groups[i/math.SoaWidth].BindPose.Lane(i % math.SoaWidth)
}

// IsLeaf reports whether joint i has no children.
func (s *Skeleton) IsLeaf(i int) bool {
	next := i + 1
	return next >= len(s.parents) || s.parents[next] != i
}

// SubtreeEnd returns one past the last descendant of joint i. In depth-first
// order a subtree is the contiguous range [i, SubtreeEnd(i)).
func (s *Skeleton) SubtreeEnd(i int) int {
	end := i + 1
	for end < len(s.parents) && s.parents[end] >= i {
		end++
	}
	return end
}
