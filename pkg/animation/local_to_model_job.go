package animation

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/math"
)

// LocalToModelJob converts local transforms into model-space matrices by
// walking the skeleton in its stored parent-before-child order.
type LocalToModelJob struct {
	Skeleton *Skeleton
	// Root is applied to every root joint. Nil means identity.
	Root *math.Mat4
	// Input holds the local transforms, one SoA entry per joint group.
	Input []math.SoaTransform
	// Output receives one matrix per joint.
	Output []math.Mat4
}

// Validate checks the job buffers against the skeleton.
func (j *LocalToModelJob) Validate() error {
	if j.Skeleton == nil {
		return fmt.Errorf("%w: local-to-model job has no skeleton", ErrBinding)
	}
	if len(j.Input) < j.Skeleton.NumSoaJoints() {
		return fmt.Errorf("%w: input holds %d SoA transforms, skeleton needs %d",
			ErrBinding, len(j.Input), j.Skeleton.NumSoaJoints())
	}
	if len(j.Output) < j.Skeleton.NumJoints() {
		return fmt.Errorf("%w: output holds %d matrices, skeleton needs %d",
			ErrBinding, len(j.Output), j.Skeleton.NumJoints())
	}
	return nil
}

// Run updates the model matrices of every joint.
func (j *LocalToModelJob) Run() error {
	if err := j.Validate(); err != nil {
		return err
	}
	j.propagate(0, j.Skeleton.NumJoints())
	return nil
}

// RunFrom updates only the subtree rooted at joint from. Output must
// already hold valid matrices for the ancestors of from.
func (j *LocalToModelJob) RunFrom(from int) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if from < 0 || from >= j.Skeleton.NumJoints() {
		return fmt.Errorf("%w: joint %d out of range [0, %d)", ErrBinding, from, j.Skeleton.NumJoints())
	}
	j.propagate(from, j.Skeleton.SubtreeEnd(from))
	return nil
}

func (j *LocalToModelJob) propagate(begin, end int) {
	root := math.Identity()
	if j.Root != nil {
		root = *j.Root
	}

	parents := j.Skeleton.Parents()
	for i := begin; i < end; i++ {
		local := j.Input[i/math.SoaWidth].Lane(i % math.SoaWidth).ToMat4()
		if p := parents[i]; p == NoParent {
			j.Output[i] = root.Mul(local)
		} else {
			j.Output[i] = j.Output[p].Mul(local)
		}
	}
}
