package playback

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Instance is one animated character: a playback controller plus the
// cache and buffers of its sampling stream. Skeleton and Animation may be
// shared between instances; everything else is private.
type Instance struct {
	skeleton   *animation.Skeleton
	animation  *animation.Animation
	controller *Controller

	cache  *animation.SamplingCache
	locals []math.SoaTransform
	models []math.Mat4

	// Root places the character in the world. Nil means identity.
	Root *math.Mat4
}

// NewInstance allocates the buffers of a stream playing anim on skeleton.
func NewInstance(skeleton *animation.Skeleton, anim *animation.Animation, controller *Controller) (*Instance, error) {
	if skeleton == nil || anim == nil || controller == nil {
		return nil, fmt.Errorf("%w: instance needs a skeleton, an animation and a controller", animation.ErrBinding)
	}
	if anim.NumTracks() != skeleton.NumJoints() {
		return nil, fmt.Errorf("%w: animation %q has %d tracks, skeleton has %d joints",
			animation.ErrBinding, anim.Name(), anim.NumTracks(), skeleton.NumJoints())
	}
	return &Instance{
		skeleton:   skeleton,
		animation:  anim,
		controller: controller,
		cache:      animation.NewSamplingCache(anim.NumTracks()),
		locals:     make([]math.SoaTransform, skeleton.NumSoaJoints()),
		models:     make([]math.Mat4, skeleton.NumJoints()),
	}, nil
}

// Controller returns the playback controller.
func (in *Instance) Controller() *Controller { return in.controller }

// Models returns the model-space matrices of the last update.
func (in *Instance) Models() []math.Mat4 { return in.models }

// Animation returns the animation being played.
func (in *Instance) Animation() *animation.Animation { return in.animation }

// SetAnimation switches to another animation of the same skeleton. The
// sampling cache rebinds on the next update.
func (in *Instance) SetAnimation(anim *animation.Animation) error {
	if anim == nil || anim.NumTracks() != in.skeleton.NumJoints() {
		return fmt.Errorf("%w: animation does not match skeleton", animation.ErrBinding)
	}
	in.animation = anim
	in.controller.duration = anim.Duration()
	in.controller.SetTime(in.controller.Time())
	return nil
}

// Update advances the controller by dt and recomputes the pose.
func (in *Instance) Update(dt float32) error {
	in.controller.Update(dt)

	sampling := animation.SamplingJob{
		Animation: in.animation,
		Cache:     in.cache,
		Time:      in.controller.Time(),
		Output:    in.locals,
	}
	if err := sampling.Run(); err != nil {
		return err
	}

	ltm := animation.LocalToModelJob{
		Skeleton: in.skeleton,
		Root:     in.Root,
		Input:    in.locals,
		Output:   in.models,
	}
	return ltm.Run()
}

// Crowd updates many instances concurrently. Workers bounds the number of
// goroutines; zero or less means no limit.
type Crowd struct {
	Workers   int
	Instances []*Instance
}

// Update advances every instance by dt. It returns the first error.
func (c *Crowd) Update(ctx context.Context, dt float32) error {
	g, ctx := errgroup.WithContext(ctx)
	if c.Workers > 0 {
		g.SetLimit(c.Workers)
	}
	for _, in := range c.Instances {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return in.Update(dt)
		})
	}
	return g.Wait()
}
