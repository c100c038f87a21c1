package offline

import (
	"fmt"
	gomath "math"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Tolerance is the error budget of one joint.
type Tolerance struct {
	// Distance is the maximum positional error, in model units.
	Distance float32
	// Angle is the maximum rotation error, in radians.
	Angle float32
}

// ToleranceConfig holds a default tolerance and per-joint overrides keyed
// by joint index.
type ToleranceConfig struct {
	Default Tolerance
	Joints  map[int]Tolerance
}

// ForJoint returns the tolerance of joint j.
func (c ToleranceConfig) ForJoint(j int) Tolerance {
	if t, ok := c.Joints[j]; ok {
		return t
	}
	return c.Default
}

// ChannelTolerances are the per-channel thresholds the optimizer applies to
// one joint. A threshold <= 0 disables simplification of that channel.
type ChannelTolerances struct {
	Translation float32
	Rotation    float32
	Scale       float32
}

// Effective scales t by the lever arm of a joint, the longest distance from
// the joint to one of its descendants. A rotation error e moves the
// farthest descendant by 2*arm*sin(e/2), a scale error s by s*arm.
func (t Tolerance) Effective(arm float32) ChannelTolerances {
	ct := ChannelTolerances{
		Translation: t.Distance,
		Rotation:    t.Angle,
		Scale:       t.Distance / max(arm, 1),
	}
	if arm > 0 {
		chord := float64(max(t.Distance, 0)) / (2 * float64(arm))
		ct.Rotation = min(t.Angle, float32(2*gomath.Asin(min(chord, 1))))
	}
	return ct
}

// LeverArms returns, per joint, the longest accumulated bone length from
// the joint to any of its descendants. A bone's length is the largest of
// its bind-pose translation and every translation key of its track.
func LeverArms(raw *RawAnimation, skeleton *animation.Skeleton) []float32 {
	n := skeleton.NumJoints()
	arms := make([]float32, n)
	parents := skeleton.Parents()

	for j := n - 1; j >= 0; j-- {
		p := parents[j]
		if p == animation.NoParent {
			continue
		}
		bone := skeleton.BindPose(j).Translation.Length()
		if j < raw.NumTracks() {
			for _, k := range raw.Tracks[j].Translations {
				bone = max(bone, k.Value.Length())
			}
		}
		arms[p] = max(arms[p], bone+arms[j])
	}
	return arms
}

// AnimationOptimizer removes keyframes that can be rebuilt by interpolating
// their neighbours within the tolerance of their joint.
type AnimationOptimizer struct {
	Tolerances ToleranceConfig
	// Logger receives per-joint statistics at debug level. Nil disables it.
	Logger *zap.Logger
}

// NewAnimationOptimizer returns an optimizer with the given tolerances.
func NewAnimationOptimizer(cfg ToleranceConfig, logger *zap.Logger) *AnimationOptimizer {
	return &AnimationOptimizer{Tolerances: cfg, Logger: logger}
}

// Optimize is a shorthand for an AnimationOptimizer run without logging.
func Optimize(raw *RawAnimation, skeleton *animation.Skeleton, cfg ToleranceConfig) (*RawAnimation, error) {
	return NewAnimationOptimizer(cfg, nil).Optimize(raw, skeleton)
}

// Optimize returns a simplified copy of raw. The first and last key of
// every channel survive. raw is not modified.
func (o *AnimationOptimizer) Optimize(raw *RawAnimation, skeleton *animation.Skeleton) (*RawAnimation, error) {
	if raw == nil || skeleton == nil {
		return nil, fmt.Errorf("%w: optimizer needs an animation and a skeleton", animation.ErrValidation)
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if raw.NumTracks() != skeleton.NumJoints() {
		return nil, fmt.Errorf("%w: animation %q has %d tracks, skeleton has %d joints",
			animation.ErrValidation, raw.Name, raw.NumTracks(), skeleton.NumJoints())
	}

	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	arms := LeverArms(raw, skeleton)
	out := &RawAnimation{
		Name:     raw.Name,
		Duration: raw.Duration,
		Tracks:   make([]JointTrack, raw.NumTracks()),
	}
	for j := range raw.Tracks {
		src := &raw.Tracks[j]
		tol := o.Tolerances.ForJoint(j).Effective(arms[j])
		out.Tracks[j] = JointTrack{
			Translations: simplify(src.Translations, tol.Translation, lerpVec3, vec3Distance),
			Rotations:    simplify(src.Rotations, tol.Rotation, nlerpQuat, quatAngle),
			Scales:       simplify(src.Scales, tol.Scale, lerpVec3, vec3Distance),
		}
		log.Debug("joint optimized",
			zap.Int("joint", j),
			zap.Float32("lever_arm", arms[j]),
			zap.Float32("rotation_tolerance", tol.Rotation),
			zap.Int("keys_before", src.KeyCount()),
			zap.Int("keys_after", out.Tracks[j].KeyCount()))
	}

	log.Debug("animation optimized",
		zap.String("animation", raw.Name),
		zap.Int("keys_before", raw.KeyCount()),
		zap.Int("keys_after", out.KeyCount()))
	return out, nil
}

func vec3Distance(a, b math.Vec3) float32 { return a.Distance(b) }

func quatAngle(a, b math.Quat) float32 { return a.Normalize().AngleTo(b.Normalize()) }

type segment struct{ from, to int }

// simplify keeps the smallest set of keys found by recursive subdivision
// such that every dropped key lies within tol of the interpolation of the
// kept keys around it.
func simplify[T any](keys []Keyframe[T], tol float32, lerp func(a, b T, u float32) T, dist func(a, b T) float32) []Keyframe[T] {
	if !(tol > 0) || len(keys) <= 2 {
		return slices.Clone(keys)
	}

	keep := make([]bool, len(keys))
	keep[0], keep[len(keys)-1] = true, true

	stack := []segment{{0, len(keys) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.to-s.from < 2 {
			continue
		}

		worst, worstErr := -1, float32(0)
		for k := s.from + 1; k < s.to; k++ {
			v := interpolate(keys[s.from], keys[s.to], keys[k].Time, lerp)
			e := dist(v, keys[k].Value)
			if e != e {
				e = float32(gomath.Inf(1))
			}
			if e > worstErr {
				worst, worstErr = k, e
			}
		}
		if worstErr <= tol {
			continue
		}
		keep[worst] = true
		stack = append(stack, segment{s.from, worst}, segment{worst, s.to})
	}

	out := make([]Keyframe[T], 0, len(keys))
	for i, k := range keys {
		if keep[i] {
			out = append(out, k)
		}
	}
	return out
}
