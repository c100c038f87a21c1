package main

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-anim/internal/source"
	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func cmdDemo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: animtool demo <source.yaml>")
	}
	skel, anim := demoWalk()
	doc, err := source.NewDocument(skel, anim)
	if err != nil {
		return err
	}
	if err := doc.Save(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d joints, %.1f s, %d keys\n", args[0], skel.NumJoints(), anim.Duration, anim.KeyCount())
	return nil
}

// demoWalk returns a two-legged rig and a densely sampled walk cycle.
func demoWalk() (*offline.RawSkeleton, *offline.RawAnimation) {
	at := func(x, y, z float32) math.Transform {
		t := math.TransformIdentity()
		t.Translation = math.Vec3{X: x, Y: y, Z: z}
		return t
	}
	leg := func(side string, x float32) offline.RawJoint {
		return offline.RawJoint{Name: "thigh_" + side, Transform: at(x, -0.1, 0), Children: []offline.RawJoint{
			{Name: "shin_" + side, Transform: at(0, -0.45, 0), Children: []offline.RawJoint{
				{Name: "foot_" + side, Transform: at(0, -0.45, 0)},
			}},
		}}
	}
	skel := &offline.RawSkeleton{Roots: []offline.RawJoint{{
		Name:      "pelvis",
		Transform: at(0, 1, 0),
		Children: []offline.RawJoint{
			{Name: "spine", Transform: at(0, 0.3, 0), Children: []offline.RawJoint{
				{Name: "head", Transform: at(0, 0.5, 0)},
			}},
			leg("l", 0.1),
			leg("r", -0.1),
		},
	}}}

	// Joint order: pelvis, spine, head, thigh_l, shin_l, foot_l, thigh_r, shin_r, foot_r.
	const (
		duration = 2
		keys     = 61
	)
	anim := &offline.RawAnimation{Name: "walk", Duration: duration, Tracks: make([]offline.JointTrack, skel.NumJoints())}
	swing := func(phase, amplitude float64) func(t float32) math.Quat {
		return func(t float32) math.Quat {
			a := amplitude * gomath.Sin(2*gomath.Pi*float64(t)/duration+phase)
			return math.QuatFromAxisAngle(math.Vec3{X: 1}, float32(a))
		}
	}
	rotations := map[int]func(float32) math.Quat{
		1: swing(0, 0.05),
		3: swing(0, 0.5),
		4: swing(gomath.Pi/2, 0.4),
		6: swing(gomath.Pi, 0.5),
		7: swing(3*gomath.Pi/2, 0.4),
	}
	for k := 0; k < keys; k++ {
		t := float32(k) * duration / (keys - 1)
		bob := float32(0.03 * gomath.Cos(4*gomath.Pi*float64(t)/duration))
		anim.Tracks[0].Translations = append(anim.Tracks[0].Translations,
			offline.Keyframe[math.Vec3]{Time: t, Value: math.Vec3{Y: 1 + bob, Z: 0.7 * t}})
		for j, rot := range rotations {
			anim.Tracks[j].Rotations = append(anim.Tracks[j].Rotations, offline.Keyframe[math.Quat]{Time: t, Value: rot(t)})
		}
	}
	return skel, anim
}
