package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/archive"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: animtool info <file.skel|file.anim>")
	}
	path := args[0]

	switch strings.ToLower(filepath.Ext(path)) {
	case ".skel":
		skel, err := archive.ParseSkeletonFile(path)
		if err != nil {
			return err
		}
		printSkeleton(path, skel)
	case ".anim":
		anim, err := archive.ParseAnimationFile(path)
		if err != nil {
			return err
		}
		printAnimation(path, anim)
	default:
		return fmt.Errorf("unknown archive extension %q", filepath.Ext(path))
	}
	return nil
}

func printSkeleton(path string, skel *animation.Skeleton) {
	fmt.Printf("Skeleton: %s\n", path)
	fmt.Printf("Joints:   %d (%d SoA groups)\n", skel.NumJoints(), skel.NumSoaJoints())
	fmt.Println()

	depth := make([]int, skel.NumJoints())
	leaves := 0
	for i, name := range skel.Names() {
		if p := skel.Parent(i); p != animation.NoParent {
			depth[i] = depth[p] + 1
		}
		mark := ""
		if skel.IsLeaf(i) {
			mark = " leaf"
			leaves++
		}
		t := skel.BindPose(i).Translation
		fmt.Printf("  %s%-*s (%.3f, %.3f, %.3f)%s\n", strings.Repeat("  ", depth[i]), 24-2*depth[i], name, t.X, t.Y, t.Z, mark)
	}
	fmt.Printf("\nLeaves:   %d\n", leaves)
}

func printAnimation(path string, anim *animation.Animation) {
	t, r, s := anim.KeyCounts()
	fmt.Printf("Animation: %s\n", path)
	fmt.Printf("Name:      %s\n", anim.Name())
	fmt.Printf("Duration:  %.3f s\n", anim.Duration())
	fmt.Printf("Tracks:    %d (%d SoA groups)\n", anim.NumTracks(), anim.NumSoaTracks())
	fmt.Printf("Keys:      %d translation, %d rotation, %d scale\n", t, r, s)
	fmt.Printf("Size:      %.2f KB\n", float64(anim.Size())/1024)
}

func cmdSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	at := fs.Float64("t", 0, "Sample time in seconds")
	joint := fs.String("joint", "", "Only print this joint")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: animtool sample [-t sec] [-joint name] <file.skel> <file.anim>")
	}
	skel, err := archive.ParseSkeletonFile(fs.Arg(0))
	if err != nil {
		return err
	}
	anim, err := archive.ParseAnimationFile(fs.Arg(1))
	if err != nil {
		return err
	}

	if anim.NumTracks() != skel.NumJoints() {
		return fmt.Errorf("%w: animation %q has %d tracks, skeleton has %d joints",
			animation.ErrBinding, anim.Name(), anim.NumTracks(), skel.NumJoints())
	}

	locals := make([]math.SoaTransform, skel.NumSoaJoints())
	sampling := animation.SamplingJob{
		Animation: anim,
		Cache:     animation.NewSamplingCache(anim.NumTracks()),
		Time:      float32(*at),
		Output:    locals,
	}
	if err := sampling.Run(); err != nil {
		return err
	}
	models := make([]math.Mat4, skel.NumJoints())
	ltm := animation.LocalToModelJob{Skeleton: skel, Input: locals, Output: models}
	if err := ltm.Run(); err != nil {
		return err
	}

	fmt.Printf("%s at %.3f s\n", anim.Name(), sampling.Cache.Time())
	for i, name := range skel.Names() {
		if *joint != "" && name != *joint {
			continue
		}
		p := models[i].Translation()
		fmt.Printf("  %-24s (%.4f, %.4f, %.4f)\n", name, p.X, p.Y, p.Z)
	}
	return nil
}
