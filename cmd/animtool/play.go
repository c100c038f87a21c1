package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/internal/playback"
	"github.com/Faultbox/midgard-anim/pkg/archive"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

func cmdPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: animtool play [flags] <file.skel> <file.anim>")
	}
	skel, err := archive.ParseSkeletonFile(fs.Arg(0))
	if err != nil {
		return err
	}
	anim, err := archive.ParseAnimationFile(fs.Arg(1))
	if err != nil {
		return err
	}

	pc := cfg.Playback
	crowd := &playback.Crowd{Workers: cfg.Pipeline.Workers}
	for i := 0; i < pc.Instances; i++ {
		in, err := playback.NewInstance(skel, anim, playback.NewController(anim.Duration(), pc.Speed, pc.Loop))
		if err != nil {
			return err
		}
		// Spread instances along X and stagger their start times.
		root := math.Translate(float32(i)*2, 0, 0)
		in.Root = &root
		in.Controller().SetTime(anim.Duration() * float32(i) / float32(pc.Instances))
		crowd.Instances = append(crowd.Instances, in)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.Named("playback")
	dt := 1 / float32(pc.FPS)
	start := time.Now()
	frames := 0
	for ; frames < pc.Frames && anyPlaying(crowd); frames++ {
		if err := crowd.Update(ctx, dt); err != nil {
			return err
		}
		log.Debug("frame", zap.Int("frame", frames), zap.Float32("time", crowd.Instances[0].Controller().Time()))
	}
	elapsed := time.Since(start)

	updates := frames * pc.Instances
	fmt.Printf("Played %q: %d instances x %d frames at %d fps\n", anim.Name(), pc.Instances, frames, pc.FPS)
	if updates > 0 {
		fmt.Printf("Elapsed: %v (%v per instance update)\n", elapsed, elapsed/time.Duration(updates))
	}
	for i, in := range crowd.Instances {
		p := in.Models()[0].Translation()
		c := in.Controller()
		fmt.Printf("  instance %-3d t=%.3f (%3.0f%%) root (%.3f, %.3f, %.3f)\n", i, c.Time(), c.Ratio()*100, p.X, p.Y, p.Z)
	}
	log.Info("playback finished",
		zap.String("animation", anim.Name()),
		zap.Int("instances", pc.Instances),
		zap.Int("frames", frames),
		zap.Duration("elapsed", elapsed))
	return nil
}

// anyPlaying reports whether some instance has not yet stopped at the end of
// a non-looping animation.
func anyPlaying(crowd *playback.Crowd) bool {
	for _, in := range crowd.Instances {
		if in.Controller().Playing() {
			return true
		}
	}
	return false
}
