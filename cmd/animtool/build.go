package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-anim/internal/logger"
	"github.com/Faultbox/midgard-anim/internal/pipeline"
	"github.com/Faultbox/midgard-anim/internal/source"
	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
)

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	cfg, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: animtool build [flags] <source.yaml>")
	}
	path := fs.Arg(0)

	doc, err := source.LoadEncoded(path, cfg.Source.Encoding)
	if err != nil {
		return err
	}
	rawSkel, err := doc.RawSkeleton()
	if err != nil {
		return err
	}
	skel, err := offline.BuildSkeleton(rawSkel)
	if err != nil {
		return err
	}
	raw, err := doc.RawAnimation(skel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p := pipeline.New(pipeline.OptionsFromConfig(cfg), logger.Named("pipeline"))
	res, err := p.Run(ctx, name, skel, raw)
	if err != nil {
		return err
	}

	fmt.Printf("Skeleton: %s (%d joints)\n", res.SkeletonPath, skel.NumJoints())
	fmt.Printf("%-16s %8s %8s %8s %10s\n", "CLIP", "SECONDS", "KEYS", "KEPT", "BYTES")
	for _, c := range res.Clips {
		fmt.Printf("%-16s %8.3f %8d %8d %10d\n", c.Name, c.Duration, c.KeysBefore, c.KeysAfter, c.Bytes)
	}
	logger.Info("build finished", zap.String("source", path), zap.Int("clips", len(res.Clips)))
	return nil
}
