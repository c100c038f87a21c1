// Package pipeline runs the offline export: it splits a raw animation into
// clips, optimizes and compresses each clip, and writes the skeleton and
// clip archives to disk. Clips are processed concurrently.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-anim/internal/config"
	"github.com/Faultbox/midgard-anim/internal/source"
	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
	"github.com/Faultbox/midgard-anim/pkg/archive"
)

// File extensions of written archives.
const (
	SkeletonExt  = ".skel"
	AnimationExt = ".anim"
)

// Options configures a Pipeline.
type Options struct {
	// Optimize enables keyframe reduction before compression.
	Optimize bool
	// Tolerance is the default optimizer tolerance.
	Tolerance offline.Tolerance
	// JointTolerances overrides Tolerance for joints, by name.
	JointTolerances map[string]offline.Tolerance
	// Clips to export. Empty exports the whole animation under its own name.
	Clips []offline.ClipDesc
	// OutputDir receives the archives. It is created if missing.
	OutputDir string
	// Workers bounds the clips processed at once. 0 means one per CPU.
	Workers int
}

// OptionsFromConfig maps the animtool configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	o := Options{
		Optimize: cfg.Optimization.Enabled,
		Tolerance: offline.Tolerance{
			Distance: cfg.Optimization.DistanceTolerance,
			Angle:    cfg.Optimization.AngleTolerance(),
		},
		OutputDir: cfg.Output.Dir,
		Workers:   cfg.Pipeline.Workers,
	}
	if len(cfg.Optimization.Joints) > 0 {
		o.JointTolerances = make(map[string]offline.Tolerance, len(cfg.Optimization.Joints))
		for name, j := range cfg.Optimization.Joints {
			o.JointTolerances[name] = offline.Tolerance{Distance: j.Distance, Angle: j.AngleTolerance()}
		}
	}
	for _, c := range cfg.Clips {
		o.Clips = append(o.Clips, offline.ClipDesc{Name: c.Name, Start: c.Start, End: c.End})
	}
	return o
}

// ClipResult describes one exported clip.
type ClipResult struct {
	Name       string
	Path       string
	Duration   float32
	KeysBefore int
	KeysAfter  int
	// Bytes is the in-memory size of the compressed key data.
	Bytes   int
	Elapsed time.Duration
}

// Result describes a pipeline run.
type Result struct {
	SkeletonPath string
	Clips        []ClipResult
}

// Pipeline exports animations for one skeleton.
type Pipeline struct {
	opts Options
	log  *zap.Logger
}

// New returns a pipeline. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{opts: opts, log: log}
}

// Tolerances resolves the per-joint overrides against skeleton.
func (p *Pipeline) Tolerances(skeleton *animation.Skeleton) (offline.ToleranceConfig, error) {
	cfg := offline.ToleranceConfig{Default: p.opts.Tolerance}
	if len(p.opts.JointTolerances) == 0 {
		return cfg, nil
	}
	cfg.Joints = make(map[int]offline.Tolerance, len(p.opts.JointTolerances))
	for name, tol := range p.opts.JointTolerances {
		j, ok := skeleton.JointByName(source.NormalizeName(name))
		if !ok {
			return cfg, fmt.Errorf("%w: tolerance override for unknown joint %q", animation.ErrValidation, name)
		}
		cfg.Joints[j] = tol
	}
	return cfg, nil
}

// Run exports skeleton as name+SkeletonExt and every clip of raw as
// clip+AnimationExt. It stops at the first failing clip and cancels the
// others. Results are in clip order.
func (p *Pipeline) Run(ctx context.Context, name string, skeleton *animation.Skeleton, raw *offline.RawAnimation) (*Result, error) {
	tolerances, err := p.Tolerances(skeleton)
	if err != nil {
		return nil, err
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if raw.NumTracks() != skeleton.NumJoints() {
		return nil, fmt.Errorf("%w: animation %q has %d tracks, skeleton has %d joints",
			animation.ErrValidation, raw.Name, raw.NumTracks(), skeleton.NumJoints())
	}

	if err := archive.CheckName(name); err != nil {
		return nil, fmt.Errorf("skeleton: %w", err)
	}
	descs := p.opts.Clips
	if len(descs) == 0 {
		descs = []offline.ClipDesc{{Name: raw.Name, Start: 0, End: raw.Duration}}
	}
	for _, d := range descs {
		if err := archive.CheckName(d.Name); err != nil {
			return nil, fmt.Errorf("clip: %w", err)
		}
	}
	clips, err := offline.SplitClips(raw, descs)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	res := &Result{
		SkeletonPath: filepath.Join(p.opts.OutputDir, name+SkeletonExt),
		Clips:        make([]ClipResult, len(clips)),
	}
	if err := archive.SaveSkeletonFile(res.SkeletonPath, skeleton); err != nil {
		return nil, err
	}
	p.log.Info("skeleton written",
		zap.String("path", res.SkeletonPath),
		zap.Int("joints", skeleton.NumJoints()))

	workers := p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, clip := range clips {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := p.exportClip(clip, skeleton, tolerances)
			if err != nil {
				return fmt.Errorf("clip %q: %w", clip.Name, err)
			}
			res.Clips[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) exportClip(clip *offline.RawAnimation, skeleton *animation.Skeleton, tolerances offline.ToleranceConfig) (ClipResult, error) {
	start := time.Now()
	log := p.log.With(zap.String("clip", clip.Name))

	r := ClipResult{
		Name:       clip.Name,
		Path:       filepath.Join(p.opts.OutputDir, clip.Name+AnimationExt),
		Duration:   clip.Duration,
		KeysBefore: clip.KeyCount(),
	}

	if p.opts.Optimize {
		opt := offline.NewAnimationOptimizer(tolerances, log)
		var err error
		if clip, err = opt.Optimize(clip, skeleton); err != nil {
			return r, err
		}
	}
	r.KeysAfter = clip.KeyCount()

	b := offline.AnimationBuilder{Skeleton: skeleton}
	anim, err := b.Build(clip)
	if err != nil {
		return r, err
	}
	r.Bytes = anim.Size()

	if err := archive.SaveAnimationFile(r.Path, anim); err != nil {
		return r, err
	}
	r.Elapsed = time.Since(start)

	log.Info("clip written",
		zap.String("path", r.Path),
		zap.Float32("duration", r.Duration),
		zap.Int("keys_before", r.KeysBefore),
		zap.Int("keys_after", r.KeysAfter),
		zap.Int("bytes", r.Bytes),
		zap.Duration("elapsed", r.Elapsed))
	return r, nil
}
