package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	gomath "math"
	"os"

	"github.com/gogpu/gg"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/midgard-anim/internal/playback"
	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/archive"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

var (
	plotBackground = color.RGBA{24, 24, 28, 255}
	plotAxis       = color.RGBA{90, 90, 100, 255}
	plotCurves     = [3]color.RGBA{
		{230, 80, 70, 255},  // x
		{90, 200, 90, 255},  // y
		{80, 130, 240, 255}, // z
	}
)

// PlotOptions controls a joint trajectory chart.
type PlotOptions struct {
	Joint   string
	Width   int
	Height  int
	Samples int
}

func cmdPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	joint := fs.String("joint", "", "Joint to plot (default: last joint)")
	out := fs.String("o", "plot.bmp", "Output BMP file")
	width := fs.Int("width", 640, "Image width")
	height := fs.Int("height", 240, "Image height")
	samples := fs.Int("samples", 256, "Number of sample times")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: animtool plot [-joint name] [-o out.bmp] <file.skel> <file.anim>")
	}
	skel, err := archive.ParseSkeletonFile(fs.Arg(0))
	if err != nil {
		return err
	}
	anim, err := archive.ParseAnimationFile(fs.Arg(1))
	if err != nil {
		return err
	}

	img, err := renderPlot(skel, anim, PlotOptions{
		Joint:   *joint,
		Width:   *width,
		Height:  *height,
		Samples: *samples,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating plot file: %w", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding plot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", *out, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// renderPlot samples the model-space position of one joint over the whole
// animation and draws its x, y and z components against time.
func renderPlot(skel *animation.Skeleton, anim *animation.Animation, opts PlotOptions) (image.Image, error) {
	if opts.Width < 16 || opts.Height < 16 {
		return nil, fmt.Errorf("plot size %dx%d is too small", opts.Width, opts.Height)
	}
	if opts.Samples < 2 {
		opts.Samples = 2
	}

	joint := skel.NumJoints() - 1
	if opts.Joint != "" {
		var ok bool
		if joint, ok = skel.JointByName(opts.Joint); !ok {
			return nil, fmt.Errorf("%w: no joint named %q", animation.ErrBinding, opts.Joint)
		}
	}

	ctrl := playback.NewController(anim.Duration(), 1, false)
	inst, err := playback.NewInstance(skel, anim, ctrl)
	if err != nil {
		return nil, err
	}

	points := make([]math.Vec3, opts.Samples)
	lo, hi := float32(gomath.MaxFloat32), float32(-gomath.MaxFloat32)
	for i := range points {
		ctrl.SetTime(anim.Duration() * float32(i) / float32(opts.Samples-1))
		if err := inst.Update(0); err != nil {
			return nil, err
		}
		p := inst.Models()[joint].Translation()
		points[i] = p
		lo = min(lo, p.X, p.Y, p.Z)
		hi = max(hi, p.X, p.Y, p.Z)
	}
	if hi-lo < 1e-6 {
		lo, hi = lo-1, hi+1
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.FromColor(plotBackground))
	dc.SetLineWidth(1.5)

	const margin = 4
	w, h := float64(opts.Width-2*margin), float64(opts.Height-2*margin)
	toX := func(i int) float64 { return margin + float64(i)*(w-1)/float64(opts.Samples-1) }
	toY := func(v float32) float64 { return margin + float64((hi-v)/(hi-lo))*(h-1) }

	if lo < 0 && hi > 0 {
		y := toY(0)
		dc.SetColor(plotAxis)
		dc.DrawLine(margin, y, margin+w-1, y)
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("drawing axis: %w", err)
		}
	}
	for c := 0; c < 3; c++ {
		dc.SetColor(plotCurves[c])
		dc.MoveTo(toX(0), toY(component(points[0], c)))
		for i := 1; i < len(points); i++ {
			dc.LineTo(toX(i), toY(component(points[i], c)))
		}
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("drawing curve: %w", err)
		}
	}
	return dc.Image(), nil
}

func component(v math.Vec3, c int) float32 {
	switch c {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
