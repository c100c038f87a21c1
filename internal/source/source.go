// Package source reads and writes the YAML source files of the offline
// pipeline: a joint tree and an uncompressed animation whose tracks are
// addressed by joint name.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// Source errors.
var (
	ErrFormat       = errors.New("invalid source document")
	ErrUnknownJoint = errors.New("track references an unknown joint")
)

// Document is the root of a source file. Either section may be omitted.
type Document struct {
	Skeleton  *SkeletonDoc  `yaml:"skeleton,omitempty"`
	Animation *AnimationDoc `yaml:"animation,omitempty"`
}

// SkeletonDoc is a joint forest.
type SkeletonDoc struct {
	Joints []JointDoc `yaml:"joints"`
}

// JointDoc is one joint and its children. Missing transform components
// default to identity.
type JointDoc struct {
	Name        string     `yaml:"name"`
	Translation []float32  `yaml:"translation,omitempty,flow"`
	Rotation    []float32  `yaml:"rotation,omitempty,flow"` // x, y, z, w
	Scale       []float32  `yaml:"scale,omitempty,flow"`
	Children    []JointDoc `yaml:"children,omitempty"`
}

// AnimationDoc is an uncompressed animation.
type AnimationDoc struct {
	Name     string     `yaml:"name"`
	Duration float32    `yaml:"duration"`
	Tracks   []TrackDoc `yaml:"tracks"`
}

// TrackDoc holds the keys of one joint.
type TrackDoc struct {
	Joint        string   `yaml:"joint"`
	Translations []KeyDoc `yaml:"translations,omitempty"`
	Rotations    []KeyDoc `yaml:"rotations,omitempty"`
	Scales       []KeyDoc `yaml:"scales,omitempty"`
}

// KeyDoc is a keyframe. Value has three components, or four for rotations.
type KeyDoc struct {
	Time  float32   `yaml:"time"`
	Value []float32 `yaml:"value,flow"`
}

// Parse decodes a source document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &doc, nil
}

// Load reads a UTF-8 source document from disk.
func Load(path string) (*Document, error) {
	return LoadEncoded(path, "")
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RawSkeleton converts the skeleton section.
func (d *Document) RawSkeleton() (*offline.RawSkeleton, error) {
	if d.Skeleton == nil || len(d.Skeleton.Joints) == 0 {
		return nil, fmt.Errorf("%w: no skeleton section", ErrFormat)
	}

	var errs error
	var convert func(j *JointDoc) offline.RawJoint
	convert = func(j *JointDoc) offline.RawJoint {
		tr, err := jointTransform(j)
		errs = multierr.Append(errs, err)
		raw := offline.RawJoint{Name: NormalizeName(j.Name), Transform: tr}
		for i := range j.Children {
			raw.Children = append(raw.Children, convert(&j.Children[i]))
		}
		return raw
	}

	raw := &offline.RawSkeleton{}
	for i := range d.Skeleton.Joints {
		raw.Roots = append(raw.Roots, convert(&d.Skeleton.Joints[i]))
	}
	if errs != nil {
		return nil, errs
	}
	return raw, nil
}

func jointTransform(j *JointDoc) (math.Transform, error) {
	tr := math.TransformIdentity()
	var err error
	if len(j.Translation) > 0 {
		tr.Translation, err = vec3(j.Translation, math.Vec3Zero())
		if err != nil {
			return tr, fmt.Errorf("joint %q translation: %w", j.Name, err)
		}
	}
	if len(j.Rotation) > 0 {
		tr.Rotation, err = quat(j.Rotation)
		if err != nil {
			return tr, fmt.Errorf("joint %q rotation: %w", j.Name, err)
		}
	}
	if len(j.Scale) > 0 {
		tr.Scale, err = vec3(j.Scale, math.Vec3One())
		if err != nil {
			return tr, fmt.Errorf("joint %q scale: %w", j.Name, err)
		}
	}
	return tr, nil
}

func vec3(v []float32, def math.Vec3) (math.Vec3, error) {
	if len(v) != 3 {
		return def, fmt.Errorf("%w: want 3 components, got %d", ErrFormat, len(v))
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func quat(v []float32) (math.Quat, error) {
	if len(v) != 4 {
		return math.QuatIdentity(), fmt.Errorf("%w: want 4 components, got %d", ErrFormat, len(v))
	}
	return math.Quat{X: v[0], Y: v[1], Z: v[2], W: v[3]}, nil
}

// RawAnimation converts the animation section into one track per joint of
// skeleton, in skeleton order. Joints without a track keep their default
// values.
func (d *Document) RawAnimation(skeleton *animation.Skeleton) (*offline.RawAnimation, error) {
	if d.Animation == nil {
		return nil, fmt.Errorf("%w: no animation section", ErrFormat)
	}
	a := d.Animation

	raw := &offline.RawAnimation{
		Name:     a.Name,
		Duration: a.Duration,
		Tracks:   make([]offline.JointTrack, skeleton.NumJoints()),
	}

	var errs error
	assigned := make(map[int]bool, len(a.Tracks))
	for i := range a.Tracks {
		td := &a.Tracks[i]
		j, ok := skeleton.JointByName(NormalizeName(td.Joint))
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrUnknownJoint, td.Joint))
			continue
		}
		if assigned[j] {
			errs = multierr.Append(errs, fmt.Errorf("%w: joint %q has two tracks", ErrFormat, td.Joint))
			continue
		}
		assigned[j] = true

		tr, err := track(td)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		raw.Tracks[j] = tr
	}
	if errs != nil {
		return nil, errs
	}
	return raw, nil
}

func track(td *TrackDoc) (offline.JointTrack, error) {
	var tr offline.JointTrack
	var err error
	if tr.Translations, err = keys(td.Translations, func(v []float32) (math.Vec3, error) {
		return vec3(v, math.Vec3Zero())
	}); err != nil {
		return tr, fmt.Errorf("joint %q translations: %w", td.Joint, err)
	}
	if tr.Rotations, err = keys(td.Rotations, quat); err != nil {
		return tr, fmt.Errorf("joint %q rotations: %w", td.Joint, err)
	}
	if tr.Scales, err = keys(td.Scales, func(v []float32) (math.Vec3, error) {
		return vec3(v, math.Vec3One())
	}); err != nil {
		return tr, fmt.Errorf("joint %q scales: %w", td.Joint, err)
	}
	return tr, nil
}

func keys[T any](docs []KeyDoc, decode func([]float32) (T, error)) ([]offline.Keyframe[T], error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]offline.Keyframe[T], len(docs))
	for i, k := range docs {
		v, err := decode(k.Value)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		out[i] = offline.Keyframe[T]{Time: k.Time, Value: v}
	}
	return out, nil
}
