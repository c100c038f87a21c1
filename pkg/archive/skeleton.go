package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-anim/pkg/animation"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// jointRecord is the fixed part of a stored joint, after its name.
type jointRecord struct {
	Parent      int16
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
}

const jointRecordSize = 2 + 10*4

// WriteSkeleton writes s as a skeleton archive.
func WriteSkeleton(w io.Writer, s *animation.Skeleton) error {
	if s.NumJoints() > 0x7fff {
		return fmt.Errorf("skeleton has %d joints, archive parents are 16-bit", s.NumJoints())
	}

	e := &encoder{w: w}
	e.header(SkeletonTag)
	e.write(uint32(s.NumJoints()))
	for i, name := range s.Names() {
		if err := e.string(name); err != nil {
			return fmt.Errorf("joint %d: %w", i, err)
		}
		bind := s.BindPose(i)
		e.write(jointRecord{
			Parent:      int16(s.Parent(i)),
			Translation: bind.Translation.Array(),
			Rotation:    bind.Rotation.Array(),
			Scale:       bind.Scale.Array(),
		})
	}
	return e.err
}

// ParseSkeleton reads a skeleton archive from raw bytes. The joint order is
// validated again by animation.NewSkeleton.
func ParseSkeleton(data []byte) (*animation.Skeleton, error) {
	d, err := checkHeader(data, SkeletonTag)
	if err != nil {
		return nil, err
	}

	// Each joint holds at least a name length and its record.
	n, err := d.count(2+jointRecordSize, "joints")
	if err != nil {
		return nil, err
	}

	joints := make([]animation.Joint, n)
	for i := range joints {
		name, err := d.string("joint name")
		if err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		var rec jointRecord
		if err := d.read(&rec, "joint record"); err != nil {
			return nil, fmt.Errorf("joint %d: %w", i, err)
		}
		joints[i] = animation.Joint{
			Name:   name,
			Parent: int(rec.Parent),
			BindPose: math.Transform{
				Translation: math.Vec3{X: rec.Translation[0], Y: rec.Translation[1], Z: rec.Translation[2]},
				Rotation:    math.Quat{X: rec.Rotation[0], Y: rec.Rotation[1], Z: rec.Rotation[2], W: rec.Rotation[3]},
				Scale:       math.Vec3{X: rec.Scale[0], Y: rec.Scale[1], Z: rec.Scale[2]},
			},
		}
	}
	return animation.NewSkeleton(joints)
}

// ParseSkeletonFile reads a skeleton archive from disk.
func ParseSkeletonFile(path string) (*animation.Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading skeleton file: %w", err)
	}
	return ParseSkeleton(data)
}

// SaveSkeletonFile writes a skeleton archive to disk.
func SaveSkeletonFile(path string, s *animation.Skeleton) error {
	var buf bytes.Buffer
	if err := WriteSkeleton(&buf, s); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing skeleton file: %w", err)
	}
	return nil
}
