package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/midgard-anim/pkg/animation"
)

// Stored key sizes. binary.Write packs struct fields without padding.
const (
	float3KeySize = 2 + 3*2
	quatKeySize   = 2 + 1 + 3*2
)

// WriteAnimation writes a as an animation archive: name, duration, track
// count, then the translation, rotation and scale channels, each as its
// group offsets followed by its keys.
func WriteAnimation(w io.Writer, a *animation.Animation) error {
	e := &encoder{w: w}
	e.header(AnimationTag)
	if err := e.string(a.Name()); err != nil {
		return fmt.Errorf("animation name: %w", err)
	}
	e.write(a.Duration())
	e.write(uint32(a.NumTracks()))

	translations, rotations, scales := a.Translations(), a.Rotations(), a.Scales()
	writeChannel(e, translations)
	writeChannel(e, rotations)
	writeChannel(e, scales)
	return e.err
}

func writeChannel[K animation.Key](e *encoder, ch animation.Channel[K]) {
	offsets := make([]uint32, len(ch.Offsets))
	for i, o := range ch.Offsets {
		offsets[i] = uint32(o)
	}
	e.write(uint32(len(offsets)))
	e.write(offsets)
	e.write(uint32(len(ch.Keys)))
	e.write(ch.Keys)
}

// ParseAnimation reads an animation archive from raw bytes. The group
// layout is validated again by animation.NewAnimation.
func ParseAnimation(data []byte) (*animation.Animation, error) {
	d, err := checkHeader(data, AnimationTag)
	if err != nil {
		return nil, err
	}

	var desc animation.AnimationDesc
	if desc.Name, err = d.string("animation name"); err != nil {
		return nil, err
	}
	if err := d.read(&desc.Duration, "duration"); err != nil {
		return nil, err
	}
	var numTracks uint32
	if err := d.read(&numTracks, "track count"); err != nil {
		return nil, err
	}
	desc.NumTracks = int(numTracks)

	if desc.Translations, err = readChannel[animation.Float3Key](d, float3KeySize, "translation"); err != nil {
		return nil, err
	}
	if desc.Rotations, err = readChannel[animation.QuatKey](d, quatKeySize, "rotation"); err != nil {
		return nil, err
	}
	if desc.Scales, err = readChannel[animation.Float3Key](d, float3KeySize, "scale"); err != nil {
		return nil, err
	}
	return animation.NewAnimation(desc)
}

func readChannel[K animation.Key](d *decoder, keySize int, name string) (animation.Channel[K], error) {
	var ch animation.Channel[K]

	n, err := d.count(4, name+" offsets")
	if err != nil {
		return ch, err
	}
	offsets := make([]uint32, n)
	if err := d.read(offsets, name+" offsets"); err != nil {
		return ch, err
	}
	ch.Offsets = make([]int, n)
	for i, o := range offsets {
		ch.Offsets[i] = int(o)
	}

	if n, err = d.count(keySize, name+" keys"); err != nil {
		return ch, err
	}
	ch.Keys = make([]K, n)
	if err := d.read(ch.Keys, name+" keys"); err != nil {
		return ch, err
	}
	return ch, nil
}

// ParseAnimationFile reads an animation archive from disk.
func ParseAnimationFile(path string) (*animation.Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading animation file: %w", err)
	}
	return ParseAnimation(data)
}

// SaveAnimationFile writes an animation archive to disk.
func SaveAnimationFile(path string, a *animation.Animation) error {
	var buf bytes.Buffer
	if err := WriteAnimation(&buf, a); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing animation file: %w", err)
	}
	return nil
}
