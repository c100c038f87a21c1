// Package archive reads and writes runtime skeletons and animations in a
// versioned little-endian binary format.
//
// Every archive starts with a 4-byte tag ("SKEL" or "ANIM") followed by a
// uint32 format version. Writing an object that was read from an archive
// produces the same bytes.
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/animation"
)

// Archive errors.
var (
	ErrInvalidTag         = errors.New("invalid archive tag")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
	ErrTruncated          = errors.New("truncated archive data")
)

// Version is the format version written by this package.
const Version uint32 = 1

// Archive tags.
const (
	SkeletonTag  = "SKEL"
	AnimationTag = "ANIM"
)

const headerSize = 8

// CheckName reports whether name can be used as the base name of an archive
// file inside an output directory: it must be non-empty, must not be "." or
// "..", and must not contain path separators.
func CheckName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty archive name", animation.ErrValidation)
	case name == "." || name == "..":
		return fmt.Errorf("%w: archive name %q", animation.ErrValidation, name)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: archive name %q contains a path separator or NUL", animation.ErrValidation, name)
	}
	return nil
}

var order = binary.LittleEndian

// encoder writes little-endian values and keeps the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) write(v any) {
	if e.err != nil {
		return
	}
	e.err = binary.Write(e.w, order, v)
}

func (e *encoder) header(tag string) {
	e.write([]byte(tag))
	e.write(Version)
}

func (e *encoder) string(s string) error {
	if len(s) > 0xffff {
		return fmt.Errorf("string of %d bytes does not fit the archive", len(s))
	}
	e.write(uint16(len(s)))
	e.write([]byte(s))
	return nil
}

// decoder reads little-endian values from an in-memory archive.
type decoder struct {
	r *bytes.Reader
}

func checkHeader(data []byte, tag string) (*decoder, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: missing header", ErrTruncated)
	}
	if string(data[:4]) != tag {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrInvalidTag, data[:4], tag)
	}
	if v := order.Uint32(data[4:8]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return &decoder{r: bytes.NewReader(data[headerSize:])}, nil
}

func (d *decoder) read(v any, what string) error {
	if err := binary.Read(d.r, order, v); err != nil {
		return fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return nil
}

// count reads a uint32 element count and checks that the remaining data can
// hold that many elements of elemSize bytes.
func (d *decoder) count(elemSize int, what string) (int, error) {
	var n uint32
	if err := d.read(&n, what+" count"); err != nil {
		return 0, err
	}
	if uint64(n)*uint64(elemSize) > uint64(d.r.Len()) {
		return 0, fmt.Errorf("%w: %d %s do not fit in %d bytes", ErrTruncated, n, what, d.r.Len())
	}
	return int(n), nil
}

func (d *decoder) string(what string) (string, error) {
	var n uint16
	if err := d.read(&n, what+" length"); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return string(buf), nil
}
