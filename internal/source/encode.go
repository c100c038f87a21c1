package source

import (
	"fmt"

	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
	"github.com/Faultbox/midgard-anim/pkg/math"
)

// NewDocument builds a source document from offline data. Tracks of anim
// are matched to joints in depth-first order of skel; tracks without keys
// are omitted. Either argument may be nil.
func NewDocument(skel *offline.RawSkeleton, anim *offline.RawAnimation) (*Document, error) {
	doc := &Document{}

	var names []string
	if skel != nil {
		doc.Skeleton = &SkeletonDoc{}
		for i := range skel.Roots {
			doc.Skeleton.Joints = append(doc.Skeleton.Joints, jointDoc(&skel.Roots[i], &names))
		}
	}

	if anim != nil {
		if skel == nil || len(names) != anim.NumTracks() {
			return nil, fmt.Errorf("%w: animation %q has %d tracks for %d joints",
				ErrFormat, anim.Name, anim.NumTracks(), len(names))
		}
		doc.Animation = &AnimationDoc{Name: anim.Name, Duration: anim.Duration}
		for j := range anim.Tracks {
			tr := &anim.Tracks[j]
			if tr.KeyCount() == 0 {
				continue
			}
			doc.Animation.Tracks = append(doc.Animation.Tracks, TrackDoc{
				Joint:        names[j],
				Translations: keyDocs(tr.Translations, vec3Slice),
				Rotations:    keyDocs(tr.Rotations, quatSlice),
				Scales:       keyDocs(tr.Scales, vec3Slice),
			})
		}
	}
	return doc, nil
}

func jointDoc(j *offline.RawJoint, names *[]string) JointDoc {
	*names = append(*names, j.Name)
	doc := JointDoc{Name: j.Name}
	if t := j.Transform.Translation; t != math.Vec3Zero() {
		doc.Translation = vec3Slice(t)
	}
	if r := j.Transform.Rotation; r != math.QuatIdentity() {
		doc.Rotation = quatSlice(r)
	}
	if s := j.Transform.Scale; s != math.Vec3One() {
		doc.Scale = vec3Slice(s)
	}
	for i := range j.Children {
		doc.Children = append(doc.Children, jointDoc(&j.Children[i], names))
	}
	return doc
}

func vec3Slice(v math.Vec3) []float32 { return []float32{v.X, v.Y, v.Z} }

func quatSlice(q math.Quat) []float32 { return []float32{q.X, q.Y, q.Z, q.W} }

func keyDocs[T any](keys []offline.Keyframe[T], encode func(T) []float32) []KeyDoc {
	if len(keys) == 0 {
		return nil
	}
	out := make([]KeyDoc, len(keys))
	for i, k := range keys {
		out[i] = KeyDoc{Time: k.Time, Value: encode(k.Value)}
	}
	return out
}
