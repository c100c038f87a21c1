package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translation() = %v, want (5, 10, 15)", got)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := FromAffine(Vec3{}, QuatIdentity(), Vec3{2, 2, 2})
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestFromAffineMatchesProduct(t *testing.T) {
	tr := Vec3{1, -2, 3}
	rot := QuatFromAxisAngle(Vec3{0, 1, 0}.Normalize(), 0.7)
	sc := Vec3{2, 0.5, 3}

	scale := Mat4{sc.X, 0, 0, 0, 0, sc.Y, 0, 0, 0, 0, sc.Z, 0, 0, 0, 0, 1}
	want := Translate(tr.X, tr.Y, tr.Z).Mul(rot.ToMat4()).Mul(scale)
	got := FromAffine(tr, rot, sc)
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("FromAffine = %v, want %v", got, want)
	}
}

func TestTransformIdentityToMat4(t *testing.T) {
	if m := TransformIdentity().ToMat4(); !m.ApproxEqual(Identity(), 0) {
		t.Errorf("identity transform should produce identity matrix, got %v", m)
	}
}
