package math

// Transform is an affine transform split in translation, rotation and scale.
type Transform struct {
	Translation Vec3 `yaml:"translation"`
	Rotation    Quat `yaml:"rotation"`
	Scale       Vec3 `yaml:"scale"`
}

// TransformIdentity returns the identity transform.
func TransformIdentity() Transform {
	return Transform{
		Translation: Vec3Zero(),
		Rotation:    QuatIdentity(),
		Scale:       Vec3One(),
	}
}

// ToMat4 returns the matrix translation * rotation * scale.
func (t Transform) ToMat4() Mat4 {
	return FromAffine(t.Translation, t.Rotation, t.Scale)
}
