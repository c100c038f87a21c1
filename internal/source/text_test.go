package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/Faultbox/midgard-anim/pkg/animation/offline"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hips ", "hips"},
		{"e\u0301paule", "\u00e9paule"},
		{"\u00e9paule", "\u00e9paule"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTracksMatchNormalizedNames(t *testing.T) {
	doc, err := Parse([]byte(`
skeleton:
  joints:
    - name: "\u00e9paule"
animation:
  name: shrug
  duration: 1
  tracks:
    - joint: " e\u0301paule"
      translations:
        - {time: 0, value: [0, 0, 0]}
        - {time: 1, value: [0, 1, 0]}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rawSkel, err := doc.RawSkeleton()
	if err != nil {
		t.Fatalf("RawSkeleton: %v", err)
	}
	skel, err := offline.BuildSkeleton(rawSkel)
	if err != nil {
		t.Fatalf("BuildSkeleton: %v", err)
	}
	raw, err := doc.RawAnimation(skel)
	if err != nil {
		t.Fatalf("RawAnimation: %v", err)
	}
	if len(raw.Tracks[0].Translations) != 2 {
		t.Error("track did not match its joint after normalization")
	}
}

func TestLoadEncoded(t *testing.T) {
	content := "skeleton:\n  joints:\n    - name: 머리\n"
	encoded, _, err := transform.String(korean.EUCKR.NewEncoder(), content)
	if err != nil {
		t.Fatalf("encoding test file: %v", err)
	}
	path := filepath.Join(t.TempDir(), "legacy.yaml")
	if err := os.WriteFile(path, []byte(encoded), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadEncoded(path, "euc-kr")
	if err != nil {
		t.Fatalf("LoadEncoded: %v", err)
	}
	raw, err := doc.RawSkeleton()
	if err != nil {
		t.Fatalf("RawSkeleton: %v", err)
	}
	if got := raw.Roots[0].Name; got != "머리" {
		t.Errorf("joint name = %q, want 머리", got)
	}

	if _, err := LoadEncoded(path, "klingon"); !errors.Is(err, ErrFormat) {
		t.Errorf("unknown charset: got %v, want ErrFormat", err)
	}
}
