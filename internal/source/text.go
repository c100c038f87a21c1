package source

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DecodeText converts data from the named charset ("euc-kr", "shift_jis",
// "windows-1252", ...) to UTF-8. An empty charset returns data unchanged.
func DecodeText(data []byte, charset string) ([]byte, error) {
	if charset == "" {
		return data, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown charset %q", ErrFormat, charset)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrFormat, charset, err)
	}
	return out, nil
}

// NormalizeName trims a joint name and puts it in Unicode NFC form, so
// that names exported by different tools compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ParseEncoded decodes data from charset and parses it.
func ParseEncoded(data []byte, charset string) (*Document, error) {
	utf8, err := DecodeText(data, charset)
	if err != nil {
		return nil, err
	}
	return Parse(utf8)
}

// LoadEncoded reads a source document written in charset.
func LoadEncoded(path, charset string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	return ParseEncoded(data, charset)
}
