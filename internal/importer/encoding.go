package importer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts a raw upload to UTF-8. Exports from legacy tooling
// arrive as Shift_JIS or EUC-JP at least as often as UTF-8, so the charset
// is detected rather than assumed.
func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(raw) == 0 {
		return "", nil
	}

	// Valid UTF-8 is taken at face value; detection only runs on the rest,
	// since short ASCII-heavy files confuse statistical detectors.
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return "", fmt.Errorf("detect encoding: %w", err)
	}

	enc, err := ianaindex.IANA.Encoding(result.Charset)
	if err != nil || enc == nil {
		return "", fmt.Errorf("unsupported encoding %q", result.Charset)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", result.Charset, err)
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}
