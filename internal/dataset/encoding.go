package dataset

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// minConfidence is the detector score (0-100) below which UTF-8 is assumed.
const minConfidence = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodingInfo describes how the input bytes were decoded.
type EncodingInfo struct {
	Name       string
	Confidence int
	Fallback   bool
}

// DecodeText converts raw file bytes to UTF-8 text. When forced is non-empty it
// names the encoding to use; otherwise the encoding is detected from the bytes,
// falling back to UTF-8 when detection is inconclusive.
func DecodeText(raw []byte, forced string) (string, EncodingInfo, error) {
	if forced != "" {
		enc, err := htmlindex.Get(forced)
		if err != nil {
			return "", EncodingInfo{}, fmt.Errorf("unknown encoding %q: %w", forced, err)
		}
		text, err := decodeWith(enc, raw)
		if err != nil {
			return "", EncodingInfo{}, fmt.Errorf("decode %s: %w", forced, err)
		}
		return text, EncodingInfo{Name: canonicalName(enc, forced), Confidence: 100}, nil
	}

	info, enc := detect(raw)
	text, err := decodeWith(enc, raw)
	if err != nil {
		info = EncodingInfo{Name: "utf-8", Fallback: true}
		text = strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "�")
	}
	return text, info, nil
}

func detect(raw []byte) (EncodingInfo, encoding.Encoding) {
	fallback := EncodingInfo{Name: "utf-8", Fallback: true}
	if len(raw) == 0 {
		return fallback, unicode.UTF8
	}
	if bytes.HasPrefix(raw, utf8BOM) {
		return EncodingInfo{Name: "utf-8", Confidence: 100}, unicode.UTF8
	}
	res, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || res == nil || res.Confidence < minConfidence {
		return fallback, unicode.UTF8
	}
	// Valid multi-byte UTF-8 is a stronger signal than a single-byte guess.
	if utf8.Valid(raw) && hasNonASCII(raw) {
		return EncodingInfo{Name: "utf-8", Confidence: res.Confidence}, unicode.UTF8
	}
	enc, err := htmlindex.Get(res.Charset)
	if err != nil {
		return fallback, unicode.UTF8
	}
	return EncodingInfo{Name: canonicalName(enc, res.Charset), Confidence: res.Confidence}, enc
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, error) {
	if enc == unicode.UTF8 {
		return strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "�"), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(out, utf8BOM)), nil
}

func canonicalName(enc encoding.Encoding, fallback string) string {
	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}
	return strings.ToLower(fallback)
}

func hasNonASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
