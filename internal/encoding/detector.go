package encoding

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// Byte-order marks.
//
//nolint:gochecknoglobals // Immutable byte sequences
var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// DefaultFallbacks is the candidate order used when none is configured.
func DefaultFallbacks() []Tag {
	return []Tag{GBK, GB18030, Big5, ShiftJIS, EUCJP, EUCKR}
}

// Options configures a Detector.
type Options struct {
	// DefaultEncoding, when set, replaces heuristic detection. A byte-order
	// mark still wins.
	DefaultEncoding Tag
	// EnableDetection turns heuristic detection on. When false every buffer
	// is tagged with DefaultEncoding (UTF-8 when unset).
	EnableDetection bool
	// Fallbacks is the ordered list of regional encodings tried after UTF-8.
	Fallbacks []Tag
	// ForceUTF8Output makes NormalizeOutput convert non-UTF-8 text.
	ForceUTF8Output bool
}

// DefaultOptions returns detection enabled with the default fallbacks.
func DefaultOptions() Options {
	return Options{
		EnableDetection: true,
		Fallbacks:       DefaultFallbacks(),
		ForceUTF8Output: true,
	}
}

// Decoded is text converted from a byte buffer.
type Decoded struct {
	Text string
	Tag  Tag
	// Lossy is true when invalid sequences were replaced with U+FFFD.
	Lossy bool
}

// Detector tags byte buffers with their encoding and converts them to text.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	opts   Options
	logger zerolog.Logger
}

// NewDetector creates a Detector.
func NewDetector(opts Options, logger zerolog.Logger) *Detector {
	if opts.Fallbacks == nil {
		opts.Fallbacks = DefaultFallbacks()
	}
	return &Detector{
		opts:   opts,
		logger: logger.With().Str("component", "encoding").Logger(),
	}
}

// Detect returns the encoding of buf. It never fails; when nothing fits it
// returns UTF8 and decoding will be lossy.
//
// Order: byte-order mark, configured default, strict UTF-8, then each
// fallback that decodes cleanly and yields at least one rune of its script.
func (d *Detector) Detect(buf []byte) Tag {
	if tag, ok := sniffBOM(buf); ok {
		return tag
	}

	if d.opts.DefaultEncoding != "" {
		return d.opts.DefaultEncoding
	}
	if !d.opts.EnableDetection {
		return UTF8
	}

	if utf8.Valid(buf) {
		return UTF8
	}

	for _, tag := range d.opts.Fallbacks {
		text, ok := decodeStrict(buf, tag)
		if ok && hasScriptRune(text, tag) {
			return tag
		}
	}

	d.logger.Debug().
		Int("bytes", len(buf)).
		Err(bridgeerrors.ErrEncodingFailure).
		Msg("no candidate encoding matched, decoding as lossy utf-8")
	return UTF8
}

// Decode converts buf from tag to text. Byte-order marks are stripped.
// Invalid sequences become U+FFFD; an error is returned only for an
// unsupported tag.
func (d *Detector) Decode(buf []byte, tag Tag) (string, error) {
	text, _, err := decode(buf, tag)
	return text, err
}

// DecodeAuto detects and decodes in one step.
func (d *Detector) DecodeAuto(buf []byte) Decoded {
	tag := d.Detect(buf)
	text, lossy, err := decode(buf, tag)
	if err != nil {
		// A configured default that cannot decode still yields text
		d.logger.Warn().Err(err).Str("encoding", tag.String()).Msg("decode failed, using utf-8")
		text, lossy, _ = decode(buf, UTF8)
		tag = UTF8
	}
	return Decoded{Text: text, Tag: tag, Lossy: lossy}
}

// NormalizeOutput returns raw unchanged when it is already valid UTF-8 or
// output normalization is off; otherwise it is decoded through DecodeAuto.
func (d *Detector) NormalizeOutput(raw string) string {
	if !d.opts.ForceUTF8Output || utf8.ValidString(raw) {
		return raw
	}
	return d.DecodeAuto([]byte(raw)).Text
}

// Detect tags buf using DefaultOptions.
func Detect(buf []byte) Tag {
	return NewDetector(DefaultOptions(), zerolog.Nop()).Detect(buf)
}

// Encode converts text into tag's byte representation. UTF-8-BOM and UTF-16
// output starts with a byte-order mark.
func Encode(text string, tag Tag) ([]byte, error) {
	switch tag {
	case UTF8:
		return []byte(text), nil
	case UTF8BOM:
		return append(append([]byte{}, bomUTF8...), text...), nil
	case UTF16LE, UTF16BE, GBK, GB18030, Big5, ShiftJIS, EUCJP, EUCKR:
		out, err := tag.codec().NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("cannot encode text as %s: %w: %w", tag, bridgeerrors.ErrEncodingFailure, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%q: %w", string(tag), bridgeerrors.ErrUnknownEncoding)
	}
}

func sniffBOM(buf []byte) (Tag, bool) {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return UTF8BOM, true
	case bytes.HasPrefix(buf, bomUTF16LE):
		return UTF16LE, true
	case bytes.HasPrefix(buf, bomUTF16BE):
		return UTF16BE, true
	default:
		return "", false
	}
}

// decode returns the text and whether replacement characters were introduced.
func decode(buf []byte, tag Tag) (string, bool, error) {
	switch tag {
	case UTF8, UTF8BOM:
		buf = bytes.TrimPrefix(buf, bomUTF8)
		if utf8.Valid(buf) {
			return string(buf), false, nil
		}
		return strings.ToValidUTF8(string(buf), string(utf8.RuneError)), true, nil
	case UTF16LE, UTF16BE, GBK, GB18030, Big5, ShiftJIS, EUCJP, EUCKR:
		out, err := tag.codec().NewDecoder().Bytes(buf)
		if err != nil {
			return "", false, fmt.Errorf("cannot decode %s: %w: %w", tag, bridgeerrors.ErrEncodingFailure, err)
		}
		text := strings.ToValidUTF8(string(out), string(utf8.RuneError))
		return text, strings.ContainsRune(text, utf8.RuneError), nil
	default:
		return "", false, fmt.Errorf("%q: %w", string(tag), bridgeerrors.ErrUnknownEncoding)
	}
}

// decodeStrict decodes buf and reports false when the result contains any
// replacement character.
func decodeStrict(buf []byte, tag Tag) (string, bool) {
	codec := tag.codec()
	if codec == nil {
		return "", false
	}
	out, err := codec.NewDecoder().Bytes(buf)
	if err != nil {
		return "", false
	}
	text := string(out)
	if !utf8.ValidString(text) || strings.ContainsRune(text, utf8.RuneError) {
		return "", false
	}
	return text, true
}
