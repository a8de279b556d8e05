// Package encoding detects the character encoding of file content and
// converts it to and from UTF-8 text.
package encoding

import (
	"fmt"
	"strings"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"

	bridgeerrors "github.com/mrz1836/svnbridge/internal/errors"
)

// Tag names a supported encoding.
type Tag string

// Supported encodings.
const (
	UTF8     Tag = "utf-8"
	UTF8BOM  Tag = "utf-8-bom"
	UTF16LE  Tag = "utf-16le"
	UTF16BE  Tag = "utf-16be"
	GBK      Tag = "gbk"
	GB18030  Tag = "gb18030"
	Big5     Tag = "big5"
	ShiftJIS Tag = "shift_jis"
	EUCJP    Tag = "euc-jp"
	EUCKR    Tag = "euc-kr"
)

// String implements fmt.Stringer.
func (t Tag) String() string {
	return string(t)
}

// tagAliases maps accepted spellings to canonical tags.
//
//nolint:gochecknoglobals // Immutable lookup table
var tagAliases = map[string]Tag{
	"utf-8":     UTF8,
	"utf8":      UTF8,
	"utf-8-bom": UTF8BOM,
	"utf-8-sig": UTF8BOM,
	"utf8bom":   UTF8BOM,
	"utf-16le":  UTF16LE,
	"utf16le":   UTF16LE,
	"utf-16be":  UTF16BE,
	"utf16be":   UTF16BE,
	"gbk":       GBK,
	"cp936":     GBK,
	"gb2312":    GBK,
	"gb18030":   GB18030,
	"big5":      Big5,
	"big-5":     Big5,
	"cp950":     Big5,
	"shift_jis": ShiftJIS,
	"shift-jis": ShiftJIS,
	"sjis":      ShiftJIS,
	"cp932":     ShiftJIS,
	"euc-jp":    EUCJP,
	"eucjp":     EUCJP,
	"euc-kr":    EUCKR,
	"euckr":     EUCKR,
	"cp949":     EUCKR,
}

// ParseTag returns the canonical tag for name (case-insensitive, common
// aliases accepted).
func ParseTag(name string) (Tag, error) {
	tag, ok := tagAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, bridgeerrors.ErrUnknownEncoding)
	}
	return tag, nil
}

// codec returns the x/text encoding for tag. UTF-8 variants are handled
// without a codec and return nil.
func (t Tag) codec() xencoding.Encoding {
	switch t {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case GBK:
		return simplifiedchinese.GBK
	case GB18030:
		return simplifiedchinese.GB18030
	case Big5:
		return traditionalchinese.Big5
	case ShiftJIS:
		return japanese.ShiftJIS
	case EUCJP:
		return japanese.EUCJP
	case EUCKR:
		return korean.EUCKR
	case UTF8, UTF8BOM:
		return nil
	default:
		return nil
	}
}

// IsUnicode reports whether tag is one of the UTF encodings.
func (t Tag) IsUnicode() bool {
	switch t {
	case UTF8, UTF8BOM, UTF16LE, UTF16BE:
		return true
	case GBK, GB18030, Big5, ShiftJIS, EUCJP, EUCKR:
		return false
	default:
		return false
	}
}
