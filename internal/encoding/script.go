package encoding

import "unicode"

// Script tables used to confirm that a regional decode produced plausible
// text rather than merely not failing.
//
//nolint:gochecknoglobals // Immutable range tables
var (
	cjkPunctuation = &unicode.RangeTable{
		R16: []unicode.Range16{{Lo: 0x3000, Hi: 0x303f, Stride: 1}},
	}
	fullwidthForms = &unicode.RangeTable{
		R16: []unicode.Range16{{Lo: 0xff00, Hi: 0xffef, Stride: 1}},
	}
	// Accented Latin letters carried by GB encodings for pinyin.
	pinyinLatin = &unicode.RangeTable{
		R16: []unicode.Range16{{Lo: 0x00c0, Hi: 0x01dc, Stride: 1}},
	}

	scriptTables = map[Tag][]*unicode.RangeTable{
		GBK:      {unicode.Han, cjkPunctuation, fullwidthForms, unicode.Bopomofo, pinyinLatin},
		GB18030:  {unicode.Han, cjkPunctuation, fullwidthForms, unicode.Bopomofo, pinyinLatin},
		Big5:     {unicode.Han, cjkPunctuation, fullwidthForms, unicode.Bopomofo},
		ShiftJIS: {unicode.Hiragana, unicode.Katakana, unicode.Han, cjkPunctuation, fullwidthForms},
		EUCJP:    {unicode.Hiragana, unicode.Katakana, unicode.Han, cjkPunctuation, fullwidthForms},
		EUCKR:    {unicode.Hangul, unicode.Han, cjkPunctuation, fullwidthForms},
	}
)

// hasScriptRune reports whether text contains at least one rune from the
// script tables of tag.
func hasScriptRune(text string, tag Tag) bool {
	tables, ok := scriptTables[tag]
	if !ok {
		return false
	}
	for _, r := range text {
		if r < 0x80 {
			continue
		}
		if unicode.IsOneOf(tables, r) {
			return true
		}
	}
	return false
}
