// Package textcodec converts captured byte buffers to UTF-8 strings.
package textcodec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

const UTF8 = "utf-8"

// aliases covers names game hook codes commonly use that the WHATWG index
// does not know about.
var aliases = map[string]encoding.Encoding{
	"sjis":     japanese.ShiftJIS,
	"cp932":    japanese.ShiftJIS,
	"932":      japanese.ShiftJIS,
	"eucjp":    japanese.EUCJP,
	"utf16":    unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf16le":  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be": unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"gbk":      simplifiedchinese.GBK,
	"cp936":    simplifiedchinese.GBK,
	"gb18030":  simplifiedchinese.GB18030,
	"big5":     traditionalchinese.Big5,
	"cp950":    traditionalchinese.Big5,
	"euckr":    korean.EUCKR,
	"cp949":    korean.EUCKR,
}

// Lookup resolves an encoding name. An empty name or any spelling of UTF-8
// returns nil, meaning no transcoding is needed.
func Lookup(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	if e, ok := aliases[n]; ok {
		return e, nil
	}
	e, err := htmlindex.Get(n)
	if err != nil {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return e, nil
}

// Decode turns raw captured bytes into a UTF-8 string.
func Decode(data []byte, name string) (string, error) {
	e, err := Lookup(name)
	if err != nil {
		return "", err
	}
	if e == nil {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid utf-8 input (%d bytes)", len(data))
		}
		return string(data), nil
	}
	out, err := e.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return strings.TrimRight(string(out), "\x00"), nil
}

// Encode is the inverse of Decode.
func Encode(s, name string) ([]byte, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return []byte(s), nil
	}
	out, err := e.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

// Codepage returns the Windows code page for name. UTF-16 and unknown names
// have none.
func Codepage(name string) (int, bool) {
	if strings.TrimSpace(name) == "" {
		return 0, false
	}
	e, err := Lookup(name)
	if err != nil {
		return 0, false
	}
	switch e {
	case nil:
		return 65001, true
	case japanese.ShiftJIS:
		return 932, true
	case japanese.EUCJP:
		return 20932, true
	case simplifiedchinese.GBK:
		return 936, true
	case simplifiedchinese.GB18030:
		return 54936, true
	case traditionalchinese.Big5:
		return 950, true
	case korean.EUCKR:
		return 949, true
	}
	return 0, false
}
