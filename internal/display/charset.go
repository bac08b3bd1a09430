package display

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Charset describes the characters a display font can render.
type Charset interface {
	// Name identifies the charset in error messages.
	Name() string
	// Contains reports whether r can be rendered.
	Contains(r rune) bool
	// Encode converts text to device bytes.
	Encode(text string) ([]byte, error)
}

// singleByteCharset adapts an x/text charmap to Charset.
type singleByteCharset struct {
	name string
	cm   *charmap.Charmap
}

// Latin1 is ISO-8859-1, the charset of the badge's built-in fonts.
var Latin1 Charset = singleByteCharset{name: "ISO-8859-1", cm: charmap.ISO8859_1}

// ASCII accepts printable 7-bit characters only, for simple character LCDs.
var ASCII Charset = asciiCharset{}

func (c singleByteCharset) Name() string { return c.name }

func (c singleByteCharset) Contains(r rune) bool {
	_, ok := c.cm.EncodeRune(r)
	return ok
}

func (c singleByteCharset) Encode(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for i, r := range text {
		b, ok := c.cm.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("cannot encode %q at byte %d as %s", r, i, c.name)
		}
		out = append(out, b)
	}
	return out, nil
}

type asciiCharset struct{}

func (asciiCharset) Name() string { return "ASCII" }

func (asciiCharset) Contains(r rune) bool {
	return r >= 0x20 && r < 0x7f
}

func (a asciiCharset) Encode(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for i, r := range text {
		if !a.Contains(r) {
			return nil, fmt.Errorf("cannot encode %q at byte %d as ASCII", r, i)
		}
		out = append(out, byte(r))
	}
	return out, nil
}

// CharsetByName looks up a built-in charset. An empty name yields nil,
// meaning any valid UTF-8 text is accepted.
func CharsetByName(name string) (Charset, error) {
	switch name {
	case "":
		return nil, nil
	case "latin1", "iso-8859-1", "ISO-8859-1":
		return Latin1, nil
	case "ascii", "ASCII":
		return ASCII, nil
	default:
		return nil, fmt.Errorf("unknown charset %q", name)
	}
}

// EncodeText encodes text with cs, or as raw UTF-8 when cs is nil.
func EncodeText(cs Charset, text string) ([]byte, error) {
	if cs == nil {
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("text is not valid UTF-8")
		}
		return []byte(text), nil
	}
	return cs.Encode(text)
}
