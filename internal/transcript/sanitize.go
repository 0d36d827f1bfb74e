package transcript

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// markupRe matches custom emoji tags (<:name:id>, <a:name:id>) and :shortcode: tokens.
var markupRe = regexp.MustCompile(`<a?:\w+:\d+>|:\w+:`)

// emojiTable covers pictographs, dingbats, arrows, geometric shapes, the
// BMP symbols that render as emoji, and the joiners and selectors that glue
// emoji sequences together.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00a9, Hi: 0x00a9, Stride: 1},
		{Lo: 0x00ae, Hi: 0x00ae, Stride: 1},
		{Lo: 0x200d, Hi: 0x200d, Stride: 1},
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x20e3, Hi: 0x20e3, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2190, Hi: 0x21ff, Stride: 1},
		{Lo: 0x2300, Hi: 0x23ff, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25a0, Hi: 0x25ff, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b00, Hi: 0x2bff, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3297, Stride: 1},
		{Lo: 0x3299, Hi: 0x3299, Stride: 1},
		{Lo: 0xfe00, Hi: 0xfe0f, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
		{Lo: 0xe0020, Hi: 0xe007f, Stride: 1},
	},
	LatinOffset: 2,
}

var stripEmoji = runes.Remove(runes.In(emojiTable))

// Sanitize removes emoji markup and pictographic characters from a chat line
// and trims the result. Removal repeats until nothing changes so that
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(line string) string {
	for {
		next, _, err := transform.String(stripEmoji, line)
		if err != nil {
			return ""
		}
		next = markupRe.ReplaceAllString(next, "")
		if next == line {
			break
		}
		line = next
	}
	return strings.TrimSpace(line)
}
