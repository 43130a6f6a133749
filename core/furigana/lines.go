package furigana

import (
	"regexp"
	"strings"
)

// line is one line of input and the break that terminated it ("" for the
// last line).
type line struct {
	text string
	eol  string
}

// splitLines splits on "\n" and "\r\n". Empty input is one empty line.
func splitLines(text string) []line {
	var lines []line
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return append(lines, line{text: text})
		}
		body, eol := text[:i], "\n"
		if strings.HasSuffix(body, "\r") {
			body, eol = body[:len(body)-1], "\r\n"
		}
		lines = append(lines, line{text: body, eol: eol})
		text = text[i+1:]
	}
}

var lineBreak = regexp.MustCompile(`\r?\n`)

// BreakLines replaces every line break with <br />.
func BreakLines(markup string) string {
	return lineBreak.ReplaceAllString(markup, "<br />")
}
