// Package encoding provides the text escaping used when writing markup.
package encoding

import "strings"

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeText escapes the basic entities for element content: & < >
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}
