package furigana

import (
	"strings"

	"github.com/FocuswithJustin/furigana/core/encoding"
)

// DefaultPlaceholder is the markup written for an explicit empty reading.
const DefaultPlaceholder = "&#160;"

// RenderGroups renders parsed groups to ruby markup. In collapsed mode each
// group is merged into a single item first.
func (e *Engine) RenderGroups(groups []Group, collapse bool) string {
	var sb strings.Builder
	for _, g := range groups {
		if collapse {
			g = Collapse(g)
		}
		e.writeGroup(&sb, g)
	}
	return sb.String()
}

// RenderLine parses and renders a single line.
func (e *Engine) RenderLine(line string, collapse bool) (string, error) {
	groups, err := e.Parse(line)
	if err != nil {
		return "", err
	}
	return e.RenderGroups(groups, collapse), nil
}

// Render renders multi-line text. Each line is parsed on its own; a line
// that fails to parse is written back verbatim as escaped text, so Render
// never fails.
// Lines are rejoined with the break that ended them in the input.
func (e *Engine) Render(text string, collapse bool) string {
	var sb strings.Builder
	for i, l := range splitLines(text) {
		markup, err := e.RenderLine(l.text, collapse)
		if err != nil {
			if e.onFault != nil {
				e.onFault(i+1, l.text, err)
			}
			markup = encoding.EscapeText(l.text)
		}
		sb.WriteString(markup)
		sb.WriteString(l.eol)
	}
	return sb.String()
}

// RenderHTML renders text and turns its line breaks into <br /> so the
// result fits inside a single HTML block.
func (e *Engine) RenderHTML(text string, collapse bool) string {
	return BreakLines(e.Render(text, collapse))
}

func (e *Engine) writeGroup(sb *strings.Builder, g Group) {
	if !g.Annotated() {
		sb.WriteString("<ruby>")
		sb.WriteString(encoding.EscapeText(g.Text()))
		sb.WriteString("</ruby>")
		return
	}
	for _, it := range g.Items {
		sb.WriteString("<ruby>")
		sb.WriteString(encoding.EscapeText(it.Text))
		sb.WriteString("<rt>")
		if it.Reading == "" {
			sb.WriteString(e.placeholder)
		} else {
			sb.WriteString(encoding.EscapeText(it.Reading))
		}
		sb.WriteString("</rt></ruby>")
	}
}
