// Package markup reads back the ruby markup produced by the furigana
// renderer.
//
// Rendered fragments have no single root element, so Parse wraps them
// before handing them to xmlquery. Lines that the renderer emitted verbatim
// appear as bare text between ruby elements.
package markup

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/furigana/core/errors"
)

const rootElement = "fragment"

var (
	// rubyExpr is evaluated against the fragment element, not the document.
	rubyExpr = xpath.MustCompile("ruby")
	rootExpr = xpath.MustCompile("/" + rootElement)
)

// Document is a parsed markup fragment.
type Document struct {
	root *xmlquery.Node
}

// Unit is one ruby element: a base run and, when present, its reading.
type Unit struct {
	Base       string `json:"base"`
	Reading    string `json:"reading,omitempty"`
	HasReading bool   `json:"has_reading"`
}

// Parse parses a rendered fragment. The fragment must be well formed.
func Parse(fragment string) (*Document, error) {
	doc, err := xmlquery.Parse(strings.NewReader("<" + rootElement + ">" + fragment + "</" + rootElement + ">"))
	if err != nil {
		return nil, errors.NewParse("markup", "", err.Error())
	}
	root := xmlquery.QuerySelector(doc, rootExpr)
	if root == nil {
		return nil, errors.NewParse("markup", "", "missing fragment root")
	}
	return &Document{root: root}, nil
}

// Validate reports whether fragment is well formed.
func Validate(fragment string) error {
	_, err := Parse(fragment)
	return err
}

// Units returns the top-level ruby elements in document order.
func (d *Document) Units() []Unit {
	nodes := xmlquery.QuerySelectorAll(d.root, rubyExpr)
	units := make([]Unit, 0, len(nodes))
	for _, n := range nodes {
		units = append(units, rubyUnit(n))
	}
	return units
}

// XPath runs an arbitrary query against the fragment.
func (d *Document) XPath(expr string) ([]*xmlquery.Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	return xmlquery.QuerySelectorAll(d.root, compiled), nil
}

// PlainText returns the base text with readings dropped and <br /> turned
// back into newlines.
func (d *Document) PlainText() string {
	return d.text(func(u Unit) string { return u.Base })
}

// ReadingText returns the text with every annotated base replaced by its
// reading, e.g. a kana-only version of a kanji sentence. An explicit empty
// reading reads back as the renderer's placeholder, a no-break space by
// default.
func (d *Document) ReadingText() string {
	return d.text(func(u Unit) string {
		if u.HasReading {
			return u.Reading
		}
		return u.Base
	})
}

func (d *Document) text(pick func(Unit) string) string {
	var sb strings.Builder
	for n := d.root.FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			sb.WriteString(n.Data)
		case xmlquery.ElementNode:
			switch n.Data {
			case "ruby":
				sb.WriteString(pick(rubyUnit(n)))
			case "br":
				sb.WriteString("\n")
			default:
				sb.WriteString(n.InnerText())
			}
		}
	}
	return sb.String()
}

func rubyUnit(n *xmlquery.Node) Unit {
	var u Unit
	var base strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "rt" {
			u.HasReading = true
			u.Reading += c.InnerText()
			continue
		}
		base.WriteString(c.InnerText())
	}
	u.Base = base.String()
	return u
}
