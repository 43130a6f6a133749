package furigana

import (
	"encoding/json"
	"strings"
)

// Kind is the provenance shared by every item of a Group.
type Kind int

const (
	// Plain items were never covered by an annotation block.
	Plain Kind = iota
	// Annotated items were zipped with the tokens of one annotation block.
	Annotated
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Annotated:
		return "annotated"
	default:
		return "unknown"
	}
}

// Item is one base character and its reading.
type Item struct {
	// Text is a single base character, or a whole run after Collapse.
	Text string

	// Reading is only meaningful inside an Annotated group. There an empty
	// string is an explicit empty reading, rendered with a placeholder.
	Reading string
}

// Group is a run of items that share the same provenance.
type Group struct {
	Kind  Kind
	Items []Item
}

// Annotated reports whether the group's items carry readings.
func (g Group) Annotated() bool {
	return g.Kind == Annotated
}

// Text returns the concatenated base text of the group.
func (g Group) Text() string {
	var sb strings.Builder
	for _, it := range g.Items {
		sb.WriteString(it.Text)
	}
	return sb.String()
}

// Reading returns the concatenated readings and true for an annotated group,
// or "" and false for a plain one.
func (g Group) Reading() (string, bool) {
	if !g.Annotated() {
		return "", false
	}
	var sb strings.Builder
	for _, it := range g.Items {
		sb.WriteString(it.Reading)
	}
	return sb.String(), true
}

type itemJSON struct {
	Text    string  `json:"text"`
	Reading *string `json:"reading,omitempty"`
}

type groupJSON struct {
	Annotated bool       `json:"annotated"`
	Items     []itemJSON `json:"items"`
}

// MarshalJSON encodes the group with a reading on every item of an
// annotated group (even when empty) and none on plain items.
func (g Group) MarshalJSON() ([]byte, error) {
	out := groupJSON{
		Annotated: g.Annotated(),
		Items:     make([]itemJSON, len(g.Items)),
	}
	for i, it := range g.Items {
		out.Items[i].Text = it.Text
		if g.Annotated() {
			reading := it.Reading
			out.Items[i].Reading = &reading
		}
	}
	return json.Marshal(out)
}

// Text returns the base text of all groups with annotations removed.
func Text(groups []Group) string {
	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(g.Text())
	}
	return sb.String()
}

func plainGroup(chars []string) Group {
	items := make([]Item, len(chars))
	for i, c := range chars {
		items[i] = Item{Text: c}
	}
	return Group{Kind: Plain, Items: items}
}

// annotatedGroup pairs chars[i] with readings[i]; callers pass equal lengths.
func annotatedGroup(chars, readings []string) Group {
	items := make([]Item, len(chars))
	for i, c := range chars {
		items[i] = Item{Text: c, Reading: readings[i]}
	}
	return Group{Kind: Annotated, Items: items}
}
