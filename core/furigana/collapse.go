package furigana

// Collapse merges a group's items into one item, left to right. The merged
// reading is the concatenation of every reading when the group is annotated
// and absent otherwise. Per-character alignment is lost.
func Collapse(g Group) Group {
	if len(g.Items) <= 1 {
		return g
	}
	merged := Item{Text: g.Text()}
	if reading, ok := g.Reading(); ok {
		merged.Reading = reading
	}
	return Group{Kind: g.Kind, Items: []Item{merged}}
}

// CollapseAll applies Collapse to each group independently.
func CollapseAll(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Collapse(g)
	}
	return out
}
