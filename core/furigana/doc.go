// Package furigana parses and renders inline reading annotations.
//
// Text carries readings (furigana for kanji, or any other gloss) in annotation
// blocks written directly after the characters they annotate:
//
//	この大学【だい・がく】
//
// A block opens with the start marker, separates reading tokens with the split
// marker and closes with the end marker. A block with k tokens annotates the k
// characters immediately before it, one token per character, left to right.
// The algorithm is script-agnostic: a character is one Unicode codepoint.
//
// # Groups
//
// Parsing one line yields an ordered list of Groups. A Group is either Plain
// (no item carries a reading) or Annotated (every item was zipped with one
// token of the same block). Group boundaries fall only where blocks occur.
//
//   - "hello"                 -> Plain{h e l l o}
//   - "この大学【だい・がく】" -> Plain{こ の}, Annotated{大:だい 学:がく}
//
// # Faults
//
// A block with more tokens than the characters waiting before it is a
// *MalformedError. A start marker with no end marker on the same line is not
// a fault: it is kept as an ordinary character.
//
// # Rendering
//
// Groups render to ruby markup. Annotated items become
// <ruby>大<rt>だい</rt></ruby>, plain runs become a neutral <ruby>この</ruby>.
// In collapsed mode each Group is merged into a single item first. The
// multi-line Render entry point never fails: a line that cannot be parsed is
// emitted verbatim as escaped text.
//
// # Concurrency
//
// An Engine is immutable once built and may be shared between goroutines.
package furigana
