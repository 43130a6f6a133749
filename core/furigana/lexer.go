package furigana

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// unitKind classifies one scanner unit.
type unitKind int

const (
	unitChar unitKind = iota
	unitStart
	unitSplit
	unitEnd
)

// unit is one character of a line. Delimiters keep their text so that a
// block body can fold them back into a reading.
type unit struct {
	kind unitKind
	text string
}

// tokenizer splits a line into units with a participle lexer built from the
// engine's delimiters.
type tokenizer struct {
	def     *lexer.StatefulDefinition
	kinds   map[lexer.TokenType]unitKind
	escaped lexer.TokenType
	escapes bool
}

func newTokenizer(d Delimiters, escape rune) (*tokenizer, error) {
	var rules []lexer.SimpleRule
	if escape != 0 {
		// Escape followed by any character; an escape at end of line falls
		// through to Char.
		rules = append(rules, lexer.SimpleRule{
			Name:    "Escaped",
			Pattern: regexp.QuoteMeta(string(escape)) + `(?s:.)`,
		})
	}
	rules = append(rules,
		lexer.SimpleRule{Name: "Start", Pattern: regexp.QuoteMeta(d.Start)},
		lexer.SimpleRule{Name: "Split", Pattern: regexp.QuoteMeta(d.Split)},
		lexer.SimpleRule{Name: "End", Pattern: regexp.QuoteMeta(d.End)},
		lexer.SimpleRule{Name: "Char", Pattern: `(?s:.)`},
	)

	def, err := lexer.NewSimple(rules)
	if err != nil {
		return nil, fmt.Errorf("building annotation lexer: %w", err)
	}

	sym := def.Symbols()
	t := &tokenizer{
		def: def,
		kinds: map[lexer.TokenType]unitKind{
			sym["Start"]: unitStart,
			sym["Split"]: unitSplit,
			sym["End"]:   unitEnd,
			sym["Char"]:  unitChar,
		},
	}
	if escape != 0 {
		t.escaped = sym["Escaped"]
		t.escapes = true
	}
	return t, nil
}

// units lexes one line. Escaped characters become plain units holding the
// character without its escape.
func (t *tokenizer) units(line string) ([]unit, error) {
	lex, err := t.def.LexString("", line)
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	out := make([]unit, 0, len(tokens))
	for _, tok := range tokens {
		if tok.EOF() {
			break
		}
		if t.escapes && tok.Type == t.escaped {
			_, size := utf8.DecodeRuneInString(tok.Value)
			out = append(out, unit{kind: unitChar, text: tok.Value[size:]})
			continue
		}
		out = append(out, unit{kind: t.kinds[tok.Type], text: tok.Value})
	}
	return out, nil
}
