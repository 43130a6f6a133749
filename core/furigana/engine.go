package furigana

import (
	"unicode/utf8"

	"github.com/FocuswithJustin/furigana/core/errors"
)

// Delimiters are the three markers of the annotation syntax. Each is a
// single codepoint.
type Delimiters struct {
	Start string
	Split string
	End   string
}

// DefaultDelimiters are 【, ・ and 】.
var DefaultDelimiters = Delimiters{Start: "【", Split: "・", End: "】"}

// FaultHandler is called by Render for every line that falls back to its raw
// text. lineNo is 1-based.
type FaultHandler func(lineNo int, line string, err error)

// Engine parses and renders annotated text with a fixed configuration.
type Engine struct {
	delims      Delimiters
	escape      rune
	placeholder string
	onFault     FaultHandler
	tok         *tokenizer
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelimiters replaces the default delimiters.
func WithDelimiters(d Delimiters) Option {
	return func(e *Engine) {
		e.delims = d
	}
}

// WithEscape makes r an escape character: r followed by any character yields
// that character as plain text, so an escaped start marker opens no block.
func WithEscape(r rune) Option {
	return func(e *Engine) {
		e.escape = r
	}
}

// WithPlaceholder sets the markup written for an explicit empty reading.
// It is written as is, without escaping.
func WithPlaceholder(markup string) Option {
	return func(e *Engine) {
		e.placeholder = markup
	}
}

// WithFaultHandler installs a callback for lines Render could not parse.
func WithFaultHandler(h FaultHandler) Option {
	return func(e *Engine) {
		e.onFault = h
	}
}

// New builds an Engine. Delimiters must be distinct single codepoints other
// than line breaks, and the escape character must not be a delimiter.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		delims:      DefaultDelimiters,
		placeholder: DefaultPlaceholder,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	tok, err := newTokenizer(e.delims, e.escape)
	if err != nil {
		return nil, err
	}
	e.tok = tok
	return e, nil
}

// MustNew is New that panics on invalid configuration.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Delimiters returns the engine's delimiters.
func (e *Engine) Delimiters() Delimiters {
	return e.delims
}

// OnFault returns a copy of e that reports fallback lines to h instead.
// The copy shares e's tokenizer.
func (e *Engine) OnFault(h FaultHandler) *Engine {
	c := *e
	c.onFault = h
	return &c
}

func (e *Engine) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"start", e.delims.Start},
		{"split", e.delims.Split},
		{"end", e.delims.End},
	}

	seen := make(map[string]string, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) != 1 || !utf8.ValidString(f.value) {
			return &errors.ValidationError{Field: f.name, Value: f.value, Message: "must be exactly one character"}
		}
		if f.value == "\n" || f.value == "\r" {
			return &errors.ValidationError{Field: f.name, Value: f.value, Message: "must not be a line break"}
		}
		if other, dup := seen[f.value]; dup {
			return &errors.ValidationError{Field: f.name, Value: f.value, Message: "same character as " + other}
		}
		seen[f.value] = f.name
	}

	if e.escape != 0 {
		esc := string(e.escape)
		switch {
		case e.escape == utf8.RuneError || e.escape == '\n' || e.escape == '\r':
			return &errors.ValidationError{Field: "escape", Value: esc, Message: "not a usable escape character"}
		case seen[esc] != "":
			return &errors.ValidationError{Field: "escape", Value: esc, Message: "same character as " + seen[esc]}
		}
	}
	return nil
}

var defaultEngine = MustNew()

// Parse parses one line with the default delimiters.
func Parse(line string) ([]Group, error) {
	return defaultEngine.Parse(line)
}

// Render renders multi-line text with the default delimiters.
func Render(text string, collapse bool) string {
	return defaultEngine.Render(text, collapse)
}

// RenderHTML renders with the default delimiters and breaks lines with <br />.
func RenderHTML(text string, collapse bool) string {
	return defaultEngine.RenderHTML(text, collapse)
}

// RenderGroups renders groups with the default placeholder.
func RenderGroups(groups []Group, collapse bool) string {
	return defaultEngine.RenderGroups(groups, collapse)
}
