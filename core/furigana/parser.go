package furigana

import (
	"fmt"

	"github.com/FocuswithJustin/furigana/core/errors"
)

// MalformedError reports an annotation block with more reading tokens than
// characters waiting to receive them.
type MalformedError struct {
	Line      string // the line being parsed
	Block     string // the offending block, delimiters included
	Position  int    // unit index of the block's start marker
	Readings  int    // number of reading tokens in the block
	Available int    // characters pending before the block
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed annotation %s at position %d: %d readings for %d preceding characters",
		e.Block, e.Position, e.Readings, e.Available)
}

func (e *MalformedError) Unwrap() error {
	return errors.ErrInvalidInput
}

// IsMalformed reports whether err is, or wraps, a *MalformedError.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

// Parse parses a single line into groups. It fails only with a
// *MalformedError; an unterminated block is kept as literal text.
func (e *Engine) Parse(line string) ([]Group, error) {
	units, err := e.tok.units(line)
	if err != nil {
		return nil, errors.Wrap(err, "tokenizing line")
	}
	groups, err := parseUnits(units)
	if err != nil {
		if me, ok := err.(*MalformedError); ok {
			me.Line = line
		}
		return nil, err
	}
	return groups, nil
}

func parseUnits(units []unit) ([]Group, error) {
	var (
		groups  []Group
		pending []string // characters waiting for a reading
	)

	s := newScanner(units)
	for !s.ended() {
		if s.at() != unitStart {
			pending = append(pending, s.consume(1))
			continue
		}

		position := s.pos
		block, readings, ok := grabBlock(s)
		if !ok {
			// No end marker: the start marker is an ordinary character.
			pending = append(pending, s.consume(1))
			continue
		}

		boundary := len(pending) - len(readings)
		if boundary < 0 {
			return nil, &MalformedError{
				Block:     block,
				Position:  position,
				Readings:  len(readings),
				Available: len(pending),
			}
		}
		if boundary > 0 {
			groups = append(groups, plainGroup(pending[:boundary]))
		}
		groups = append(groups, annotatedGroup(pending[boundary:], readings))
		pending = nil
	}

	if len(pending) > 0 {
		groups = append(groups, plainGroup(pending))
	}
	return groups, nil
}

// grabBlock consumes an annotation block starting at the cursor and returns
// its source text and reading tokens. Without a matching end marker the
// cursor is restored and ok is false.
func grabBlock(s *scanner) (block string, readings []string, ok bool) {
	open := s.consume(1)
	n := s.find(unitEnd)
	if n < 0 {
		s.backtrack(1)
		return "", nil, false
	}
	body := s.take(n)
	closing := s.consume(1)
	return open + joinUnits(body) + closing, splitReadings(body), true
}

// splitReadings splits a block body on split markers. It always returns at
// least one token; empty tokens are explicit empty readings.
func splitReadings(body []unit) []string {
	readings := make([]string, 0, 1)
	start := 0
	for i, u := range body {
		if u.kind == unitSplit {
			readings = append(readings, joinUnits(body[start:i]))
			start = i + 1
		}
	}
	return append(readings, joinUnits(body[start:]))
}
