package furigana

import "strings"

// scanner walks the units of one line. Running off either end is not an
// error: reads truncate and find reports -1.
type scanner struct {
	units []unit
	pos   int
}

func newScanner(units []unit) *scanner {
	return &scanner{units: units}
}

// window returns the next n units (fewer at end) without advancing.
func (s *scanner) window(n int) []unit {
	if n < 0 {
		n = 0
	}
	if s.pos >= len(s.units) {
		return nil
	}
	end := min(s.pos+n, len(s.units))
	return s.units[s.pos:end]
}

// consume returns the text of the next n units and advances past them.
func (s *scanner) consume(n int) string {
	return joinUnits(s.take(n))
}

// take is consume without joining, for callers that need unit kinds.
func (s *scanner) take(n int) []unit {
	w := s.window(n)
	s.pos += len(w)
	return w
}

// backtrack rewinds the cursor by n units.
func (s *scanner) backtrack(n int) {
	s.pos = max(s.pos-n, 0)
}

// find returns how many units lie between the cursor and the next unit of
// the given kind, or -1 if there is none.
func (s *scanner) find(kind unitKind) int {
	for i := s.pos; i < len(s.units); i++ {
		if s.units[i].kind == kind {
			return i - s.pos
		}
	}
	return -1
}

// at peeks at the kind of the unit under the cursor. Callers check ended
// first.
func (s *scanner) at() unitKind {
	return s.units[s.pos].kind
}

func (s *scanner) ended() bool {
	return s.pos >= len(s.units)
}

func joinUnits(units []unit) string {
	var sb strings.Builder
	for _, u := range units {
		sb.WriteString(u.text)
	}
	return sb.String()
}
