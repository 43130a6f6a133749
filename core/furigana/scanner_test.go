package furigana

import "testing"

func mustUnits(t *testing.T, e *Engine, line string) []unit {
	t.Helper()
	units, err := e.tok.units(line)
	if err != nil {
		t.Fatalf("units(%q) failed: %v", line, err)
	}
	return units
}

func TestScannerConsume(t *testing.T) {
	s := newScanner(mustUnits(t, defaultEngine, "漢字【かん】"))

	if got := s.consume(1); got != "漢" {
		t.Errorf("consume(1) = %q, want %q", got, "漢")
	}
	if got := s.consume(2); got != "字【" {
		t.Errorf("consume(2) = %q, want %q", got, "字【")
	}
	if got := s.consume(10); got != "かん】" {
		t.Errorf("consume(10) = %q, want %q (truncated)", got, "かん】")
	}
	if !s.ended() {
		t.Error("ended() = false after consuming everything")
	}
	if got := s.consume(1); got != "" {
		t.Errorf("consume at end = %q, want empty", got)
	}
}

func TestScannerBacktrack(t *testing.T) {
	s := newScanner(mustUnits(t, defaultEngine, "abc"))
	s.consume(2)
	s.backtrack(1)
	if got := s.consume(1); got != "b" {
		t.Errorf("consume after backtrack = %q, want %q", got, "b")
	}

	s.backtrack(10)
	if s.pos != 0 {
		t.Errorf("pos = %d after over-backtrack, want 0", s.pos)
	}
}

func TestScannerFind(t *testing.T) {
	s := newScanner(mustUnits(t, defaultEngine, "ab【c・d】e"))

	tests := []struct {
		kind unitKind
		want int
	}{
		{unitStart, 2},
		{unitSplit, 4},
		{unitEnd, 6},
	}
	for _, tt := range tests {
		if got := s.find(tt.kind); got != tt.want {
			t.Errorf("find(%d) = %d, want %d", tt.kind, got, tt.want)
		}
	}

	s.consume(7)
	if got := s.find(unitEnd); got != -1 {
		t.Errorf("find past last end = %d, want -1", got)
	}
	if s.pos != 7 {
		t.Errorf("find moved the cursor to %d", s.pos)
	}
}

func TestScannerEmpty(t *testing.T) {
	s := newScanner(nil)
	if !s.ended() {
		t.Error("empty scanner should be ended")
	}
	if got := s.find(unitEnd); got != -1 {
		t.Errorf("find on empty = %d, want -1", got)
	}
	if got := s.consume(3); got != "" {
		t.Errorf("consume on empty = %q", got)
	}
}

func TestTokenizerUnits(t *testing.T) {
	tests := []struct {
		name   string
		engine *Engine
		line   string
		want   []unit
	}{
		{
			name:   "delimiters classified",
			engine: defaultEngine,
			line:   "a【b・c】",
			want: []unit{
				{unitChar, "a"}, {unitStart, "【"}, {unitChar, "b"},
				{unitSplit, "・"}, {unitChar, "c"}, {unitEnd, "】"},
			},
		},
		{
			name:   "escape disabled keeps backslash",
			engine: defaultEngine,
			line:   `\【`,
			want:   []unit{{unitChar, `\`}, {unitStart, "【"}},
		},
		{
			name:   "escaped start is plain",
			engine: MustNew(WithEscape('\\')),
			line:   `\【x`,
			want:   []unit{{unitChar, "【"}, {unitChar, "x"}},
		},
		{
			name:   "trailing escape is literal",
			engine: MustNew(WithEscape('\\')),
			line:   `a\`,
			want:   []unit{{unitChar, "a"}, {unitChar, `\`}},
		},
		{
			name:   "carriage return is a character",
			engine: defaultEngine,
			line:   "a\r",
			want:   []unit{{unitChar, "a"}, {unitChar, "\r"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustUnits(t, tt.engine, tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("units(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("unit %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
