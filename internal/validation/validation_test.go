package validation

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name      string
		slug      string
		wantError bool
	}{
		{"simple", "hiragana-1", false},
		{"unicode", "日本語レッスン", false},
		{"with dots", "lesson.v2", false},
		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"hidden", ".secret", true},
		{"slash", "a/b", true},
		{"backslash", `a\b`, true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
		{"hyphen", "-rf", true},
		{"too long", strings.Repeat("a", MaxSlugLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if (err != nil) != tt.wantError {
				t.Fatalf("ValidateSlug(%q) error = %v, wantError %v", tt.slug, err, tt.wantError)
			}
			if err != nil && !errors.Is(err, ErrInvalidSlug) {
				t.Errorf("error %v should wrap ErrInvalidSlug", err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{"relative", "lessons/a.json", nil},
		{"absolute", "/srv/lessons/a.json", nil},
		{"empty", "", ErrEmptyPath},
		{"null byte", "a\x00", ErrInvalidCharacter},
		{"too long", strings.Repeat("a", MaxPathLength+1), ErrPathTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("ValidatePath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidatePath(%q) = %v, want %v", tt.path, err, tt.wantError)
			}
		})
	}
}

func TestJoinWithin(t *testing.T) {
	base := t.TempDir()

	got, err := JoinWithin(base, "a.json")
	if err != nil {
		t.Fatalf("JoinWithin failed: %v", err)
	}
	absBase, _ := filepath.Abs(base)
	if want := filepath.Join(absBase, "a.json"); got != want {
		t.Errorf("JoinWithin = %q, want %q", got, want)
	}

	for _, name := range []string{"../a.json", "sub/../../a.json", "/etc/passwd", ".."} {
		if _, err := JoinWithin(base, name); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("JoinWithin(%q) = %v, want ErrPathTraversal", name, err)
		}
	}

	// A name that merely starts with dots stays inside.
	if _, err := JoinWithin(base, "..lesson.json"); err != nil {
		t.Errorf("JoinWithin(..lesson.json) = %v, want nil", err)
	}
}
