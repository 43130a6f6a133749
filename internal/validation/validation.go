// Package validation provides input validation for lesson slugs and file
// paths supplied by users of the CLI and HTTP API.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Security limits to prevent resource exhaustion (CWE-400).
const (
	// MaxFileSize is the maximum size of a lesson or input file (16 MB),
	// measured after decompression.
	MaxFileSize = 16 << 20
	// MaxSlugLength is the maximum allowed lesson slug length.
	MaxSlugLength = 200
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidSlug      = errors.New("invalid slug")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
)

// ValidateSlug checks that a lesson slug names a single file inside the
// lessons directory.
func ValidateSlug(slug string) error {
	if slug == "" {
		return ErrInvalidSlug
	}
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidSlug, MaxSlugLength)
	}

	// Reject hidden files and the relative directory names
	if strings.HasPrefix(slug, ".") {
		return fmt.Errorf("%w: cannot start with a dot", ErrInvalidSlug)
	}

	if strings.ContainsAny(slug, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidSlug)
	}

	for _, r := range slug {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidSlug)
		}
	}

	// Reject slugs starting with hyphen (can be confused with command flags)
	if strings.HasPrefix(slug, "-") {
		return fmt.Errorf("%w: cannot start with hyphen", ErrInvalidSlug)
	}

	return nil
}

// ValidatePath performs path validation without requiring a base directory.
// It checks length limits and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	// Check for null bytes and other control characters
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// JoinWithin joins name onto baseDir and verifies that the result stays
// inside baseDir.
func JoinWithin(baseDir, name string) (string, error) {
	if err := ValidatePath(name); err != nil {
		return "", err
	}

	cleanName := filepath.Clean(name)
	if filepath.IsAbs(cleanName) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, cleanName))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return absPath, nil
}
