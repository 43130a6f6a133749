package lesson

import (
	stderrors "errors"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/FocuswithJustin/furigana/core/errors"
	"github.com/FocuswithJustin/furigana/internal/validation"
)

// Lesson file extensions, in lookup order.
var extensions = []string{".json", ".json.xz"}

// Info summarizes one lesson file.
type Info struct {
	Slug  string `json:"slug"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Hash  string `json:"hash"`
}

// Document is a loaded lesson with its summary.
type Document struct {
	Info
	Lesson *Lesson `json:"lesson"`
}

// Store reads lessons from a directory of *.json and *.json.xz files. The
// slug of a lesson is its file name without extension.
type Store struct {
	dir string
}

// NewStore returns a store over dir. The directory is read on every call.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the lessons directory.
func (s *Store) Dir() string {
	return s.dir
}

func slugOf(name string) (string, bool) {
	for _, ext := range extensions {
		if slug, ok := strings.CutSuffix(name, ext); ok && slug != "" {
			return slug, true
		}
	}
	return "", false
}

// List summarizes every lesson in the directory, sorted by slug. Files
// that cannot be read or decoded are left out and reported together in
// the returned error, alongside the lessons that did load.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.NewIO("read directory", s.dir, err)
	}

	var (
		infos []Info
		errs  []error
		seen  = make(map[string]bool)
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		slug, ok := slugOf(entry.Name())
		if !ok || seen[slug] || validation.ValidateSlug(slug) != nil {
			continue
		}
		seen[slug] = true

		doc, err := s.Get(slug)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		infos = append(infos, doc.Info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Slug < infos[j].Slug
	})
	return infos, stderrors.Join(errs...)
}

// Get loads the lesson with the given slug. A .json file wins over a
// .json.xz file of the same slug.
func (s *Store) Get(slug string) (*Document, error) {
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, &errors.ValidationError{Field: "slug", Value: slug, Message: err.Error()}
	}

	for _, ext := range extensions {
		path, err := validation.JoinWithin(s.dir, slug+ext)
		if err != nil {
			return nil, &errors.ValidationError{Field: "slug", Value: slug, Message: err.Error()}
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return load(slug, path)
	}
	return nil, errors.NewNotFound("lesson", slug)
}

func load(slug, path string) (*Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Decode(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return &Document{
		Info: Info{
			Slug:  slug,
			URL:   "/lessons/" + url.PathEscape(slug),
			Title: l.Title,
			Hash:  Hash(data),
		},
		Lesson: l,
	}, nil
}
