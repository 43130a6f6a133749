package api

import (
	"net/http"
	"strconv"

	"github.com/FocuswithJustin/furigana/core/errors"
	"github.com/FocuswithJustin/furigana/core/lesson"
	"github.com/FocuswithJustin/furigana/internal/logging"
)

// LessonResponse is a rendered lesson with its summary.
type LessonResponse struct {
	lesson.Info
	Lesson *lesson.Rendered `json:"lesson"`
}

// LessonHash is the response for GET /lessons/{slug}/hash.
type LessonHash struct {
	Slug string `json:"slug"`
	Hash string `json:"hash"`
}

func (s *Server) lessonsEnabled(w http.ResponseWriter) bool {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "LESSONS_DISABLED", "no lessons directory configured")
		return false
	}
	return true
}

func (s *Server) handleLessons(w http.ResponseWriter, r *http.Request) {
	if !s.lessonsEnabled(w) {
		return
	}

	infos, err := s.store.List()
	if err != nil {
		var ioe *errors.IOError
		if errors.As(err, &ioe) && ioe.Path == s.store.Dir() {
			respondErr(w, r, err)
			return
		}
		// Unreadable lessons are left out of the listing.
		logging.LessonError(r.Context(), "", err)
	}
	if infos == nil {
		infos = []lesson.Info{}
	}
	respondMeta(w, http.StatusOK, infos, len(infos))
}

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	if !s.lessonsEnabled(w) {
		return
	}

	collapse := false
	if v := r.URL.Query().Get("collapse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondErr(w, r, errors.NewValidation("collapse", "must be a boolean"))
			return
		}
		collapse = b
	}

	slug := r.PathValue("slug")
	doc, err := s.store.Get(slug)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) && !errors.Is(err, errors.ErrInvalidInput) {
			logging.LessonError(r.Context(), slug, err)
		}
		respondErr(w, r, err)
		return
	}

	e := s.engine.OnFault(func(lineNo int, line string, err error) {
		logging.RenderFallback(r.Context(), lineNo, err, "slug", slug)
	})
	respond(w, http.StatusOK, LessonResponse{
		Info:   doc.Info,
		Lesson: lesson.Render(doc.Lesson, e, collapse),
	})
}

func (s *Server) handleLessonHash(w http.ResponseWriter, r *http.Request) {
	if !s.lessonsEnabled(w) {
		return
	}

	doc, err := s.store.Get(r.PathValue("slug"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, LessonHash{Slug: doc.Slug, Hash: doc.Hash})
}
