package lesson

import "github.com/FocuswithJustin/furigana/core/furigana"

// RenderedSection is a section with its text and notes rendered to markup.
type RenderedSection struct {
	Time      Timestamp `json:"time"`
	Text      string    `json:"text"`
	TextHTML  string    `json:"text_html"`
	Notes     string    `json:"notes,omitempty"`
	NotesHTML string    `json:"notes_html,omitempty"`
}

// Rendered is a lesson ready for display.
type Rendered struct {
	Title        string            `json:"title"`
	Media        string            `json:"media,omitempty"`
	TextLanguage string            `json:"text_language,omitempty"`
	UserLanguage string            `json:"user_language,omitempty"`
	Sections     []RenderedSection `json:"sections"`
}

// Render renders every section's text and notes with e. Sections keep
// their document order; line breaks become <br />.
func Render(l *Lesson, e *furigana.Engine, collapse bool) *Rendered {
	out := &Rendered{
		Title:        l.Title,
		Media:        l.Media,
		TextLanguage: l.TextLanguage,
		UserLanguage: l.UserLanguage,
		Sections:     make([]RenderedSection, len(l.Sections)),
	}
	for i, s := range l.Sections {
		rs := RenderedSection{
			Time:     s.Time,
			Text:     s.Text,
			TextHTML: e.RenderHTML(s.Text, collapse),
			Notes:    s.Notes,
		}
		if s.Notes != "" {
			rs.NotesHTML = e.RenderHTML(s.Notes, collapse)
		}
		out.Sections[i] = rs
	}
	return out
}
