// Package lesson reads lesson documents and renders their annotated text.
//
// A lesson is a JSON document:
//
//	{
//	  "title": "...",
//	  "media": "video.mp4",
//	  "text_language": "japanese",
//	  "user_language": "english",
//	  "text_segments": [{"time": "00:12.500", "text": "...", "notes": "..."}]
//	}
//
// Saved lessons may also be wrapped as {"hash": "...", "lesson": {...}}.
// Lessons are never written by this package.
package lesson

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/furigana/core/errors"
)

// Timestamp is a section's position in the lesson media, kept as written
// (e.g. "11:23.2"). Bare JSON numbers are accepted as seconds.
type Timestamp string

// UnmarshalJSON accepts a string or a number.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return errors.NewParse("timestamp", "", string(data))
	}
	*t = Timestamp(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Section is one timed text segment.
type Section struct {
	Time  Timestamp `json:"time"`
	Text  string    `json:"text"`
	Notes string    `json:"notes,omitempty"`
}

// Lesson is a decoded lesson document.
type Lesson struct {
	Title        string    `json:"title"`
	Media        string    `json:"media,omitempty"`
	TextLanguage string    `json:"text_language,omitempty"`
	UserLanguage string    `json:"user_language,omitempty"`
	Sections     []Section `json:"text_segments"`
}

type envelope struct {
	Hash   string          `json:"hash"`
	Lesson json.RawMessage `json:"lesson"`
}

// Decode decodes a bare or wrapped lesson document.
func Decode(data []byte) (*Lesson, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.NewParse("lesson", "", err.Error())
	}
	body := data
	if len(env.Lesson) > 0 && !bytes.Equal(env.Lesson, []byte("null")) {
		body = env.Lesson
	}

	var l Lesson
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, errors.NewParse("lesson", "", err.Error())
	}
	return &l, nil
}

// Hash returns the hex BLAKE3 digest of a lesson file's bytes. Clients
// compare it with the hash they loaded to detect out-of-sync lessons.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
