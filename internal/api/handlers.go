package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/furigana/core/errors"
	"github.com/FocuswithJustin/furigana/core/furigana"
	"github.com/FocuswithJustin/furigana/internal/logging"
	"github.com/FocuswithJustin/furigana/internal/server"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Lessons bool   `json:"lessons"`

	CachedRenders int `json:"cached_renders"`
}

// RenderRequest is the request body for POST /render.
type RenderRequest struct {
	Text     string `json:"text"`
	Collapse bool   `json:"collapse"`
	HTML     bool   `json:"html"` // turn line breaks into <br />
}

// RenderResult is the response for POST /render. Fallbacks lists the
// 1-based lines that were emitted verbatim.
type RenderResult struct {
	Markup    string `json:"markup"`
	Fallbacks []int  `json:"fallbacks,omitempty"`
	Cached    bool   `json:"cached"`
}

// ParseRequest is the request body for POST /parse.
type ParseRequest struct {
	Line string `json:"line"`
}

// ParseResult is the response for POST /parse.
type ParseResult struct {
	Groups []furigana.Group `json:"groups"`
	Text   string           `json:"text"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	d := s.engine.Delimiters()
	respond(w, http.StatusOK, map[string]any{
		"name":       "furigana",
		"version":    s.cfg.Version,
		"delimiters": []string{d.Start, d.Split, d.End},
		"endpoints": []string{
			"GET /health",
			"POST /render",
			"POST /parse",
			"GET /lessons",
			"GET /lessons/{slug}",
			"GET /lessons/{slug}/hash",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := HealthInfo{
		Status:  "healthy",
		Version: s.cfg.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Lessons: s.store != nil,
	}
	if s.renders != nil {
		info.CachedRenders = s.renders.Len()
	}
	respond(w, http.StatusOK, info)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	key := s.cacheKey(req)
	if s.renders != nil {
		if res, ok := s.renders.Get(key); ok {
			res.Cached = true
			respond(w, http.StatusOK, res)
			return
		}
	}

	var res RenderResult
	e := s.engine.OnFault(func(lineNo int, line string, err error) {
		res.Fallbacks = append(res.Fallbacks, lineNo)
		logging.RenderFallback(r.Context(), lineNo, err)
	})
	if req.HTML {
		res.Markup = e.RenderHTML(req.Text, req.Collapse)
	} else {
		res.Markup = e.Render(req.Text, req.Collapse)
	}

	if s.renders != nil {
		s.renders.Set(key, res)
	}
	respond(w, http.StatusOK, res)
}

// cacheKey digests everything that determines a render result.
func (s *Server) cacheKey(req RenderRequest) [32]byte {
	d := s.engine.Delimiters()
	h := blake3.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%t\x00%t\x00", d.Start, d.Split, d.End, req.Collapse, req.HTML)
	_, _ = io.WriteString(h, req.Text)

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.ContainsAny(req.Line, "\r\n") {
		respondErr(w, r, errors.NewValidation("line", "must not contain line breaks"))
		return
	}

	groups, err := s.engine.Parse(req.Line)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if groups == nil {
		groups = []furigana.Group{}
	}
	respond(w, http.StatusOK, ParseResult{Groups: groups, Text: furigana.Text(groups)})
}

// decodeBody decodes a JSON request body into v, writing the error
// response itself when it fails.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if !server.ValidateContentType(r.Header.Get("Content-Type"), []string{"application/json"}) {
		respondError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logging.SecurityEvent("body_too_large", "api",
				"path", r.URL.Path,
				"limit", tooLarge.Limit)
			respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	if dec.More() {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "unexpected data after JSON body")
		return false
	}
	return true
}

// respondErr maps an error to its status and error code.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case furigana.IsMalformed(err):
		respondError(w, http.StatusUnprocessableEntity, "MALFORMED_INPUT", err.Error())
	case errors.Is(err, errors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case isStoredParseError(err):
		logging.ErrorContext(r.Context(), "stored document unreadable", "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "INVALID_DOCUMENT", "stored document could not be decoded")
	case errors.Is(err, errors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		logging.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// isStoredParseError reports a decode failure of a file on disk, as
// opposed to a bad request.
func isStoredParseError(err error) bool {
	var pe *errors.ParseError
	return errors.As(err, &pe) && pe.Path != ""
}

func respond(w http.ResponseWriter, status int, data any) {
	respondMeta(w, status, data, 0)
}

func respondMeta(w http.ResponseWriter, status int, data any, total int) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
