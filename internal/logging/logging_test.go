package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// captureLogOutput redirects the global logger to a buffer while f runs.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer
	oldLogger := defaultLogger

	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	f()
	defaultLogger = oldLogger

	return buf.String()
}

func decodeLine(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line %q is not JSON: %v", out, err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("Text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(Text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestInitLoggerTo(t *testing.T) {
	oldLogger := defaultLogger
	defer func() { defaultLogger = oldLogger; slog.SetDefault(oldLogger) }()

	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelWarn, FormatJSON)
	Info("hidden")
	Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	m := decodeLine(t, out)
	if m["msg"] != "shown" || m["k"] != "v" {
		t.Errorf("log entry = %v", m)
	}
	ts, ok := m["time"].(string)
	if !ok {
		t.Fatalf("time = %v, want string", m["time"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestInitLoggerText(t *testing.T) {
	oldLogger := defaultLogger
	defer func() { defaultLogger = oldLogger; slog.SetDefault(oldLogger) }()

	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelDebug, FormatText)
	Debug("text message")
	if !strings.Contains(buf.String(), "msg=\"text message\"") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID = %q, want %q", got, "abc")
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q, want empty", got)
	}

	out := captureLogOutput(func() {
		InfoContext(ctx, "with id")
	})
	if m := decodeLine(t, out); m["request_id"] != "abc" {
		t.Errorf("request_id = %v, want abc", m["request_id"])
	}
}

func TestRenderFallback(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	out := captureLogOutput(func() {
		RenderFallback(ctx, 3, errors.New("bad block"), "source", "stdin")
	})

	m := decodeLine(t, out)
	if m["msg"] != "render_fallback" {
		t.Errorf("msg = %v", m["msg"])
	}
	if m["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", m["level"])
	}
	if m["line"] != float64(3) || m["error"] != "bad block" || m["source"] != "stdin" {
		t.Errorf("entry = %v", m)
	}
	if m["request_id"] != "req-1" {
		t.Errorf("request_id = %v", m["request_id"])
	}
}

func TestLessonError(t *testing.T) {
	out := captureLogOutput(func() {
		LessonError(context.Background(), "intro", errors.New("boom"))
	})
	m := decodeLine(t, out)
	if m["msg"] != "lesson_error" || m["slug"] != "intro" || m["error"] != "boom" {
		t.Errorf("entry = %v", m)
	}
}

func TestServerStartupAndSecurityEvent(t *testing.T) {
	out := captureLogOutput(func() {
		ServerStartup("api", "http", 8080, "lessons_dir", "/tmp")
	})
	m := decodeLine(t, out)
	if m["msg"] != "server_startup" || m["port"] != float64(8080) || m["lessons_dir"] != "/tmp" {
		t.Errorf("entry = %v", m)
	}

	out = captureLogOutput(func() {
		SecurityEvent("body_too_large", "api")
	})
	m = decodeLine(t, out)
	if m["msg"] != "security_event" || m["level"] != "WARN" || m["event"] != "body_too_large" {
		t.Errorf("entry = %v", m)
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusTeapot)
	}

	rec = httptest.NewRecorder()
	rw = &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	if _, err := rw.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if !rw.written || rec.Code != http.StatusOK {
		t.Errorf("implicit WriteHeader not recorded: written=%v code=%d", rw.written, rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated request ID %q is not a UUID: %v", seen, err)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("response header does not carry the request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-123" {
		t.Errorf("request ID = %q, want client-123", seen)
	}

	for _, bad := range []string{"has space", strings.Repeat("x", maxRequestIDLength+1), "tab\t"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", bad)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		if seen == bad {
			t.Errorf("malformed request ID %q was accepted", bad)
		}
	}
}

func TestCombinedMiddleware(t *testing.T) {
	handler := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	out := captureLogOutput(func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/render", nil))
	})

	m := decodeLine(t, out)
	if m["msg"] != "http_request" {
		t.Fatalf("msg = %v", m["msg"])
	}
	if m["method"] != "POST" || m["path"] != "/render" || m["status_code"] != float64(http.StatusCreated) {
		t.Errorf("entry = %v", m)
	}
	if id, _ := m["request_id"].(string); id == "" {
		t.Error("request_id missing from request log")
	}
}
