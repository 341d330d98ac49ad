package main

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteJSON(t *testing.T) {
	var logs bytes.Buffer
	l := slog.New(slog.NewTextHandler(&logs, nil))

	rec := httptest.NewRecorder()
	writeJSON(rec, l, map[string]int{"version": 3})
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"version":3}` {
		t.Errorf("body = %q", got)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %q", logs.String())
	}

	var w http.ResponseWriter = failingWriter{httptest.NewRecorder()}
	writeJSON(w, l, map[string]int{"version": 3})
	if !strings.Contains(logs.String(), "response_encode_error") {
		t.Errorf("expected the write failure to be logged, got %q", logs.String())
	}
}
