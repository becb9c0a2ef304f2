package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestRedact(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"email=ana%40example.com":  "email=[REDACTED:email]",
		"to ana@example.com today": "to [REDACTED:email] today",
		"call 212-555-1212":        "call [REDACTED:phone]",
		"page=2&page_size=20":      "page=2&page_size=20",
		"id=3f1c2a4e-8b7d-4c1a-9e2f-0a1b2c3d4e5f": "id=[REDACTED:id]",
	}
	for in, want := range cases {
		if got := redact(in); got != want {
			t.Errorf("redact(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactingLogger_ScrubsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	r := newEngine(RequestID(), RedactingLogger(zerolog.New(&buf), RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/auth/callback", func(c *gin.Context) {
		c.Set(ctxKeyUserID, "u1")
		c.Status(http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?email=ana%40example.com", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k")
	req.Header.Set("X-Note", "ana@example.com")
	serve(r, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" || entry["status"] != float64(400) || entry["user_id"] != "u1" {
		t.Fatalf("entry = %v", entry)
	}
	if entry["query"] != "email=[REDACTED:email]" {
		t.Fatalf("query = %v", entry["query"])
	}
	headers, _ := entry["headers"].(map[string]any)
	if headers["Authorization"] != "[REDACTED]" || headers["X-Api-Key"] != "[REDACTED]" || headers["X-Note"] != "[REDACTED:email]" {
		t.Fatalf("headers = %v", headers)
	}
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("token leaked: %s", buf.String())
	}
}
