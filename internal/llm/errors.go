package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CodeInvalidResponse marks a 2xx answer that could not be used.
const CodeInvalidResponse = "invalid_response"

// APIError is a failed completion.
type APIError struct {
	Status  int
	Code    string
	Type    string
	Message string
	Wait    time.Duration
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "llm: %d", e.Status)
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

func (e *APIError) StatusCode() int           { return e.Status }
func (e *APIError) ErrorCode() string         { return e.Code }
func (e *APIError) ErrorType() string         { return e.Type }
func (e *APIError) ErrorName() string         { return "APIError" }
func (e *APIError) RetryAfter() time.Duration { return e.Wait }

// errorEnvelope is {"error":{"code":..,"message":..,"type":..}}. OpenRouter
// sends numeric codes (mirroring the status), OpenAI sends string codes.
type errorEnvelope struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
		Type    string          `json:"type"`
	} `json:"error"`
}

func decodeAPIError(resp *http.Response) error {
	e := &APIError{Status: resp.StatusCode, Wait: retryAfter(resp.Header.Get("Retry-After"))}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil {
		e.Message = env.Error.Message
		e.Type = env.Error.Type
		var code string
		if json.Unmarshal(env.Error.Code, &code) == nil {
			e.Code = code
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}

func retryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}
