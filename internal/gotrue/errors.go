package gotrue

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tbourn/tenx-cards/internal/sysutil"
)

// APIError is a non-2xx answer from GoTrue.
type APIError struct {
	Status  int
	Code    string // e.g. "invalid_credentials", "over_email_send_rate_limit"
	Message string
	Wait    time.Duration
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gotrue: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gotrue: %d: %s", e.Status, e.Message)
}

func (e *APIError) StatusCode() int { return e.Status }

func (e *APIError) ErrorCode() string { return e.Code }

func (e *APIError) ErrorName() string { return "AuthApiError" }

func (e *APIError) RetryAfter() time.Duration { return e.Wait }

// errorBody accepts both the current ({code, error_code, msg}) and the
// legacy OAuth ({error, error_description}) error shapes.
type errorBody struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func decodeAPIError(resp *http.Response) error {
	e := &APIError{
		Status: resp.StatusCode,
		Wait:   parseRetryAfter(resp.Header.Get("Retry-After")),
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var b errorBody
	if json.Unmarshal(raw, &b) == nil {
		e.Code = sysutil.FirstNonEmpty(b.ErrorCode, b.Error)
		e.Message = sysutil.FirstNonEmpty(b.Msg, b.Message, b.ErrorDescription, b.Error)
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
