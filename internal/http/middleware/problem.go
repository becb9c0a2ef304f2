// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file is the problem responder: every error that leaves a handler is
// turned into an RFC 7807 document (application/problem+json) carrying the
// domain code, the request path as instance and the correlation id.
//
// Handlers are written as HandlerFunc (they return an error) and mounted with
// WithProblemHandling. Middleware that rejects a request calls WriteProblem
// directly.
package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/problem"
)

const ctxKeyTypeBase = "problem.typeBase"

// fallbackBody is sent when the problem document cannot be encoded.
const fallbackBody = `{"type":"` + problem.DefaultTypeBase + `system/unexpected","title":"errors.system.unexpected","status":500,"detail":"An unexpected error occurred","code":"system/unexpected"}`

var problemResponses = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "problem_responses_total",
		Help: "Problem documents written, by code and status.",
	},
	[]string{"code", "status"},
)

func init() {
	prometheus.MustRegister(problemResponses)
}

// HandlerFunc is a Gin handler that reports failures by returning them.
type HandlerFunc func(*gin.Context) error

// WithProblemHandling adapts fn to Gin. A nil return leaves the response as
// written by fn; anything else is answered with WriteProblem.
func WithProblemHandling(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			WriteProblem(c, err)
		}
	}
}

// ProblemTypeBase sets the base URI used for the "type" member of every
// problem written further down the chain.
func ProblemTypeBase(base string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxKeyTypeBase, base)
		c.Next()
	}
}

// WriteProblem answers the request with err as a problem document and aborts
// the chain. Errors that are not domain errors become system/unexpected.
func WriteProblem(c *gin.Context, err error) {
	pe := apperr.Normalize(err)
	if pe == nil {
		pe = apperr.SystemUnexpected.New("An unexpected error occurred")
	}

	rid := ensureRequestID(c)
	base, _ := c.Get(ctxKeyTypeBase)
	doc := problem.NewDetails(pe, c.Request.URL.Path, asString(base))

	lg := LoggerFrom(c)
	if pe.Status() >= http.StatusInternalServerError {
		lg.Error().Err(pe.Cause()).
			Str("code", pe.Code()).
			Int("status", pe.Status()).
			Str("detail", pe.Detail()).
			Msg("request failed")
	} else {
		lg.Debug().
			Str("code", pe.Code()).
			Int("status", pe.Status()).
			Msg("request rejected")
	}
	problemResponses.WithLabelValues(pe.Code(), strconv.Itoa(pe.Status())).Inc()

	if secs, ok := doc.Meta["retryAfter"].(int); ok && secs > 0 {
		c.Header("Retry-After", strconv.Itoa(secs))
	}
	c.Header(requestIDHeader, rid)

	body, mErr := json.Marshal(doc)
	status := pe.Status()
	if mErr != nil {
		lg.Error().Err(mErr).Str("code", pe.Code()).Msg("problem encoding failed")
		body, status = []byte(fallbackBody), http.StatusInternalServerError
	}
	c.Abort()
	c.Data(status, problem.ContentType, body)
}

// ensureRequestID returns the correlation id of the request, creating one
// when RequestID did not run.
func ensureRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	rid := c.GetHeader(requestIDHeader)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Set(requestIDKey, rid)
	return rid
}

func problemMeta(key string, v any) problem.Option {
	return problem.WithMeta(map[string]any{key: v})
}
