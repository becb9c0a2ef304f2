// Package handlers provides the HTTP handlers of the public API.
//
// Handlers are middleware.HandlerFunc values: they bind and validate input,
// call a service and either write a success envelope or return an error that
// the problem responder turns into application/problem+json.
//
// Success responses share one shape:
//
//	HTTP/1.1 200 OK
//	{"data": {...}, "meta": {"timestamp": "2025-01-02T15:04:05Z", "status": "success"}}
//
// The error envelope below is only used by endpoints that are not part of the
// problem pipeline (health checks):
//
//	HTTP/1.1 503 Service Unavailable
//	{"error": {"code": "...", "message": "...", "httpStatus": 503, ...},
//	 "meta": {"timestamp": "...", "status": "error"}}
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/tenx-cards/internal/http/middleware"
)

// Meta accompanies every envelope.
type Meta struct {
	Timestamp string `json:"timestamp" example:"2025-01-02T15:04:05Z"`
	Status    string `json:"status" example:"success"`
}

// SuccessResponse is the envelope of every 2xx JSON body.
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// ErrorBody describes a failure in the error envelope.
type ErrorBody struct {
	Code       string `json:"code" example:"system/database-unavailable"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	HTTPStatus int    `json:"httpStatus" example:"503"`
	Instance   string `json:"instance,omitempty"`
	Hint       string `json:"hint,omitempty"`
	Docs       string `json:"docs,omitempty"`
	TraceID    string `json:"traceId,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
	Meta  Meta      `json:"meta"`
}

func newMeta(status string) Meta {
	return Meta{Timestamp: time.Now().UTC().Format(time.RFC3339), Status: status}
}

// Envelope wraps data in the success envelope.
func Envelope(data any) SuccessResponse {
	return SuccessResponse{Data: data, Meta: newMeta("success")}
}

// OK writes data with status 200.
func OK(c *gin.Context, data any, headers ...http.Header) {
	mergeHeaders(c, headers)
	c.JSON(http.StatusOK, Envelope(data))
}

// Created writes data with status 201 and, when location is not empty, a
// Location header.
func Created(c *gin.Context, data any, location string, headers ...http.Header) {
	mergeHeaders(c, headers)
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, Envelope(data))
}

// Accepted writes data with status 202.
func Accepted(c *gin.Context, data any, headers ...http.Header) {
	mergeHeaders(c, headers)
	c.JSON(http.StatusAccepted, Envelope(data))
}

// NoContent answers 204 without a body or content type.
func NoContent(c *gin.Context, headers ...http.Header) {
	mergeHeaders(c, headers)
	c.Writer.Header().Del("Content-Type")
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
}

// Fail writes the error envelope with body.HTTPStatus and aborts. The
// instance defaults to the request path and the trace id to the active span
// (or the request id when tracing is off).
func Fail(c *gin.Context, body ErrorBody, headers ...http.Header) {
	mergeHeaders(c, headers)
	if body.Instance == "" {
		body.Instance = c.Request.URL.Path
	}
	if body.TraceID == "" {
		body.TraceID = traceID(c)
	}
	if body.HTTPStatus == 0 {
		body.HTTPStatus = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(body.HTTPStatus, ErrorResponse{Error: body, Meta: newMeta("error")})
}

// mergeHeaders copies caller headers onto the response. Content-Type is
// owned by the helpers and never overridden.
func mergeHeaders(c *gin.Context, headers []http.Header) {
	dst := c.Writer.Header()
	for _, h := range headers {
		for k, vv := range h {
			if strings.EqualFold(k, "Content-Type") {
				continue
			}
			dst.Del(k)
			for _, v := range vv {
				dst.Add(k, v)
			}
		}
	}
}

func traceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return middleware.RequestIDFrom(c)
}
