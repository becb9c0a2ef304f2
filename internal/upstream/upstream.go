// Package upstream normalizes failures returned by third-party systems (the
// hosted auth provider, the database, the LLM gateway) into one untrusted
// shape that the error mappers can classify.
//
// Every field of Error is optional. Extraction never fails: anything that
// cannot be recognized ends up as a bare Message.
package upstream

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"
)

// Error is the loosely-structured description of a vendor failure.
type Error struct {
	Name       string        // exception/class name, e.g. "AuthApiError"
	Code       string        // vendor code, e.g. "invalid_credentials" or SQLSTATE
	Status     int           // HTTP status reported by the vendor, 0 if unknown
	Message    string        // raw vendor message, not safe to show to users
	Details    string        // additional vendor detail text
	Hint       string        // vendor hint (Postgres)
	Type       string        // vendor error type (OpenAI style)
	RetryAfter time.Duration // back-off requested by the vendor, if any

	Cause error // original error, kept for logs only
}

func (e Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
	} else if e.Name != "" {
		b.WriteString(e.Name)
	} else {
		b.WriteString("upstream")
	}
	if e.Status != 0 {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(e.Status))
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e Error) Unwrap() error { return e.Cause }

// Optional behaviours an error may expose. Clients in this module implement
// them so their errors can be described without this package importing them.
type (
	statusCoder interface{ StatusCode() int }
	errorCoder  interface{ ErrorCode() string }
	errorTyper  interface{ ErrorType() string }
	namer       interface{ ErrorName() string }
	retryAfter  interface{ RetryAfter() time.Duration }
)

// FromError describes any error. It returns the zero Error for nil.
func FromError(err error) Error {
	if err == nil {
		return Error{}
	}

	var direct Error
	if errors.As(err, &direct) {
		return direct
	}
	var directPtr *Error
	if errors.As(err, &directPtr) && directPtr != nil {
		return *directPtr
	}

	out := Error{Message: err.Error(), Cause: err}

	var sc statusCoder
	if errors.As(err, &sc) {
		out.Status = sc.StatusCode()
	}
	var ec errorCoder
	if errors.As(err, &ec) {
		out.Code = ec.ErrorCode()
	}
	var et errorTyper
	if errors.As(err, &et) {
		out.Type = et.ErrorType()
	}
	var nm namer
	if errors.As(err, &nm) {
		out.Name = nm.ErrorName()
	}
	var ra retryAfter
	if errors.As(err, &ra) {
		out.RetryAfter = ra.RetryAfter()
	}

	if out.Name == "" {
		out.Name = transportName(err)
	}
	return out
}

// transportName labels context and network failures so mappers can treat
// them as timeouts.
func transportName(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NameTimeout
	case errors.Is(err, context.Canceled):
		return NameAbort
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return NameTimeout
	}
	return ""
}

// Names assigned to transport-level failures.
const (
	NameTimeout = "TimeoutError"
	NameAbort   = "AbortError"
)
