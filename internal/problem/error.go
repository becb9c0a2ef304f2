package problem

import (
	"encoding/json"
	"maps"
)

// errorName is the constant discriminator emitted in serialized errors.
const errorName = "DomainError"

// Error is an instance of a Kind. It is immutable once created.
type Error struct {
	kind   *Kind
	detail string
	meta   map[string]any
	cause  error
}

// Error implements the error interface as "<code>: <detail>".
func (e *Error) Error() string {
	if e.detail == "" {
		return e.kind.code
	}
	return e.kind.code + ": " + e.detail
}

// Unwrap exposes the cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the kind the error was created from.
func (e *Error) Kind() *Kind { return e.kind }

func (e *Error) Code() string   { return e.kind.code }
func (e *Error) Status() int    { return e.kind.status }
func (e *Error) Title() string  { return e.kind.title }
func (e *Error) Domain() string { return e.kind.domain }
func (e *Error) Detail() string { return e.detail }
func (e *Error) Cause() error   { return e.cause }

// Meta returns a copy of the attached metadata, or nil.
func (e *Error) Meta() map[string]any {
	if e.meta == nil {
		return nil
	}
	return maps.Clone(e.meta)
}

type errorJSON struct {
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Domain  string         `json:"domain"`
	Code    string         `json:"code"`
	Status  int            `json:"status"`
	Title   string         `json:"title"`
	Detail  string         `json:"detail"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// MarshalJSON emits the public fields only. The cause is never serialized.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorJSON{
		Name:    errorName,
		Message: e.detail,
		Domain:  e.kind.domain,
		Code:    e.kind.code,
		Status:  e.kind.status,
		Title:   e.kind.title,
		Detail:  e.detail,
		Meta:    e.meta,
	})
}
