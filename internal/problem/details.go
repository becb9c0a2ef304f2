package problem

import "strings"

// ContentType is the media type of problem documents.
const ContentType = "application/problem+json"

// Details is an RFC 7807 problem document extended with the domain code and
// optional metadata.
type Details struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail"`
	Code     string         `json:"code"`
	Instance string         `json:"instance"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// NewDetails builds the problem document for err. typeBase is joined with the
// code to form the type URI; an empty base falls back to DefaultTypeBase.
func NewDetails(err *Error, instance, typeBase string) Details {
	return Details{
		Type:     TypeURI(typeBase, err.kind.code),
		Title:    err.kind.title,
		Status:   err.kind.status,
		Detail:   err.detail,
		Code:     err.kind.code,
		Instance: instance,
		Meta:     err.Meta(),
	}
}

// TypeURI returns base + code, inserting a slash when base lacks one.
func TypeURI(base, code string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultTypeBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + code
}
