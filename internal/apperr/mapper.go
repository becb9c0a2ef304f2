package apperr

import (
	"strings"

	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/upstream"
)

// rule pairs a predicate on an upstream error with the kind it selects.
// detail, when set, is the message shown to clients; the raw vendor message
// never is.
type rule struct {
	match  func(upstream.Error) bool
	kind   *problem.Kind
	detail string
}

// mapper evaluates rules in order; the first match wins. Tables list code
// rules first, then status rules, then message rules.
type mapper struct {
	rules    []rule
	fallback rule
	meta     func(upstream.Error) map[string]any
}

func (m mapper) mapError(v upstream.Error) *problem.Error {
	chosen := m.fallback
	for _, r := range m.rules {
		if r.match(v) {
			chosen = r
			break
		}
	}

	opts := []problem.Option{problem.WithCause(v)}
	if m.meta != nil {
		opts = append(opts, problem.WithMeta(m.meta(v)))
	}
	return chosen.kind.New(chosen.detail, opts...)
}

func always(upstream.Error) bool { return true }

func byCode(codes ...string) func(upstream.Error) bool {
	return func(v upstream.Error) bool {
		if v.Code == "" {
			return false
		}
		for _, c := range codes {
			if strings.EqualFold(v.Code, c) {
				return true
			}
		}
		return false
	}
}

func byName(names ...string) func(upstream.Error) bool {
	return func(v upstream.Error) bool {
		for _, n := range names {
			if v.Name == n {
				return true
			}
		}
		return false
	}
}

func byStatus(statuses ...int) func(upstream.Error) bool {
	return func(v upstream.Error) bool {
		for _, s := range statuses {
			if v.Status == s {
				return true
			}
		}
		return false
	}
}

func byMessage(fragments ...string) func(upstream.Error) bool {
	return func(v upstream.Error) bool {
		msg := strings.ToLower(v.Message)
		if msg == "" {
			return false
		}
		for _, f := range fragments {
			if strings.Contains(msg, f) {
				return true
			}
		}
		return false
	}
}

// retryMeta exposes a vendor back-off hint to clients.
func retryMeta(v upstream.Error) map[string]any {
	if v.RetryAfter <= 0 {
		return nil
	}
	secs := int(v.RetryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	return map[string]any{"retryAfter": secs}
}
