package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testDomain(t *testing.T) (*Registry, *Domain) {
	t.Helper()
	r := NewRegistry("")
	d := r.DefineDomain("auth", map[string]Spec{
		"InvalidCredentials": {Code: "auth/invalid-credentials", Status: http.StatusUnauthorized, Title: "errors.auth.invalid_credentials"},
		"RateLimited":        {Code: "auth/rate-limited", Status: http.StatusTooManyRequests, Title: "errors.auth.rate_limited"},
	})
	return r, d
}

func TestKind_NewCarriesRegisteredFields(t *testing.T) {
	_, d := testDomain(t)

	err := d.Kind("InvalidCredentials").New("bad password")

	assert.Equal(t, "auth/invalid-credentials", err.Code())
	assert.Equal(t, http.StatusUnauthorized, err.Status())
	assert.Equal(t, "errors.auth.invalid_credentials", err.Title())
	assert.Equal(t, "auth", err.Domain())
	assert.Equal(t, "bad password", err.Detail())
	assert.Nil(t, err.Meta())
	assert.Nil(t, err.Cause())
	assert.Equal(t, "auth/invalid-credentials: bad password", err.Error())
}

func TestKind_NewWithoutDetail(t *testing.T) {
	_, d := testDomain(t)

	err := d.Kind("RateLimited").New("")

	assert.Equal(t, "", err.Detail())
	assert.Equal(t, http.StatusTooManyRequests, err.Status())
	assert.Equal(t, "auth/rate-limited", err.Error())
}

func TestError_MetaIsCopied(t *testing.T) {
	_, d := testDomain(t)
	meta := map[string]any{"retryAfter": 60}

	err := d.Kind("RateLimited").New("slow down", WithMeta(meta))
	meta["retryAfter"] = 1
	got := err.Meta()
	got["retryAfter"] = 2

	assert.Equal(t, 60, err.Meta()["retryAfter"])
}

func TestError_CauseUnwrapsButIsNotSerialized(t *testing.T) {
	_, d := testDomain(t)
	cause := errors.New("pq: secret connection string leaked")

	err := d.Kind("InvalidCredentials").New("nope", WithCause(cause))

	assert.ErrorIs(t, err, cause)
	b, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "cause")

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "DomainError", out["name"])
	assert.Equal(t, "nope", out["message"])
	assert.Equal(t, "auth", out["domain"])
	assert.Equal(t, "auth/invalid-credentials", out["code"])
	assert.EqualValues(t, 401, out["status"])
}

func TestAs_FindsWrappedError(t *testing.T) {
	_, d := testDomain(t)
	inner := d.Kind("RateLimited").New("x")
	wrapped := fmt.Errorf("service: %w", inner)

	pe, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, pe)
	assert.True(t, d.Kind("RateLimited").Is(wrapped))
	assert.False(t, d.Kind("InvalidCredentials").Is(wrapped))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestDomain_ToProblem(t *testing.T) {
	_, d := testDomain(t)
	err := d.Kind("RateLimited").New("too many attempts", WithMeta(map[string]any{"retryAfter": 60}))

	p := d.ToProblem(err, "/api/auth/login")

	assert.Equal(t, Details{
		Type:     "https://10xcards.app/problems/auth/rate-limited",
		Title:    "errors.auth.rate_limited",
		Status:   429,
		Detail:   "too many attempts",
		Code:     "auth/rate-limited",
		Instance: "/api/auth/login",
		Meta:     map[string]any{"retryAfter": 60},
	}, p)
}

func TestDetails_OmitsEmptyMeta(t *testing.T) {
	_, d := testDomain(t)
	p := d.ToProblem(d.Kind("InvalidCredentials").New(""), "/x")

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "meta")
	assert.Contains(t, string(b), `"detail":""`)
}

func TestTypeURI(t *testing.T) {
	cases := []struct{ base, code, want string }{
		{"", "auth/x", DefaultTypeBase + "auth/x"},
		{"https://e.test/p", "a/b", "https://e.test/p/a/b"},
		{"https://e.test/p/", "a/b", "https://e.test/p/a/b"},
	}
	for _, tc := range cases {
		t.Run(tc.base, func(t *testing.T) {
			assert.Equal(t, tc.want, TypeURI(tc.base, tc.code))
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r, d := testDomain(t)

	k, ok := r.Lookup("auth/rate-limited")
	require.True(t, ok)
	assert.Same(t, d.Kind("RateLimited"), k)

	_, ok = r.Lookup("auth/unknown")
	assert.False(t, ok)
}

func TestRegistry_DefineDomainRejectsBadDefinitions(t *testing.T) {
	cases := map[string]func(r *Registry){
		"duplicate code across domains": func(r *Registry) {
			r.DefineDomain("a", map[string]Spec{"X": {Code: "a/x", Status: 400}})
			r.DefineDomain("b", map[string]Spec{"X": {Code: "a/x", Status: 400}})
		},
		"duplicate domain": func(r *Registry) {
			r.DefineDomain("a", map[string]Spec{"X": {Code: "a/x", Status: 400}})
			r.DefineDomain("a", map[string]Spec{"Y": {Code: "a/y", Status: 400}})
		},
		"code outside domain": func(r *Registry) {
			r.DefineDomain("a", map[string]Spec{"X": {Code: "b/x", Status: 400}})
		},
		"code not kebab": func(r *Registry) {
			r.DefineDomain("a", map[string]Spec{"X": {Code: "a/Not_Kebab", Status: 400}})
		},
		"success status": func(r *Registry) {
			r.DefineDomain("a", map[string]Spec{"X": {Code: "a/x", Status: 200}})
		},
		"bad domain name": func(r *Registry) {
			r.DefineDomain("Auth Domain", map[string]Spec{})
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Panics(t, func() { fn(NewRegistry("")) })
		})
	}
}

func TestDomain_KindPanicsOnUnknownName(t *testing.T) {
	_, d := testDomain(t)
	assert.Panics(t, func() { d.Kind("Nope") })
}

func TestDomain_KindsSortedByCode(t *testing.T) {
	_, d := testDomain(t)
	ks := d.Kinds()
	require.Len(t, ks, 2)
	assert.Equal(t, "auth/invalid-credentials", ks[0].Code())
	assert.Equal(t, "auth/rate-limited", ks[1].Code())
}

// Any detail/meta combination keeps status and code fixed by the kind, and
// the serialized form never carries the cause text.
func TestError_Properties(t *testing.T) {
	_, d := testDomain(t)
	kinds := d.Kinds()

	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.SampledFrom(kinds).Draw(rt, "kind")
		detail := rapid.String().Draw(rt, "detail")
		secret := "cause-" + rapid.StringMatching(`[a-z]{8}`).Draw(rt, "secret")
		metaVal := rapid.IntRange(0, 1000).Draw(rt, "meta")

		err := k.New(detail, WithMeta(map[string]any{"n": metaVal}), WithCause(errors.New(secret)))

		if err.Status() != k.Status() || err.Code() != k.Code() {
			rt.Fatalf("kind fields drifted: %d %s", err.Status(), err.Code())
		}
		if !strings.HasPrefix(err.Code(), err.Domain()+"/") {
			rt.Fatalf("code %q not prefixed by domain %q", err.Code(), err.Domain())
		}
		b, mErr := json.Marshal(err)
		if mErr != nil {
			rt.Fatalf("marshal: %v", mErr)
		}
		if strings.Contains(string(b), secret) {
			rt.Fatalf("cause leaked into %s", b)
		}
		p := d.ToProblem(err, "/p")
		if p.Status != k.Status() || p.Code != k.Code() || p.Detail != detail {
			rt.Fatalf("problem mismatch: %+v", p)
		}
	})
}
