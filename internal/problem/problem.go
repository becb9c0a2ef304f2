// Package problem implements typed domain errors and their RFC 7807
// problem-details representation.
//
// A business area declares its error kinds once with DefineDomain. Every kind
// has a fixed code, HTTP status and title key; instances created from a kind
// only add a detail message, optional metadata and an optional cause. The
// code is the single source of truth: status and title are looked up through
// the kind, never stored per instance, so they cannot drift.
//
// Example:
//
//	var Auth = problem.DefineDomain("auth", map[string]problem.Spec{
//	    "InvalidCredentials": {Code: "auth/invalid-credentials", Status: 401, Title: "errors.auth.invalid_credentials"},
//	})
//
//	err := Auth.Kind("InvalidCredentials").New("invalid email or password")
//	details := Auth.ToProblem(err, "/api/auth/login")
package problem

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultTypeBase prefixes the code to build the problem "type" URI.
const DefaultTypeBase = "https://10xcards.app/problems/"

// Spec describes one error kind inside a DefineDomain call.
type Spec struct {
	Code   string
	Status int
	Title  string
}

// Kind is a registered error kind. Kinds are created by DefineDomain and are
// immutable afterwards.
type Kind struct {
	domain string
	name   string
	code   string
	status int
	title  string
}

// Domain returns the owning business area (e.g. "auth").
func (k *Kind) Domain() string { return k.domain }

// Name returns the creator name the kind was registered under.
func (k *Kind) Name() string { return k.name }

// Code returns the stable machine-readable code ("auth/invalid-credentials").
func (k *Kind) Code() string { return k.code }

// Status returns the HTTP status associated with the kind.
func (k *Kind) Status() int { return k.status }

// Title returns the i18n title key.
func (k *Kind) Title() string { return k.title }

// New creates a domain error of this kind. An empty detail is allowed.
func (k *Kind) New(detail string, opts ...Option) *Error {
	e := &Error{kind: k, detail: detail}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf is New with a formatted detail.
func (k *Kind) Newf(format string, args ...any) *Error {
	return k.New(fmt.Sprintf(format, args...))
}

// Is reports whether err (or anything it wraps) is a domain error of kind k.
func (k *Kind) Is(err error) bool {
	pe, ok := As(err)
	return ok && pe.kind == k
}

// Option customizes an Error at construction time.
type Option func(*Error)

// WithMeta attaches structured metadata. The map is copied.
func WithMeta(meta map[string]any) Option {
	return func(e *Error) {
		if len(meta) > 0 {
			e.meta = maps.Clone(meta)
		}
	}
}

// WithCause records the originating error. It is never serialized.
func WithCause(cause error) Option {
	return func(e *Error) { e.cause = cause }
}

// Domain groups the kinds of one business area.
type Domain struct {
	name     string
	registry *Registry
	kinds    map[string]*Kind
}

// Name returns the domain tag.
func (d *Domain) Name() string { return d.name }

// Kind returns the kind registered under name. It panics for unknown names,
// which can only happen through a programming error.
func (d *Domain) Kind(name string) *Kind {
	k, ok := d.kinds[name]
	if !ok {
		panic(fmt.Sprintf("problem: domain %q has no kind %q", d.name, name))
	}
	return k
}

// Kinds returns all kinds of the domain ordered by code.
func (d *Domain) Kinds() []*Kind {
	out := make([]*Kind, 0, len(d.kinds))
	for _, k := range d.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].code < out[j].code })
	return out
}

// ToProblem converts err into a problem document for the given request path,
// using the type base of the registry the domain belongs to.
func (d *Domain) ToProblem(err *Error, instance string) Details {
	return NewDetails(err, instance, d.registry.typeBase)
}

// Registry holds every defined kind and guarantees code uniqueness across
// domains. Most code uses the package-level default registry through
// DefineDomain and Lookup.
type Registry struct {
	typeBase string

	mu      sync.RWMutex
	domains map[string]*Domain
	kinds   map[string]*Kind
}

// NewRegistry returns an empty registry. typeBase defaults to DefaultTypeBase.
func NewRegistry(typeBase string) *Registry {
	if strings.TrimSpace(typeBase) == "" {
		typeBase = DefaultTypeBase
	}
	return &Registry{
		typeBase: typeBase,
		domains:  make(map[string]*Domain),
		kinds:    make(map[string]*Kind),
	}
}

var defaultRegistry = NewRegistry(DefaultTypeBase)

// DefineDomain registers a domain in the default registry. See
// Registry.DefineDomain.
func DefineDomain(name string, specs map[string]Spec) *Domain {
	return defaultRegistry.DefineDomain(name, specs)
}

// Lookup finds a kind by code in the default registry.
func Lookup(code string) (*Kind, bool) { return defaultRegistry.Lookup(code) }

// Domains lists the domains of the default registry ordered by name.
func Domains() []*Domain { return defaultRegistry.Domains() }

var (
	domainNameRE = regexp.MustCompile(`^[a-z][a-z0-9]*$`)
	kebabRE      = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// DefineDomain registers name and its kinds. Codes must follow
// "<domain>/<kebab-case-name>", be unique within the registry and carry a
// 4xx/5xx status. Violations panic: definitions are static program data.
func (r *Registry) DefineDomain(name string, specs map[string]Spec) *Domain {
	if !domainNameRE.MatchString(name) {
		panic(fmt.Sprintf("problem: invalid domain name %q", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.domains[name]; dup {
		panic(fmt.Sprintf("problem: domain %q already defined", name))
	}

	d := &Domain{name: name, registry: r, kinds: make(map[string]*Kind, len(specs))}
	prefix := name + "/"
	for creator, s := range specs {
		if creator == "" {
			panic(fmt.Sprintf("problem: empty creator name in domain %q", name))
		}
		if !strings.HasPrefix(s.Code, prefix) || !kebabRE.MatchString(strings.TrimPrefix(s.Code, prefix)) {
			panic(fmt.Sprintf("problem: code %q must look like %s<kebab-name>", s.Code, prefix))
		}
		if s.Status < 400 || s.Status > 599 {
			panic(fmt.Sprintf("problem: code %q has non-error status %d", s.Code, s.Status))
		}
		if _, dup := r.kinds[s.Code]; dup {
			panic(fmt.Sprintf("problem: code %q already registered", s.Code))
		}
		k := &Kind{domain: name, name: creator, code: s.Code, status: s.Status, title: s.Title}
		d.kinds[creator] = k
		r.kinds[s.Code] = k
	}
	r.domains[name] = d
	return d
}

// Lookup finds a kind by its code.
func (r *Registry) Lookup(code string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[code]
	return k, ok
}

// Domains lists registered domains ordered by name.
func (r *Registry) Domains() []*Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Domain, 0, len(r.domains))
	for _, d := range r.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) && pe != nil {
		return pe, true
	}
	return nil, false
}
