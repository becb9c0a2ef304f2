package ratelimit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

var decisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_decisions_total",
		Help: "Rate limiter decisions by scope and outcome (allowed, denied, error).",
	},
	[]string{"scope", "outcome"},
)

func init() {
	prometheus.MustRegister(decisionsTotal)
}

// Instrumented counts the decisions of an underlying limiter.
type Instrumented struct {
	Scope string
	Next  Limiter
}

// Instrument wraps l so that every decision is recorded under scope.
func Instrument(scope string, l Limiter) *Instrumented {
	return &Instrumented{Scope: scope, Next: l}
}

// Allow implements Limiter.
func (i *Instrumented) Allow(ctx context.Context, key string) (Decision, error) {
	d, err := i.Next.Allow(ctx, key)
	outcome := "allowed"
	switch {
	case err != nil:
		outcome = "error"
	case !d.Allowed:
		outcome = "denied"
	}
	decisionsTotal.WithLabelValues(i.Scope, outcome).Inc()
	return d, err
}

// Reset implements Limiter.
func (i *Instrumented) Reset(ctx context.Context, key string) error {
	return i.Next.Reset(ctx, key)
}
