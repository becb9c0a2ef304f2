package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newLimiter(t *testing.T, window time.Duration, max int) (*InMemory, *ManualClock) {
	t.Helper()
	clk := NewManualClock(epoch)
	l, err := NewInMemory(Config{Window: window, Max: max}, WithClock(clk.Now))
	require.NoError(t, err)
	return l, clk
}

func TestInMemory_FiveThenDeniedThenFreshWindow(t *testing.T) {
	l, clk := newLimiter(t, 60*time.Second, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Check("k"), "call %d", i+1)
	}
	assert.False(t, l.Check("k"))

	clk.Advance(61 * time.Second)
	assert.True(t, l.Check("k"))

	e, ok := l.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, e.Count)
	assert.Equal(t, epoch.Add(121*time.Second), e.ResetAt)
}

func TestInMemory_DeniedCallDoesNotMutate(t *testing.T) {
	l, _ := newLimiter(t, time.Minute, 1)

	require.True(t, l.Check("k"))
	before, _ := l.Get("k")
	require.False(t, l.Check("k"))
	after, _ := l.Get("k")

	assert.Equal(t, before, after)
}

func TestInMemory_WindowBoundaryIsInclusive(t *testing.T) {
	l, clk := newLimiter(t, time.Minute, 1)

	require.True(t, l.Check("k"))
	clk.Advance(time.Minute)
	assert.False(t, l.Check("k"), "now == resetAt is still inside the window")
	clk.Advance(time.Millisecond)
	assert.True(t, l.Check("k"))
}

func TestInMemory_GetExpiredReportsAbsentWithoutDeleting(t *testing.T) {
	l, clk := newLimiter(t, time.Minute, 3)
	l.Check("k")

	clk.Advance(2 * time.Minute)
	_, ok := l.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())
}

func TestInMemory_Reset(t *testing.T) {
	l, _ := newLimiter(t, time.Minute, 1)
	ctx := context.Background()

	require.True(t, l.Check("k"))
	require.False(t, l.Check("k"))
	require.NoError(t, l.Reset(ctx, "k"))

	_, ok := l.Get("k")
	assert.False(t, ok)
	assert.True(t, l.Check("k"))
}

func TestInMemory_AllowReportsRemainingAndReset(t *testing.T) {
	l, _ := newLimiter(t, time.Minute, 2)
	ctx := context.Background()

	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Remaining: 1, ResetAt: epoch.Add(time.Minute)}, d)

	d, _ = l.Allow(ctx, "k")
	assert.Equal(t, 0, d.Remaining)
	assert.True(t, d.Allowed)

	d, _ = l.Allow(ctx, "k")
	assert.False(t, d.Allowed)
	assert.Equal(t, 45*time.Second, d.RetryAfter(epoch.Add(15*time.Second)))
}

func TestNewInMemory_RejectsBadConfig(t *testing.T) {
	_, err := NewInMemory(Config{Window: 0, Max: 1})
	assert.Error(t, err)
	_, err = NewInMemory(Config{Window: time.Second, Max: 0})
	assert.Error(t, err)
}

func TestInMemory_GCDropsExpiredKeys(t *testing.T) {
	l, clk := newLimiter(t, time.Second, 1)
	l.cleanupN = 3

	l.Check("a")
	l.Check("b")
	clk.Advance(2 * time.Second)
	l.Check("c") // third check triggers GC before inserting c

	assert.Equal(t, 1, l.Len())
}

func TestDecision_RetryAfterRoundsUp(t *testing.T) {
	d := Decision{ResetAt: epoch.Add(1500 * time.Millisecond)}
	assert.Equal(t, 2*time.Second, d.RetryAfter(epoch))
	assert.Equal(t, time.Second, d.RetryAfter(epoch.Add(time.Hour)))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "10.0.0.1:bob@example.com", Key("10.0.0.1", " Bob@Example.COM "))
	assert.Equal(t, "user:42", Key("user", "", "42"))
}

func TestInstrumented_CountsOutcomes(t *testing.T) {
	l, _ := newLimiter(t, time.Minute, 1)
	in := Instrument("test-scope", l)
	ctx := context.Background()

	allowedBefore := testutil.ToFloat64(decisionsTotal.WithLabelValues("test-scope", "allowed"))
	deniedBefore := testutil.ToFloat64(decisionsTotal.WithLabelValues("test-scope", "denied"))

	_, _ = in.Allow(ctx, "k")
	_, _ = in.Allow(ctx, "k")

	assert.Equal(t, allowedBefore+1, testutil.ToFloat64(decisionsTotal.WithLabelValues("test-scope", "allowed")))
	assert.Equal(t, deniedBefore+1, testutil.ToFloat64(decisionsTotal.WithLabelValues("test-scope", "denied")))
}

// Exactly the first max calls inside a window pass, keys do not interfere,
// and once the window elapses the count restarts at one.
func TestInMemory_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(1, 20).Draw(rt, "max")
		calls := rapid.IntRange(0, 40).Draw(rt, "calls")
		keys := rapid.IntRange(1, 4).Draw(rt, "keys")

		clk := NewManualClock(epoch)
		l, err := NewInMemory(Config{Window: time.Minute, Max: max}, WithClock(clk.Now))
		if err != nil {
			rt.Fatalf("new: %v", err)
		}

		for k := 0; k < keys; k++ {
			key := fmt.Sprintf("k%d", k)
			allowed := 0
			for i := 0; i < calls; i++ {
				if l.Check(key) {
					allowed++
				}
			}
			want := calls
			if want > max {
				want = max
			}
			if allowed != want {
				rt.Fatalf("key %s: allowed %d, want %d", key, allowed, want)
			}
		}

		clk.Advance(time.Minute + time.Second)
		if !l.Check("k0") {
			rt.Fatalf("fresh window denied")
		}
		if e, ok := l.Get("k0"); !ok || e.Count != 1 {
			rt.Fatalf("fresh window entry %+v %v", e, ok)
		}
	})
}
