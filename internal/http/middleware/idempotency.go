package middleware

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/apperr"
)

// HeaderIdempotencyKey carries the client's key for a retry-safe POST.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyOptions configures key validation. Zero values mean a 200 byte
// cap and the token pattern ^[A-Za-z0-9._~\-:]+$.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether userID already completed a request under
// key. Expiry is the lookup's business.
type IdempotencyLookup func(ctx context.Context, userID, key string) (bool, error)

// IdempotencyKey validates the Idempotency-Key header when present and
// stashes it for the handler (GetIdempotencyKey). If lookup finds a stored
// result the request is flagged as a replay and skips rate limiting; the
// handler serves the stored response. A malformed key is rejected with
// system/validation-failed. Lookup failures are logged and ignored.
func IdempotencyKey(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			WriteProblem(c, apperr.FieldError(apperr.SystemValidationFailed,
				HeaderIdempotencyKey, "must be 1-200 characters of [A-Za-z0-9._~-:]"))
			return
		}
		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			found, err := lookup(c.Request.Context(), UserID(c), key)
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if found {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}
		c.Next()
	}
}

// GetIdempotencyKey returns the validated key, if the request had one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, _ := c.Get(ctxKeyIdemKey)
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether a stored result exists for the request's key.
func IsReplay(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyIdemReplay)
	b, _ := v.(bool)
	return b
}
