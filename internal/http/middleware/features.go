package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/apperr"
)

// FeatureChecker reports whether a named feature is on. *features.Flags
// implements it.
type FeatureChecker interface {
	IsEnabled(name string) bool
}

// RequireFeature short-circuits with system/feature-disabled (503) while the
// flag is off. The flag is read per request, so reloads apply immediately.
func RequireFeature(flags FeatureChecker, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if flags != nil && !flags.IsEnabled(name) {
			WriteProblem(c, apperr.SystemFeatureDisabled.New("This feature is currently disabled.",
				problemMeta("feature", name)))
			return
		}
		c.Next()
	}
}
