// Package apperr declares the error catalogue of every business domain and
// the mappers that translate upstream failures into it.
//
// Conventions:
//   - One problem.Domain per business area, declared once at package init.
//   - Each kind is also exported as a variable (AuthRateLimited, ...), so
//     callers write apperr.AuthRateLimited.New("...") and get compile-time
//     checking of the kind name.
//   - Codes follow "<domain>/<kebab-name>"; titles are i18n keys.
package apperr

import (
	"net/http"

	"github.com/tbourn/tenx-cards/internal/problem"
)

func kind(code string, status int, title string) problem.Spec {
	return problem.Spec{Code: code, Status: status, Title: title}
}

// Auth covers sign-in, registration and session management.
var Auth = problem.DefineDomain("auth", map[string]problem.Spec{
	"ValidationFailed":   kind("auth/validation-failed", http.StatusBadRequest, "errors.auth.validation_failed"),
	"InvalidCredentials": kind("auth/invalid-credentials", http.StatusUnauthorized, "errors.auth.invalid_credentials"),
	"Unauthorized":       kind("auth/unauthorized", http.StatusUnauthorized, "errors.auth.unauthorized"),
	"EmailNotConfirmed":  kind("auth/email-not-confirmed", http.StatusForbidden, "errors.auth.email_not_confirmed"),
	"UserExists":         kind("auth/user-exists", http.StatusConflict, "errors.auth.user_exists"),
	"TokenExpired":       kind("auth/token-expired", http.StatusGone, "errors.auth.token_expired"),
	"RateLimited":        kind("auth/rate-limited", http.StatusTooManyRequests, "errors.auth.rate_limited"),
	"ProviderError":      kind("auth/provider-error", http.StatusBadGateway, "errors.auth.provider_error"),
})

var (
	AuthValidationFailed   = Auth.Kind("ValidationFailed")
	AuthInvalidCredentials = Auth.Kind("InvalidCredentials")
	AuthUnauthorized       = Auth.Kind("Unauthorized")
	AuthEmailNotConfirmed  = Auth.Kind("EmailNotConfirmed")
	AuthUserExists         = Auth.Kind("UserExists")
	AuthTokenExpired       = Auth.Kind("TokenExpired")
	AuthRateLimited        = Auth.Kind("RateLimited")
	AuthProviderError      = Auth.Kind("ProviderError")
)

// Flashcard covers flashcards and collections.
var Flashcard = problem.DefineDomain("flashcard", map[string]problem.Spec{
	"ValidationFailed":   kind("flashcard/validation-failed", http.StatusBadRequest, "errors.flashcard.validation_failed"),
	"Forbidden":          kind("flashcard/forbidden", http.StatusForbidden, "errors.flashcard.forbidden"),
	"NotFound":           kind("flashcard/not-found", http.StatusNotFound, "errors.flashcard.not_found"),
	"CollectionNotFound": kind("flashcard/collection-not-found", http.StatusNotFound, "errors.flashcard.collection_not_found"),
	"RateLimited":        kind("flashcard/rate-limited", http.StatusTooManyRequests, "errors.flashcard.rate_limited"),
	"DatabaseError":      kind("flashcard/database-error", http.StatusInternalServerError, "errors.flashcard.database_error"),
})

var (
	FlashcardValidationFailed   = Flashcard.Kind("ValidationFailed")
	FlashcardForbidden          = Flashcard.Kind("Forbidden")
	FlashcardNotFound           = Flashcard.Kind("NotFound")
	FlashcardCollectionNotFound = Flashcard.Kind("CollectionNotFound")
	FlashcardRateLimited        = Flashcard.Kind("RateLimited")
	FlashcardDatabaseError      = Flashcard.Kind("DatabaseError")
)

// Generation covers AI-assisted flashcard generation sessions.
var Generation = problem.DefineDomain("generation", map[string]problem.Spec{
	"BadRequest":       kind("generation/bad-request", http.StatusBadRequest, "errors.generation.bad_request"),
	"ValidationFailed": kind("generation/validation-failed", http.StatusBadRequest, "errors.generation.validation_failed"),
	"Unauthorized":     kind("generation/unauthorized", http.StatusUnauthorized, "errors.generation.unauthorized"),
	"Forbidden":        kind("generation/forbidden", http.StatusForbidden, "errors.generation.forbidden"),
	"NotFound":         kind("generation/not-found", http.StatusNotFound, "errors.generation.not_found"),
	"ContentBlocked":   kind("generation/content-blocked", http.StatusUnprocessableEntity, "errors.generation.content_blocked"),
	"RateLimited":      kind("generation/rate-limited", http.StatusTooManyRequests, "errors.generation.rate_limited"),
	"DatabaseError":    kind("generation/database-error", http.StatusInternalServerError, "errors.generation.database_error"),
	"ProviderError":    kind("generation/provider-error", http.StatusBadGateway, "errors.generation.provider_error"),
	"ModelUnavailable": kind("generation/model-unavailable", http.StatusServiceUnavailable, "errors.generation.model_unavailable"),
	"Timeout":          kind("generation/timeout", http.StatusGatewayTimeout, "errors.generation.timeout"),
})

var (
	GenerationBadRequest       = Generation.Kind("BadRequest")
	GenerationValidationFailed = Generation.Kind("ValidationFailed")
	GenerationUnauthorized     = Generation.Kind("Unauthorized")
	GenerationForbidden        = Generation.Kind("Forbidden")
	GenerationNotFound         = Generation.Kind("NotFound")
	GenerationContentBlocked   = Generation.Kind("ContentBlocked")
	GenerationRateLimited      = Generation.Kind("RateLimited")
	GenerationDatabaseError    = Generation.Kind("DatabaseError")
	GenerationProviderError    = Generation.Kind("ProviderError")
	GenerationModelUnavailable = Generation.Kind("ModelUnavailable")
	GenerationTimeout          = Generation.Kind("Timeout")
)

// AI covers direct calls to the completion provider outside a generation.
var AI = problem.DefineDomain("ai", map[string]problem.Spec{
	"BadRequest":         kind("ai/bad-request", http.StatusBadRequest, "errors.ai.bad_request"),
	"Unauthorized":       kind("ai/unauthorized", http.StatusUnauthorized, "errors.ai.unauthorized"),
	"Forbidden":          kind("ai/forbidden", http.StatusForbidden, "errors.ai.forbidden"),
	"Timeout":            kind("ai/timeout", http.StatusRequestTimeout, "errors.ai.timeout"),
	"ContentBlocked":     kind("ai/content-blocked", http.StatusUnprocessableEntity, "errors.ai.content_blocked"),
	"RateLimited":        kind("ai/rate-limited", http.StatusTooManyRequests, "errors.ai.rate_limited"),
	"ProviderError":      kind("ai/provider-error", http.StatusBadGateway, "errors.ai.provider_error"),
	"ServiceUnavailable": kind("ai/service-unavailable", http.StatusServiceUnavailable, "errors.ai.service_unavailable"),
})

var (
	AIBadRequest         = AI.Kind("BadRequest")
	AIUnauthorized       = AI.Kind("Unauthorized")
	AIForbidden          = AI.Kind("Forbidden")
	AITimeout            = AI.Kind("Timeout")
	AIContentBlocked     = AI.Kind("ContentBlocked")
	AIRateLimited        = AI.Kind("RateLimited")
	AIProviderError      = AI.Kind("ProviderError")
	AIServiceUnavailable = AI.Kind("ServiceUnavailable")
)

// System covers cross-cutting HTTP and infrastructure failures.
var System = problem.DefineDomain("system", map[string]problem.Spec{
	"ValidationFailed": kind("system/validation-failed", http.StatusBadRequest, "errors.system.validation_failed"),
	"Unauthorized":     kind("system/unauthorized", http.StatusUnauthorized, "errors.system.unauthorized"),
	"ForbiddenOrigin":  kind("system/forbidden-origin", http.StatusForbidden, "errors.system.forbidden_origin"),
	"RouteNotFound":    kind("system/route-not-found", http.StatusNotFound, "errors.system.route_not_found"),
	"MethodNotAllowed": kind("system/method-not-allowed", http.StatusMethodNotAllowed, "errors.system.method_not_allowed"),
	"PayloadTooLarge":  kind("system/payload-too-large", http.StatusRequestEntityTooLarge, "errors.system.payload_too_large"),
	"RateLimited":      kind("system/rate-limited", http.StatusTooManyRequests, "errors.system.rate_limited"),
	"Unexpected":       kind("system/unexpected", http.StatusInternalServerError, "errors.system.unexpected"),
	"FeatureDisabled":  kind("system/feature-disabled", http.StatusServiceUnavailable, "errors.system.feature_disabled"),
	"GatewayTimeout":   kind("system/gateway-timeout", http.StatusGatewayTimeout, "errors.system.gateway_timeout"),
})

var (
	SystemValidationFailed = System.Kind("ValidationFailed")
	SystemUnauthorized     = System.Kind("Unauthorized")
	SystemForbiddenOrigin  = System.Kind("ForbiddenOrigin")
	SystemRouteNotFound    = System.Kind("RouteNotFound")
	SystemMethodNotAllowed = System.Kind("MethodNotAllowed")
	SystemPayloadTooLarge  = System.Kind("PayloadTooLarge")
	SystemRateLimited      = System.Kind("RateLimited")
	SystemUnexpected       = System.Kind("Unexpected")
	SystemFeatureDisabled  = System.Kind("FeatureDisabled")
	SystemGatewayTimeout   = System.Kind("GatewayTimeout")
)

// Normalize returns err as a domain error. Values that already are domain
// errors pass through; anything else becomes system/unexpected with err kept
// as the cause.
func Normalize(err error) *problem.Error {
	if err == nil {
		return nil
	}
	if pe, ok := problem.As(err); ok {
		return pe
	}
	return SystemUnexpected.New("An unexpected error occurred", problem.WithCause(err))
}
