package apperr

import (
	"net/http"

	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/upstream"
)

var authMapper = mapper{
	rules: []rule{
		{byCode("over_request_rate_limit", "over_email_send_rate_limit", "over_sms_send_rate_limit"), AuthRateLimited, "Too many requests. Please try again later."},
		{byCode("invalid_credentials"), AuthInvalidCredentials, "Invalid email or password."},
		{byCode("user_already_exists", "email_exists"), AuthUserExists, "An account with this email already exists."},
		{byCode("email_not_confirmed"), AuthEmailNotConfirmed, "Please confirm your email address before signing in."},
		{byCode("otp_expired", "flow_state_expired", "flow_state_not_found", "bad_code_verifier"), AuthTokenExpired, "The link has expired. Please request a new one."},
		{byCode("weak_password", "validation_failed", "same_password"), AuthValidationFailed, "The submitted data is invalid."},
		{byCode("session_not_found", "session_expired", "bad_jwt", "no_authorization", "user_not_found"), AuthUnauthorized, "You need to sign in to continue."},

		{byStatus(http.StatusTooManyRequests), AuthRateLimited, "Too many requests. Please try again later."},

		{byMessage("rate limit", "too many requests"), AuthRateLimited, "Too many requests. Please try again later."},
		{byMessage("invalid login credentials", "invalid credentials"), AuthInvalidCredentials, "Invalid email or password."},
		{byMessage("already registered", "already exists"), AuthUserExists, "An account with this email already exists."},
		{byMessage("email not confirmed"), AuthEmailNotConfirmed, "Please confirm your email address before signing in."},
	},
	fallback: rule{always, AuthProviderError, "Authentication service error. Please try again later."},
	meta:     retryMeta,
}

// FromAuthProvider maps a hosted-auth failure to an auth domain error.
func FromAuthProvider(v upstream.Error) *problem.Error { return authMapper.mapError(v) }

// FromAuthError describes err and maps it with FromAuthProvider. Domain
// errors pass through untouched.
func FromAuthError(err error) *problem.Error {
	if pe, ok := problem.As(err); ok {
		return pe
	}
	return FromAuthProvider(upstream.FromError(err))
}

// databaseMapper builds the database table for one domain. Rate limiting
// gets its own kind instead of overriding the status of a database error.
func databaseMapper(notFound, rateLimited, fallback *problem.Kind) mapper {
	return mapper{
		rules: []rule{
			{byCode(upstream.CodeNoRows), notFound, "The requested resource was not found."},
			{byCode(upstream.CodeTooManyConns), rateLimited, "Too many requests. Please try again later."},

			{byStatus(http.StatusNotFound, http.StatusNotAcceptable), notFound, "The requested resource was not found."},
			{byStatus(http.StatusTooManyRequests), rateLimited, "Too many requests. Please try again later."},

			{byMessage("rate limit", "too many requests"), rateLimited, "Too many requests. Please try again later."},
			{byMessage("no rows", "not found"), notFound, "The requested resource was not found."},
		},
		fallback: rule{always, fallback, "A database error occurred."},
	}
}

var (
	flashcardDBMapper  = databaseMapper(FlashcardNotFound, FlashcardRateLimited, FlashcardDatabaseError)
	generationDBMapper = databaseMapper(GenerationNotFound, GenerationRateLimited, GenerationDatabaseError)
)

// FromDatabase maps a database failure to a flashcard domain error.
func FromDatabase(v upstream.Error) *problem.Error { return flashcardDBMapper.mapError(v) }

// FromGenerationDatabase maps a database failure to a generation domain error.
func FromGenerationDatabase(v upstream.Error) *problem.Error { return generationDBMapper.mapError(v) }

// FromDBError describes err with upstream.FromDatabaseError and maps it with
// FromDatabase. Domain errors pass through untouched.
func FromDBError(err error) *problem.Error {
	if pe, ok := problem.As(err); ok {
		return pe
	}
	return FromDatabase(upstream.FromDatabaseError(err))
}

// FromGenerationDBError is FromDBError for the generation domain.
func FromGenerationDBError(err error) *problem.Error {
	if pe, ok := problem.As(err); ok {
		return pe
	}
	return FromGenerationDatabase(upstream.FromDatabaseError(err))
}

// aiKinds lets the generic and the generation-specific AI mappers share one
// table.
type aiKinds struct {
	contentBlocked, unavailable, rateLimited, timeout *problem.Kind
	unauthorized, forbidden, badRequest, provider     *problem.Kind
}

func aiMapper(k aiKinds) mapper {
	const (
		blocked     = "The content was blocked by the AI provider's safety filters."
		unavailable = "The AI model is currently unavailable. Please try again later."
		limited     = "The AI provider is rate limiting requests. Please try again later."
		timedOut    = "The AI provider did not respond in time."
		unauth      = "The AI provider rejected the credentials."
		forbidden   = "Access to the AI model is not permitted."
		badRequest  = "The AI provider rejected the request."
	)
	return mapper{
		rules: []rule{
			{byCode("content_filter", "content_policy_violation", "moderation_blocked", "safety"), k.contentBlocked, blocked},
			{byCode("model_not_found", "model_unavailable", "service_unavailable", "overloaded", "overloaded_error"), k.unavailable, unavailable},
			{byCode("rate_limit_exceeded", "rate_limit_error", "insufficient_quota"), k.rateLimited, limited},
			{byCode("timeout", "request_timeout", "ETIMEDOUT", "ECONNABORTED"), k.timeout, timedOut},
			{byCode("invalid_api_key", "authentication_error", "unauthorized"), k.unauthorized, unauth},
			{byCode("permission_denied", "permission_error", "forbidden"), k.forbidden, forbidden},
			{byCode("invalid_request_error", "bad_request", "context_length_exceeded"), k.badRequest, badRequest},
			{byName(upstream.NameTimeout, upstream.NameAbort), k.timeout, timedOut},

			{byStatus(http.StatusBadRequest), k.badRequest, badRequest},
			{byStatus(http.StatusUnauthorized), k.unauthorized, unauth},
			{byStatus(http.StatusForbidden), k.forbidden, forbidden},
			{byStatus(http.StatusRequestTimeout, http.StatusGatewayTimeout), k.timeout, timedOut},
			{byStatus(http.StatusTooManyRequests), k.rateLimited, limited},
			{byStatus(http.StatusServiceUnavailable), k.unavailable, unavailable},

			{byMessage("content policy", "content filter", "safety", "blocked"), k.contentBlocked, blocked},
			{byMessage("rate limit", "too many requests", "quota"), k.rateLimited, limited},
			{byMessage("timeout", "timed out"), k.timeout, timedOut},
			{byMessage("model not found", "unavailable", "overloaded"), k.unavailable, unavailable},
			{byMessage("api key", "unauthorized"), k.unauthorized, unauth},
			{byMessage("forbidden", "permission"), k.forbidden, forbidden},
		},
		fallback: rule{always, k.provider, "The AI provider returned an error."},
		meta:     retryMeta,
	}
}

var (
	genericAIMapper = aiMapper(aiKinds{
		contentBlocked: AIContentBlocked,
		unavailable:    AIServiceUnavailable,
		rateLimited:    AIRateLimited,
		timeout:        AITimeout,
		unauthorized:   AIUnauthorized,
		forbidden:      AIForbidden,
		badRequest:     AIBadRequest,
		provider:       AIProviderError,
	})
	generationAIMapper = aiMapper(aiKinds{
		contentBlocked: GenerationContentBlocked,
		unavailable:    GenerationModelUnavailable,
		rateLimited:    GenerationRateLimited,
		timeout:        GenerationTimeout,
		unauthorized:   GenerationUnauthorized,
		forbidden:      GenerationForbidden,
		badRequest:     GenerationBadRequest,
		provider:       GenerationProviderError,
	})
)

// FromAI maps an AI provider failure to an ai domain error.
func FromAI(v upstream.Error) *problem.Error { return genericAIMapper.mapError(v) }

// FromGenerationAI maps an AI provider failure raised during a generation.
func FromGenerationAI(v upstream.Error) *problem.Error { return generationAIMapper.mapError(v) }

// FromGenerationAIError describes err and maps it with FromGenerationAI.
// Domain errors pass through untouched.
func FromGenerationAIError(err error) *problem.Error {
	if pe, ok := problem.As(err); ok {
		return pe
	}
	return FromGenerationAI(upstream.FromError(err))
}
