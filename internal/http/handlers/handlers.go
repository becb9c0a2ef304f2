package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/gotrue"
	"github.com/tbourn/tenx-cards/internal/http/middleware"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/ratelimit"
	"github.com/tbourn/tenx-cards/internal/services"
	"github.com/tbourn/tenx-cards/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService runs the account flows against the hosted auth provider.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*gotrue.Session, error)
	Register(ctx context.Context, email, password, confirm string) (*gotrue.User, string, error)
	Logout(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, email string) (string, error)
	UpdatePassword(ctx context.Context, accessToken, password, confirm string) error
	ResendVerification(ctx context.Context, email string) error
	Callback(ctx context.Context, code, verifier string) (*gotrue.Session, error)
	Me(ctx context.Context, accessToken string) (*gotrue.User, error)
}

// CollectionService manages a user's collections.
type CollectionService interface {
	Create(ctx context.Context, userID, name string, description *string) (*domain.Collection, error)
	Get(ctx context.Context, userID, id string) (*domain.Collection, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Collection, int64, error)
	Update(ctx context.Context, userID, id string, p services.CollectionPatch) (*domain.Collection, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// FlashcardService manages a user's flashcards.
type FlashcardService interface {
	CreateBatch(ctx context.Context, userID string, in []services.FlashcardInput) ([]domain.Flashcard, error)
	Get(ctx context.Context, userID, id string) (*domain.Flashcard, error)
	ListPage(ctx context.Context, userID string, f services.FlashcardFilter, page, pageSize int) ([]domain.Flashcard, int64, error)
	Stats(ctx context.Context, userID string, f services.FlashcardFilter) (int64, *time.Time, error)
	Update(ctx context.Context, userID, id string, p services.FlashcardPatch) (*domain.Flashcard, error)
	Delete(ctx context.Context, userID, id string) error
}

// GenerationService runs AI generations and stores idempotent replays.
type GenerationService interface {
	Generate(ctx context.Context, userID, sourceText string) (*services.GenerationResult, error)
	Get(ctx context.Context, userID, id string) (*domain.Generation, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Generation, int64, error)
	ListErrorsPage(ctx context.Context, userID string, page, pageSize int) ([]domain.GenerationErrorLog, int64, error)
	FindReplay(ctx context.Context, userID, key string) (*services.Replay, bool, error)
	Remember(ctx context.Context, userID, key, resourceID string, status int, body []byte) error
}

// FeatureSource exposes the current feature flags.
type FeatureSource interface {
	Env() string
	Snapshot() map[string]bool
}

//
// Handler wiring
//

// CookieOptions controls the session cookies written by the auth handlers.
type CookieOptions struct {
	Secure bool
	Domain string
}

// Deps lists what New needs.
type Deps struct {
	Auth        AuthService
	Collections CollectionService
	Flashcards  FlashcardService
	Generations GenerationService
	Features    FeatureSource

	// AuthLimiter budgets login, registration and e-mail flows.
	AuthLimiter ratelimit.Limiter
	Cookies     CookieOptions
	// BasePath prefixes Location headers, e.g. "/api".
	BasePath string
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	auth        AuthService
	collections CollectionService
	flashcards  FlashcardService
	generations GenerationService
	features    FeatureSource

	authLimiter ratelimit.Limiter
	cookies     CookieOptions
	basePath    string
}

// New returns Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		auth:        d.Auth,
		collections: d.Collections,
		flashcards:  d.Flashcards,
		generations: d.Generations,
		features:    d.Features,
		authLimiter: d.AuthLimiter,
		cookies:     d.Cookies,
		basePath:    d.BasePath,
	}
}

//
// Helpers
//

// bindJSON decodes the body into dst. Oversized bodies become
// system/payload-too-large; everything else is a validation error of kind k.
func bindJSON(c *gin.Context, dst any, k *problem.Kind) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return apperr.SystemPayloadTooLarge.Newf("Request body exceeds %d bytes.", tooBig.Limit)
	}
	return apperr.ValidationMapper(k)(err)
}

// pathID returns the :id parameter, rejecting anything that is not a UUID
// with a validation error of kind k.
func pathID(c *gin.Context, k *problem.Kind) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.FieldError(k, "id", "must be a valid UUID")
	}
	return id, nil
}

func (h *Handlers) location(parts ...string) string {
	loc := h.basePath
	for _, p := range parts {
		loc += "/" + p
	}
	return loc
}

// pageParams reads ?page and ?page_size, clamped to the shared bounds.
func pageParams(c *gin.Context) (int, int) {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"))
}

func userID(c *gin.Context) string { return middleware.UserID(c) }

// notModified sets a weak ETag built from parts and reports whether the
// request's If-None-Match already matches it, in which case 304 is written.
func notModified(c *gin.Context, parts ...any) bool {
	etag := `W/"` + fmt.Sprint(parts...) + `"`
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		c.Writer.WriteHeaderNow()
		return true
	}
	return false
}

func unixNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}
