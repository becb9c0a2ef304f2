// Auth HTTP handlers.
//
//   - POST /auth/login                (session cookies + user)
//   - POST /auth/register             (201, confirmation e-mail sent)
//   - POST /auth/logout               (204, cookies cleared)
//   - POST /auth/reset-password       (202)
//   - POST /auth/update-password      (204, session required)
//   - POST /auth/resend-verification  (202)
//   - GET  /auth/callback             (303 redirect after e-mail link)
//   - GET  /auth/me                   (session required)
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/gotrue"
	"github.com/tbourn/tenx-cards/internal/http/middleware"
	"github.com/tbourn/tenx-cards/internal/ratelimit"
	"github.com/tbourn/tenx-cards/internal/upstream"
)

// VerifierCookie holds the PKCE verifier between an e-mail link request and
// its callback.
const VerifierCookie = "tenx-pkce-verifier"

const (
	refreshCookieTTL  = 30 * 24 * time.Hour
	verifierCookieTTL = time.Hour
)

//
// DTOs
//

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=254" example:"ana@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse"`
}

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,max=254" example:"ana@example.com"`
	Password        string `json:"password" binding:"required" example:"correct horse"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" example:"correct horse"`
}

// EmailRequest is the payload of the reset-password and resend-verification
// endpoints.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email,max=254" example:"ana@example.com"`
}

// UpdatePasswordRequest is the payload of POST /auth/update-password.
type UpdatePasswordRequest struct {
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// UserDTO is the public view of an account.
type UserDTO struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	EmailConfirmed bool       `json:"emailConfirmed"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// MessageDTO carries a human-readable outcome.
type MessageDTO struct {
	Message string `json:"message"`
}

func toUserDTO(u *gotrue.User) UserDTO {
	if u == nil {
		return UserDTO{}
	}
	dto := UserDTO{ID: u.ID, Email: u.Email, EmailConfirmed: u.EmailConfirmedAt != nil}
	if !u.CreatedAt.IsZero() {
		t := u.CreatedAt
		dto.CreatedAt = &t
	}
	return dto
}

//
// Handlers
//

// Login godoc
// @ID          login
// @Summary     Sign in with e-mail and password
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.SuccessResponse{data=handlers.UserDTO}
// @Failure     400   {object}  problem.Details  "auth/validation-failed"
// @Failure     401   {object}  problem.Details  "auth/invalid-credentials"
// @Failure     403   {object}  problem.Details  "auth/email-not-confirmed"
// @Failure     429   {object}  problem.Details  "auth/rate-limited"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req, apperr.AuthValidationFailed); err != nil {
		return err
	}
	key := ratelimit.Key("login", c.ClientIP(), req.Email)
	if err := middleware.Enforce(c, h.authLimiter, apperr.AuthRateLimited, key); err != nil {
		return err
	}

	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if h.authLimiter != nil {
		if err := h.authLimiter.Reset(c.Request.Context(), key); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("login limiter reset failed")
		}
	}
	h.setSession(c, sess)
	OK(c, toUserDTO(&sess.User))
	return nil
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Sends a confirmation e-mail. The PKCE verifier is kept in an HttpOnly cookie until the callback.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Account"
// @Success     201   {object}  handlers.SuccessResponse{data=handlers.UserDTO}
// @Failure     400   {object}  problem.Details  "auth/validation-failed"
// @Failure     409   {object}  problem.Details  "auth/user-exists"
// @Failure     429   {object}  problem.Details  "auth/rate-limited"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) error {
	var req RegisterRequest
	if err := bindJSON(c, &req, apperr.AuthValidationFailed); err != nil {
		return err
	}
	if err := middleware.Enforce(c, h.authLimiter, apperr.AuthRateLimited, ratelimit.Key("register", c.ClientIP())); err != nil {
		return err
	}

	u, verifier, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return err
	}
	h.setVerifier(c, verifier)
	Created(c, gin.H{
		"user":    toUserDTO(u),
		"message": "Check your e-mail to confirm your account.",
	}, "")
	return nil
}

// Logout godoc
// @ID          logout
// @Summary     Sign out
// @Tags        Auth
// @Success     204
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) error {
	token := middleware.BearerToken(c)
	h.clearSession(c)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil && !apperr.AuthUnauthorized.Is(err) {
		return err
	}
	NoContent(c)
	return nil
}

// ResetPassword godoc
// @ID          resetPassword
// @Summary     Send a password recovery e-mail
// @Description Always answers 202 so that callers cannot probe for accounts.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.EmailRequest  true  "Address"
// @Success     202   {object}  handlers.SuccessResponse{data=handlers.MessageDTO}
// @Failure     429   {object}  problem.Details  "auth/rate-limited"
// @Router      /auth/reset-password [post]
func (h *Handlers) ResetPassword(c *gin.Context) error {
	var req EmailRequest
	if err := bindJSON(c, &req, apperr.AuthValidationFailed); err != nil {
		return err
	}
	if err := middleware.Enforce(c, h.authLimiter, apperr.AuthRateLimited, ratelimit.Key("reset", c.ClientIP(), req.Email)); err != nil {
		return err
	}

	verifier, err := h.auth.ResetPassword(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		h.setVerifier(c, verifier)
	case apperr.AuthRateLimited.Is(err):
		return err
	default:
		// unknown addresses and provider hiccups look the same to the caller
		middleware.LoggerFrom(c).Warn().Err(err).Msg("password reset not sent")
	}
	Accepted(c, MessageDTO{Message: "If an account exists for this address, a reset link is on its way."})
	return nil
}

// UpdatePassword godoc
// @ID          updatePassword
// @Summary     Change the password of the signed-in user
// @Tags        Auth
// @Accept      json
// @Param       body  body  handlers.UpdatePasswordRequest  true  "New password"
// @Success     204
// @Failure     400   {object}  problem.Details  "auth/validation-failed"
// @Failure     401   {object}  problem.Details  "auth/unauthorized"
// @Router      /auth/update-password [post]
func (h *Handlers) UpdatePassword(c *gin.Context) error {
	var req UpdatePasswordRequest
	if err := bindJSON(c, &req, apperr.AuthValidationFailed); err != nil {
		return err
	}
	if err := h.auth.UpdatePassword(c.Request.Context(), middleware.AccessToken(c), req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	NoContent(c)
	return nil
}

// ResendVerification godoc
// @ID          resendVerification
// @Summary     Re-send the confirmation e-mail
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.EmailRequest  true  "Address"
// @Success     202   {object}  handlers.SuccessResponse{data=handlers.MessageDTO}
// @Failure     429   {object}  problem.Details  "auth/rate-limited"
// @Router      /auth/resend-verification [post]
func (h *Handlers) ResendVerification(c *gin.Context) error {
	var req EmailRequest
	if err := bindJSON(c, &req, apperr.AuthValidationFailed); err != nil {
		return err
	}
	if err := middleware.Enforce(c, h.authLimiter, apperr.AuthRateLimited, ratelimit.Key("resend", c.ClientIP(), req.Email)); err != nil {
		return err
	}
	if err := h.auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		return err
	}
	Accepted(c, MessageDTO{Message: "A new confirmation e-mail has been sent."})
	return nil
}

// Callback godoc
// @ID          authCallback
// @Summary     Complete an e-mail link (confirmation or recovery)
// @Tags        Auth
// @Param       code  query  string  false  "Authorization code"
// @Param       next  query  string  false  "Relative path to continue to"
// @Success     303
// @Failure     410   {object}  problem.Details  "auth/token-expired"
// @Router      /auth/callback [get]
func (h *Handlers) Callback(c *gin.Context) error {
	// the provider reports failed links through the query string
	if code := c.Query("error_code"); code != "" {
		return apperr.FromAuthProvider(upstream.Error{
			Code:    code,
			Message: c.Query("error_description"),
		})
	}

	verifier, _ := c.Cookie(VerifierCookie)
	sess, err := h.auth.Callback(c.Request.Context(), c.Query("code"), verifier)
	if err != nil {
		return err
	}
	h.clearVerifier(c)
	h.setSession(c, sess)
	c.Redirect(http.StatusSeeOther, safeNext(c.Query("next")))
	return nil
}

// Me godoc
// @ID          me
// @Summary     Current user
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.SuccessResponse{data=handlers.UserDTO}
// @Failure     401  {object}  problem.Details  "auth/unauthorized"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) error {
	u, err := h.auth.Me(c.Request.Context(), middleware.AccessToken(c))
	if err != nil {
		return err
	}
	OK(c, toUserDTO(u))
	return nil
}

//
// Cookies
//

func (h *Handlers) cookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.cookies.Domain, h.cookies.Secure, true)
}

func (h *Handlers) setSession(c *gin.Context, s *gotrue.Session) {
	ttl := time.Duration(s.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	h.cookie(c, middleware.AccessCookie, s.AccessToken, ttl)
	if s.RefreshToken != "" {
		h.cookie(c, middleware.RefreshCookie, s.RefreshToken, refreshCookieTTL)
	}
}

func (h *Handlers) clearSession(c *gin.Context) {
	h.cookie(c, middleware.AccessCookie, "", -1)
	h.cookie(c, middleware.RefreshCookie, "", -1)
}

func (h *Handlers) setVerifier(c *gin.Context, v string) {
	h.cookie(c, VerifierCookie, v, verifierCookieTTL)
}

func (h *Handlers) clearVerifier(c *gin.Context) {
	h.cookie(c, VerifierCookie, "", -1)
}

// safeNext keeps redirects on this site: only absolute paths are honoured.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
